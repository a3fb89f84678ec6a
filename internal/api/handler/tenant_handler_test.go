package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

type stubTenantService struct {
	list      []domain.Tenant
	err       error
	active    string
	refreshed bool
	setErr    error
}

func (s *stubTenantService) AccessibleTenants(context.Context) ([]domain.Tenant, error) {
	return s.list, s.err
}

func (s *stubTenantService) Refresh(context.Context) ([]domain.Tenant, error) {
	s.refreshed = true
	return s.list, s.err
}

func (s *stubTenantService) ActiveTenantID() string { return s.active }

func (s *stubTenantService) SetActiveTenant(id string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.active = id
	return nil
}

func TestTenantHandler_List(t *testing.T) {
	e := newEcho()
	stub := &stubTenantService{list: []domain.Tenant{{ID: "t-1", Name: "Acme"}}, active: "t-1"}
	h := NewTenantHandler(stub)

	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/tenants?refresh=true", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.refreshed {
		t.Fatalf("refresh=true must refetch")
	}

	var resp tenantsView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Tenants) != 1 || resp.ActiveID != "t-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTenantHandler_ListFailure(t *testing.T) {
	e := newEcho()
	fail := &domain.APIError{Status: http.StatusInternalServerError, Message: "boom"}
	h := NewTenantHandler(&stubTenantService{err: fail})

	err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/tenants", nil), httptest.NewRecorder()))
	if err != fail {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestTenantHandler_Select(t *testing.T) {
	e := newEcho()
	stub := &stubTenantService{list: []domain.Tenant{{ID: "t-2"}}}
	h := NewTenantHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/tenants/active", strings.NewReader(`{"tenantId":"t-2"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Select(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.active != "t-2" || !strings.Contains(rec.Body.String(), `"activeTenantId":"t-2"`) {
		t.Fatalf("unexpected result %s", rec.Body.String())
	}
}

func TestTenantHandler_SelectNotAccessible(t *testing.T) {
	e := newEcho()
	h := NewTenantHandler(&stubTenantService{setErr: domain.ErrTenantNotAccessible})

	req := httptest.NewRequest(http.MethodPost, "/tenants/active", strings.NewReader(`{"tenantId":"t-9"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	if err := h.Select(e.NewContext(req, httptest.NewRecorder())); err != domain.ErrTenantNotAccessible {
		t.Fatalf("expected ErrTenantNotAccessible, got %v", err)
	}
}
