package devbackend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ctxRoles, []string{"Viewer", "Clerk"})

	called := false
	mw := RBAC("Admin", "Clerk")
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ctxRoles, []string{"Viewer"})

	mw := RBAC("Admin", "Clerk")
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTenantScope(t *testing.T) {
	dir := testDirectory(t)
	mw := TenantScope(dir, "X-Tenant-Id")

	tests := []struct {
		name   string
		tenant string
		want   int
	}{
		{"missing header", "", http.StatusBadRequest},
		{"not a member", "t-globex", http.StatusForbidden},
		{"member", "t-acme", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tenant != "" {
				req.Header.Set("X-Tenant-Id", tt.tenant)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(ctxUserID, "u-clerk")

			handler := mw(func(c echo.Context) error {
				if c.Get(ctxTenantID) != tt.tenant {
					t.Fatalf("tenant not set")
				}
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
