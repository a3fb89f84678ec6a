package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

const TenantsPath = "/tenants"

// TenantService is what the tenant handler needs from the tenant resolver.
type TenantService interface {
	AccessibleTenants(ctx context.Context) ([]domain.Tenant, error)
	Refresh(ctx context.Context) ([]domain.Tenant, error)
	ActiveTenantID() string
	SetActiveTenant(id string) error
}

type TenantHandler struct {
	tenants TenantService
}

func NewTenantHandler(tenants TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

type tenantsView struct {
	View     string          `json:"view"`
	Tenants  []domain.Tenant `json:"tenants"`
	ActiveID string          `json:"activeTenantId,omitempty"`
}

type selectTenantRequest struct {
	TenantID string `json:"tenantId" form:"tenantId"`
}

type activeTenantResponse struct {
	ActiveID string `json:"activeTenantId"`
}

// List handles GET /tenants. ?refresh=true refetches the list.
func (h *TenantHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		list []domain.Tenant
		err  error
	)
	if c.QueryParam("refresh") == "true" {
		list, err = h.tenants.Refresh(ctx)
	} else {
		list, err = h.tenants.AccessibleTenants(ctx)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tenantsView{
		View:     "tenants",
		Tenants:  list,
		ActiveID: h.tenants.ActiveTenantID(),
	})
}

// Select handles POST /tenants/active. An empty tenantId clears the selection.
func (h *TenantHandler) Select(c echo.Context) error {
	var req selectTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	// Make sure the selection is checked against a known list.
	if req.TenantID != "" {
		if _, err := h.tenants.AccessibleTenants(c.Request().Context()); err != nil {
			return err
		}
	}
	if err := h.tenants.SetActiveTenant(req.TenantID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activeTenantResponse{ActiveID: h.tenants.ActiveTenantID()})
}
