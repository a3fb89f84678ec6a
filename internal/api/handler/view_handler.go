package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// SessionReader exposes the signed-in user.
type SessionReader interface {
	User() *domain.User
}

// TenantReader exposes the active tenant.
type TenantReader interface {
	ActiveTenantID() string
	ActiveTenant() *domain.Tenant
}

// ViewHandler serves the descriptors of the console's protected views.
type ViewHandler struct {
	sessions SessionReader
	tenants  TenantReader
	roles    []domain.Role
}

func NewViewHandler(sessions SessionReader, tenants TenantReader, roles []domain.Role) *ViewHandler {
	return &ViewHandler{sessions: sessions, tenants: tenants, roles: roles}
}

type viewResponse struct {
	View     string         `json:"view"`
	User     *domain.User   `json:"user,omitempty"`
	TenantID string         `json:"activeTenantId,omitempty"`
	Tenant   *domain.Tenant `json:"activeTenant,omitempty"`
	Roles    []domain.Role  `json:"roles,omitempty"`
}

func (h *ViewHandler) view(name string) viewResponse {
	return viewResponse{
		View:     name,
		User:     h.sessions.User(),
		TenantID: h.tenants.ActiveTenantID(),
		Tenant:   h.tenants.ActiveTenant(),
	}
}

// Dashboard handles GET /dashboard.
func (h *ViewHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view("dashboard"))
}

// Settings handles GET /settings.
func (h *ViewHandler) Settings(c echo.Context) error {
	v := h.view("settings")
	v.Roles = h.roles
	return c.JSON(http.StatusOK, v)
}

// Session handles GET /api/session, which reports who is signed in without
// redirecting.
func (h *ViewHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view("session"))
}
