package devbackend

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type TenantHandler struct {
	dir *Directory
}

func NewTenantHandler(dir *Directory) *TenantHandler {
	return &TenantHandler{dir: dir}
}

type activateRequest struct {
	TenantID string `json:"tenantId" validate:"required"`
}

type activeTenantResponse struct {
	TenantID string `json:"tenantId"`
}

// List returns the tenants the caller belongs to.
//
// @Summary      Accessible tenants
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Tenant
// @Failure      401  {object}  map[string]string
// @Router       /api/tenants [get]
func (h *TenantHandler) List(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(string)
	return c.JSON(http.StatusOK, h.dir.TenantsOf(userID))
}

// Active returns the caller's preferred tenant, empty when none was chosen.
//
// @Summary      Preferred tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  activeTenantResponse
// @Router       /api/tenants/active [get]
func (h *TenantHandler) Active(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(string)
	return c.JSON(http.StatusOK, activeTenantResponse{TenantID: h.dir.ActiveTenant(userID)})
}

// Activate records the caller's preferred tenant.
//
// @Summary      Set preferred tenant
// @Tags         tenants
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  activateRequest  true  "Tenant to activate"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/tenants/active [post]
func (h *TenantHandler) Activate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, _ := c.Get(ctxUserID).(string)
	if err := h.dir.SetActiveTenant(userID, req.TenantID); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "tenant not accessible"})
	}
	return c.NoContent(http.StatusNoContent)
}
