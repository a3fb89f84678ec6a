package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// ToastTray is the set of toasts currently on screen.
type ToastTray interface {
	Active() []domain.Notification
	Dismiss(id string) bool
}

type NotificationHandler struct {
	tray ToastTray
}

func NewNotificationHandler(tray ToastTray) *NotificationHandler {
	return &NotificationHandler{tray: tray}
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	active := h.tray.Active()
	if active == nil {
		active = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, active)
}

// Dismiss handles DELETE /api/notifications/:id.
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	if !h.tray.Dismiss(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}
