package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/api/guard"
	"github.com/99minutos/catalog-console/internal/core/domain"
)

const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// SessionService is what the session handler needs from the session manager.
type SessionService interface {
	IsAuthenticated() bool
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Logout()
}

type SessionHandler struct {
	sessions SessionService
}

func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	From     string `json:"from" form:"from" query:"from"`
}

type loginView struct {
	View string `json:"view"`
	From string `json:"from,omitempty"`
}

// LoginForm handles GET /login. Signed-in users are sent on to where they
// were going.
func (h *SessionHandler) LoginForm(c echo.Context) error {
	from := c.QueryParam(guard.FromParam)
	if h.sessions.IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(from, LandingPath))
	}
	return c.JSON(http.StatusOK, loginView{View: "login", From: from})
}

// Login handles POST /login and redirects to the remembered path on success.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if _, err := h.sessions.Login(c.Request().Context(), domain.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(req.From, LandingPath))
}

// Logout handles POST /logout. It always succeeds.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout()
	return c.Redirect(http.StatusSeeOther, LoginPath)
}
