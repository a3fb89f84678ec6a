package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/api/guard"
	"github.com/99minutos/catalog-console/internal/api/metrics"
	"github.com/99minutos/catalog-console/internal/core/domain"
)

// SessionView is the part of the session manager the guards read.
type SessionView interface {
	IsAuthenticated() bool
	HasRole(role domain.Role) bool
}

// TenantView is the part of the tenant resolver the guards read.
type TenantView interface {
	ActiveTenantID() string
}

// Guard evaluates gates in order against the session and tenant state at
// request time. A failing gate answers 303 See Other with its redirect target.
func Guard(sessions SessionView, tenants TenantView, gates ...guard.Gate) echo.MiddlewareFunc {
	chain := guard.Chain(gates...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := guard.State{
				Authenticated:  sessions.IsAuthenticated(),
				ActiveTenantID: tenants.ActiveTenantID(),
				HasRole:        sessions.HasRole,
			}

			d := chain(state, c.Request().URL.RequestURI())
			if d.Allowed() {
				return next(c)
			}

			metrics.GuardRedirectsTotal.WithLabelValues(d.Gate).Inc()
			return c.Redirect(http.StatusSeeOther, d.Redirect)
		}
	}
}
