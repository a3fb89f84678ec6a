package devbackend

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware.
const (
	ctxClaims   = "claims"
	ctxUserID   = "user_id"
	ctxRoles    = "roles"
	ctxTenantID = "tenant_id"
)

// Auth validates the bearer JWT and injects its claims into the context.
func Auth(auth *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := auth.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxClaims, claims)
			c.Set(ctxUserID, claims.Subject)
			c.Set(ctxRoles, claims.Roles)

			return next(c)
		}
	}
}

// RBAC lets the request through when the caller holds any of allowedRoles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(ctxRoles).([]string)
			for _, r := range roles {
				if _, ok := allowed[r]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}

// TenantScope requires the tenant header and checks the caller belongs to
// that tenant.
func TenantScope(dir *Directory, header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID := strings.TrimSpace(c.Request().Header.Get(header))
			if tenantID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing "+header+" header")
			}
			userID, _ := c.Get(ctxUserID).(string)
			if !dir.CanAccess(userID, tenantID) {
				return echo.NewHTTPError(http.StatusForbidden, "tenant not accessible")
			}
			c.Set(ctxTenantID, tenantID)
			return next(c)
		}
	}
}
