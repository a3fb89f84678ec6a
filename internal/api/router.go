package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/api/guard"
	"github.com/99minutos/catalog-console/internal/api/handler"
	"github.com/99minutos/catalog-console/internal/api/middleware"
	"github.com/99minutos/catalog-console/internal/catalog"
	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
	"github.com/99minutos/catalog-console/internal/core/service"
)

// Deps is everything the console server routes to.
type Deps struct {
	Sessions     *service.SessionManager
	Tenants      *service.TenantResolver
	Catalog      *catalog.Catalog
	Tray         handler.ToastTray
	Notifier     ports.Notifier
	Roles        []domain.Role
	SettingsRole domain.Role
	Checks       map[string]handler.Checker
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Notifier, d.Log)

	// HTTP metrics live in their own registry so several routers can coexist;
	// /metrics serves it together with the default one.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Gates ---
	authed := middleware.Guard(d.Sessions, d.Tenants, guard.RequireAuth(handler.LoginPath))
	scoped := middleware.Guard(d.Sessions, d.Tenants,
		guard.RequireAuth(handler.LoginPath),
		guard.RequireTenant(handler.TenantsPath),
	)
	settings := middleware.Guard(d.Sessions, d.Tenants,
		guard.RequireAuth(handler.LoginPath),
		guard.RequireTenant(handler.TenantsPath),
		guard.RequireRole(d.SettingsRole, handler.LandingPath),
	)

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	tenantHandler := handler.NewTenantHandler(d.Tenants)
	viewHandler := handler.NewViewHandler(d.Sessions, d.Tenants, d.Roles)
	notificationHandler := handler.NewNotificationHandler(d.Tray)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))

	// --- Session ---
	e.GET(handler.LoginPath, sessionHandler.LoginForm)
	e.POST(handler.LoginPath, sessionHandler.Login)
	e.POST("/logout", sessionHandler.Logout)
	e.GET("/api/session", viewHandler.Session)

	// --- Toasts ---
	e.GET("/api/notifications", notificationHandler.List)
	e.DELETE("/api/notifications/:id", notificationHandler.Dismiss)

	// --- Tenants ---
	e.GET(handler.TenantsPath, tenantHandler.List, scoped)
	e.POST(handler.TenantsPath+"/active", tenantHandler.Select, authed)

	// --- Views ---
	e.GET(handler.LandingPath, viewHandler.Dashboard, scoped)
	e.GET("/settings", viewHandler.Settings, settings)

	// --- Catalog ---
	handler.NewResourceHandler[domain.Category, domain.CategoryInput](d.Catalog.Categories, d.Notifier).Register(e.Group("/catalog/categories", scoped))
	handler.NewResourceHandler[domain.UnitOfMeasure, domain.UnitOfMeasureInput](d.Catalog.UOMs, d.Notifier).Register(e.Group("/catalog/uoms", scoped))
	handler.NewResourceHandler[domain.Product, domain.ProductInput](d.Catalog.Products, d.Notifier).Register(e.Group("/catalog/products", scoped))
	handler.NewResourceHandler[domain.Variant, domain.VariantInput](d.Catalog.Variants, d.Notifier).Register(e.Group("/catalog/variants", scoped))
	handler.NewResourceHandler[domain.Order, domain.OrderInput](d.Catalog.Orders, d.Notifier).Register(e.Group("/orders", scoped))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, handler.LandingPath)
	})

	return e
}
