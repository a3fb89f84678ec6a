package devbackend

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/catalog-console/internal/api/handler"
	"github.com/99minutos/catalog-console/internal/api/middleware"
	_ "github.com/99minutos/catalog-console/internal/devbackend/docs"
)

const DefaultTenantHeader = "X-Tenant-Id"

var (
	// Writers may create and update catalog records.
	Writers = []string{"Owner", "Admin", "Manager", "Clerk"}
	// Deleters may delete them.
	Deleters = []string{"Owner", "Admin", "Manager"}
)

type Options struct {
	Secret       string
	TokenTTL     time.Duration
	TenantHeader string
	Seed         Seed
	// BcryptCost defaults to bcrypt.DefaultCost. Tests lower it.
	BcryptCost int
	Log        zerolog.Logger
}

// NewServer builds the dev backend's echo instance.
func NewServer(opts Options) (*echo.Echo, error) {
	if opts.TenantHeader == "" {
		opts.TenantHeader = DefaultTenantHeader
	}
	if opts.Secret == "" {
		return nil, errors.New("devbackend: jwt secret is required")
	}

	dir, err := NewDirectory(opts.Seed, opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("devbackend: %w", err)
	}
	auth := NewAuthService(dir, opts.Secret, opts.TokenTTL)
	store := NewCatalogStore()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = errorHandler(opts.Log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))

	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authMW := Auth(auth)
	authH := NewAuthHandler(auth, dir)
	tenantH := NewTenantHandler(dir)

	e.POST("/api/auth/login", authH.Login)
	e.GET("/api/auth/me", authH.Me, authMW)
	e.POST("/api/auth/logout", authH.Logout, authMW)
	e.GET("/api/tenants", tenantH.List, authMW)
	e.GET("/api/tenants/active", tenantH.Active, authMW)
	e.POST("/api/tenants/active", tenantH.Activate, authMW)

	scope := TenantScope(dir, opts.TenantHeader)
	group := func(name string) *echo.Group { return e.Group("/api/"+name, authMW, scope) }

	NewResourceHandler("category", store.Categories, store.BuildCategory).Register(group("categories"), Writers, Deleters)
	NewResourceHandler("unit of measure", store.UOMs, store.BuildUOM).Register(group("uoms"), Writers, Deleters)
	NewResourceHandler("product", store.Products, store.BuildProduct).Register(group("products"), Writers, Deleters)
	NewResourceHandler("variant", store.Variants, store.BuildVariant).Register(group("variants"), Writers, Deleters)
	NewResourceHandler("order", store.Orders, store.BuildOrder).Register(group("orders"), Writers, Deleters)

	return e, nil
}

func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code, msg = he.Code, fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
