package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/catalog"
	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

// StaleHeader marks a list answered from cache because the backend could not
// be reached.
const StaleHeader = "X-Console-Stale"

// CatalogResource is one tenant-scoped resource as the handler sees it.
type CatalogResource[T, In any] interface {
	Name() string
	List(ctx context.Context, q catalog.Query) (*domain.Page[T], error)
	Cached(q catalog.Query) (*domain.Page[T], bool)
	All(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves list/create/update/delete for one resource.
type ResourceHandler[T, In any] struct {
	res      CatalogResource[T, In]
	notifier ports.Notifier
}

func NewResourceHandler[T, In any](res CatalogResource[T, In], notifier ports.Notifier) *ResourceHandler[T, In] {
	return &ResourceHandler[T, In]{res: res, notifier: notifier}
}

// Register mounts the handler's routes on g.
func (h *ResourceHandler[T, In]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/all", h.All)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List handles GET with search, page, pageSize, sortBy and sortDir.
func (h *ResourceHandler[T, In]) List(c echo.Context) error {
	var q catalog.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	page, err := h.res.List(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			if cached, ok := h.res.Cached(q); ok {
				c.Response().Header().Set(StaleHeader, "true")
				h.notifier.Publish(domain.Notification{
					Severity: domain.SeverityWarning,
					Title:    "Backend unreachable",
					Message:  "Showing the last loaded " + h.res.Name() + ".",
				})
				return c.JSON(http.StatusOK, cached)
			}
		}
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ResourceHandler[T, In]) All(c echo.Context) error {
	items, err := h.res.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ResourceHandler[T, In]) Create(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	item, err := h.res.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ResourceHandler[T, In]) Update(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	item, err := h.res.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ResourceHandler[T, In]) Delete(c echo.Context) error {
	if err := h.res.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ResourceHandler[T, In]) bind(c echo.Context) (In, error) {
	var in In
	if err := c.Bind(&in); err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&in); err != nil {
		return in, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return in, nil
}
