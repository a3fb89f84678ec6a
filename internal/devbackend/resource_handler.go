package devbackend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-console/internal/catalog"
)

// Builder turns an input into a record for tenant. prev is nil on create.
type Builder[T, In any] func(tenant string, in In, prev *T) (T, error)

// ResourceHandler serves list, all, create, update and delete for one
// collection. Every route expects TenantScope to have run.
type ResourceHandler[T, In any] struct {
	name  string
	coll  *Collection[T]
	build Builder[T, In]
}

func NewResourceHandler[T, In any](name string, coll *Collection[T], build Builder[T, In]) *ResourceHandler[T, In] {
	return &ResourceHandler[T, In]{name: name, coll: coll, build: build}
}

// Register mounts the routes on g. Writes need one of writers, deletes one of
// deleters.
func (h *ResourceHandler[T, In]) Register(g *echo.Group, writers, deleters []string) {
	g.GET("", h.List)
	g.GET("/all", h.All)
	g.POST("", h.Create, RBAC(writers...))
	g.PUT("/:id", h.Update, RBAC(writers...))
	g.DELETE("/:id", h.Delete, RBAC(deleters...))
}

// List returns one page of records.
//
// @Summary      List records
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-Id  header    string  true   "Active tenant"
// @Param        resource     path      string  true   "categories, uoms, products, variants or orders"
// @Param        search       query     string  false  "Search text"
// @Param        page         query     int     false  "1-based page"
// @Param        pageSize     query     int     false  "Page size, at most 100"
// @Param        sortBy       query     string  false  "Sort field"
// @Param        sortDir      query     string  false  "asc or desc"
// @Success      200          {object}  map[string]any
// @Failure      400          {object}  map[string]string
// @Failure      403          {object}  map[string]string
// @Router       /api/{resource} [get]
func (h *ResourceHandler[T, In]) List(c echo.Context) error {
	var q catalog.Query
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	return c.JSON(http.StatusOK, h.coll.List(tenantOf(c), q))
}

// All returns every record unpaged, for pickers.
//
// @Summary      All records
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-Id  header  string  true  "Active tenant"
// @Param        resource     path    string  true  "categories, uoms, products, variants or orders"
// @Success      200          {array}   map[string]any
// @Router       /api/{resource}/all [get]
func (h *ResourceHandler[T, In]) All(c echo.Context) error {
	return c.JSON(http.StatusOK, h.coll.All(tenantOf(c)))
}

// Create adds a record.
//
// @Summary      Create a record
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-Id  header    string  true  "Active tenant"
// @Param        resource     path      string  true  "categories, uoms, products, variants or orders"
// @Success      201          {object}  map[string]any
// @Failure      409          {object}  map[string]string
// @Failure      422          {object}  map[string]string
// @Router       /api/{resource} [post]
func (h *ResourceHandler[T, In]) Create(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	tenant := tenantOf(c)
	rec, err := h.build(tenant, in, nil)
	if err != nil {
		return h.fail(c, err, rec)
	}
	created, err := h.coll.Create(tenant, rec)
	if err != nil {
		return h.fail(c, err, rec)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a record.
//
// @Summary      Update a record
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-Id  header    string  true  "Active tenant"
// @Param        resource     path      string  true  "categories, uoms, products, variants or orders"
// @Param        id           path      string  true  "Record id"
// @Success      200          {object}  map[string]any
// @Failure      404          {object}  map[string]string
// @Failure      409          {object}  map[string]string
// @Router       /api/{resource}/{id} [put]
func (h *ResourceHandler[T, In]) Update(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	tenant := tenantOf(c)
	var attempted T
	updated, err := h.coll.Update(tenant, c.Param("id"), func(prev T) (T, error) {
		next, err := h.build(tenant, in, &prev)
		attempted = next
		return next, err
	})
	if err != nil {
		return h.fail(c, err, attempted)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a record.
//
// @Summary      Delete a record
// @Tags         catalog
// @Security     BearerAuth
// @Param        X-Tenant-Id  header  string  true  "Active tenant"
// @Param        resource     path    string  true  "categories, uoms, products, variants or orders"
// @Param        id           path    string  true  "Record id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/{resource}/{id} [delete]
func (h *ResourceHandler[T, In]) Delete(c echo.Context) error {
	if err := h.coll.Delete(tenantOf(c), c.Param("id")); err != nil {
		var zero T
		return h.fail(c, err, zero)
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

func (h *ResourceHandler[T, In]) fail(c echo.Context, err error, rec T) error {
	switch {
	case errors.Is(err, ErrDuplicate):
		msg := fmt.Sprintf("%s %s already exists", h.coll.schema.KeyName, h.coll.schema.Key(rec))
		return c.JSON(http.StatusConflict, map[string]string{"error": msg})
	case errors.Is(err, ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": h.name + " not found"})
	case errors.Is(err, ErrInvalidReference):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "referenced record does not exist"})
	}
	return err
}

func tenantOf(c echo.Context) string {
	tenant, _ := c.Get(ctxTenantID).(string)
	return tenant
}
