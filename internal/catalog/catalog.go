package catalog

import (
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
)

var (
	Categories = Descriptor{Name: "categories", Path: "/api/categories", ConflictTitle: "Duplicate code"}
	UOMs       = Descriptor{Name: "uoms", Path: "/api/uoms", ConflictTitle: "Duplicate code"}
	Products   = Descriptor{Name: "products", Path: "/api/products", ConflictTitle: "Duplicate SKU"}
	Variants   = Descriptor{Name: "variants", Path: "/api/variants", ConflictTitle: "Duplicate SKU"}
	Orders     = Descriptor{Name: "orders", Path: "/api/orders", ConflictTitle: "Duplicate order number"}
)

// Catalog groups the console's resources.
type Catalog struct {
	Categories *Resource[domain.Category, domain.CategoryInput]
	UOMs       *Resource[domain.UnitOfMeasure, domain.UnitOfMeasureInput]
	Products   *Resource[domain.Product, domain.ProductInput]
	Variants   *Resource[domain.Variant, domain.VariantInput]
	Orders     *Resource[domain.Order, domain.OrderInput]
}

func New(client *httpclient.Client, notifier ports.Notifier, tenant ports.TenantSource, log zerolog.Logger) *Catalog {
	return &Catalog{
		Categories: NewResource[domain.Category, domain.CategoryInput](Categories, func(c domain.Category) string { return c.ID }, client, notifier, tenant, log),
		UOMs:       NewResource[domain.UnitOfMeasure, domain.UnitOfMeasureInput](UOMs, func(u domain.UnitOfMeasure) string { return u.ID }, client, notifier, tenant, log),
		Products:   NewResource[domain.Product, domain.ProductInput](Products, func(p domain.Product) string { return p.ID }, client, notifier, tenant, log),
		Variants:   NewResource[domain.Variant, domain.VariantInput](Variants, func(v domain.Variant) string { return v.ID }, client, notifier, tenant, log),
		Orders:     NewResource[domain.Order, domain.OrderInput](Orders, func(o domain.Order) string { return o.ID }, client, notifier, tenant, log),
	}
}

// Reset drops every resource's cached pages.
func (c *Catalog) Reset() {
	c.Categories.Reset()
	c.UOMs.Reset()
	c.Products.Reset()
	c.Variants.Reset()
	c.Orders.Reset()
}
