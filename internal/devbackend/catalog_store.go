package devbackend

import (
	"cmp"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

var ErrInvalidReference = errors.New("invalid reference")

// CatalogStore holds every tenant's catalog and orders.
type CatalogStore struct {
	Categories *Collection[domain.Category]
	UOMs       *Collection[domain.UnitOfMeasure]
	Products   *Collection[domain.Product]
	Variants   *Collection[domain.Variant]
	Orders     *Collection[domain.Order]

	now func() time.Time
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		Categories: NewCollection(Schema[domain.Category]{
			ID:      func(c domain.Category) string { return c.ID },
			Key:     func(c domain.Category) string { return c.Code },
			KeyName: "code",
			Text:    func(c domain.Category) string { return c.Name + " " + c.Code },
			Sorts: map[string]func(a, b domain.Category) int{
				"name":      func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) },
				"code":      func(a, b domain.Category) int { return strings.Compare(a.Code, b.Code) },
				"createdAt": func(a, b domain.Category) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		}),
		UOMs: NewCollection(Schema[domain.UnitOfMeasure]{
			ID:      func(u domain.UnitOfMeasure) string { return u.ID },
			Key:     func(u domain.UnitOfMeasure) string { return u.Code },
			KeyName: "code",
			Text:    func(u domain.UnitOfMeasure) string { return u.Name + " " + u.Code },
			Sorts: map[string]func(a, b domain.UnitOfMeasure) int{
				"name":      func(a, b domain.UnitOfMeasure) int { return strings.Compare(a.Name, b.Name) },
				"code":      func(a, b domain.UnitOfMeasure) int { return strings.Compare(a.Code, b.Code) },
				"createdAt": func(a, b domain.UnitOfMeasure) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		}),
		Products: NewCollection(Schema[domain.Product]{
			ID:      func(p domain.Product) string { return p.ID },
			Key:     func(p domain.Product) string { return p.Code },
			KeyName: "code",
			Text:    func(p domain.Product) string { return p.Name + " " + p.Code + " " + p.CategoryName },
			Sorts: map[string]func(a, b domain.Product) int{
				"name":      func(a, b domain.Product) int { return strings.Compare(a.Name, b.Name) },
				"code":      func(a, b domain.Product) int { return strings.Compare(a.Code, b.Code) },
				"createdAt": func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		}),
		Variants: NewCollection(Schema[domain.Variant]{
			ID:      func(v domain.Variant) string { return v.ID },
			Key:     func(v domain.Variant) string { return v.SKU },
			KeyName: "sku",
			Text:    func(v domain.Variant) string { return v.SKU + " " + v.ProductName + " " + v.UomName },
			Sorts: map[string]func(a, b domain.Variant) int{
				"sku":       func(a, b domain.Variant) int { return strings.Compare(a.SKU, b.SKU) },
				"price":     func(a, b domain.Variant) int { return cmp.Compare(a.Price, b.Price) },
				"createdAt": func(a, b domain.Variant) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		}),
		Orders: NewCollection(Schema[domain.Order]{
			ID:      func(o domain.Order) string { return o.ID },
			Key:     func(o domain.Order) string { return o.Number },
			KeyName: "order number",
			Text:    func(o domain.Order) string { return o.Number + " " + o.CustomerName + " " + string(o.Status) },
			Sorts: map[string]func(a, b domain.Order) int{
				"number":    func(a, b domain.Order) int { return strings.Compare(a.Number, b.Number) },
				"total":     func(a, b domain.Order) int { return cmp.Compare(a.Total, b.Total) },
				"status":    func(a, b domain.Order) int { return strings.Compare(string(a.Status), string(b.Status)) },
				"createdAt": func(a, b domain.Order) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		}),
		now: time.Now,
	}
}

// BuildCategory turns in into a category. prev is nil on create.
func (s *CatalogStore) BuildCategory(_ string, in domain.CategoryInput, prev *domain.Category) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if prev != nil {
		c = *prev
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Code = strings.TrimSpace(in.Code)
	return c, nil
}

func (s *CatalogStore) BuildUOM(_ string, in domain.UnitOfMeasureInput, prev *domain.UnitOfMeasure) (domain.UnitOfMeasure, error) {
	u := domain.UnitOfMeasure{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if prev != nil {
		u = *prev
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Code = strings.TrimSpace(in.Code)
	u.Precision = in.Precision
	return u, nil
}

// BuildProduct resolves the optional category within tenant.
func (s *CatalogStore) BuildProduct(tenant string, in domain.ProductInput, prev *domain.Product) (domain.Product, error) {
	p := domain.Product{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if prev != nil {
		p = *prev
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Code = strings.TrimSpace(in.Code)
	p.CategoryID, p.CategoryName = "", ""
	if in.CategoryID != "" {
		cat, err := s.Categories.Get(tenant, in.CategoryID)
		if err != nil {
			return domain.Product{}, ErrInvalidReference
		}
		p.CategoryID, p.CategoryName = cat.ID, cat.Name
	}
	return p, nil
}

// BuildVariant resolves the product and unit of measure within tenant.
func (s *CatalogStore) BuildVariant(tenant string, in domain.VariantInput, prev *domain.Variant) (domain.Variant, error) {
	product, err := s.Products.Get(tenant, in.ProductID)
	if err != nil {
		return domain.Variant{}, ErrInvalidReference
	}
	uom, err := s.UOMs.Get(tenant, in.UomID)
	if err != nil {
		return domain.Variant{}, ErrInvalidReference
	}

	v := domain.Variant{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if prev != nil {
		v = *prev
	}
	v.ProductID, v.ProductName = product.ID, product.Name
	v.UomID, v.UomName = uom.ID, uom.Name
	v.SKU = strings.TrimSpace(in.SKU)
	v.Price = in.Price
	return v, nil
}

// BuildOrder defaults the status to pending.
func (s *CatalogStore) BuildOrder(_ string, in domain.OrderInput, prev *domain.Order) (domain.Order, error) {
	o := domain.Order{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if prev != nil {
		o = *prev
	}
	o.Number = strings.TrimSpace(in.Number)
	o.CustomerName = strings.TrimSpace(in.CustomerName)
	o.Status = in.Status
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	o.Total = in.Total
	return o, nil
}
