package devbackend

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/99minutos/catalog-console/internal/catalog"
	"github.com/99minutos/catalog-console/internal/core/domain"
)

var (
	ErrDuplicate      = errors.New("duplicate")
	ErrRecordNotFound = errors.New("record not found")
)

// Schema tells a Collection how to read its records.
type Schema[T any] struct {
	ID func(T) string
	// Key is the value that must be unique within a tenant, compared
	// case-insensitively.
	Key     func(T) string
	KeyName string
	// Text is what a search matches against.
	Text  func(T) string
	Sorts map[string]func(a, b T) int
}

// Collection is a tenant-partitioned record set kept in creation order.
type Collection[T any] struct {
	schema Schema[T]

	mu      sync.RWMutex
	records map[string][]T
}

func NewCollection[T any](schema Schema[T]) *Collection[T] {
	return &Collection[T]{schema: schema, records: make(map[string][]T)}
}

// List filters, sorts and pages the tenant's records. Without a sort the
// newest records come first.
func (c *Collection[T]) List(tenant string, q catalog.Query) domain.Page[T] {
	q = q.Normalized()

	c.mu.RLock()
	all := slices.Clone(c.records[tenant])
	c.mu.RUnlock()

	needle := strings.ToLower(q.Search)
	matched := make([]T, 0, len(all))
	for _, r := range all {
		if needle == "" || strings.Contains(strings.ToLower(catalog.NormalizeSearch(c.schema.Text(r))), needle) {
			matched = append(matched, r)
		}
	}

	if cmp, ok := c.schema.Sorts[q.SortBy]; ok {
		slices.SortStableFunc(matched, cmp)
		if q.SortDir == "desc" {
			slices.Reverse(matched)
		}
	} else {
		slices.Reverse(matched)
	}

	start := min((q.Page-1)*q.PageSize, len(matched))
	end := min(start+q.PageSize, len(matched))
	return domain.Page[T]{
		Items:    matched[start:end],
		Total:    int64(len(matched)),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// All returns every record of tenant, oldest first.
func (c *Collection[T]) All(tenant string) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := slices.Clone(c.records[tenant])
	if out == nil {
		out = []T{}
	}
	return out
}

// Get returns the record with id.
func (c *Collection[T]) Get(tenant, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records[tenant] {
		if c.schema.ID(r) == id {
			return r, nil
		}
	}
	var zero T
	return zero, ErrRecordNotFound
}

// Create appends rec unless its key is already taken.
func (c *Collection[T]) Create(tenant string, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taken(tenant, c.schema.Key(rec), "") {
		var zero T
		return zero, ErrDuplicate
	}
	c.records[tenant] = append(c.records[tenant], rec)
	return rec, nil
}

// Update applies fn to the record with id. The change is discarded when it
// would collide with another record's key.
func (c *Collection[T]) Update(tenant, id string, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	recs := c.records[tenant]
	i := slices.IndexFunc(recs, func(r T) bool { return c.schema.ID(r) == id })
	if i < 0 {
		return zero, ErrRecordNotFound
	}
	next, err := fn(recs[i])
	if err != nil {
		return zero, err
	}
	if c.taken(tenant, c.schema.Key(next), id) {
		return zero, ErrDuplicate
	}
	recs[i] = next
	return next, nil
}

// Delete removes the record with id.
func (c *Collection[T]) Delete(tenant, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := c.records[tenant]
	i := slices.IndexFunc(recs, func(r T) bool { return c.schema.ID(r) == id })
	if i < 0 {
		return ErrRecordNotFound
	}
	c.records[tenant] = slices.Delete(recs, i, i+1)
	return nil
}

func (c *Collection[T]) taken(tenant, key, exceptID string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, r := range c.records[tenant] {
		if c.schema.ID(r) != exceptID && strings.EqualFold(strings.TrimSpace(c.schema.Key(r)), key) {
			return true
		}
	}
	return false
}
