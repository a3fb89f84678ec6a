package catalog

import (
	"slices"
	"sync"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// ListCache remembers the pages last read from the backend, keyed by tenant
// and query, and applies local edits to them. Edits made ahead of the backend
// hand back a rollback that restores what the server last said.
type ListCache[T any] struct {
	id func(T) string

	mu    sync.Mutex
	pages map[string]map[string]domain.Page[T]
}

func NewListCache[T any](id func(T) string) *ListCache[T] {
	return &ListCache[T]{id: id, pages: map[string]map[string]domain.Page[T]{}}
}

// Put stores page as the server's answer for (tenant, key).
func (c *ListCache[T]) Put(tenant, key string, page domain.Page[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pages[tenant] == nil {
		c.pages[tenant] = map[string]domain.Page[T]{}
	}
	page.Items = slices.Clone(page.Items)
	c.pages[tenant][key] = page
}

// Get returns the cached page for (tenant, key).
func (c *ListCache[T]) Get(tenant, key string) (domain.Page[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[tenant][key]
	if !ok {
		return domain.Page[T]{}, false
	}
	p.Items = slices.Clone(p.Items)
	return p, true
}

// Upsert replaces item wherever it is cached for tenant. An item not yet
// cached is prepended to first pages and counted in their totals.
func (c *ListCache[T]) Upsert(tenant string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(item)
	for key, p := range c.pages[tenant] {
		i := slices.IndexFunc(p.Items, func(x T) bool { return c.id(x) == id })
		switch {
		case i >= 0:
			p.Items = slices.Clone(p.Items)
			p.Items[i] = item
		case p.Page <= 1:
			p.Items = append([]T{item}, p.Items...)
			p.Total++
		default:
			continue
		}
		c.pages[tenant][key] = p
	}
}

// Remove drops id from every page cached for tenant and returns a func that
// puts the previous pages back.
func (c *ListCache[T]) Remove(tenant, id string) (rollback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := map[string]domain.Page[T]{}
	for key, p := range c.pages[tenant] {
		i := slices.IndexFunc(p.Items, func(x T) bool { return c.id(x) == id })
		if i < 0 {
			continue
		}
		before[key] = p
		p.Items = slices.Delete(slices.Clone(p.Items), i, i+1)
		p.Total = max(0, p.Total-1)
		c.pages[tenant][key] = p
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.pages[tenant] == nil {
			return
		}
		for key, p := range before {
			c.pages[tenant][key] = p
		}
	}
}

// Reset forgets everything.
func (c *ListCache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[string]map[string]domain.Page[T]{}
}
