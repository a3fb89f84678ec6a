// Package catalog exposes the tenant-scoped catalog and order endpoints as
// typed resources over the request pipeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
)

// Descriptor names a resource and how its uniqueness conflicts are reported.
type Descriptor struct {
	Name          string
	Path          string
	ConflictTitle string
}

// Resource is the list/create/update/delete contract of one backend resource.
// Successful reads and writes keep a ListCache current so the console can
// still show the last known page when the backend is unreachable.
type Resource[T, In any] struct {
	desc     Descriptor
	client   *httpclient.Client
	notifier ports.Notifier
	tenant   ports.TenantSource
	cache    *ListCache[T]
	log      zerolog.Logger
}

func NewResource[T, In any](
	desc Descriptor,
	id func(T) string,
	client *httpclient.Client,
	notifier ports.Notifier,
	tenant ports.TenantSource,
	log zerolog.Logger,
) *Resource[T, In] {
	return &Resource[T, In]{
		desc:     desc,
		client:   client,
		notifier: notifier,
		tenant:   tenant,
		cache:    NewListCache(id),
		log:      log.With().Str("component", "catalog").Str("resource", desc.Name).Logger(),
	}
}

// Name returns the resource's name, e.g. "products".
func (r *Resource[T, In]) Name() string { return r.desc.Name }

// List fetches one page.
func (r *Resource[T, In]) List(ctx context.Context, q Query) (*domain.Page[T], error) {
	q = q.Normalized()
	values := q.Values()

	page, err := httpclient.Call[domain.Page[T]](ctx, r.client, http.MethodGet, r.desc.Path, nil, httpclient.WithQuery(values))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.desc.Name, err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.PageSize == 0 {
		page.PageSize = q.PageSize
	}

	r.cache.Put(r.tenantID(), values.Encode(), page)
	return &page, nil
}

// Cached returns the page List last stored for q under the active tenant.
func (r *Resource[T, In]) Cached(q Query) (*domain.Page[T], bool) {
	page, ok := r.cache.Get(r.tenantID(), q.Values().Encode())
	if !ok {
		return nil, false
	}
	return &page, true
}

// All fetches every item, for pickers.
func (r *Resource[T, In]) All(ctx context.Context) ([]T, error) {
	items, err := httpclient.Call[[]T](ctx, r.client, http.MethodGet, r.desc.Path+"/all", nil)
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", r.desc.Name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts in. A 409 is reported once under the resource's conflict
// title and returned as an error matching domain.ErrConflict.
func (r *Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	item, err := httpclient.Call[T](ctx, r.client, http.MethodPost, r.desc.Path, in, httpclient.Quiet(http.StatusConflict))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", r.desc.Name, r.conflict(err))
	}
	r.cache.Upsert(r.tenantID(), item)
	return item, nil
}

// Update replaces the item with id. Conflicts behave as in Create.
func (r *Resource[T, In]) Update(ctx context.Context, id string, in In) (T, error) {
	item, err := httpclient.Call[T](ctx, r.client, http.MethodPut, r.itemPath(id), in, httpclient.Quiet(http.StatusConflict))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("update %s %s: %w", r.desc.Name, id, r.conflict(err))
	}
	r.cache.Upsert(r.tenantID(), item)
	return item, nil
}

// Delete removes the item with id. It leaves the cached pages first and puts
// them back if the backend refuses.
func (r *Resource[T, In]) Delete(ctx context.Context, id string) error {
	rollback := r.cache.Remove(r.tenantID(), id)
	if _, err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil); err != nil {
		rollback()
		return fmt.Errorf("delete %s %s: %w", r.desc.Name, id, err)
	}
	return nil
}

// Reset drops cached pages. It runs on logout and tenant switches.
func (r *Resource[T, In]) Reset() { r.cache.Reset() }

func (r *Resource[T, In]) conflict(err error) error {
	if !errors.Is(err, domain.ErrConflict) {
		return err
	}
	apiErr, _ := domain.AsAPIError(err)
	r.log.Info().Str("message", apiErr.Message).Msg("uniqueness conflict")
	if r.notifier != nil {
		r.notifier.Publish(domain.Notification{
			Severity: domain.SeverityWarning,
			Title:    r.desc.ConflictTitle,
			Message:  apiErr.Message,
		})
	}
	return err
}

func (r *Resource[T, In]) itemPath(id string) string {
	return r.desc.Path + "/" + url.PathEscape(id)
}

func (r *Resource[T, In]) tenantID() string {
	if r.tenant == nil {
		return ""
	}
	return r.tenant.ActiveTenantID()
}
