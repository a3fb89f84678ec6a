package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

const tenantLoadFailed = "Failed to load tenants"

// TenantResolver owns the active tenant selection and the cached list of
// tenants the session may access. Whenever the list is known, a non-empty
// active tenant id is a member of it.
type TenantResolver struct {
	store    ports.CredentialStore
	client   ports.TenantClient
	notifier ports.Notifier
	tasks    ports.TaskRunner
	log      zerolog.Logger

	mu       sync.Mutex
	activeID string
	tenants  []domain.Tenant
	known    bool
	// gen changes whenever the cache is invalidated so that a fetch started
	// before a logout cannot repopulate it.
	gen uint64
}

// NewTenantResolver hydrates the active tenant from store synchronously.
func NewTenantResolver(
	store ports.CredentialStore,
	client ports.TenantClient,
	notifier ports.Notifier,
	tasks ports.TaskRunner,
	log zerolog.Logger,
) *TenantResolver {
	activeID, _ := store.Get(ports.KeyActiveTenant)
	return &TenantResolver{
		store:    store,
		client:   client,
		notifier: notifier,
		tasks:    tasks,
		log:      log.With().Str("component", "tenant").Logger(),
		activeID: activeID,
	}
}

// ActiveTenantID returns the selected tenant id, "" when none.
func (r *TenantResolver) ActiveTenantID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// ActiveTenant returns the selected tenant when it is selected and the list is
// known.
func (r *TenantResolver) ActiveTenant() *domain.Tenant {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeID == "" {
		return nil
	}
	i := slices.IndexFunc(r.tenants, func(t domain.Tenant) bool { return t.ID == r.activeID })
	if i < 0 {
		return nil
	}
	t := r.tenants[i]
	return &t
}

// Tenants returns the cached list. known is false until a fetch has succeeded,
// which is different from a known empty list.
func (r *TenantResolver) Tenants() (list []domain.Tenant, known bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known {
		return nil, false
	}
	return slices.Clone(r.tenants), true
}

// AccessibleTenants returns the cached list, fetching it on first use in a
// session.
func (r *TenantResolver) AccessibleTenants(ctx context.Context) ([]domain.Tenant, error) {
	if list, known := r.Tenants(); known {
		return list, nil
	}
	return r.Refresh(ctx)
}

// Refresh refetches the tenant list and reconciles the active selection
// against it. A failure is published as an error notification and leaves the
// previous cache untouched.
func (r *TenantResolver) Refresh(ctx context.Context) ([]domain.Tenant, error) {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	list, err := r.client.List(ctx)
	if err != nil {
		if r.reportFailure(err) {
			err = domain.Notified(err)
		}
		return nil, fmt.Errorf("load tenants: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.log.Debug().Msg("tenant list arrived after invalidation, not caching it")
		return slices.Clone(list), nil
	}

	r.tenants = slices.Clone(list)
	r.known = true

	if r.activeID != "" && !domain.ContainsTenant(r.tenants, r.activeID) {
		stale := r.activeID
		if err := r.persistLocked(""); err != nil {
			r.log.Error().Err(err).Msg("failed to clear stale tenant selection")
			// Never keep pointing at an inaccessible tenant, even if storage failed.
			r.activeID = ""
		}
		r.log.Info().Str("tenant_id", stale).Msg("selected tenant is no longer accessible, cleared")
	}
	return slices.Clone(r.tenants), nil
}

// SetActiveTenant selects id, or clears the selection when id is "". The
// choice is persisted before this returns; telling the backend about it is a
// background best-effort call whose failure is ignored. When the tenant list
// is known and does not include id, domain.ErrTenantNotAccessible is returned
// and the selection is unchanged.
func (r *TenantResolver) SetActiveTenant(id string) error {
	r.mu.Lock()
	if id != "" && r.known && !domain.ContainsTenant(r.tenants, id) {
		r.mu.Unlock()
		return fmt.Errorf("select tenant %s: %w", id, domain.ErrTenantNotAccessible)
	}
	if err := r.persistLocked(id); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	if id != "" && r.tasks != nil {
		r.tasks.Enqueue("tenant.activate", func(ctx context.Context) error {
			return r.client.SetActive(ctx, id)
		})
	}
	return nil
}

// Invalidate drops the cached list so the next AccessibleTenants call fetches
// it again. The selection is kept and reconciled on that fetch.
func (r *TenantResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.tenants = nil
	r.known = false
}

// Reset clears the selection and the cache. It runs on logout.
func (r *TenantResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.tenants = nil
	r.known = false
	if err := r.persistLocked(""); err != nil {
		r.log.Error().Err(err).Msg("failed to clear tenant selection")
		r.activeID = ""
	}
}

func (r *TenantResolver) persistLocked(id string) error {
	var err error
	if id == "" {
		err = r.store.Clear(ports.KeyActiveTenant)
	} else {
		err = r.store.Set(ports.KeyActiveTenant, id)
	}
	if err != nil {
		return fmt.Errorf("persist tenant selection: %w", err)
	}
	r.activeID = id
	return nil
}

func (r *TenantResolver) reportFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := tenantLoadFailed
	if apiErr, ok := domain.AsAPIError(err); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}
	r.log.Warn().Err(err).Msg("tenant list fetch failed")
	if r.notifier == nil {
		return false
	}
	r.notifier.Publish(domain.Notification{
		Severity: domain.SeverityError,
		Title:    "Tenants unavailable",
		Message:  msg,
	})
	return true
}
