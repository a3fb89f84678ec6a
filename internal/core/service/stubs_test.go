package service

import (
	"context"
	"errors"
	"sync"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubAuthClient struct {
	loginFn  func(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error)
	meFn     func(ctx context.Context, token string) (*domain.User, error)
	logoutFn func(ctx context.Context, token string) error

	mu         sync.Mutex
	loginCalls int
	logouts    []string
}

func (s *stubAuthClient) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()
	return s.loginFn(ctx, creds)
}

func (s *stubAuthClient) Me(ctx context.Context, token string) (*domain.User, error) {
	if s.meFn == nil {
		return nil, errors.New("me not stubbed")
	}
	return s.meFn(ctx, token)
}

func (s *stubAuthClient) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	s.logouts = append(s.logouts, token)
	s.mu.Unlock()
	if s.logoutFn != nil {
		return s.logoutFn(ctx, token)
	}
	return nil
}

type stubTenantClient struct {
	mu        sync.Mutex
	list      []domain.Tenant
	listErr   error
	listCalls int
	activeErr error
	activated []string
}

func (s *stubTenantClient) List(context.Context) ([]domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Tenant(nil), s.list...), nil
}

func (s *stubTenantClient) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activated = append(s.activated, id)
	return s.activeErr
}

func (s *stubTenantClient) setList(tenants ...domain.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = tenants
}

type captureNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (n *captureNotifier) Publish(x domain.Notification) domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, x)
	return x
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

// failingStore wraps a store and fails every write once armed. With failSet
// only writes of that key fail.
type failingStore struct {
	ports.CredentialStore
	fail    bool
	failSet string
}

func (s *failingStore) Set(key, value string) error {
	if s.fail || (s.failSet != "" && key == s.failSet) {
		return errors.New("disk full")
	}
	return s.CredentialStore.Set(key, value)
}

func (s *failingStore) Clear(key string) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.CredentialStore.Clear(key)
}
