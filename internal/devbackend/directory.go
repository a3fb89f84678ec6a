// Package devbackend is an in-memory implementation of the catalog backend
// the console talks to. It exists for local development and end-to-end tests.
package devbackend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
)

// SeedUser is a user created at startup.
type SeedUser struct {
	ID       string
	Name     string
	Email    string
	Password string
	Roles    []domain.Role
	Tenants  []string
}

// Seed is the starting content of the directory.
type Seed struct {
	Tenants []domain.Tenant
	Users   []SeedUser
}

// DefaultSeed is the development data set.
func DefaultSeed() Seed {
	return Seed{
		Tenants: []domain.Tenant{
			{ID: "t-acme", Name: "Acme Retail", Code: "ACME"},
			{ID: "t-globex", Name: "Globex Wholesale", Code: "GLOBEX"},
		},
		Users: []SeedUser{
			{ID: "u-owner", Name: "Olivia Owner", Email: "owner@example.com", Password: "owner123", Roles: []domain.Role{"Owner", "Admin"}, Tenants: []string{"t-acme", "t-globex"}},
			{ID: "u-clerk", Name: "Carl Clerk", Email: "clerk@example.com", Password: "clerk123", Roles: []domain.Role{"Clerk"}, Tenants: []string{"t-acme"}},
			{ID: "u-viewer", Name: "Vera Viewer", Email: "viewer@example.com", Password: "viewer123", Roles: []domain.Role{"Viewer"}, Tenants: []string{"t-globex"}},
		},
	}
}

type account struct {
	user         domain.User
	passwordHash []byte
	tenants      []string
	activeTenant string
}

// Directory holds users, their password hashes and tenant memberships.
type Directory struct {
	mu       sync.RWMutex
	tenants  []domain.Tenant
	accounts map[string]*account // by lower-case email
	byID     map[string]*account
}

// NewDirectory hashes the seed passwords with bcrypt.
func NewDirectory(seed Seed, cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{
		tenants:  slices.Clone(seed.Tenants),
		accounts: make(map[string]*account, len(seed.Users)),
		byID:     make(map[string]*account, len(seed.Users)),
	}
	for _, u := range seed.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		a := &account{
			user:         domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Roles: slices.Clone(u.Roles)},
			passwordHash: hash,
			tenants:      slices.Clone(u.Tenants),
		}
		d.accounts[strings.ToLower(u.Email)] = a
		d.byID[u.ID] = a
	}
	return d, nil
}

// Authenticate checks email and password.
func (d *Directory) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	d.mu.RLock()
	a, ok := d.accounts[strings.ToLower(strings.TrimSpace(email))]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	u := a.user
	u.Roles = slices.Clone(u.Roles)
	return &u, nil
}

// User returns the user with id.
func (d *Directory) User(id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := a.user
	u.Roles = slices.Clone(u.Roles)
	return &u, nil
}

// TenantsOf lists the tenants userID may access.
func (d *Directory) TenantsOf(userID string) []domain.Tenant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []domain.Tenant{}
	a, ok := d.byID[userID]
	if !ok {
		return out
	}
	for _, t := range d.tenants {
		if slices.Contains(a.tenants, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// CanAccess reports whether userID is a member of tenantID.
func (d *Directory) CanAccess(userID, tenantID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[userID]
	return ok && slices.Contains(a.tenants, tenantID)
}

// SetActiveTenant records userID's preferred tenant.
func (d *Directory) SetActiveTenant(userID, tenantID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !slices.Contains(a.tenants, tenantID) {
		return ErrTenantNotFound
	}
	a.activeTenant = tenantID
	return nil
}

// ActiveTenant returns userID's preferred tenant, "" when none.
func (d *Directory) ActiveTenant(userID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if a, ok := d.byID[userID]; ok {
		return a.activeTenant
	}
	return ""
}
