package domain

import (
	"errors"
	"slices"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnknownRole = errors.New("unknown role")

// Role names a permission bundle granted to a user. The valid set is decided by
// the deployment, see RoleCatalog.
type Role string

// DefaultRoles is the role set used when the deployment does not configure one.
var DefaultRoles = []Role{"Owner", "Admin", "Manager", "Clerk", "Viewer"}

// RoleCatalog is the closed set of roles a deployment recognises.
type RoleCatalog struct {
	roles []Role
	index map[string]Role
}

// NewRoleCatalog builds a catalog from role names. Blank and repeated names are
// ignored; matching is case-insensitive and returns the canonical spelling.
func NewRoleCatalog(names ...string) *RoleCatalog {
	rc := &RoleCatalog{index: make(map[string]Role, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, dup := rc.index[key]; dup {
			continue
		}
		rc.index[key] = Role(n)
		rc.roles = append(rc.roles, Role(n))
	}
	return rc
}

// Parse resolves name to its canonical Role or returns ErrUnknownRole.
func (rc *RoleCatalog) Parse(name string) (Role, error) {
	r, ok := rc.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Roles returns the catalog in declaration order.
func (rc *RoleCatalog) Roles() []Role {
	return slices.Clone(rc.roles)
}

// Filter canonicalises roles and splits them into known and unknown.
func (rc *RoleCatalog) Filter(roles []Role) (known []Role, unknown []string) {
	for _, r := range roles {
		canon, err := rc.Parse(string(r))
		if err != nil {
			unknown = append(unknown, string(r))
			continue
		}
		if !slices.Contains(known, canon) {
			known = append(known, canon)
		}
	}
	return known, unknown
}

// User models the operator signed into the console.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}
