// Package guard holds the route gates evaluated before a protected view is
// served. Gates are pure functions of a State snapshot and the requested
// target; they never call the backend.
package guard

import (
	"net/url"
	"strings"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// Gate names, used as metric labels.
const (
	GateAuth   = "auth"
	GateTenant = "tenant"
	GateRole   = "role"
)

// FromParam is the query parameter carrying the originally requested target
// to the login view.
const FromParam = "from"

// State is what the gates may look at.
type State struct {
	Authenticated  bool
	ActiveTenantID string
	HasRole        func(domain.Role) bool
}

func (s State) hasRole(r domain.Role) bool {
	return s.Authenticated && s.HasRole != nil && s.HasRole(r)
}

// Decision is a gate's verdict. The zero value lets the request through.
type Decision struct {
	Gate     string
	Redirect string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Redirect == "" }

// Gate evaluates target, a request path with optional query string.
type Gate func(s State, target string) Decision

// RequireAuth redirects signed-out users to loginPath, remembering target in
// the from parameter.
func RequireAuth(loginPath string) Gate {
	return func(s State, target string) Decision {
		if s.Authenticated {
			return Decision{}
		}
		return Decision{
			Gate:     GateAuth,
			Redirect: loginPath + "?" + FromParam + "=" + url.QueryEscape(target),
		}
	}
}

// RequireTenant redirects to selectPath while no tenant is selected. Requests
// for selectPath itself always pass.
func RequireTenant(selectPath string) Gate {
	return func(s State, target string) Decision {
		if s.ActiveTenantID != "" || samePath(pathOf(target), selectPath) {
			return Decision{}
		}
		return Decision{Gate: GateTenant, Redirect: selectPath}
	}
}

// RequireRole redirects users lacking role to landing. Missing roles are an
// authorization failure, so this never sends anyone to login.
func RequireRole(role domain.Role, landing string) Gate {
	return func(s State, target string) Decision {
		if s.hasRole(role) {
			return Decision{}
		}
		return Decision{Gate: GateRole, Redirect: landing}
	}
}

// Chain evaluates gates in order; the first redirect wins.
func Chain(gates ...Gate) Gate {
	return func(s State, target string) Decision {
		for _, g := range gates {
			if d := g(s, target); !d.Allowed() {
				return d
			}
		}
		return Decision{}
	}
}

// SafeReturnPath returns from when it is a local absolute path, fallback
// otherwise. It keeps the login redirect from being turned into an open
// redirect.
func SafeReturnPath(from, fallback string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return from
}

func pathOf(target string) string {
	p, _, _ := strings.Cut(target, "?")
	p, _, _ = strings.Cut(p, "#")
	return p
}

func samePath(a, b string) bool {
	return strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(b, "/"))
}
