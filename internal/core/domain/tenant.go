package domain

import "errors"

var ErrTenantNotAccessible = errors.New("tenant not accessible")

// Tenant is an organizational scope. The backend filters all catalog and order
// data by the active tenant.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// ContainsTenant reports whether id is one of tenants.
func ContainsTenant(tenants []Tenant, id string) bool {
	for _, t := range tenants {
		if t.ID == id {
			return true
		}
	}
	return false
}
