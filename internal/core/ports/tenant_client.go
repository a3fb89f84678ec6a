package ports

import (
	"context"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// TenantClient talks to the backend's tenant endpoints.
type TenantClient interface {
	// List returns the tenants the current bearer token may access.
	List(ctx context.Context) ([]domain.Tenant, error)
	// SetActive records the operator's tenant preference server-side.
	SetActive(ctx context.Context, tenantID string) error
}
