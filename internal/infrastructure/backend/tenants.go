package backend

import (
	"context"
	"net/http"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
)

const (
	tenantsPath      = "/api/tenants"
	activeTenantPath = "/api/tenants/active"
)

// TenantClient implements ports.TenantClient. Both calls are quiet: the tenant
// resolver reports list failures itself and activation failures are never shown.
type TenantClient struct {
	client *httpclient.Client
}

func NewTenantClient(client *httpclient.Client) *TenantClient {
	return &TenantClient{client: client}
}

func (t *TenantClient) List(ctx context.Context) ([]domain.Tenant, error) {
	tenants, err := httpclient.Call[[]domain.Tenant](ctx, t.client, http.MethodGet, tenantsPath, nil, httpclient.Quiet())
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	return tenants, nil
}

type activateRequest struct {
	TenantID string `json:"tenantId"`
}

func (t *TenantClient) SetActive(ctx context.Context, tenantID string) error {
	_, err := t.client.Do(ctx, http.MethodPost, activeTenantPath, activateRequest{TenantID: tenantID}, httpclient.Quiet())
	return err
}
