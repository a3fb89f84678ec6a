// Package backend adapts the request pipeline to the backend's auth and tenant
// endpoints.
package backend

import (
	"context"
	"net/http"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
)

const (
	loginPath  = "/api/auth/login"
	mePath     = "/api/auth/me"
	logoutPath = "/api/auth/logout"
)

// AuthClient implements ports.AuthClient.
type AuthClient struct {
	client *httpclient.Client
}

func NewAuthClient(client *httpclient.Client) *AuthClient {
	return &AuthClient{client: client}
}

func (a *AuthClient) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
	return httpclient.Call[*ports.LoginResult](ctx, a.client, http.MethodPost, loginPath, creds, httpclient.Anonymous())
}

func (a *AuthClient) Me(ctx context.Context, token string) (*domain.User, error) {
	return httpclient.Call[*domain.User](ctx, a.client, http.MethodGet, mePath, nil, httpclient.WithBearer(token))
}

// Logout is silent: backends without a logout endpoint must not produce a toast.
func (a *AuthClient) Logout(ctx context.Context, token string) error {
	_, err := a.client.Do(ctx, http.MethodPost, logoutPath, nil, httpclient.WithBearer(token), httpclient.Quiet())
	return err
}
