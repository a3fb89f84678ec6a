package ports

import (
	"context"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// LoginResult is the authentication endpoint's success payload.
type LoginResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

// AuthClient talks to the backend's authentication endpoints.
type AuthClient interface {
	Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error)
	// Me returns the user owning token.
	Me(ctx context.Context, token string) (*domain.User, error)
	// Logout revokes token server-side. Callers treat failure as non-fatal.
	Logout(ctx context.Context, token string) error
}
