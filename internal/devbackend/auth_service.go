package devbackend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

var ErrTokenInvalid = errors.New("invalid token")

// Claims carried by access tokens.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 access tokens for directory users.
type AuthService struct {
	dir       *Directory
	jwtSecret []byte
	tokenTTL  time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewAuthService(dir *Directory, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		dir:       dir,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		revoked:   make(map[string]time.Time),
	}
}

// Login checks the credentials and returns an access token, a refresh token
// and the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (access, refresh string, user *domain.User, err error) {
	if email == "" || password == "" {
		return "", "", nil, domain.ErrInvalidCredentials
	}
	user, err = s.dir.Authenticate(ctx, email, password)
	if err != nil {
		return "", "", nil, err
	}
	access, err = s.generateToken(user)
	if err != nil {
		return "", "", nil, err
	}
	return access, uuid.NewString(), user, nil
}

// Verify parses token and rejects revoked or expired ones.
func (s *AuthService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrTokenInvalid
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke invalidates the token with claims until it would have expired.
func (s *AuthService) Revoke(claims *Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
		}
	}
	exp := now.Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
