package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

var sessionKeys = []string{ports.KeyAccessToken, ports.KeyRefreshToken, ports.KeySessionUser}

// SessionManager is the single owner of the console session. Every write
// persists to the credential store before the in-memory copy changes, under
// one lock, so readers never see memory ahead of storage.
type SessionManager struct {
	store ports.CredentialStore
	auth  ports.AuthClient
	roles *domain.RoleCatalog
	tasks ports.TaskRunner
	log   zerolog.Logger

	mu       sync.Mutex
	hydrated bool
	current  *domain.Session
	onLogin  []func()
	onLogout []func()
}

// NewSessionManager returns a SessionManager. tasks runs the best-effort
// server-side logout and may be nil to skip it.
func NewSessionManager(
	store ports.CredentialStore,
	auth ports.AuthClient,
	roles *domain.RoleCatalog,
	tasks ports.TaskRunner,
	log zerolog.Logger,
) *SessionManager {
	if roles == nil {
		roles = domain.NewRoleCatalog(rolesAsStrings(domain.DefaultRoles)...)
	}
	return &SessionManager{
		store: store,
		auth:  auth,
		roles: roles,
		tasks: tasks,
		log:   log.With().Str("component", "session").Logger(),
	}
}

// OnLogin registers fn to run after every successful login.
func (m *SessionManager) OnLogin(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogin = append(m.onLogin, fn)
}

// OnLogout registers fn to run after every logout, forced or not.
func (m *SessionManager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// CurrentSession returns a copy of the session, or nil when signed out. The
// first call hydrates from the credential store.
func (m *SessionManager) CurrentSession() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hydrateLocked()
	return cloneSession(m.current)
}

// IsAuthenticated reports whether the current session has an access token.
func (m *SessionManager) IsAuthenticated() bool {
	return m.CurrentSession().Authenticated()
}

// HasRole reports whether the signed-in user holds role. It is false when
// signed out.
func (m *SessionManager) HasRole(role domain.Role) bool {
	s := m.CurrentSession()
	if !s.Authenticated() {
		return false
	}
	return s.User.HasRole(role)
}

// User returns the signed-in user, or nil.
func (m *SessionManager) User() *domain.User {
	s := m.CurrentSession()
	if s == nil {
		return nil
	}
	return &s.User
}

// AccessToken returns the bearer token, or "" when signed out.
func (m *SessionManager) AccessToken() string {
	if s := m.CurrentSession(); s != nil {
		return s.AccessToken
	}
	return ""
}

// Login authenticates against the backend and stores the new session.
// Rejected credentials yield an error matching domain.ErrAuthFailed that also
// unwraps to the backend's *domain.APIError.
func (m *SessionManager) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthFailed, domain.ErrInvalidCredentials)
	}

	res, err := m.auth.Login(ctx, creds)
	if err != nil {
		if _, ok := domain.AsAPIError(err); ok {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", domain.ErrAuthFailed)
	}

	user := res.User
	if user == nil || user.ID == "" {
		user, err = m.auth.Me(ctx, res.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("%w: load current user: %w", domain.ErrAuthFailed, err)
		}
		if user == nil {
			return nil, fmt.Errorf("%w: current user unavailable", domain.ErrAuthFailed)
		}
	}

	session := &domain.Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         m.sanitizeUser(*user),
	}

	m.mu.Lock()
	if err := m.persistLocked(session); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.current = session
	m.hydrated = true
	hooks := append([]func(){}, m.onLogin...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	m.log.Info().Str("user_id", session.User.ID).Msg("signed in")
	return cloneSession(session), nil
}

// Logout clears the session locally and asks the backend to revoke the token
// in the background. The server call can neither block nor fail the logout.
func (m *SessionManager) Logout() {
	token := m.teardown("logout")
	if token == "" || m.tasks == nil {
		return
	}
	m.tasks.Enqueue("auth.logout", func(ctx context.Context) error {
		return m.auth.Logout(ctx, token)
	})
}

// ForceLogout clears the session without contacting the backend. The request
// pipeline calls it when the backend rejects the session token.
func (m *SessionManager) ForceLogout() {
	m.teardown("forced")
}

func (m *SessionManager) teardown(reason string) (token string) {
	m.mu.Lock()
	m.hydrateLocked()
	if m.current != nil {
		token = m.current.AccessToken
	}
	m.clearLocked()
	hooks := append([]func(){}, m.onLogout...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if token != "" {
		m.log.Info().Str("reason", reason).Msg("signed out")
	}
	return token
}

func (m *SessionManager) hydrateLocked() {
	if m.hydrated {
		return
	}
	m.hydrated = true

	token, ok := m.store.Get(ports.KeyAccessToken)
	if !ok || token == "" {
		return
	}
	rawUser, ok := m.store.Get(ports.KeySessionUser)
	if !ok {
		m.log.Warn().Msg("persisted session has no user, discarding it")
		m.clearLocked()
		return
	}
	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.log.Warn().Err(err).Msg("persisted session user is corrupt, discarding it")
		m.clearLocked()
		return
	}
	refresh, _ := m.store.Get(ports.KeyRefreshToken)

	m.current = &domain.Session{
		AccessToken:  token,
		RefreshToken: refresh,
		User:         m.sanitizeUser(user),
	}
}

// persistLocked writes s to the store. A failed write puts back whatever the
// store held before, so storage never pairs one session's token with another
// session's user.
func (m *SessionManager) persistLocked(s *domain.Session) error {
	rawUser, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	prev := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		if v, ok := m.store.Get(key); ok {
			prev[key] = v
		}
	}

	writes := []struct{ key, value string }{
		{ports.KeySessionUser, string(rawUser)},
		{ports.KeyRefreshToken, s.RefreshToken},
		{ports.KeyAccessToken, s.AccessToken},
	}
	written := make([]string, 0, len(writes))
	for _, w := range writes {
		if err := m.writeKey(w.key, w.value); err != nil {
			m.rollbackLocked(written, prev)
			return fmt.Errorf("persist session: %w", err)
		}
		written = append(written, w.key)
	}
	return nil
}

// writeKey sets key, or clears it when value is empty.
func (m *SessionManager) writeKey(key, value string) error {
	if value == "" {
		return m.store.Clear(key)
	}
	return m.store.Set(key, value)
}

// rollbackLocked restores the written keys to prev. When even that fails the
// session is dropped everywhere rather than left half written.
func (m *SessionManager) rollbackLocked(written []string, prev map[string]string) {
	for _, key := range written {
		if err := m.writeKey(key, prev[key]); err != nil {
			m.log.Error().Err(err).Str("key", key).Msg("failed to restore persisted session, signing out")
			m.clearLocked()
			return
		}
	}
}

func (m *SessionManager) clearLocked() {
	for _, key := range sessionKeys {
		if err := m.store.Clear(key); err != nil {
			m.log.Error().Err(err).Str("key", key).Msg("failed to clear persisted session")
		}
	}
	m.current = nil
}

// sanitizeUser drops roles outside the deployment's catalog.
func (m *SessionManager) sanitizeUser(u domain.User) domain.User {
	known, unknown := m.roles.Filter(u.Roles)
	if len(unknown) > 0 {
		m.log.Warn().Strs("roles", unknown).Str("user_id", u.ID).Msg("ignoring roles outside the configured set")
	}
	u.Roles = known
	return u
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User.Roles = append([]domain.Role(nil), s.User.Roles...)
	return &c
}

func rolesAsStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
