package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
	"github.com/99minutos/catalog-console/internal/infrastructure/backend"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
	"github.com/99minutos/catalog-console/internal/infrastructure/queue"
	"github.com/99minutos/catalog-console/internal/infrastructure/store"
)

var alice = domain.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Roles: []domain.Role{"Admin", "Clerk"}}

func okLogin(user *domain.User) func(context.Context, domain.Credentials) (*ports.LoginResult, error) {
	return func(_ context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
		return &ports.LoginResult{AccessToken: "access-1", RefreshToken: "refresh-1", User: user}, nil
	}
}

func newSessionSvc(st ports.CredentialStore, auth ports.AuthClient) *SessionManager {
	return NewSessionManager(st, auth, domain.NewRoleCatalog("Owner", "Admin", "Manager", "Clerk", "Viewer"), queue.Inline{}, zerolog.Nop())
}

func TestSessionManager_LoginRoundTripAcrossReload(t *testing.T) {
	st := store.NewMemoryStore(nil)
	u := alice
	svc := newSessionSvc(st, &stubAuthClient{loginFn: okLogin(&u)})

	got, err := svc.Login(context.Background(), domain.Credentials{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if current := svc.CurrentSession(); !reflect.DeepEqual(current, got) {
		t.Fatalf("CurrentSession() = %+v, want %+v", current, got)
	}

	// A fresh manager over the same store simulates a reload.
	reloaded := newSessionSvc(st, &stubAuthClient{})
	if current := reloaded.CurrentSession(); !reflect.DeepEqual(current, got) {
		t.Fatalf("after reload CurrentSession() = %+v, want %+v", current, got)
	}
	if !reloaded.IsAuthenticated() {
		t.Fatalf("expected reloaded session to be authenticated")
	}
	if reloaded.AccessToken() != "access-1" {
		t.Fatalf("unexpected token %q", reloaded.AccessToken())
	}
}

func TestSessionManager_LoginFetchesUserWhenMissing(t *testing.T) {
	auth := &stubAuthClient{
		loginFn: okLogin(nil),
		meFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != "access-1" {
				t.Fatalf("Me called with %q", token)
			}
			u := alice
			return &u, nil
		},
	}
	svc := newSessionSvc(store.NewMemoryStore(nil), auth)

	s, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if s.User.ID != "u-1" {
		t.Fatalf("expected user from /me, got %+v", s.User)
	}
}

func TestSessionManager_LoginRejected(t *testing.T) {
	rejection := &domain.APIError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	auth := &stubAuthClient{loginFn: func(context.Context, domain.Credentials) (*ports.LoginResult, error) {
		return nil, rejection
	}}
	svc := newSessionSvc(store.NewMemoryStore(nil), auth)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "bad"})
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if apiErr, ok := domain.AsAPIError(err); !ok || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected the normalized APIError to be kept, got %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatalf("rejected login must not authenticate")
	}
}

func TestSessionManager_LoginRequiresCredentials(t *testing.T) {
	auth := &stubAuthClient{loginFn: okLogin(&alice)}
	svc := newSessionSvc(store.NewMemoryStore(nil), auth)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if auth.loginCalls != 0 {
		t.Fatalf("backend must not be called without credentials")
	}
}

func TestSessionManager_LoginWithoutToken(t *testing.T) {
	auth := &stubAuthClient{loginFn: func(context.Context, domain.Credentials) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: &alice}, nil
	}}
	svc := newSessionSvc(store.NewMemoryStore(nil), auth)

	if _, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"}); !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestSessionManager_LoginPersistFailure(t *testing.T) {
	st := &failingStore{CredentialStore: store.NewMemoryStore(nil), fail: true}
	svc := newSessionSvc(st, &stubAuthClient{loginFn: okLogin(&alice)})

	if _, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"}); err == nil {
		t.Fatalf("expected persist error")
	}
	if svc.IsAuthenticated() {
		t.Fatalf("memory must not run ahead of storage")
	}
}

func TestSessionManager_LoginPartialPersistKeepsPreviousSession(t *testing.T) {
	bob := domain.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", Roles: []domain.Role{"Viewer"}}
	st := &failingStore{CredentialStore: store.NewMemoryStore(nil)}
	auth := &stubAuthClient{loginFn: func(context.Context, domain.Credentials) (*ports.LoginResult, error) {
		return &ports.LoginResult{AccessToken: "bob-token", User: &bob}, nil
	}}
	svc := newSessionSvc(st, auth)
	if _, err := svc.Login(context.Background(), domain.Credentials{Email: "bob@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	for _, failing := range []string{ports.KeySessionUser, ports.KeyRefreshToken, ports.KeyAccessToken} {
		t.Run(failing, func(t *testing.T) {
			st.failSet = failing
			defer func() { st.failSet = "" }()

			auth.loginFn = okLogin(&alice)
			if _, err := svc.Login(context.Background(), domain.Credentials{Email: "alice@example.com", Password: "pw"}); err == nil {
				t.Fatalf("expected persist error")
			}
			if svc.AccessToken() != "bob-token" || svc.User().ID != "u-2" {
				t.Fatalf("memory changed: token=%q user=%+v", svc.AccessToken(), svc.User())
			}
			if tok, _ := st.Get(ports.KeyAccessToken); tok != "bob-token" {
				t.Fatalf("stored token = %q", tok)
			}
			if _, ok := st.Get(ports.KeyRefreshToken); ok {
				t.Fatalf("refresh token must stay absent")
			}

			reloaded := newSessionSvc(st, auth).CurrentSession()
			if reloaded == nil || reloaded.AccessToken != "bob-token" || reloaded.User.ID != "u-2" {
				t.Fatalf("reload paired storage wrongly: %+v", reloaded)
			}
		})
	}
}

func TestSessionManager_LogoutIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore(nil)
	auth := &stubAuthClient{loginFn: okLogin(&alice)}
	svc := newSessionSvc(st, auth)
	if _, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	svc.Logout()
	if svc.CurrentSession() != nil {
		t.Fatalf("expected nil session after first logout")
	}
	svc.Logout()
	if svc.CurrentSession() != nil {
		t.Fatalf("expected nil session after second logout")
	}

	if len(auth.logouts) != 1 || auth.logouts[0] != "access-1" {
		t.Fatalf("expected one server-side logout with the old token, got %v", auth.logouts)
	}
	for _, key := range []string{ports.KeyAccessToken, ports.KeyRefreshToken, ports.KeySessionUser} {
		if _, ok := st.Get(key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
}

func TestSessionManager_LogoutIgnoresServerFailure(t *testing.T) {
	auth := &stubAuthClient{
		loginFn:  okLogin(&alice),
		logoutFn: func(context.Context, string) error { return errors.New("404 not implemented") },
	}
	svc := newSessionSvc(store.NewMemoryStore(nil), auth)
	_, _ = svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"})

	svc.Logout()
	if svc.IsAuthenticated() {
		t.Fatalf("local logout must succeed regardless of the backend")
	}
}

func TestSessionManager_LogoutHooks(t *testing.T) {
	svc := newSessionSvc(store.NewMemoryStore(nil), &stubAuthClient{loginFn: okLogin(&alice)})
	var logins, logouts int
	svc.OnLogin(func() { logins++ })
	svc.OnLogout(func() { logouts++ })

	_, _ = svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"})
	svc.ForceLogout()

	if logins != 1 || logouts != 1 {
		t.Fatalf("expected one login and one logout hook run, got %d/%d", logins, logouts)
	}
}

func TestSessionManager_HasRole(t *testing.T) {
	u := domain.User{ID: "u-2", Roles: []domain.Role{"clerk", "Superhero"}}
	svc := newSessionSvc(store.NewMemoryStore(nil), &stubAuthClient{loginFn: okLogin(&u)})

	if svc.HasRole("Clerk") {
		t.Fatalf("HasRole must be false when signed out")
	}
	if _, err := svc.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	if !svc.HasRole("Clerk") {
		t.Fatalf("expected canonicalised Clerk role")
	}
	if svc.HasRole("Admin") {
		t.Fatalf("unexpected Admin role")
	}
	if got := svc.User().Roles; len(got) != 1 {
		t.Fatalf("roles outside the configured set must be dropped, got %v", got)
	}
}

func TestSessionManager_CorruptPersistedUser(t *testing.T) {
	st := store.NewMemoryStore(map[string]string{
		ports.KeyAccessToken: "tok",
		ports.KeySessionUser: "{broken",
	})
	svc := newSessionSvc(st, &stubAuthClient{})

	if svc.CurrentSession() != nil {
		t.Fatalf("corrupt session must not hydrate")
	}
	if _, ok := st.Get(ports.KeyAccessToken); ok {
		t.Fatalf("corrupt session must be cleared from storage")
	}
}

func TestSessionManager_UnauthorizedResponseSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	u := alice
	st := store.NewMemoryStore(nil)
	client := httpclient.New(httpclient.Config{BaseURL: srv.URL}, nil, zerolog.Nop())
	sessions := newSessionSvc(st, &stubAuthClient{loginFn: okLogin(&u)})
	tenants := NewTenantResolver(st, backend.NewTenantClient(client), nil, nil, zerolog.Nop())
	client.Attach(sessions, tenants)

	if _, err := sessions.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	_, err := client.Do(context.Background(), http.MethodGet, "/api/orders", nil)
	if domain.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if sessions.IsAuthenticated() {
		t.Fatalf("expected session cleared after 401")
	}
	if _, ok := st.Get(ports.KeyAccessToken); ok {
		t.Fatalf("expected persisted token cleared after 401")
	}
}
