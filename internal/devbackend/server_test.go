package devbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/catalog-console/internal/catalog"
	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/service"
	"github.com/99minutos/catalog-console/internal/infrastructure/backend"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
	"github.com/99minutos/catalog-console/internal/infrastructure/notify"
	"github.com/99minutos/catalog-console/internal/infrastructure/queue"
	"github.com/99minutos/catalog-console/internal/infrastructure/store"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	e, err := NewServer(Options{
		Secret:     "secret",
		Seed:       DefaultSeed(),
		BcryptCost: bcrypt.MinCost,
		Log:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return e
}

type call struct {
	method, path, token, tenant string
	body                        any
}

func do(t *testing.T, e *echo.Echo, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if err := json.NewEncoder(&buf).Encode(c.body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenant != "" {
		req.Header.Set(DefaultTenantHeader, c.tenant)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	rec := do(t, e, call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{"email": email, "password": password}})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.RefreshToken == "" || resp.User == nil {
		t.Fatalf("incomplete login response: %+v", resp)
	}
	return resp.AccessToken
}

func TestServer_Login(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": "clerk@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"email": "ghost@example.com", "password": "x"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "clerk@example.com"}, http.StatusBadRequest},
		{"success", map[string]string{"email": "Clerk@Example.com", "password": "clerk123"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, call{method: http.MethodPost, path: "/api/auth/login", body: tt.body})
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestServer_MeAndLogout(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e, "owner@example.com", "owner123")

	rec := do(t, e, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d", rec.Code)
	}
	var user domain.User
	_ = json.Unmarshal(rec.Body.Bytes(), &user)
	if user.ID != "u-owner" || !user.HasRole("Admin") {
		t.Fatalf("unexpected user: %+v", user)
	}

	if rec := do(t, e, call{method: http.MethodPost, path: "/api/auth/logout", token: token}); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := do(t, e, call{method: http.MethodGet, path: "/api/auth/me", token: token}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: %d", rec.Code)
	}
}

func TestServer_Tenants(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e, "clerk@example.com", "clerk123")

	rec := do(t, e, call{method: http.MethodGet, path: "/api/tenants", token: token})
	var tenants []domain.Tenant
	_ = json.Unmarshal(rec.Body.Bytes(), &tenants)
	if len(tenants) != 1 || tenants[0].ID != "t-acme" {
		t.Fatalf("unexpected tenants: %+v", tenants)
	}

	if rec := do(t, e, call{method: http.MethodPost, path: "/api/tenants/active", token: token, body: map[string]string{"tenantId": "t-globex"}}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign tenant: %d", rec.Code)
	}
	if rec := do(t, e, call{method: http.MethodPost, path: "/api/tenants/active", token: token, body: map[string]string{"tenantId": "t-acme"}}); rec.Code != http.StatusNoContent {
		t.Fatalf("activate: %d", rec.Code)
	}
	rec = do(t, e, call{method: http.MethodGet, path: "/api/tenants/active", token: token})
	var active activeTenantResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &active)
	if active.TenantID != "t-acme" {
		t.Fatalf("active tenant = %q", active.TenantID)
	}
}

func TestServer_CatalogScoping(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e, "clerk@example.com", "clerk123")

	if rec := do(t, e, call{method: http.MethodGet, path: "/api/products"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", rec.Code)
	}
	if rec := do(t, e, call{method: http.MethodGet, path: "/api/products", token: token}); rec.Code != http.StatusBadRequest {
		t.Fatalf("no tenant header: %d", rec.Code)
	}
	if rec := do(t, e, call{method: http.MethodGet, path: "/api/products", token: token, tenant: "t-globex"}); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign tenant: %d", rec.Code)
	}
}

func TestServer_ProductCRUD(t *testing.T) {
	e := newTestServer(t)
	clerk := login(t, e, "clerk@example.com", "clerk123")
	owner := login(t, e, "owner@example.com", "owner123")
	acme := func(c call) call { c.tenant = "t-acme"; return c }

	rec := do(t, e, acme(call{method: http.MethodPost, path: "/api/categories", token: clerk, body: domain.CategoryInput{Name: "Apparel", Code: "APP"}}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body)
	}
	var cat domain.Category
	_ = json.Unmarshal(rec.Body.Bytes(), &cat)

	rec = do(t, e, acme(call{method: http.MethodPost, path: "/api/products", token: clerk, body: domain.ProductInput{Name: "Shirt", Code: "SH", CategoryID: cat.ID}}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", rec.Code, rec.Body)
	}
	var product domain.Product
	_ = json.Unmarshal(rec.Body.Bytes(), &product)
	if product.CategoryName != "Apparel" {
		t.Fatalf("category not resolved: %+v", product)
	}

	rec = do(t, e, acme(call{method: http.MethodPost, path: "/api/products", token: clerk, body: domain.ProductInput{Name: "Other shirt", Code: "sh"}}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate code: %d", rec.Code)
	}

	rec = do(t, e, acme(call{method: http.MethodPost, path: "/api/products", token: clerk, body: domain.ProductInput{Name: "Ghost", Code: "GH", CategoryID: "missing"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("dangling category: %d", rec.Code)
	}

	rec = do(t, e, acme(call{method: http.MethodPost, path: "/api/products", token: clerk, body: map[string]string{"code": "X"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing name: %d", rec.Code)
	}

	rec = do(t, e, acme(call{method: http.MethodPut, path: "/api/products/" + product.ID, token: clerk, body: domain.ProductInput{Name: "T-Shirt", Code: "SH"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	rec = do(t, e, acme(call{method: http.MethodGet, path: "/api/products?search=t_shirt", token: clerk}))
	var page domain.Page[domain.Product]
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 1 || page.Items[0].Name != "T-Shirt" || page.Items[0].CategoryID != "" {
		t.Fatalf("unexpected page: %+v", page)
	}

	if rec := do(t, e, acme(call{method: http.MethodDelete, path: "/api/products/" + product.ID, token: clerk})); rec.Code != http.StatusForbidden {
		t.Fatalf("clerk delete: %d", rec.Code)
	}
	if rec := do(t, e, acme(call{method: http.MethodDelete, path: "/api/products/" + product.ID, token: owner})); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: %d", rec.Code)
	}
	if rec := do(t, e, acme(call{method: http.MethodDelete, path: "/api/products/" + product.ID, token: owner})); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
}

func TestServer_ViewerIsReadOnly(t *testing.T) {
	e := newTestServer(t)
	viewer := login(t, e, "viewer@example.com", "viewer123")

	rec := do(t, e, call{method: http.MethodPost, path: "/api/orders", token: viewer, tenant: "t-globex", body: domain.OrderInput{Number: "SO-1", CustomerName: "Bob"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create: %d", rec.Code)
	}
	rec = do(t, e, call{method: http.MethodGet, path: "/api/orders/all", token: viewer, tenant: "t-globex"})
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("viewer list: %d %q", rec.Code, rec.Body)
	}
}

// The console's own stack should drive the dev backend end to end.
func TestServer_ConsoleStack(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	bus := notify.NewBus(time.Minute)
	tray := notify.NewTray(bus)
	t.Cleanup(tray.Close)

	client := httpclient.New(httpclient.Config{BaseURL: srv.URL}, bus, log)
	roleNames := make([]string, 0, len(domain.DefaultRoles))
	for _, r := range domain.DefaultRoles {
		roleNames = append(roleNames, string(r))
	}
	roles := domain.NewRoleCatalog(roleNames...)
	st := store.NewMemoryStore(nil)
	sessions := service.NewSessionManager(st, backend.NewAuthClient(client), roles, queue.Inline{}, log)
	tenants := service.NewTenantResolver(st, backend.NewTenantClient(client), bus, queue.Inline{}, log)
	client.Attach(sessions, tenants)
	cat := catalog.New(client, bus, tenants, log)

	ctx := context.Background()
	if _, err := sessions.Login(ctx, domain.Credentials{Email: "owner@example.com", Password: "owner123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	list, err := tenants.Refresh(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("refresh: %v %+v", err, list)
	}
	if err := tenants.SetActiveTenant("t-globex"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if _, err := cat.UOMs.Create(ctx, domain.UnitOfMeasureInput{Name: "Piece", Code: "PC"}); err != nil {
		t.Fatalf("create uom: %v", err)
	}
	_, err = cat.UOMs.Create(ctx, domain.UnitOfMeasureInput{Name: "Pieces", Code: "pc"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	active := tray.Active()
	if len(active) != 1 || active[0].Title != "Duplicate code" {
		t.Fatalf("expected one duplicate toast, got %+v", active)
	}

	page, err := cat.UOMs.List(ctx, catalog.Query{})
	if err != nil || page.Total != 1 {
		t.Fatalf("list: %v %+v", err, page)
	}

	sessions.Logout()
	if _, err := cat.UOMs.List(ctx, catalog.Query{}); err == nil {
		t.Fatalf("list after logout should fail")
	}
}
