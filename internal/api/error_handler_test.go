package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

type captureNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (n *captureNotifier) Publish(x domain.Notification) domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, x)
	return x
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		toasts   int
	}{
		{"echo error", echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required"), 422, "name is required", 0},
		{"missing credentials", fmt.Errorf("%w: %w", domain.ErrAuthFailed, domain.ErrInvalidCredentials), 400, "email and password are required", 0},
		{"rejected login", fmt.Errorf("%w: %w", domain.ErrAuthFailed, &domain.APIError{Status: 401, Message: "wrong password"}), 401, "wrong password", 0},
		{"tenant not accessible", fmt.Errorf("select: %w", domain.ErrTenantNotAccessible), 403, "tenant not accessible", 0},
		{"backend unreachable", fmt.Errorf("GET /api/tenants: %w: dial tcp", domain.ErrNetwork), 502, "backend unreachable", 1},
		{"backend unreachable, already notified", fmt.Errorf("load tenants: %w", domain.Notified(fmt.Errorf("GET /api/tenants: %w: dial tcp", domain.ErrNetwork))), 502, "backend unreachable", 0},
		{"api error", fmt.Errorf("create products: %w", &domain.APIError{Status: 409, Message: "duplicate"}), 409, "duplicate", 0},
		{"unexpected", errors.New("boom"), 500, "internal server error", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &captureNotifier{}
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			NewHTTPErrorHandler(n, zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Fatalf("expected %q in %s", tt.wantMsg, rec.Body.String())
			}
			if len(n.items) != tt.toasts {
				t.Fatalf("expected %d notifications, got %d", tt.toasts, len(n.items))
			}
		})
	}
}
