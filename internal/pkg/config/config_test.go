package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Backend.TenantHeader != "X-Tenant-Id" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Backend.RetryBaseDelay != 300*time.Millisecond || cfg.Backend.RetryMaxAttempts != 3 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Backend)
	}
	if cfg.Console.ToastDuration != 4500*time.Millisecond {
		t.Fatalf("unexpected toast duration %s", cfg.Console.ToastDuration)
	}
	if len(cfg.Console.Roles) != 5 || cfg.Console.SettingsRole != "Admin" {
		t.Fatalf("unexpected roles %v / %s", cfg.Console.Roles, cfg.Console.SettingsRole)
	}
	if cfg.Store.Driver != StoreFile || !cfg.IsDevelopment() {
		t.Fatalf("unexpected store/env defaults: %+v %s", cfg.Store, cfg.Env)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":       "https://api.example.com",
		"RETRY_MAX_ATTEMPTS": "2",
		"ROLES":              "Admin,Clerk,Viewer",
		"STORE_DRIVER":       "redis",
		"REDIS_DB":           "2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" || cfg.Backend.RetryMaxAttempts != 2 {
		t.Fatalf("overrides not applied: %+v", cfg.Backend)
	}
	if len(cfg.Console.Roles) != 3 || cfg.Redis.DB != 2 || cfg.Store.Driver != StoreRedis {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Console, cfg.Redis)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":       "not a url",
		"RETRY_MAX_ATTEMPTS": "0",
		"STORE_DRIVER":       "etcd",
		"SETTINGS_ROLE":      "Root",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"API_BASE_URL", "RETRY_MAX_ATTEMPTS", "STORE_DRIVER", "SETTINGS_ROLE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadFrom_RetryBounds(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"too many attempts", map[string]string{"RETRY_MAX_ATTEMPTS": "6"}, "RETRY_MAX_ATTEMPTS"},
		{"negative attempts", map[string]string{"RETRY_MAX_ATTEMPTS": "-1"}, "RETRY_MAX_ATTEMPTS"},
		{"delay too long", map[string]string{"RETRY_BASE_DELAY": "1m"}, "RETRY_BASE_DELAY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected an error about %s, got %v", tt.want, err)
			}
		})
	}

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"RETRY_MAX_ATTEMPTS": "1",
		"RETRY_BASE_DELAY":   "2s",
	}))
	if err != nil {
		t.Fatalf("bounds must be inclusive: %v", err)
	}
	if cfg.Backend.RetryMaxAttempts != 1 {
		t.Fatalf("unexpected attempts %d", cfg.Backend.RetryMaxAttempts)
	}
}
