package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers for the credential store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Retry bounds. The pipeline never makes more than MaxRetryAttempts calls for
// one request.
const (
	MaxRetryAttempts  = 3
	MaxRetryBaseDelay = 2 * time.Second
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend  BackendConfig
	Console  ConsoleConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Dispatch DispatchConfig
	Dev      DevBackendConfig
}

// BackendConfig drives the request pipeline.
type BackendConfig struct {
	BaseURL          string        `env:"API_BASE_URL,       default=http://localhost:8081"`
	TenantHeader     string        `env:"TENANT_HEADER,      default=X-Tenant-Id"`
	Timeout          time.Duration `env:"HTTP_TIMEOUT,       default=30s"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY,   default=300ms"`
	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS, default=3"`
}

type ConsoleConfig struct {
	ToastDuration time.Duration `env:"TOAST_DURATION, default=4500ms"`
	Roles         []string      `env:"ROLES,          default=Owner,Admin,Manager,Clerk,Viewer"`
	SettingsRole  string        `env:"SETTINGS_ROLE,  default=Admin"`
}

type StoreConfig struct {
	Driver  string `env:"STORE_DRIVER,  default=file"`
	Path    string `env:"STORE_PATH,    default=.console/credentials.json"`
	Profile string `env:"STORE_PROFILE, default=default"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog_console"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type DispatchConfig struct {
	Workers int `env:"DISPATCH_WORKERS, default=4"`
}

// DevBackendConfig configures cmd/devbackend.
type DevBackendConfig struct {
	Port      string `env:"DEV_PORT,       default=8081"`
	JWTSecret string `env:"DEV_JWT_SECRET, default=dev-secret-change-me"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if strings.TrimSpace(c.Backend.TenantHeader) == "" {
		errs = append(errs, errors.New("TENANT_HEADER must not be empty"))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.Backend.RetryBaseDelay <= 0 || c.Backend.RetryBaseDelay > MaxRetryBaseDelay {
		errs = append(errs, fmt.Errorf("RETRY_BASE_DELAY must be in (0, %s], got %s", MaxRetryBaseDelay, c.Backend.RetryBaseDelay))
	}
	if c.Backend.RetryMaxAttempts < 1 || c.Backend.RetryMaxAttempts > MaxRetryAttempts {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be between 1 and %d, got %d", MaxRetryAttempts, c.Backend.RetryMaxAttempts))
	}
	if c.Console.ToastDuration <= 0 {
		errs = append(errs, errors.New("TOAST_DURATION must be positive"))
	}
	if len(c.Console.Roles) == 0 {
		errs = append(errs, errors.New("ROLES must list at least one role"))
	} else if !containsFold(c.Console.Roles, c.Console.SettingsRole) {
		errs = append(errs, fmt.Errorf("SETTINGS_ROLE %q is not one of ROLES", c.Console.SettingsRole))
	}

	switch c.Store.Driver {
	case StoreFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("STORE_PATH is required for the file store"))
		}
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of file, memory, redis, mongo, got %q", c.Store.Driver))
	}
	if c.Store.Profile == "" {
		errs = append(errs, errors.New("STORE_PROFILE must not be empty"))
	}
	if c.Dispatch.Workers < 1 {
		errs = append(errs, errors.New("DISPATCH_WORKERS must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
