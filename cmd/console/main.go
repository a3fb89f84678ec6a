package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/catalog-console/internal/api"
	"github.com/99minutos/catalog-console/internal/api/handler"
	"github.com/99minutos/catalog-console/internal/catalog"
	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/service"
	"github.com/99minutos/catalog-console/internal/infrastructure/backend"
	"github.com/99minutos/catalog-console/internal/infrastructure/httpclient"
	"github.com/99minutos/catalog-console/internal/infrastructure/notify"
	"github.com/99minutos/catalog-console/internal/infrastructure/queue"
	"github.com/99minutos/catalog-console/internal/pkg/config"
	"github.com/99minutos/catalog-console/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-console",
	})

	credentials, closeStore, err := openStore(ctx, cfg, logger.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open credential store")
	}

	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, log)
	dispatcher.Start(ctx)

	bus := notify.NewBus(cfg.Console.ToastDuration)
	tray := notify.NewTray(bus)
	unsubscribeLog := notify.LogSink(bus, log)

	client := httpclient.New(httpclient.Config{
		BaseURL:      cfg.Backend.BaseURL,
		TenantHeader: cfg.Backend.TenantHeader,
		Timeout:      cfg.Backend.Timeout,
		BaseDelay:    cfg.Backend.RetryBaseDelay,
		MaxAttempts:  cfg.Backend.RetryMaxAttempts,
	}, bus, log)

	roles := domain.NewRoleCatalog(cfg.Console.Roles...)
	settingsRole, err := roles.Parse(cfg.Console.SettingsRole)
	if err != nil {
		log.Fatal().Err(err).Str("role", cfg.Console.SettingsRole).Msg("invalid settings role")
	}

	sessions := service.NewSessionManager(credentials, backend.NewAuthClient(client), roles, dispatcher, log)
	tenants := service.NewTenantResolver(credentials, backend.NewTenantClient(client), bus, dispatcher, log)
	client.Attach(sessions, tenants)
	cat := catalog.New(client, bus, tenants, log)

	sessions.OnLogin(tenants.Invalidate)
	sessions.OnLogin(cat.Reset)
	sessions.OnLogout(tenants.Reset)
	sessions.OnLogout(cat.Reset)

	e := api.NewRouter(api.Deps{
		Sessions:     sessions,
		Tenants:      tenants,
		Catalog:      cat,
		Tray:         tray,
		Notifier:     bus,
		Roles:        roles.Roles(),
		SettingsRole: settingsRole,
		Checks: map[string]handler.Checker{
			"credential_store": credentials.Ping,
			"backend": func(ctx context.Context) error {
				_, err := client.Do(ctx, http.MethodGet, "/health", nil, httpclient.Anonymous(), httpclient.Quiet())
				return err
			},
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 10*time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend.BaseURL).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("console server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("console shutdown failed")
	}
	dispatcher.Wait()
	unsubscribeLog()
	tray.Close()
	if err := closeStore(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("closing credential store")
	}
	log.Info().Msg("stopped")
}
