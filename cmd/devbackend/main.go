// Command devbackend serves an in-memory catalog backend for running the
// console locally.
//
// @title                      Catalog Dev Backend
// @version                    1.0
// @description                In-memory catalog backend for local console development.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/catalog-console/internal/devbackend"
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
		Service: "catalog-devbackend",
	})
	if !cfg.IsDevelopment() {
		log.Warn().Str("env", cfg.Env).Msg("dev backend keeps all data in memory and is not meant for this environment")
	}

	e, err := devbackend.NewServer(devbackend.Options{
		Secret:       cfg.Dev.JWTSecret,
		TenantHeader: cfg.Backend.TenantHeader,
		Seed:         devbackend.DefaultSeed(),
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dev backend")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Dev.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("dev backend listening, docs at /swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("dev backend failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dev backend shutdown failed")
	}
	log.Info().Msg("stopped")
}
