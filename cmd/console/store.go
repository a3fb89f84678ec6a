package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/ports"
	mongodb "github.com/99minutos/catalog-console/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/catalog-console/internal/infrastructure/db/redis"
	"github.com/99minutos/catalog-console/internal/infrastructure/store"
	"github.com/99minutos/catalog-console/internal/pkg/config"
)

// openStore builds the credential store selected by STORE_DRIVER. The
// returned func releases any connection it opened.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn().Msg("credential store is in-memory, sessions will not survive a restart")
		return store.NewMemoryStore(nil), noop, nil

	case config.StoreFile:
		st, err := store.OpenFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Store.Path).Msg("credential store opened")
		return st, noop, nil

	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		st, err := store.OpenWriteThrough(ctx, redisdb.NewCredentialBackend(client, cfg.Store.Profile))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Str("profile", cfg.Store.Profile).Msg("credential store opened on redis")
		return st, func(context.Context) error { return client.Close() }, nil

	case config.StoreMongo:
		db, disconnect, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "catalog-console"})
		if err != nil {
			return nil, nil, err
		}
		st, err := store.OpenWriteThrough(ctx, mongodb.NewCredentialBackend(db, cfg.Store.Profile))
		if err != nil {
			_ = disconnect(ctx)
			return nil, nil, err
		}
		log.Info().Str("db", cfg.Mongo.Database).Str("profile", cfg.Store.Profile).Msg("credential store opened on mongo")
		return st, disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
