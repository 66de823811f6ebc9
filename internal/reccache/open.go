package reccache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yu-a0/discovery-engine-suite/internal/config"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

// Open builds the backend selected by cfg.Cache.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendFile:
		return NewFileStore(cfg.Cache.Path, logger), nil
	case config.CacheBackendSQLite:
		return OpenSQLite(ctx, cfg.Cache.SQLitePath, logger)
	case config.CacheBackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.RedisPrefix,
		}, logger)
	case config.CacheBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "reccache", "open",
			fmt.Sprintf("unknown cache backend %q", cfg.Cache.Backend), nil)
	}
}
