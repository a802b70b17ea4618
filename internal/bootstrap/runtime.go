// Package bootstrap establishes the shared runtime dependencies (database,
// cache, storage, tracing) that the command binaries build on.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"modulith/internal/cache"
	"modulith/internal/config"
	"modulith/internal/database"
	"modulith/internal/observability"
	"modulith/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime bundles the initialized dependencies.
type Runtime struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Backend storage.Backend

	tracingShutdown func(context.Context) error
}

// InitRuntime connects to PostgreSQL, applies the configured schema policy,
// initializes Redis, storage and tracing. Redis being unreachable is not
// fatal; caching and rate limiting degrade instead.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("schema setup failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	backend, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage backend setup failed: %w", err)
	}

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "modulith-api",
		ServiceVersion: cfg.AppVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExport,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSample,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing setup failed: %w", err)
	}

	return &Runtime{
		Config:          cfg,
		DB:              db,
		Redis:           cache.GetClient(),
		Backend:         backend,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Shutdown flushes tracing spans. Database and Redis connections are owned
// by the server once it starts; callers that never start one close them here.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.tracingShutdown != nil {
		if err := r.tracingShutdown(ctx); err != nil {
			slog.Error("error shutting down tracing", "error", err)
			return err
		}
	}
	return nil
}

// Close releases the database and Redis connections. Use it from one-shot
// commands (migrate, seed) that do not hand the connections to a server.
func (r *Runtime) Close() {
	if sqlDB, err := r.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}
