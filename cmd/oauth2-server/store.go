package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giantswarm/oauth2-engine/cmd/oauth2-server/internal/config"
	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/bolt"
	"github.com/giantswarm/oauth2-engine/storage/memory"
	"github.com/giantswarm/oauth2-engine/storage/redis"
	"github.com/giantswarm/oauth2-engine/storage/valkey"
)

// openStore opens the configured storage backend. The returned func
// releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, inst *instrumentation.Instrumentation) (storage.FullModel, func() error, error) {
	logger = logger.With("backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		store := memory.New(
			memory.WithLogger(logger),
			memory.WithInstrumentation(inst),
			memory.WithExpiredRetention(cfg.ExpiredRetention),
		)
		return store, func() error { store.Stop(); return nil }, nil

	case config.BackendValkey:
		store, err := valkey.New(valkey.Config{
			Address:          cfg.ValkeyAddr,
			Password:         cfg.ValkeyPassword,
			DB:               cfg.ValkeyDB,
			KeyPrefix:        cfg.KeyPrefix,
			ExpiredRetention: cfg.ExpiredRetention,
			Logger:           logger,
			Instrumentation:  inst,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening valkey store: %w", err)
		}
		return store, func() error { store.Close(); return nil }, nil

	case config.BackendRedis:
		store, err := redis.New(ctx, redis.Config{
			Addrs:            cfg.RedisAddrs,
			MasterName:       cfg.RedisMasterName,
			Username:         cfg.RedisUsername,
			Password:         cfg.RedisPassword,
			DB:               cfg.RedisDB,
			KeyPrefix:        cfg.KeyPrefix,
			ExpiredRetention: cfg.ExpiredRetention,
			Logger:           logger,
			Instrumentation:  inst,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return store, store.Close, nil

	case config.BackendBolt:
		store, err := bolt.New(bolt.Config{
			Path:             cfg.BoltPath,
			KeyPrefix:        cfg.KeyPrefix,
			ExpiredRetention: cfg.ExpiredRetention,
			Logger:           logger,
			Instrumentation:  inst,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening bolt store: %w", err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
