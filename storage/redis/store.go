package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/kv"
)

const (
	backendName = "redis"

	// DefaultDialTimeout is the default timeout for establishing connections.
	DefaultDialTimeout = 5 * time.Second

	// DefaultReadTimeout is the default timeout for socket reads.
	DefaultReadTimeout = 3 * time.Second

	// DefaultWriteTimeout is the default timeout for socket writes.
	DefaultWriteTimeout = 3 * time.Second
)

// Config holds configuration for the Redis storage backend.
//
// Set Addrs to one address for a single node. With MasterName set, Addrs
// lists Sentinel addresses and the client follows failovers.
type Config struct {
	Addrs      []string
	MasterName string
	Username   string
	Password   string
	DB         int
	TLS        *tls.Config

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// KeyPrefix is the prefix for all keys (default "oauth2:")
	KeyPrefix string

	// ExpiredRetention is how long expired codes and tokens remain readable
	// (default 24h).
	ExpiredRetention time.Duration

	Logger          *slog.Logger
	Instrumentation *instrumentation.Instrumentation
}

func (c *Config) validate() error {
	if len(c.Addrs) == 0 {
		return errors.New("at least one address is required")
	}
	if c.MasterName == "" && len(c.Addrs) > 1 {
		return errors.New("several addresses require a sentinel master name")
	}
	return nil
}

// Backend is a kv.Backend on a go-redis client.
type Backend struct {
	client goredis.UniversalClient
}

var _ kv.Backend = (*Backend)(nil)

// NewBackend wraps an existing client.
func NewBackend(client goredis.UniversalClient) *Backend {
	return &Backend{client: client}
}

// Name implements kv.Backend.
func (b *Backend) Name() string { return backendName }

// Get implements kv.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set implements kv.Backend. A zero ttl keeps the key until deleted.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

// GetDel implements kv.Backend with GETDEL, which is atomic on the server.
func (b *Backend) GetDel(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Store is a Redis-backed storage.FullModel.
type Store struct {
	*kv.Store

	client goredis.UniversalClient
}

var _ storage.FullModel = (*Store)(nil)

// New connects to Redis and returns a Store.
// Returns error if configuration validation fails or connection cannot be established.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}

	// Apply defaults
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		DB:           cfg.DB,
		Username:     cfg.Username,
		Password:     cfg.Password,
		TLSConfig:    cfg.TLS,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		// Close the client to prevent resource leak
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Store with a pre-configured client. Connection
// fields of cfg are ignored.
func NewWithClient(client goredis.UniversalClient, cfg Config) *Store {
	return &Store{
		Store: kv.New(NewBackend(client), kv.Config{
			KeyPrefix:        cfg.KeyPrefix,
			ExpiredRetention: cfg.ExpiredRetention,
			Logger:           cfg.Logger,
			Instrumentation:  cfg.Instrumentation,
		}),
		client: client,
	}
}

// Close closes the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}
