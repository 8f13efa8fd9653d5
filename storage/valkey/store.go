package valkey

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	valkeygo "github.com/valkey-io/valkey-go"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/kv"
)

const (
	backendName = "valkey"

	// connectionVerifyTimeout is the timeout for initial connection verification
	connectionVerifyTimeout = 5 * time.Second
)

// Config holds configuration for the Valkey storage backend.
type Config struct {
	// Address is the Valkey server address (required), e.g., "localhost:6379"
	Address string

	// Password is the optional password for Valkey authentication
	Password string

	// DB is the optional database number (default 0)
	DB int

	// KeyPrefix is the prefix for all keys (default "oauth2:")
	KeyPrefix string

	// TLS is the optional TLS configuration for encrypted connections
	TLS *tls.Config

	// ExpiredRetention is how long expired codes and tokens remain readable
	// (default 24h).
	ExpiredRetention time.Duration

	// Logger is the optional structured logger (default: slog.Default())
	Logger *slog.Logger

	// Instrumentation records storage metrics and spans (optional)
	Instrumentation *instrumentation.Instrumentation
}

// Backend is a kv.Backend on a Valkey client.
type Backend struct {
	client valkeygo.Client
}

var _ kv.Backend = (*Backend)(nil)

// NewBackend wraps an existing client.
func NewBackend(client valkeygo.Client) *Backend {
	return &Backend{client: client}
}

// Name implements kv.Backend.
func (b *Backend) Name() string { return backendName }

// Get implements kv.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Do(ctx, b.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if isNilError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set implements kv.Backend.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := b.client.B().Set().Key(key).Value(valkeygo.BinaryString(value))
	cmd := set.Build()
	if ttl > 0 {
		cmd = set.Ex(ttl).Build()
	}
	return b.client.Do(ctx, cmd).Error()
}

// GetDel implements kv.Backend with GETDEL, which is atomic on the server.
func (b *Backend) GetDel(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Do(ctx, b.client.B().Getdel().Key(key).Build()).AsBytes()
	if err != nil {
		if isNilError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Store is a Valkey-backed storage.FullModel.
type Store struct {
	*kv.Store

	client valkeygo.Client
	logger *slog.Logger
}

var _ storage.FullModel = (*Store)(nil)

// New creates a new Valkey-backed storage instance.
// Returns an error if the connection cannot be established.
func New(cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Build client options
	opts := valkeygo.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	if cfg.TLS != nil {
		opts.TLSConfig = cfg.TLS
	}

	client, err := valkeygo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionVerifyTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	store := kv.New(NewBackend(client), kv.Config{
		KeyPrefix:        cfg.KeyPrefix,
		ExpiredRetention: cfg.ExpiredRetention,
		Logger:           logger,
		Instrumentation:  cfg.Instrumentation,
	})

	logger.Info("Connected to Valkey storage",
		"address", cfg.Address,
		"db", cfg.DB)

	return &Store{Store: store, client: client, logger: logger}, nil
}

// Close closes the Valkey client connection.
func (s *Store) Close() {
	s.client.Close()
	s.logger.Info("Valkey storage connection closed")
}

// isNilError checks if the error indicates a nil/not-found result from Valkey.
// Uses the valkey-go library's built-in nil detection for robustness.
func isNilError(err error) bool {
	return valkeygo.IsValkeyNil(err)
}
