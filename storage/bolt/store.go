package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/kv"
)

const (
	backendName = "bolt"

	dbFilePerm  = 0o600
	dbDirPerm   = 0o700
	openTimeout = 5 * time.Second

	// DefaultSweepInterval is how often expired keys are deleted.
	DefaultSweepInterval = 5 * time.Minute

	// expiryLen is the size of the expiry header in front of every value.
	expiryLen = 8
)

var entriesBucket = []byte("entries")

// Config holds configuration for the bbolt storage backend.
type Config struct {
	// Path is the database file (required). It is created if missing.
	Path string

	// KeyPrefix is the prefix for all keys (default "oauth2:")
	KeyPrefix string

	// ExpiredRetention is how long expired codes and tokens remain readable
	// (default 24h).
	ExpiredRetention time.Duration

	// SweepInterval is how often expired keys are deleted (default 5m).
	SweepInterval time.Duration

	Logger          *slog.Logger
	Instrumentation *instrumentation.Instrumentation

	// Now overrides time.Now, for tests.
	Now func() time.Time
}

// Backend is a kv.Backend on a bbolt database. Each value is stored behind
// an 8 byte big-endian expiry in unix nanoseconds, zero meaning none.
// Expired keys are invisible immediately and deleted by Sweep.
type Backend struct {
	db  *bolt.DB
	now func() time.Time
}

var _ kv.Backend = (*Backend)(nil)

// NewBackend wraps an open database, creating the entries bucket.
func NewBackend(db *bolt.DB, now func() time.Time) (*Backend, error) {
	if now == nil {
		now = time.Now
	}
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &Backend{db: db, now: now}, nil
}

// Name implements kv.Backend.
func (b *Backend) Name() string { return backendName }

func (b *Backend) encode(value []byte, ttl time.Duration) []byte {
	out := make([]byte, expiryLen+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(out, uint64(b.now().Add(ttl).UnixNano()))
	}
	copy(out[expiryLen:], value)
	return out
}

// decode returns a copy of the value, or false if raw is expired or malformed.
func (b *Backend) decode(raw []byte) ([]byte, bool) {
	if len(raw) < expiryLen {
		return nil, false
	}
	if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && b.now().UnixNano() >= exp {
		return nil, false
	}
	return bytes.Clone(raw[expiryLen:]), true
}

// Get implements kv.Backend.
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(entriesBucket).Get([]byte(key)); raw != nil {
			value, found = b.decode(raw)
		}
		return nil
	})
	return value, found, err
}

// Set implements kv.Backend.
func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(key), b.encode(value, ttl))
	})
}

// GetDel implements kv.Backend. bbolt serialises write transactions, so
// the read and delete happen atomically.
func (b *Backend) GetDel(_ context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(entriesBucket)
		raw := bucket.Get([]byte(key))
		if raw == nil {
			return nil
		}
		value, found = b.decode(raw)
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Sweep deletes expired keys and returns how many it removed.
func (b *Backend) Sweep() (int, error) {
	now := b.now().UnixNano()
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(entriesBucket)
		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if len(v) < expiryLen {
				return nil
			}
			if exp := int64(binary.BigEndian.Uint64(v)); exp != 0 && now >= exp {
				expired = append(expired, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

// Store is a bbolt-backed storage.FullModel for single-node deployments.
type Store struct {
	*kv.Store

	db      *bolt.DB
	backend *Backend
	logger  *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ storage.FullModel = (*Store)(nil)

// New opens (or creates) the database at cfg.Path and starts the sweeper.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("bolt path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(cfg.Path, dbFilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	backend, err := NewBackend(db, cfg.Now)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		Store: kv.New(backend, kv.Config{
			KeyPrefix:        cfg.KeyPrefix,
			ExpiredRetention: cfg.ExpiredRetention,
			Logger:           logger,
			Instrumentation:  cfg.Instrumentation,
			Now:              cfg.Now,
		}),
		db:      db,
		backend: backend,
		logger:  logger,
		stop:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop(interval)

	logger.Info("Opened bolt storage", "path", cfg.Path)
	return s, nil
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			n, err := s.backend.Sweep()
			if err != nil {
				s.logger.Warn("Failed to sweep expired entries", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("Cleaned up expired entries", "count", n)
			}
		}
	}
}

// Close stops the sweeper and closes the database.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.db.Close()
}
