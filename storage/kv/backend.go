package kv

import (
	"context"
	"time"
)

// Backend is the key-value primitive set a Store is built on.
//
// Values are opaque bytes. A ttl of zero means the key never expires.
// GetDel must be atomic: when several callers race on the same key exactly
// one of them observes found=true.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (value []byte, found bool, err error)

	// Name identifies the backend in metrics and spans.
	Name() string
}
