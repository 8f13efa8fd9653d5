// Package kvtest provides a conformance suite for kv.Backend
// implementations.
package kvtest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/oauth2-engine/storage/kv"
)

// RunBackendTests exercises the Backend contract. newBackend must return a
// backend for each call together with a key prefix no other test writes
// under.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) (kv.Backend, string)) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		b, prefix := newBackend(t)
		v, found, err := b.Get(context.Background(), prefix+"missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("SetGet", func(t *testing.T) {
		b, prefix := newBackend(t)
		ctx := context.Background()
		k := prefix + "k"
		require.NoError(t, b.Set(ctx, k, []byte("v1"), 0))

		v, found, err := b.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("v1"), v)

		require.NoError(t, b.Set(ctx, k, []byte("v2"), 0))
		v, _, err = b.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)
	})

	t.Run("GetDel", func(t *testing.T) {
		b, prefix := newBackend(t)
		ctx := context.Background()
		k := prefix + "k"
		require.NoError(t, b.Set(ctx, k, []byte("v"), 0))

		v, found, err := b.GetDel(ctx, k)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("v"), v)

		_, found, err = b.GetDel(ctx, k)
		require.NoError(t, err)
		assert.False(t, found, "second GetDel must not find the key")

		_, found, err = b.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("GetDelConcurrent", func(t *testing.T) {
		b, prefix := newBackend(t)
		ctx := context.Background()
		k := prefix + "k"
		require.NoError(t, b.Set(ctx, k, []byte("v"), 0))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, found, err := b.GetDel(ctx, k); err == nil && found {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("Name", func(t *testing.T) {
		b, _ := newBackend(t)
		assert.NotEmpty(t, b.Name())
	})
}
