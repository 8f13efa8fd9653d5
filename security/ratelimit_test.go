package security

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(cfg, slog.Default())
	t.Cleanup(rl.Stop)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, Burst: 20}, nil)
	defer rl.Stop()

	if rl.cfg.MaxEntries != DefaultRateLimitMaxEntries {
		t.Errorf("MaxEntries = %d, want %d", rl.cfg.MaxEntries, DefaultRateLimitMaxEntries)
	}
	if rl.cfg.CleanupInterval != DefaultRateLimitCleanup {
		t.Errorf("CleanupInterval = %v, want %v", rl.cfg.CleanupInterval, DefaultRateLimitCleanup)
	}
	if rl.cfg.IdleTimeout != DefaultRateLimitIdleTimeout {
		t.Errorf("IdleTimeout = %v, want %v", rl.cfg.IdleTimeout, DefaultRateLimitIdleTimeout)
	}
	if rl.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{RequestsPerSecond: 10, Burst: 5})

	for i := 0; i < 5; i++ {
		if !rl.Allow("client-a") {
			t.Errorf("Allow() request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("Allow() should return false once the burst is spent")
	}
}

func TestRateLimiter_Allow_SeparateKeys(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	rl.Allow("client-a")
	rl.Allow("client-a")
	if rl.Allow("client-a") {
		t.Error("client-a should be limited")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b has its own bucket and should be allowed")
	}
}

func TestRateLimiter_Allow_Refill(t *testing.T) {
	rl, now := newTestLimiter(t, RateLimitConfig{RequestsPerSecond: 2, Burst: 2})

	rl.Allow("k")
	rl.Allow("k")
	if rl.Allow("k") {
		t.Fatal("bucket should be empty")
	}

	*now = now.Add(time.Second)
	if !rl.Allow("k") {
		t.Error("bucket should have refilled after one second")
	}
}

func TestRateLimiter_LRUEviction(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{RequestsPerSecond: 1, Burst: 1, MaxEntries: 3})

	for i := 0; i < 3; i++ {
		rl.Allow(fmt.Sprintf("key-%d", i))
	}
	// Touch key-0 so key-1 becomes the oldest.
	rl.Allow("key-0")
	rl.Allow("key-3")

	stats := rl.Stats()
	if stats.CurrentEntries != 3 {
		t.Errorf("CurrentEntries = %d, want 3", stats.CurrentEntries)
	}
	if stats.TotalEvictions != 1 {
		t.Errorf("TotalEvictions = %d, want 1", stats.TotalEvictions)
	}
	if _, ok := rl.entries["key-1"]; ok {
		t.Error("key-1 should have been evicted")
	}
	if _, ok := rl.entries["key-0"]; !ok {
		t.Error("key-0 was recently used and should be kept")
	}
	if stats.MemoryPressure != 100 {
		t.Errorf("MemoryPressure = %v, want 100", stats.MemoryPressure)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t, RateLimitConfig{RequestsPerSecond: 1, Burst: 1})

	rl.Allow("idle")
	*now = now.Add(20 * time.Minute)
	rl.Allow("active")
	*now = now.Add(15 * time.Minute)

	rl.Cleanup(30 * time.Minute)

	if _, ok := rl.entries["idle"]; ok {
		t.Error("idle key should be removed")
	}
	if _, ok := rl.entries["active"]; !ok {
		t.Error("active key should be kept")
	}
	if got := rl.Stats().TotalCleanups; got != 1 {
		t.Errorf("TotalCleanups = %d, want 1", got)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000}, slog.Default())
	defer rl.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rl.Allow(fmt.Sprintf("key-%d", i%5))
			}
		}(i)
	}
	wg.Wait()

	if got := rl.Stats().CurrentEntries; got != 5 {
		t.Errorf("CurrentEntries = %d, want 5", got)
	}
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, nil)
	rl.Stop()
	rl.Stop()
}
