package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter defaults.
const (
	DefaultRateLimitMaxEntries  = 10000
	DefaultRateLimitCleanup     = 5 * time.Minute
	DefaultRateLimitIdleTimeout = 30 * time.Minute
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the steady-state refill rate per key.
	RequestsPerSecond float64

	// Burst is the bucket size per key.
	Burst int

	// MaxEntries caps the number of tracked keys. When reached, the least
	// recently used key is evicted. Zero selects DefaultRateLimitMaxEntries;
	// a negative value disables the cap.
	MaxEntries int

	// CleanupInterval is how often idle keys are swept.
	CleanupInterval time.Duration

	// IdleTimeout is how long a key may go unused before it is swept.
	IdleTimeout time.Duration
}

func (c *RateLimitConfig) applyDefaults() {
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultRateLimitMaxEntries
	}
	if c.MaxEntries < 0 {
		c.MaxEntries = 0
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultRateLimitCleanup
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultRateLimitIdleTimeout
	}
}

type limiterEntry struct {
	key        string
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a keyed token-bucket limiter with LRU eviction. The token
// endpoint keys it by client_id, falling back to the caller's IP address.
type RateLimiter struct {
	cfg    RateLimitConfig
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List

	evictions int64
	cleanups  int64

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRateLimiter starts a RateLimiter and its background sweeper. Call Stop
// to release the goroutine.
func NewRateLimiter(cfg RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	rl := &RateLimiter{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether one more request for key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elem, ok := rl.entries[key]; ok {
		rl.lru.MoveToFront(elem)
		entry := elem.Value.(*limiterEntry)
		entry.lastAccess = now
		return entry.limiter.AllowN(now, 1)
	}

	if rl.cfg.MaxEntries > 0 && len(rl.entries) >= rl.cfg.MaxEntries {
		rl.evictOldest()
	}

	entry := &limiterEntry{
		key:        key,
		limiter:    rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst),
		lastAccess: now,
	}
	rl.entries[key] = rl.lru.PushFront(entry)
	return entry.limiter.AllowN(now, 1)
}

// evictOldest must be called with mu held.
func (rl *RateLimiter) evictOldest() {
	elem := rl.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*limiterEntry)
	delete(rl.entries, entry.key)
	rl.lru.Remove(elem)
	rl.evictions++

	rl.logger.Debug("Rate limiter LRU eviction",
		"key", entry.key,
		"total_evictions", rl.evictions,
		"current_entries", len(rl.entries))
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup(rl.cfg.IdleTimeout)
		case <-rl.stop:
			return
		}
	}
}

// Cleanup removes keys idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	// Oldest entries sit at the back; stop at the first active one.
	for elem := rl.lru.Back(); elem != nil; {
		entry := elem.Value.(*limiterEntry)
		if now.Sub(entry.lastAccess) <= maxIdle {
			break
		}
		prev := elem.Prev()
		delete(rl.entries, entry.key)
		rl.lru.Remove(elem)
		removed++
		elem = prev
	}

	if removed > 0 {
		rl.cleanups++
		rl.logger.Debug("Rate limiter cleanup completed",
			"removed", removed,
			"remaining", len(rl.entries),
			"total_cleanups", rl.cleanups)
	}
}

// Stop ends the background sweeper. It is safe to call more than once and
// on a nil RateLimiter.
func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimitStats is a point-in-time snapshot for monitoring.
type RateLimitStats struct {
	CurrentEntries int
	MaxEntries     int
	TotalEvictions int64
	TotalCleanups  int64
	MemoryPressure float64 // percentage of MaxEntries in use, 0-100
}

// Stats returns current limiter statistics.
func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := RateLimitStats{
		CurrentEntries: len(rl.entries),
		MaxEntries:     rl.cfg.MaxEntries,
		TotalEvictions: rl.evictions,
		TotalCleanups:  rl.cleanups,
	}
	if rl.cfg.MaxEntries > 0 {
		stats.MemoryPressure = float64(stats.CurrentEntries) / float64(rl.cfg.MaxEntries) * 100.0
	}
	return stats
}
