package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"dsacoach-gateway/internal/metrics"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// Stats is a point-in-time view of a cache domain's occupancy.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"maxSize"`
}

// ExpiringCache is a size-bounded, time-bounded key/value store.
//
// Every entry carries its own absolute expiry. Expired entries are removed
// lazily on the next read of that key, so they may occupy a slot until then;
// when a new key arrives at capacity the least recently used entry is evicted
// whether or not it is still fresh.
type ExpiringCache struct {
	mu         sync.Mutex
	name       string
	items      *simplelru.LRU[string, memoryEntry]
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures an ExpiringCache.
type Option func(*ExpiringCache)

// WithClock replaces time.Now, mostly for tests that need exact TTL edges.
func WithClock(now func() time.Time) Option {
	return func(c *ExpiringCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExpiringCache creates a cache domain. name labels logs and metrics.
// maxSize below 1 is raised to 1; a non-positive defaultTTL falls back to 5 minutes.
func NewExpiringCache(name string, maxSize int, defaultTTL time.Duration, opts ...Option) *ExpiringCache {
	if maxSize < 1 {
		maxSize = 1
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	// simplelru only rejects non-positive sizes, which are clamped above.
	items, _ := simplelru.NewLRU[string, memoryEntry](maxSize, nil)

	c := &ExpiringCache{
		name:       name,
		items:      items,
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the domain label.
func (c *ExpiringCache) Name() string {
	return c.name
}

// DefaultTTL returns the TTL applied by Set.
func (c *ExpiringCache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Get returns the value for key if it is present and not yet expired.
// A hit marks the entry most recently used; a read past expiry removes it.
func (c *ExpiringCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items.Peek(key)
	if !ok {
		metrics.CacheMissesTotal.WithLabelValues(c.name).Inc()
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		c.items.Remove(key)
		metrics.CacheEntries.WithLabelValues(c.name).Set(float64(c.items.Len()))
		metrics.CacheMissesTotal.WithLabelValues(c.name).Inc()
		return nil, false
	}

	// refresh recency
	c.items.Get(key)
	metrics.CacheHitsTotal.WithLabelValues(c.name).Inc()
	return entry.value, true
}

// Set stores value under key with the domain's default TTL.
func (c *ExpiringCache) Set(key string, value any) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, expiring ttl from now. ttl <= 0 uses the
// domain default. Overwriting an existing key only refreshes it; a new key at
// capacity evicts the least recently used entry first.
func (c *ExpiringCache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.items.Add(key, memoryEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
	if evicted {
		metrics.CacheEvictionsTotal.WithLabelValues(c.name).Inc()
	}
	metrics.CacheEntries.WithLabelValues(c.name).Set(float64(c.items.Len()))
}

// Has reports whether Get would hit. It shares Get's side effects.
func (c *ExpiringCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Clear removes every entry in the domain.
func (c *ExpiringCache) Clear() {
	c.mu.Lock()
	c.items.Purge()
	c.mu.Unlock()
	metrics.CacheEntries.WithLabelValues(c.name).Set(0)
}

// Stats reports current size (expired-but-unread entries included) and capacity.
func (c *ExpiringCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:    c.items.Len(),
		MaxSize: c.maxSize,
	}
}

// Lookup is a typed Get. A present value of another type counts as absent.
func Lookup[T any](c *ExpiringCache, key string) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
