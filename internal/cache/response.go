package cache

import (
	"context"
	"time"
)

// ResponseCache memoizes model responses (raw text) by cache key.
// Implemented by the in-process ai domain (default) and Redis.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// MemoryResponseCache serves ResponseCache from an ExpiringCache domain.
type MemoryResponseCache struct {
	store *ExpiringCache
}

var _ ResponseCache = (*MemoryResponseCache)(nil)

func NewMemoryResponseCache(store *ExpiringCache) *MemoryResponseCache {
	return &MemoryResponseCache{store: store}
}

func (c *MemoryResponseCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := Lookup[string](c.store, key)
	return v, ok, nil
}

// Set stores value. ttl <= 0 uses the domain's default TTL.
func (c *MemoryResponseCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.store.SetWithTTL(key, value, ttl)
	return nil
}
