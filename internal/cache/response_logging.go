package cache

import (
	"context"
	"strings"
	"time"

	"dsacoach-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingResponseCache wraps a ResponseCache with structured logging.
type LoggingResponseCache struct {
	inner ResponseCache
	tier  string
}

// NewLoggingResponseCache returns a cache that logs every lookup and store.
// tier names the backend in log lines (memory | redis).
func NewLoggingResponseCache(inner ResponseCache, tier string) ResponseCache {
	return &LoggingResponseCache{inner: inner, tier: tier}
}

func (c *LoggingResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}

	fields := append(c.keyFields(key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	)

	if err != nil {
		logger.Error("response_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("response_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingResponseCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := append(c.keyFields(key),
		zap.Int("value_bytes", len(value)),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", latencyMs),
	)

	if err != nil {
		logger.Error("response_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("response_cache_set", fields...)
	}

	return err
}

func (c *LoggingResponseCache) keyFields(key string) []zap.Field {
	fields := []zap.Field{
		zap.String("cache_tier", c.tier),
		zap.String("cache_key", key),
	}
	if prefix, hash, ok := splitKey(key); ok {
		fields = append(fields,
			zap.String("key_prefix", prefix),
			zap.String("hash", hash),
		)
	}
	return fields
}

// splitKey undoes MakeKey: "<prefix>:<hash>".
func splitKey(key string) (prefix, hash string, ok bool) {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
