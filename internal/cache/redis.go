package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResponseCache implements ResponseCache using Redis, so several gateway
// replicas can share model responses.
type RedisResponseCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

var _ ResponseCache = (*RedisResponseCache)(nil)

type RedisConfig struct {
	Prefix     string
	DefaultTTL time.Duration
}

// NewRedisResponseCache creates a Redis-backed cache.
func NewRedisResponseCache(client *redis.Client, config RedisConfig) *RedisResponseCache {
	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultAIDomain.TTL
	}
	return &RedisResponseCache{
		client:     client,
		prefix:     config.Prefix,
		defaultTTL: ttl,
	}
}

// key builds the final Redis key with prefix.
func (c *RedisResponseCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get retrieves a value from Redis.
// On Redis error, it returns ("", false, err) so caller can log and treat as miss.
func (c *RedisResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	res, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}

	return res, true, nil
}

// Set stores a value in Redis. ttl <= 0 uses the configured default.
func (c *RedisResponseCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Ping checks if Redis connection is healthy.
func (c *RedisResponseCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return c.client.Ping(ctx).Err()
}
