package cache

import (
	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Backend string
	Prefix  string
}

// NewResponseCache picks the model-response backend. Anything other than
// "redis" (or redis without a client) stays in the in-process ai domain.
func NewResponseCache(cfg Config, memory *ExpiringCache, redisClient *redis.Client) ResponseCache {
	switch {
	case cfg.Backend == BackendRedis && redisClient != nil:
		return NewRedisResponseCache(redisClient, RedisConfig{
			Prefix:     cfg.Prefix,
			DefaultTTL: memory.DefaultTTL(),
		})
	default:
		return NewMemoryResponseCache(memory)
	}
}
