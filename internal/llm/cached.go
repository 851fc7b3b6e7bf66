package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/metrics"
	"dsacoach-gateway/pkg/logging/logging"
)

// CachedGenerator consults a ResponseCache under a caller-chosen key before
// invoking the backend. Cache failures degrade to a live call.
type CachedGenerator struct {
	inner Generator
	cache cache.ResponseCache
	ttl   time.Duration
}

// NewCachedGenerator wraps inner. ttl <= 0 uses the cache's default.
func NewCachedGenerator(inner Generator, rc cache.ResponseCache, ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{inner: inner, cache: rc, ttl: ttl}
}

func (g *CachedGenerator) Provider() string { return g.inner.Provider() }

// Generate returns the cached text for key when present (cached == true),
// otherwise calls the backend and stores a non-empty result.
func (g *CachedGenerator) Generate(ctx context.Context, key, prompt string) (text string, cached bool, err error) {
	logger := logging.L(ctx)
	start := time.Now()

	if key != "" && g.cache != nil {
		v, ok, cerr := g.cache.Get(ctx, key)
		if cerr != nil {
			logger.Warn("response cache get failed, calling provider", zap.String("key", key), zap.Error(cerr))
		}
		if ok && v != "" {
			logger.Info("cache_decision",
				zap.String("domain", cache.DomainAI),
				zap.String("key", key),
				zap.Bool("hit", true),
				zap.Duration("latency", time.Since(start)),
			)
			return v, true, nil
		}
	}

	text, err = g.inner.Generate(ctx, prompt)
	provider := g.inner.Provider()
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(provider, "error").Inc()
		return "", false, err
	}
	metrics.LLMRequestsTotal.WithLabelValues(provider, "ok").Inc()

	logger.Info("cache_decision",
		zap.String("domain", cache.DomainAI),
		zap.String("key", key),
		zap.Bool("hit", false),
		zap.String("provider", provider),
		zap.Duration("latency", time.Since(start)),
	)

	if key != "" && g.cache != nil && text != "" {
		if serr := g.cache.Set(ctx, key, text, g.ttl); serr != nil {
			logger.Warn("response cache set failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return text, false, nil
}
