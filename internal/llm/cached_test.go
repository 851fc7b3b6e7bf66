package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsacoach-gateway/internal/cache"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Provider() string { return "stub" }

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func newAICache() cache.ResponseCache {
	return cache.NewMemoryResponseCache(cache.NewExpiringCache(cache.DomainAI, 50, 10*time.Minute))
}

func TestCachedGenerator_StoresAndServes(t *testing.T) {
	stub := &stubGenerator{text: `{"x":1}`}
	gen := NewCachedGenerator(stub, newAICache(), 0)
	ctx := context.Background()

	text, cached, err := gen.Generate(ctx, "analyze_v2:1", "prompt")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, `{"x":1}`, text)

	text, cached, err = gen.Generate(ctx, "analyze_v2:1", "prompt")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, `{"x":1}`, text)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "stub", gen.Provider())
}

func TestCachedGenerator_EmptyResultNotStored(t *testing.T) {
	stub := &stubGenerator{text: ""}
	gen := NewCachedGenerator(stub, newAICache(), 0)

	for i := 0; i < 2; i++ {
		_, cached, err := gen.Generate(context.Background(), "k", "p")
		require.NoError(t, err)
		assert.False(t, cached)
	}
	assert.Equal(t, 2, stub.calls)
}

func TestCachedGenerator_ErrorNotStored(t *testing.T) {
	stub := &stubGenerator{err: ErrInvalidAPIKey}
	gen := NewCachedGenerator(stub, newAICache(), 0)

	_, _, err := gen.Generate(context.Background(), "k", "p")
	require.ErrorIs(t, err, ErrInvalidAPIKey)

	stub.err = nil
	stub.text = "ok"
	text, cached, err := gen.Generate(context.Background(), "k", "p")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "ok", text)
}

func TestCachedGenerator_NoKeyBypassesCache(t *testing.T) {
	stub := &stubGenerator{text: "t"}
	gen := NewCachedGenerator(stub, newAICache(), 0)

	for i := 0; i < 2; i++ {
		_, cached, err := gen.Generate(context.Background(), "", "p")
		require.NoError(t, err)
		assert.False(t, cached)
	}
	assert.Equal(t, 2, stub.calls)
}

func TestCachedGenerator_CacheFailureFallsThrough(t *testing.T) {
	stub := &stubGenerator{text: "live"}
	gen := NewCachedGenerator(stub, failingCache{}, 0)

	text, cached, err := gen.Generate(context.Background(), "k", "p")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "live", text)
}
