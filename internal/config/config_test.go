package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, 50, cfg.Cache.AI.MaxSize)
	assert.Equal(t, 10*time.Minute, cfg.Cache.AI.TTL.Std())
	assert.Equal(t, 20, cfg.Cache.Profile.MaxSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.Profile.TTL.Std())
	assert.Equal(t, 200, cfg.Cache.Dataset.MaxSize)
	assert.Equal(t, time.Hour, cfg.Cache.Dataset.TTL.Std())
	assert.Equal(t, "https://leetcode.com/graphql", cfg.LeetCodeURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"PORT":              "8080",
		"AI_PROVIDER":       "Gemini",
		"GEMINI_API_KEY":    "g-key",
		"CACHE_BACKEND":     "REDIS",
		"AI_CACHE_SIZE":     "5",
		"AI_CACHE_TTL":      "1d",
		"PROFILE_CACHE_TTL": "90s",
		"REQUEST_TIMEOUT":   "2m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "g-key", cfg.AI.APIKey())
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5, cfg.Cache.AI.MaxSize)
	assert.Equal(t, 24*time.Hour, cfg.Cache.AI.TTL.Std())
	assert.Equal(t, 90*time.Second, cfg.Cache.Profile.TTL.Std())
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout.Std())
}

func TestLoad_BadEnvValues(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"AI_CACHE_SIZE":   "lots",
		"REQUEST_TIMEOUT": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_CACHE_SIZE")
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
ai:
  provider: openai
  openai_api_key: file-key
cache:
  profile:
    max_size: 7
    ttl: 30s
`), 0o600))

	cfg, err := load(envMap(map[string]string{
		"CONFIG_FILE": path,
		"PORT":        "5000",
	}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port, "env wins over file")
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "file-key", cfg.AI.APIKey())
	assert.Equal(t, 7, cfg.Cache.Profile.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.Cache.Profile.TTL.Std())
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.Cache.AI.MaxSize)
	assert.Equal(t, 10*time.Minute, cfg.Cache.AI.TTL.Std())
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := load(envMap(map[string]string{"CONFIG_FILE": filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.ErrorContains(t, err, "open config")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ai:\n    ttl: forever\n"), 0o600))
	_, err = load(envMap(map[string]string{"CONFIG_FILE": path}))
	assert.ErrorContains(t, err, "parse config")

	require.NoError(t, os.WriteFile(path, []byte("prot: 1\n"), 0o600))
	_, err = load(envMap(map[string]string{"CONFIG_FILE": path}))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := load(envMap(map[string]string{"CONFIG_FILE": path}))
	require.NoError(t, err)
	assert.Equal(t, Default().Port, cfg.Port)
}

func TestLoad_ProcessEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_PROVIDER", "openai")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) { c.AI.GroqAPIKey = "k" }, ""},
		{"missing key", func(c *Config) {}, "GROQ_API_KEY is required"},
		{"gemini key", func(c *Config) { c.AI.Provider = "gemini"; c.AI.GroqAPIKey = "k" }, "GEMINI_API_KEY is required"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "anthropic" }, `AI_PROVIDER "anthropic"`},
		{"bad backend", func(c *Config) { c.AI.GroqAPIKey = "k"; c.Cache.Backend = "disk" }, `CACHE_BACKEND "disk"`},
		{"no port", func(c *Config) { c.AI.GroqAPIKey = "k"; c.Port = "" }, "PORT is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDomainCacheConfig(t *testing.T) {
	d := Domain{MaxSize: 3, TTL: Duration(time.Minute)}
	cc := d.CacheConfig()
	assert.Equal(t, 3, cc.MaxSize)
	assert.Equal(t, time.Minute, cc.TTL)
}
