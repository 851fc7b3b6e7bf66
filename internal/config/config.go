// Package config loads gateway settings from defaults, an optional YAML file
// and environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/leetcode"
	"dsacoach-gateway/internal/llm"
)

const Version = "1.0.0"

// Duration accepts str2duration strings ("90s", "10m", "1d") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Domain struct {
	MaxSize int      `yaml:"max_size"`
	TTL     Duration `yaml:"ttl"`
}

func (d Domain) CacheConfig() cache.DomainConfig {
	return cache.DomainConfig{MaxSize: d.MaxSize, TTL: d.TTL.Std()}
}

type AIConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	GroqAPIKey   string `yaml:"groq_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// APIKey returns the key for the selected provider.
func (a AIConfig) APIKey() string {
	switch strings.ToLower(a.Provider) {
	case llm.ProviderOpenAI:
		return a.OpenAIAPIKey
	case llm.ProviderGemini:
		return a.GeminiAPIKey
	default:
		return a.GroqAPIKey
	}
}

type CacheConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	Prefix    string `yaml:"prefix"`
	AI        Domain `yaml:"ai"`
	Profile   Domain `yaml:"profile"`
	Dataset   Domain `yaml:"dataset"`
}

type Config struct {
	Port           string      `yaml:"port"`
	Env            string      `yaml:"env"`
	LogLevel       string      `yaml:"log_level"`
	RequestTimeout Duration    `yaml:"request_timeout"`
	DatasetPath    string      `yaml:"dataset_path"`
	LeetCodeURL    string      `yaml:"leetcode_graphql_url"`
	AI             AIConfig    `yaml:"ai"`
	Cache          CacheConfig `yaml:"cache"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:           "3000",
		Env:            "production",
		LogLevel:       "info",
		RequestTimeout: Duration(60 * time.Second),
		LeetCodeURL:    leetcode.DefaultEndpoint,
		AI: AIConfig{
			Provider: llm.ProviderGroq,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendMemory,
			RedisAddr: "127.0.0.1:6379",
			Prefix:    "dsacoach",
			AI:        Domain{MaxSize: cache.DefaultAIDomain.MaxSize, TTL: Duration(cache.DefaultAIDomain.TTL)},
			Profile:   Domain{MaxSize: cache.DefaultProfileDomain.MaxSize, TTL: Duration(cache.DefaultProfileDomain.TTL)},
			Dataset:   Domain{MaxSize: cache.DefaultDatasetDomain.MaxSize, TTL: Duration(cache.DefaultDatasetDomain.TTL)},
		},
	}
}

// Load builds the config from defaults, the YAML file named by CONFIG_FILE
// (if set) and environment overrides.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = Duration(d)
		return nil
	}

	str("PORT", &c.Port)
	str("ENV", &c.Env)
	str("LOG_LEVEL", &c.LogLevel)
	str("DATASET_PATH", &c.DatasetPath)
	str("LEETCODE_GRAPHQL_URL", &c.LeetCodeURL)

	str("AI_PROVIDER", &c.AI.Provider)
	str("AI_MODEL", &c.AI.Model)
	str("LLM_BASE_URL", &c.AI.BaseURL)
	str("GROQ_API_KEY", &c.AI.GroqAPIKey)
	str("OPENAI_API_KEY", &c.AI.OpenAIAPIKey)
	str("GEMINI_API_KEY", &c.AI.GeminiAPIKey)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("CACHE_PREFIX", &c.Cache.Prefix)

	return errors.Join(
		dur("REQUEST_TIMEOUT", &c.RequestTimeout),
		num("AI_CACHE_SIZE", &c.Cache.AI.MaxSize),
		dur("AI_CACHE_TTL", &c.Cache.AI.TTL),
		num("PROFILE_CACHE_SIZE", &c.Cache.Profile.MaxSize),
		dur("PROFILE_CACHE_TTL", &c.Cache.Profile.TTL),
		num("DATASET_CACHE_SIZE", &c.Cache.Dataset.MaxSize),
		dur("DATASET_CACHE_TTL", &c.Cache.Dataset.TTL),
	)
}

// Validate checks the settings the gateway cannot start without.
func (c Config) Validate() error {
	var errs []error
	if !llm.SupportedProvider(c.AI.Provider) {
		errs = append(errs, fmt.Errorf("AI_PROVIDER %q is not one of groq, openai, gemini", c.AI.Provider))
	} else if c.AI.APIKey() == "" {
		errs = append(errs, fmt.Errorf("%s_API_KEY is required for AI_PROVIDER=%s", strings.ToUpper(c.AI.Provider), c.AI.Provider))
	}
	if c.Cache.Backend != cache.BackendMemory && c.Cache.Backend != cache.BackendRedis {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q is not one of memory, redis", c.Cache.Backend))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	return errors.Join(errs...)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
