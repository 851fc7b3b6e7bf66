package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// SystemPrompt frames every model call.
const SystemPrompt = "You are an expert competitive programming coach. Respond in structured JSON when asked."

const (
	chatTemperature = 0.3
	chatMaxTokens   = 2000
	geminiMaxTokens = 2048
)

type providerDefaults struct {
	model   string
	baseURL string
}

var defaults = map[string]providerDefaults{
	ProviderGroq:   {model: "llama-3.3-70b-versatile", baseURL: "https://api.groq.com/openai"},
	ProviderOpenAI: {model: "gpt-4o-mini", baseURL: "https://api.openai.com"},
	ProviderGemini: {model: "gemini-2.0-flash-lite", baseURL: "https://generativelanguage.googleapis.com"},
}

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Settings selects and configures a Generator. Empty Model and BaseURL fall
// back to the provider's defaults.
type Settings struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// SupportedProvider reports whether name is one of groq, openai or gemini.
func SupportedProvider(name string) bool {
	_, ok := defaults[strings.ToLower(name)]
	return ok
}

// NewGenerator builds the backend named by s.Provider.
func NewGenerator(s Settings, logger *zap.Logger) (Generator, error) {
	provider := strings.ToLower(s.Provider)
	d, ok := defaults[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported AI provider %q", s.Provider)
	}
	if s.Model == "" {
		s.Model = d.model
	}
	if s.BaseURL == "" {
		s.BaseURL = d.baseURL
	}

	if provider == ProviderGemini {
		return NewGeminiGenerator(s, logger)
	}

	c, err := NewClient(Config{
		BaseURL:         s.BaseURL,
		APIKey:          s.APIKey,
		Provider:        provider,
		UpstreamTimeout: s.Timeout,
		MaxRetries:      s.MaxRetries,
		HTTPClient:      s.HTTPClient,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("%s generator: %w", provider, err)
	}
	return &ChatGenerator{client: c, provider: provider, model: s.Model}, nil
}

// ChatGenerator drives an OpenAI-compatible Client with the coach system
// prompt.
type ChatGenerator struct {
	client   Client
	provider string
	model    string
}

var _ Generator = (*ChatGenerator)(nil)

func (g *ChatGenerator) Provider() string { return g.provider }

func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.ChatCompletion(ctx, &ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: SystemPrompt},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Close releases idle upstream connections.
func (g *ChatGenerator) Close() error {
	if closer, ok := g.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
