package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"dsacoach-gateway/internal/upstream"
)

// GeminiGenerator calls the Gemini generateContent REST endpoint. Gemini has
// no system role on this path, so SystemPrompt is prepended to the prompt.
type GeminiGenerator struct {
	cfg        Config
	model      string
	httpClient *http.Client
	retrier    upstream.Retrier
	logger     *zap.Logger
}

var _ Generator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(s Settings, logger *zap.Logger) (*GeminiGenerator, error) {
	cfg := (&Config{
		BaseURL:         s.BaseURL,
		APIKey:          s.APIKey,
		Provider:        ProviderGemini,
		UpstreamTimeout: s.Timeout,
		MaxRetries:      s.MaxRetries,
		HTTPClient:      s.HTTPClient,
	}).WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gemini generator: invalid config: %w", err)
	}
	model := s.Model
	if model == "" {
		model = defaults[ProviderGemini].model
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gemini")

	return &GeminiGenerator{
		cfg:        cfg,
		model:      model,
		httpClient: httpClientFor(cfg),
		retrier: upstream.Retrier{
			Name:        "gemini",
			MaxRetries:  cfg.MaxRetries,
			BaseBackoff: cfg.BaseBackoff,
			Logger:      logger,
		},
		logger: logger,
	}, nil
}

func (g *GeminiGenerator) Provider() string { return ProviderGemini }

func (g *GeminiGenerator) Generate(parentCtx context.Context, prompt string) (string, error) {
	start := time.Now()

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  RoleUser,
			Parts: []geminiPart{{Text: SystemPrompt + "\n\n" + prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     chatTemperature,
			MaxOutputTokens: geminiMaxTokens,
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, g.cfg.UpstreamTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, url.PathEscape(g.model))

	resp, err := postJSON(ctx, g.retrier, g.httpClient, endpoint, payload, http.Header{
		"X-Goog-Api-Key": {g.cfg.APIKey},
	})
	if err != nil {
		g.logger.Error("gemini request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", g.providerError(resp)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode upstream response: %w", err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", out.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini: provider returned no candidates")
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	g.logger.Info("gemini request completed",
		zap.String("model", g.model),
		zap.String("finish_reason", out.Candidates[0].FinishReason),
		zap.Duration("duration", time.Since(start)),
	)
	return text.String(), nil
}

// providerError maps a non-2xx response. Gemini answers a bad key with 400
// and a message naming the key, so that case wraps ErrInvalidAPIKey too.
func (g *GeminiGenerator) providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	pe := &ProviderError{Provider: ProviderGemini, StatusCode: resp.StatusCode}
	var gerr geminiErrorResponse
	if err := json.Unmarshal(raw, &gerr); err == nil && gerr.Error.Message != "" {
		pe.Message = gerr.Error.Message
	} else {
		pe.Message = truncate(string(raw), 200)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		pe.Err = ErrInvalidAPIKey
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(pe.Message, "API key"):
		pe.Err = ErrInvalidAPIKey
	}

	g.logger.Error("gemini provider error",
		zap.Int("status", resp.StatusCode),
		zap.String("error_message", pe.Message),
	)
	return pe
}

// Close releases idle upstream connections.
func (g *GeminiGenerator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}
