package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dsacoach-gateway/internal/upstream"
)

const (
	maxRequestSize = 2 << 20   // whole JSON payload
	maxMessageSize = 512 << 10 // one message
	maxErrorBody   = 64 << 10
)

func (c *client) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llmclient: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}

	start := time.Now()
	log := c.logger.With(zap.String("model", req.Model))
	log.Debug("chat completion starting", zap.Int("messages", len(req.Messages)))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UpstreamTimeout)
	defer cancel()

	resp, err := postJSON(ctx, c.retrier, c.httpClient, c.cfg.BaseURL+"/v1/chat/completions", req, http.Header{
		"Authorization": {"Bearer " + c.cfg.APIKey},
	})
	if err != nil {
		log.Error("chat completion failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("llmclient: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, c.providerError(resp)
	}

	out := &ChatResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("llmclient: decode upstream response: %w", err)
	}
	if len(out.Choices) == 0 {
		log.Error("provider returned no choices")
		return nil, errors.New("llmclient: provider returned no choices")
	}
	if out.Usage == nil {
		out.Usage = &Usage{}
	}

	log.Info("chat completion done",
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// providerError maps a non-2xx response to a ProviderError. 401 wraps
// ErrInvalidAPIKey.
func (c *client) providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	pe := &ProviderError{Provider: c.cfg.Provider, StatusCode: resp.StatusCode}
	var env openAIError
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		pe.Message = env.Error.Message
	} else {
		pe.Message = truncate(string(raw), 200)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		pe.Err = ErrInvalidAPIKey
	}

	c.logger.Error("provider error",
		zap.Int("status", resp.StatusCode),
		zap.String("error_type", env.Error.Type),
		zap.String("error_message", pe.Message),
	)
	return pe
}

// postJSON encodes payload once and POSTs it through the retrier, rebuilding
// the request on each attempt.
func postJSON(ctx context.Context, r upstream.Retrier, hc *http.Client, url string, payload any, header http.Header) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if len(body) > maxRequestSize {
		return nil, fmt.Errorf("request is %d bytes, max %d", len(body), maxRequestSize)
	}

	return r.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build HTTP request: %w", err)
		}
		req.Header = header.Clone()
		req.Header.Set("Content-Type", "application/json")
		return hc.Do(req)
	})
}
