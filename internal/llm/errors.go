package llm

import (
	"errors"
	"fmt"
)

// ErrInvalidAPIKey is wrapped by ProviderError when the upstream rejects
// the configured credentials.
var ErrInvalidAPIKey = errors.New("invalid API key")

// ProviderError is a non-2xx answer from a model provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// truncate limits string length for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
