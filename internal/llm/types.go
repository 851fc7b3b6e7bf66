package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is sent as-is to /v1/chat/completions.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func (r *ChatRequest) Validate() error {
	switch {
	case r.Model == "":
		return errors.New("model is required")
	case len(r.Messages) == 0:
		return errors.New("at least one message is required")
	case r.Temperature < 0 || r.Temperature > 2:
		return errors.New("temperature must be between 0 and 2")
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleSystem:
		case RoleUser, RoleAssistant:
			if m.Content == "" {
				return fmt.Errorf("messages[%d]: content is required", i)
			}
		default:
			return fmt.Errorf("messages[%d]: invalid role %q", i, m.Role)
		}
		if len(m.Content) > maxMessageSize {
			return fmt.Errorf("messages[%d]: content is %d bytes, max %d", i, len(m.Content), maxMessageSize)
		}
	}
	return nil
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatResponse is the decoded completion. Usage is never nil.
type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage"`
}

// Text returns the first choice's content.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Client speaks the OpenAI chat-completions protocol. Groq serves the same
// protocol under its own base URL.
type Client interface {
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
