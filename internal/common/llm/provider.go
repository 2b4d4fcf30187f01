// Package llm is the boundary between agents and generative model providers.
package llm

import (
	"context"
	"errors"
	"fmt"

	"site-pipeline/internal/common/config"
	apihttp "site-pipeline/internal/common/http"
)

// Request is a single completion request.
type Request struct {
	// Agent is carried for logging and routing only.
	Agent        string
	Model        string
	SystemPrompt string
	UserPrompt   string
	// SchemaHint is the JSON schema the answer must satisfy; providers that
	// support a JSON response mode switch it on when set.
	SchemaHint  string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Provider completes prompts against a model.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("EMPTY_RESPONSE")

type temporary interface {
	Temporary() bool
}

// IsRetryable classifies a provider error. Errors that do not say otherwise
// are treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	if status, ok := openAIStatus(err); ok {
		return status == 429 || status >= 500
	}
	return true
}

// NewProvider builds the provider selected in configuration.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	timeout := config.GetDuration(cfg.Timeout)
	switch cfg.Provider {
	case "gateway":
		return NewGatewayProvider(cfg.BaseURL, cfg.APIKey, apihttp.NewClient(timeout)), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
