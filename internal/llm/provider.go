package llm

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures an LLM provider.
type Config struct {
	Provider string
	APIKey   string
	// Model overrides the provider default when set.
	Model string
}

// NewClient creates an LLM client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(ctx context.Context, cfg Config) (domain.LLMClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(cfg.APIKey, WithModel(cfg.Model)), nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(cfg.APIKey, WithModel(cfg.Model)), nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, mock)", cfg.Provider)
	}
}

// Option configures the OpenAI and Anthropic clients.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	model      string
	maxRetries int
}

func newClientConfig(defaultModel string, opts []Option) clientConfig {
	cfg := clientConfig{model: defaultModel, maxRetries: 2}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func WithModel(model string) Option {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxRetries sets how often the SDK retries rate limits and server
// errors before giving up.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}
