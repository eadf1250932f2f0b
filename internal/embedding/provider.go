package embedding

import (
	"fmt"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/openai/openai-go/option"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config selects the embedding backend used for document ingestion and
// memory recall.
type Config struct {
	Provider string
	APIKey   string
	// BaseURL targets an OpenAI-compatible endpoint instead of api.openai.com.
	BaseURL string
}

// NewClient returns the client for cfg.Provider. Vectors must match the
// width of the documents table, so every provider yields Dimensions floats.
func NewClient(cfg Config) (domain.EmbeddingClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embedding provider")
		}
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return NewOpenAIClient(cfg.APIKey, opts...), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: openai, mock)", cfg.Provider)
	}
}
