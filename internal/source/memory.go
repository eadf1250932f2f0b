package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"go.uber.org/zap"
)

// Memory serves queries from the local document store. When an embedder is
// configured, recall is by vector similarity; otherwise the store falls
// back to text search.
type Memory struct {
	store    domain.DocumentStore
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

func NewMemory(store domain.DocumentStore, embedder domain.EmbeddingClient, logger *zap.Logger) *Memory {
	return &Memory{store: store, embedder: embedder, logger: logger}
}

func (m *Memory) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.RawResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, service.ErrQueryEmpty
	}
	if m.store == nil {
		return nil, service.ErrMemoryUnavailable
	}
	opts = opts.WithDefaults()

	search := domain.DocumentSearchOpts{Query: text, Limit: opts.Limit}
	if m.embedder != nil {
		vec, err := m.embedder.Embed(ctx, text)
		if err != nil {
			m.logger.Warn("embedding failed, using text search", zap.Error(err))
		} else {
			search.Embedding = vec
		}
	}

	docs, err := m.store.Search(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("%w: memory: %v", service.ErrSourceQueryFailed, err)
	}

	results := make([]domain.RawResult, 0, len(docs))
	for _, d := range docs {
		snippet := d.Body
		if d.Summary != "" {
			snippet = d.Summary
		}
		results = append(results, domain.RawResult{
			Title:          d.Title,
			Snippet:        snippet,
			URL:            d.URL,
			RelevanceScore: d.Score,
		})
	}
	return results, nil
}
