package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SourceHandler is the capability a registered source exposes to the
// content pipeline.
type SourceHandler interface {
	Query(ctx context.Context, text string, opts QueryOptions) ([]RawResult, error)
}

// SourceHandlerFunc adapts a plain function to SourceHandler.
type SourceHandlerFunc func(ctx context.Context, text string, opts QueryOptions) ([]RawResult, error)

func (f SourceHandlerFunc) Query(ctx context.Context, text string, opts QueryOptions) ([]RawResult, error) {
	return f(ctx, text, opts)
}

type DocumentStore interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, opts DocumentSearchOpts) ([]DocumentWithScore, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMClient is a text-completion provider.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error)
}

// ResultCache stores serialized source results keyed by query fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
