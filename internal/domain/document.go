package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a piece of content held by the memory source.
type Document struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title,omitempty"`
	Body      string         `json:"body"`
	Summary   string         `json:"summary,omitempty"`
	URL       string         `json:"url,omitempty"`
	Keywords  []string       `json:"keywords,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type DocumentWithScore struct {
	Document
	Score float64 `json:"score"`
}

type DocumentSearchOpts struct {
	Query     string
	Embedding []float32
	Limit     int
}
