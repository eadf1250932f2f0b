package domain

import "time"

type SourceType string

const (
	SourceTypeMemory       SourceType = "memory"
	SourceTypeWebSearch    SourceType = "web_search"
	SourceTypeAPI          SourceType = "api"
	SourceTypeExternal     SourceType = "external"
	SourceTypeUserUploaded SourceType = "user_uploaded"
)

func ValidSourceType(t string) bool {
	switch SourceType(t) {
	case SourceTypeMemory, SourceTypeWebSearch, SourceTypeAPI, SourceTypeExternal, SourceTypeUserUploaded:
		return true
	}
	return false
}

// ContentSource describes where a content block came from. A new value is
// built for every fetch; nothing mutates it afterwards.
type ContentSource struct {
	SourceID        string         `json:"source_id"`
	SourceType      SourceType     `json:"source_type"`
	Name            string         `json:"name"`
	QualityScore    float64        `json:"quality_score"`
	ConfidenceScore float64        `json:"confidence_score"`
	LastUpdated     time.Time      `json:"last_updated"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// DefaultRelevanceScore is used when a source does not report relevance.
const DefaultRelevanceScore = 0.5

// ContentBlock is one retrieved unit of content plus its provenance.
type ContentBlock struct {
	ContentID      string        `json:"content_id"`
	Source         ContentSource `json:"source"`
	Title          string        `json:"title,omitempty"`
	Body           string        `json:"body"`
	Summary        string        `json:"summary,omitempty"`
	Keywords       []string      `json:"keywords,omitempty"`
	RelevanceScore float64       `json:"relevance_score"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// RawResult is what a source handler returns before conversion into blocks.
type RawResult struct {
	Title          string  `json:"title"`
	Snippet        string  `json:"snippet"`
	URL            string  `json:"url,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// QueryOptions are passed through to source handlers.
type QueryOptions struct {
	Limit    int    `json:"limit"`
	Language string `json:"language"`
}

const (
	DefaultQueryLimit    = 10
	DefaultQueryLanguage = "en"
)

// WithDefaults fills unset options.
func (o QueryOptions) WithDefaults() QueryOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultQueryLimit
	}
	if o.Language == "" {
		o.Language = DefaultQueryLanguage
	}
	return o
}
