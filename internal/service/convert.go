package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/google/uuid"
)

const maxKeywords = 10

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// SourceProfile holds the provenance attached to every block a source yields.
type SourceProfile struct {
	SourceID    string
	Type        domain.SourceType
	IDPrefix    string
	DefaultName string
	Confidence  float64
}

// ProfileFor returns the conversion profile for a registered source.
func ProfileFor(sourceID string, t domain.SourceType) SourceProfile {
	p := SourceProfile{SourceID: sourceID, Type: t}
	switch t {
	case domain.SourceTypeMemory:
		p.IDPrefix, p.DefaultName, p.Confidence = "mem", "Memory", 0.9
	case domain.SourceTypeWebSearch:
		p.IDPrefix, p.DefaultName, p.Confidence = "web", "Web Search", 0.7
	default:
		p.IDPrefix, p.DefaultName, p.Confidence = string(t), sourceID, 0.5
	}
	return p
}

// BlocksFromResults converts raw source output into content blocks, each
// with its own freshly built ContentSource.
func BlocksFromResults(results []domain.RawResult, p SourceProfile, now time.Time) []domain.ContentBlock {
	blocks := make([]domain.ContentBlock, 0, len(results))
	for _, r := range results {
		name := r.URL
		if name == "" {
			name = p.DefaultName
		}
		relevance := clampUnit(r.RelevanceScore)

		src := domain.ContentSource{
			SourceID:        p.IDPrefix + "_" + uuid.New().String(),
			SourceType:      p.Type,
			Name:            name,
			QualityScore:    relevance,
			ConfidenceScore: p.Confidence,
			LastUpdated:     now,
			Metadata: map[string]any{
				"url":       r.URL,
				"source":    string(p.Type),
				"source_id": p.SourceID,
			},
		}

		blocks = append(blocks, domain.ContentBlock{
			ContentID:      "block_" + uuid.New().String(),
			Source:         src,
			Title:          r.Title,
			Body:           r.Snippet,
			Keywords:       ExtractKeywords(r.Snippet),
			RelevanceScore: relevance,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return blocks
}

// ExtractKeywords returns up to ten distinct lowercase words longer than three
// characters, skipping stop words, in order of first appearance.
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		w = strings.Trim(w, ".,!?;:")
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
