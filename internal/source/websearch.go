package source

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/llm"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"go.uber.org/zap"
)

const searchPrompt = `Search the web for information about: %s

Provide %d most relevant results with:
1. Title
2. Summary/snippet
3. URL (if available)
4. Relevance score (0-1)

Write the results in the language with code: %s

Format as JSON array with fields: title, snippet, url, relevance_score`

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// searchItem mirrors one element of the model's JSON answer. RelevanceScore
// is a pointer so that a missing score can be told apart from zero.
type searchItem struct {
	Title          string   `json:"title"`
	Snippet        string   `json:"snippet"`
	URL            string   `json:"url"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// WebSearch answers queries by prompting a language model to act as a
// search engine. With no client configured it serves MockResults.
type WebSearch struct {
	client domain.LLMClient
	logger *zap.Logger
}

func NewWebSearch(client domain.LLMClient, logger *zap.Logger) *WebSearch {
	return &WebSearch{client: client, logger: logger}
}

func (w *WebSearch) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.RawResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, service.ErrQueryEmpty
	}
	opts = opts.WithDefaults()

	if w.client == nil {
		w.logger.Warn("no search provider configured, using mock results", zap.String("query", text))
		return MockResults(text, opts.Limit), nil
	}

	answer, err := w.client.Complete(ctx, fmt.Sprintf(searchPrompt, text, opts.Limit, opts.Language))
	if err != nil {
		return nil, fmt.Errorf("%w: web search: %v", service.ErrSourceQueryFailed, err)
	}

	results, err := parseSearchResults(answer, opts.Limit)
	if err != nil {
		w.logger.Warn("failed to parse search results, using mock results",
			zap.String("query", text),
			zap.Error(err),
		)
		return MockResults(text, opts.Limit), nil
	}

	w.logger.Info("web search completed",
		zap.String("query", text),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// parseSearchResults extracts the first-to-last bracketed span of the answer
// and decodes it. An answer with no array at all yields no results.
func parseSearchResults(answer string, limit int) ([]domain.RawResult, error) {
	raw := jsonArrayPattern.FindString(llm.StripCodeFence(answer))
	if raw == "" {
		return []domain.RawResult{}, nil
	}

	var items []searchItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}

	results := make([]domain.RawResult, 0, len(items))
	for _, it := range items {
		relevance := domain.DefaultRelevanceScore
		if it.RelevanceScore != nil {
			relevance = *it.RelevanceScore
		}
		results = append(results, domain.RawResult{
			Title:          it.Title,
			Snippet:        it.Snippet,
			URL:            it.URL,
			RelevanceScore: relevance,
		})
	}
	return results, nil
}
