package source

import (
	"fmt"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
)

// MockResults returns the fixed placeholder results served when no search
// provider is configured or the provider's answer cannot be parsed.
func MockResults(query string, limit int) []domain.RawResult {
	results := []domain.RawResult{
		{
			Title:          fmt.Sprintf("Result 1: %s", query),
			Snippet:        fmt.Sprintf("This is a mock result about %s. In a production environment, this would be real search results.", query),
			URL:            fmt.Sprintf("https://example.com/search?q=%s", query),
			RelevanceScore: 0.95,
		},
		{
			Title:          fmt.Sprintf("Result 2: %s", query),
			Snippet:        fmt.Sprintf("Another mock result providing information on %s.", query),
			URL:            "https://example.com/article-2",
			RelevanceScore: 0.85,
		},
		{
			Title:          fmt.Sprintf("Result 3: %s", query),
			Snippet:        fmt.Sprintf("Additional information about %s from various sources.", query),
			URL:            "https://example.com/article-3",
			RelevanceScore: 0.75,
		},
	}
	if limit >= 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}
