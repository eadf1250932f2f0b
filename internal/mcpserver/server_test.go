package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staticSource(results ...domain.RawResult) domain.SourceHandler {
	return domain.SourceHandlerFunc(func(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.RawResult, error) {
		return results, nil
	})
}

func newTestConfig(t *testing.T) Config {
	t.Helper()
	logger := zap.NewNop()
	reg := service.NewSourceRegistry(logger)
	require.NoError(t, reg.Register("memory", domain.SourceTypeMemory,
		staticSource(domain.RawResult{Title: "note", Snippet: "routing keeps memory first", RelevanceScore: 0.9}), 10))
	web := staticSource(domain.RawResult{Title: "web", Snippet: "from the web", URL: "https://example.com", RelevanceScore: 0.8})
	require.NoError(t, reg.Register("web", domain.SourceTypeWebSearch, web, 5))

	router := service.NewRouter(reg, logger)
	content := service.NewContentService(router, service.NewSynthesizer(nil, logger), logger)
	return Config{
		Content:   content,
		Scorer:    service.NewQualityScorer(logger),
		WebSearch: web,
		Logger:    logger,
	}
}

func testSession(t *testing.T, cfg Config) *mcp.ClientSession {
	t.Helper()
	ts := httptest.NewServer(HTTPHandler(NewServer(cfg)))
	t.Cleanup(ts.Close)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{Endpoint: ts.URL}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return result, tc.Text
		}
	}
	return result, ""
}

func TestListTools(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"route_request", "synthesize_content", "score_content",
		"query_content", "web_search", "list_sources",
	}, names)
}

func TestRouteRequestTool(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, text := callTool(t, session, "route_request", map[string]any{"query": "what is routing", "strategy": "balanced"})
	require.False(t, result.IsError, text)

	var decision domain.RoutingDecision
	require.NoError(t, json.Unmarshal([]byte(text), &decision))
	assert.Equal(t, []string{"memory", "web"}, decision.SourcesToQuery)
	assert.Equal(t, 0.9, decision.ExpectedQuality)

	result, text = callTool(t, session, "route_request", map[string]any{"query": "x", "strategy": "fastest"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "unknown routing strategy")
}

func TestSynthesizeTool(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, text := callTool(t, session, "synthesize_content", map[string]any{
		"query": "sky colour",
		"blocks": []map[string]any{
			{"source_id": "a", "source_name": "Atlas", "body": "the sky colour is blue", "relevance_score": 0.9},
			{"source_id": "b", "source_name": "Blog", "body": "sky colour varies", "relevance_score": 0.7},
		},
	})
	require.False(t, result.IsError, text)

	var out domain.SynthesizedContent
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.InDelta(t, 0.8, out.QualityScore, 1e-9)
	assert.Len(t, out.Sources, 2)
	assert.Contains(t, out.AggregatedContent, "[Source: Atlas]")

	result, _ = callTool(t, session, "synthesize_content", map[string]any{
		"query":  "q",
		"blocks": []map[string]any{{"body": ""}},
	})
	assert.True(t, result.IsError)
}

func TestScoreTool(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, text := callTool(t, session, "score_content", map[string]any{
		"content":     "short note",
		"source_type": "memory",
		"relevance":   1.0,
	})
	require.False(t, result.IsError, text)

	var out domain.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Len(t, out.Components, 7)
	assert.Greater(t, out.OverallScore, 0.5)

	result, _ = callTool(t, session, "score_content", map[string]any{
		"content": "x", "source_type": "memory", "created_at": "yesterday",
	})
	assert.True(t, result.IsError)

	result, text = callTool(t, session, "score_content", map[string]any{
		"content": "x", "source_type": "memory", "relevance": 5.0,
	})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "relevance must be between 0 and 1")
}

func TestQueryContentTool(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, text := callTool(t, session, "query_content", map[string]any{"query": "memory routing"})
	require.False(t, result.IsError, text)

	var out service.QueryResult
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.True(t, out.MemoryHit)
	assert.Len(t, out.Blocks, 1)
}

func TestWebSearchTool(t *testing.T) {
	cfg := newTestConfig(t)
	session := testSession(t, cfg)

	result, text := callTool(t, session, "web_search", map[string]any{"query": "go"})
	require.False(t, result.IsError, text)
	assert.Contains(t, text, `"count": 1`)

	cfg.WebSearch = domain.SourceHandlerFunc(func(context.Context, string, domain.QueryOptions) ([]domain.RawResult, error) {
		return nil, errors.New("quota exceeded")
	})
	session = testSession(t, cfg)
	result, text = callTool(t, session, "web_search", map[string]any{"query": "go"})
	assert.True(t, result.IsError)
	assert.Equal(t, "quota exceeded", text)

	cfg.WebSearch = nil
	session = testSession(t, cfg)
	result, _ = callTool(t, session, "web_search", map[string]any{"query": "go"})
	assert.True(t, result.IsError)
}

func TestListSourcesTool(t *testing.T) {
	session := testSession(t, newTestConfig(t))

	result, text := callTool(t, session, "list_sources", map[string]any{})
	require.False(t, result.IsError, text)

	var out struct {
		Sources []domain.SourceInfo `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Sources, 2)
	assert.Equal(t, "memory", out.Sources[0].ID)
}
