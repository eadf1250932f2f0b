// Package mcpserver exposes routing, scoring and synthesis as Model Context
// Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/buildconfig"
	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var toolCalls = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "contentmesh",
		Name:      "mcp_tool_calls_total",
		Help:      "MCP tool invocations by tool and outcome.",
	},
	[]string{"tool", "status"},
)

// Config wires the services the tools call into. WebSearch may be nil, in
// which case web_search reports itself unavailable.
type Config struct {
	Content   *service.ContentService
	Scorer    *service.QualityScorer
	WebSearch domain.SourceHandler
	Logger    *zap.Logger
}

// NewServer builds an MCP server with every tool registered.
func NewServer(cfg Config) *mcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "contentmesh",
		Version: buildconfig.Version(),
	}, nil)

	t := &tools{cfg: cfg}
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "route_request",
			Description: "Decide which content sources should answer a query under a routing strategy.",
		},
		t.routeRequest,
	)
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "synthesize_content",
			Description: "Merge content blocks into one answer with contradictions, gaps and recommendations.",
		},
		t.synthesizeContent,
	)
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "score_content",
			Description: "Score a piece of content on reliability, freshness, relevance, completeness, accuracy, citations and feedback.",
		},
		t.scoreContent,
	)
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "query_content",
			Description: "Route a query, fetch from the selected sources and return a synthesized answer.",
		},
		t.queryContent,
	)
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "web_search",
			Description: "Search the web and return titles, snippets, URLs and relevance scores.",
		},
		t.webSearch,
	)
	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "list_sources",
			Description: "List registered content sources with their priority and running metrics.",
		},
		t.listSources,
	)

	return srv
}

// HTTPHandler serves srv over the streamable HTTP transport.
func HTTPHandler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return srv },
		&mcp.StreamableHTTPOptions{},
	)
}

type tools struct {
	cfg Config
}

type RouteRequestInput struct {
	Query    string         `json:"query" jsonschema:"the query to route"`
	Strategy string         `json:"strategy,omitempty" jsonschema:"memory_first, external_first, balanced, memory_only or external_only"`
	Context  map[string]any `json:"context,omitempty" jsonschema:"optional request context"`
}

func (t *tools) routeRequest(ctx context.Context, _ *mcp.CallToolRequest, in RouteRequestInput) (*mcp.CallToolResult, any, error) {
	decision, err := t.cfg.Content.Router().Route(in.Query, domain.RoutingStrategy(in.Strategy), in.Context)
	if err != nil {
		return t.fail("route_request", err)
	}
	return t.succeed("route_request", decision)
}

type BlockInput struct {
	SourceID       string   `json:"source_id,omitempty" jsonschema:"identity of the producing source"`
	SourceName     string   `json:"source_name,omitempty" jsonschema:"display name used in citations"`
	SourceType     string   `json:"source_type,omitempty"`
	Title          string   `json:"title,omitempty"`
	Body           string   `json:"body" jsonschema:"the block text"`
	RelevanceScore *float64 `json:"relevance_score,omitempty" jsonschema:"relevance between 0 and 1, default 0.5"`
}

type SynthesizeInput struct {
	Query  string       `json:"query" jsonschema:"the query the blocks answer"`
	Blocks []BlockInput `json:"blocks" jsonschema:"content blocks to merge"`
}

func (t *tools) synthesizeContent(ctx context.Context, _ *mcp.CallToolRequest, in SynthesizeInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Query) == "" {
		return t.fail("synthesize_content", service.ErrQueryEmpty)
	}

	now := time.Now().UTC()
	blocks := make([]domain.ContentBlock, 0, len(in.Blocks))
	for i, b := range in.Blocks {
		if b.Body == "" {
			return t.fail("synthesize_content", fmt.Errorf("%w: block %d has no body", service.ErrInvalidArgument, i))
		}
		relevance := domain.DefaultRelevanceScore
		if b.RelevanceScore != nil {
			relevance = *b.RelevanceScore
		}
		id := b.SourceID
		if id == "" {
			id = "src_" + uuid.NewString()
		}
		name := b.SourceName
		if name == "" {
			name = id
		}
		blocks = append(blocks, domain.ContentBlock{
			ContentID: "block_" + uuid.NewString(),
			Source: domain.ContentSource{
				SourceID:    id,
				SourceType:  domain.SourceType(b.SourceType),
				Name:        name,
				LastUpdated: now,
			},
			Title:          b.Title,
			Body:           b.Body,
			RelevanceScore: relevance,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return t.succeed("synthesize_content", t.cfg.Content.Synthesizer().Synthesize(ctx, in.Query, blocks))
}

type ScoreInput struct {
	Content       string   `json:"content" jsonschema:"text to score"`
	SourceType    string   `json:"source_type" jsonschema:"source kind, e.g. memory, web_search, verified_api"`
	CreatedAt     string   `json:"created_at,omitempty" jsonschema:"RFC 3339 creation time, default now"`
	Relevance     *float64 `json:"relevance,omitempty"`
	Completeness  *float64 `json:"completeness,omitempty"`
	Accuracy      *float64 `json:"accuracy,omitempty"`
	CitationCount int      `json:"citation_count,omitempty"`
	UserFeedback  *float64 `json:"user_feedback,omitempty"`
}

func (t *tools) scoreContent(ctx context.Context, _ *mcp.CallToolRequest, in ScoreInput) (*mcp.CallToolResult, any, error) {
	createdAt := time.Now().UTC()
	if in.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, in.CreatedAt)
		if err != nil {
			return t.fail("score_content", fmt.Errorf("%w: created_at must be RFC 3339", service.ErrInvalidArgument))
		}
		createdAt = parsed
	}

	si := service.DefaultScoreInput()
	setIf(&si.Relevance, in.Relevance)
	setIf(&si.Completeness, in.Completeness)
	setIf(&si.Accuracy, in.Accuracy)
	setIf(&si.UserFeedback, in.UserFeedback)
	si.CitationCount = in.CitationCount
	if err := si.Validate(); err != nil {
		return t.fail("score_content", err)
	}

	return t.succeed("score_content", t.cfg.Scorer.ScoreContent(in.Content, in.SourceType, createdAt, si))
}

type QueryInput struct {
	Query    string `json:"query" jsonschema:"the question to answer"`
	Strategy string `json:"strategy,omitempty" jsonschema:"routing strategy, default is the server's"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum results per source"`
	Language string `json:"language,omitempty" jsonschema:"result language code, default en"`
}

func (t *tools) queryContent(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, any, error) {
	res, err := t.cfg.Content.Query(ctx, service.QueryRequest{
		Query:    in.Query,
		Strategy: domain.RoutingStrategy(in.Strategy),
		Options:  domain.QueryOptions{Limit: in.Limit, Language: in.Language},
	})
	if err != nil {
		return t.fail("query_content", err)
	}
	return t.succeed("query_content", res)
}

type WebSearchInput struct {
	Query    string `json:"query" jsonschema:"search query"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum results to return, default 10"`
	Language string `json:"language,omitempty" jsonschema:"language for results, default en"`
}

type webSearchOutput struct {
	Query   string             `json:"query"`
	Results []domain.RawResult `json:"results"`
	Count   int                `json:"count"`
}

func (t *tools) webSearch(ctx context.Context, _ *mcp.CallToolRequest, in WebSearchInput) (*mcp.CallToolResult, any, error) {
	if t.cfg.WebSearch == nil {
		return t.fail("web_search", fmt.Errorf("web search is not configured"))
	}
	results, err := t.cfg.WebSearch.Query(ctx, in.Query, domain.QueryOptions{Limit: in.Limit, Language: in.Language})
	if err != nil {
		return t.fail("web_search", err)
	}
	return t.succeed("web_search", webSearchOutput{Query: in.Query, Results: results, Count: len(results)})
}

type ListSourcesInput struct{}

func (t *tools) listSources(ctx context.Context, _ *mcp.CallToolRequest, _ ListSourcesInput) (*mcp.CallToolResult, any, error) {
	return t.succeed("list_sources", map[string]any{"sources": t.cfg.Content.Router().Registry().List()})
}

func (t *tools) fail(tool string, err error) (*mcp.CallToolResult, any, error) {
	toolCalls.WithLabelValues(tool, "error").Inc()
	t.cfg.Logger.Debug("mcp tool failed", zap.String("tool", tool), zap.Error(err))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}, nil, nil
}

func (t *tools) succeed(tool string, result any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return t.fail(tool, fmt.Errorf("format result: %w", err))
	}
	toolCalls.WithLabelValues(tool, "success").Inc()
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
