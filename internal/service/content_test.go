package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContentService(t *testing.T, mem, web *stubSource, opts ...ContentServiceOption) (*ContentService, *SourceRegistry) {
	t.Helper()
	reg := newTestRegistry()
	if mem != nil {
		require.NoError(t, reg.Register("memory", domain.SourceTypeMemory, mem, 10))
	}
	if web != nil {
		require.NoError(t, reg.Register("web", domain.SourceTypeWebSearch, web, 5))
	}
	router := NewRouter(reg, zap.NewNop())
	synth := NewSynthesizer(nil, zap.NewNop())
	return NewContentService(router, synth, zap.NewNop(), opts...), reg
}

func TestContentService_MemoryHitSkipsWeb(t *testing.T) {
	mem := &stubSource{results: []domain.RawResult{
		{Title: "cached", Snippet: "indexes speed up queries", RelevanceScore: 0.9},
		{Title: "cached 2", Snippet: "btree indexes", RelevanceScore: 0.8},
	}}
	web := &stubSource{results: []domain.RawResult{{Snippet: "web", RelevanceScore: 0.9}}}
	svc, reg := newTestContentService(t, mem, web)

	res, err := svc.Query(context.Background(), QueryRequest{Query: "indexes"})
	require.NoError(t, err)

	assert.True(t, res.MemoryHit)
	assert.Equal(t, 1, mem.calls)
	assert.Equal(t, 0, web.calls)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, ReportSuccess, res.Reports[0].Status)
	assert.Equal(t, ReportSkipped, res.Reports[1].Status)
	assert.Len(t, res.Blocks, 2)
	assert.InDelta(t, 0.85, res.Synthesis.QualityScore, 1e-9)

	info, _ := reg.Get("web")
	assert.Equal(t, 0, info.Metrics.QueryCount)
}

func TestContentService_MemoryMissFallsBack(t *testing.T) {
	tests := []struct {
		name string
		mem  *stubSource
	}{
		{"low relevance", &stubSource{results: []domain.RawResult{{Snippet: "weak", RelevanceScore: 0.3}}}},
		{"no results", &stubSource{}},
		{"memory error", &stubSource{err: errors.New("db down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			web := &stubSource{results: []domain.RawResult{{Snippet: "from the web", URL: "https://example.com", RelevanceScore: 0.9}}}
			svc, _ := newTestContentService(t, tt.mem, web)

			res, err := svc.Query(context.Background(), QueryRequest{Query: "anything"})
			require.NoError(t, err)

			assert.False(t, res.MemoryHit)
			assert.Equal(t, 1, web.calls)
			assert.Equal(t, ReportSuccess, res.Reports[1].Status)
			assert.Equal(t, "https://example.com", res.Blocks[len(res.Blocks)-1].Source.Name)
		})
	}
}

func TestContentService_SourceFailureReported(t *testing.T) {
	mem := &stubSource{results: []domain.RawResult{{Snippet: "memory body", RelevanceScore: 0.6}}}
	web := &stubSource{err: errors.New("quota exceeded")}
	svc, reg := newTestContentService(t, mem, web)

	res, err := svc.Query(context.Background(), QueryRequest{Query: "body", Strategy: domain.StrategyBalanced})
	require.NoError(t, err)

	require.Len(t, res.Reports, 2)
	assert.Equal(t, ReportSuccess, res.Reports[0].Status)
	assert.Equal(t, ReportError, res.Reports[1].Status)
	assert.Equal(t, "quota exceeded", res.Reports[1].Error)
	assert.Len(t, res.Blocks, 1)
	assert.Contains(t, res.Synthesis.Gaps, "Only single source available, multiple sources recommended")

	info, _ := reg.Get("web")
	assert.Equal(t, 1, info.Metrics.QueryCount)
	assert.Equal(t, 0, info.Metrics.SuccessCount)
}

func TestContentService_Timeout(t *testing.T) {
	web := &stubSource{delay: time.Second, results: []domain.RawResult{{Snippet: "late"}}}
	svc, _ := newTestContentService(t, nil, web, WithSourceTimeout(20*time.Millisecond))

	res, err := svc.Query(context.Background(), QueryRequest{Query: "slow", Strategy: domain.StrategyExternalOnly})
	require.NoError(t, err)

	require.Len(t, res.Reports, 1)
	assert.Equal(t, ReportError, res.Reports[0].Status)
	assert.Empty(t, res.Blocks)
	assert.Equal(t, []string{
		"Missing coverage on: slow",
		"No content available for query",
	}, res.Synthesis.Gaps)
}

func TestContentService_LimitApplied(t *testing.T) {
	var raw []domain.RawResult
	for i := 0; i < 8; i++ {
		raw = append(raw, domain.RawResult{Snippet: "item", RelevanceScore: 0.5})
	}
	web := &stubSource{results: raw}
	svc, _ := newTestContentService(t, nil, web, WithDefaultLimit(5))

	res, err := svc.Query(context.Background(), QueryRequest{Query: "items", Strategy: domain.StrategyExternalOnly})
	require.NoError(t, err)
	assert.Len(t, res.Blocks, 5)

	res, err = svc.Query(context.Background(), QueryRequest{
		Query:    "items",
		Strategy: domain.StrategyExternalOnly,
		Options:  domain.QueryOptions{Limit: 2},
	})
	require.NoError(t, err)
	assert.Len(t, res.Blocks, 2)
}

func TestContentService_RouteErrors(t *testing.T) {
	svc, _ := newTestContentService(t, nil, nil)

	_, err := svc.Query(context.Background(), QueryRequest{Query: ""})
	assert.ErrorIs(t, err, ErrQueryEmpty)

	_, err = svc.Query(context.Background(), QueryRequest{Query: "q", Strategy: "fastest"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	res, err := svc.Query(context.Background(), QueryRequest{Query: "nothing registered"})
	require.NoError(t, err)
	assert.Empty(t, res.Reports)
	assert.Equal(t, 0.5, res.Decision.ExpectedQuality)
}
