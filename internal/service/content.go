package service

import (
	"context"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMemoryHitThreshold = 0.7
	DefaultQueryConcurrency   = 4
	DefaultSourceTimeout      = 15 * time.Second
)

const (
	ReportSuccess = "success"
	ReportError   = "error"
	ReportSkipped = "skipped"
	ReportMissing = "missing"
)

type QueryRequest struct {
	Query    string
	Strategy domain.RoutingStrategy
	Options  domain.QueryOptions
	Context  map[string]any
}

// SourceReport describes what happened to one selected source.
type SourceReport struct {
	SourceID     string            `json:"source_id"`
	SourceType   domain.SourceType `json:"source_type,omitempty"`
	Status       string            `json:"status"`
	ResultCount  int               `json:"result_count"`
	AvgRelevance float64           `json:"avg_relevance"`
	DurationMS   int64             `json:"duration_ms"`
	Error        string            `json:"error,omitempty"`
}

type QueryResult struct {
	Decision  domain.RoutingDecision     `json:"decision"`
	Synthesis *domain.SynthesizedContent `json:"synthesis"`
	Blocks    []domain.ContentBlock      `json:"blocks"`
	Reports   []SourceReport             `json:"reports"`
	MemoryHit bool                       `json:"memory_hit"`
}

// ContentService runs the full route, fetch, synthesize pipeline.
type ContentService struct {
	router       *Router
	synthesizer  *Synthesizer
	logger       *zap.Logger
	concurrency  int
	timeout      time.Duration
	hitThreshold float64
	defaultLimit int
	now          func() time.Time
}

// ContentServiceOption configures a ContentService.
type ContentServiceOption func(*ContentService)

func WithQueryConcurrency(n int) ContentServiceOption {
	return func(s *ContentService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithSourceTimeout(d time.Duration) ContentServiceOption {
	return func(s *ContentService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMemoryHitThreshold(t float64) ContentServiceOption {
	return func(s *ContentService) {
		s.hitThreshold = t
	}
}

func WithDefaultLimit(n int) ContentServiceOption {
	return func(s *ContentService) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

func NewContentService(router *Router, synthesizer *Synthesizer, logger *zap.Logger, opts ...ContentServiceOption) *ContentService {
	s := &ContentService{
		router:       router,
		synthesizer:  synthesizer,
		logger:       logger,
		concurrency:  DefaultQueryConcurrency,
		timeout:      DefaultSourceTimeout,
		hitThreshold: DefaultMemoryHitThreshold,
		defaultLimit: domain.DefaultQueryLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sourceOutcome struct {
	blocks []domain.ContentBlock
	report SourceReport
}

// Query routes the request, fetches from the selected sources and synthesizes
// the result. Source failures are reported per source and never fail the call.
func (s *ContentService) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	decision, err := s.router.Route(req.Query, req.Strategy, req.Context)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}
	opts = opts.WithDefaults()

	selected := decision.SourcesToQuery
	outcomes := make([]sourceOutcome, len(selected))
	memoryHit := false

	start := 0
	if s.memoryGate(decision) {
		outcomes[0] = s.querySource(ctx, selected[0], req.Query, opts)
		r := outcomes[0].report
		memoryHit = r.Status == ReportSuccess && r.ResultCount > 0 && r.AvgRelevance >= s.hitThreshold
		start = 1
	}

	if memoryHit {
		for i := start; i < len(selected); i++ {
			outcomes[i] = s.skipped(selected[i])
		}
		s.logger.Debug("memory hit, skipping fallback sources",
			zap.Float64("avg_relevance", outcomes[0].report.AvgRelevance),
			zap.Int("skipped", len(selected)-start))
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for i := start; i < len(selected); i++ {
			g.Go(func() error {
				outcomes[i] = s.querySource(gctx, selected[i], req.Query, opts)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &QueryResult{
		Decision:  decision,
		Blocks:    []domain.ContentBlock{},
		Reports:   make([]SourceReport, 0, len(outcomes)),
		MemoryHit: memoryHit,
	}
	for _, o := range outcomes {
		result.Blocks = append(result.Blocks, o.blocks...)
		result.Reports = append(result.Reports, o.report)
	}
	result.Synthesis = s.synthesizer.Synthesize(ctx, req.Query, result.Blocks)
	return result, nil
}

// memoryGate reports whether the decision puts a memory source in front of
// fallbacks, so it has to be consulted on its own first.
func (s *ContentService) memoryGate(d domain.RoutingDecision) bool {
	if d.Strategy != domain.StrategyMemoryFirst || len(d.SourcesToQuery) < 2 {
		return false
	}
	_, t, ok := s.router.Registry().Handler(d.SourcesToQuery[0])
	return ok && t == domain.SourceTypeMemory
}

func (s *ContentService) querySource(ctx context.Context, id, query string, opts domain.QueryOptions) sourceOutcome {
	handler, sourceType, ok := s.router.Registry().Handler(id)
	if !ok {
		return sourceOutcome{report: SourceReport{SourceID: id, Status: ReportMissing}}
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	begin := time.Now()
	raw, err := handler.Query(qctx, query, opts)
	elapsed := time.Since(begin)
	SourceQueryDuration.WithLabelValues(string(sourceType)).Observe(elapsed.Seconds())

	report := SourceReport{
		SourceID:   id,
		SourceType: sourceType,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		report.Status = ReportError
		report.Error = err.Error()
		SourceQueries.WithLabelValues(string(sourceType), ReportError).Inc()
		s.router.Registry().RecordQuery(id, QueryOutcome{ResponseTime: elapsed})
		s.logger.Warn("source query failed",
			zap.String("source_id", id),
			zap.String("source_type", string(sourceType)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return sourceOutcome{report: report}
	}

	if len(raw) > opts.Limit {
		raw = raw[:opts.Limit]
	}
	blocks := BlocksFromResults(raw, ProfileFor(id, sourceType), s.now())
	avg := meanRelevance(blocks)

	report.Status = ReportSuccess
	report.ResultCount = len(blocks)
	report.AvgRelevance = avg
	SourceQueries.WithLabelValues(string(sourceType), ReportSuccess).Inc()
	s.router.Registry().RecordQuery(id, QueryOutcome{
		Success:      true,
		ResponseTime: elapsed,
		ResultCount:  len(blocks),
		AvgRelevance: avg,
	})
	return sourceOutcome{blocks: blocks, report: report}
}

func (s *ContentService) skipped(id string) sourceOutcome {
	_, sourceType, _ := s.router.Registry().Handler(id)
	SourceQueries.WithLabelValues(string(sourceType), ReportSkipped).Inc()
	return sourceOutcome{report: SourceReport{
		SourceID:   id,
		SourceType: sourceType,
		Status:     ReportSkipped,
	}}
}

func (s *ContentService) Router() *Router {
	return s.router
}

func (s *ContentService) Synthesizer() *Synthesizer {
	return s.synthesizer
}
