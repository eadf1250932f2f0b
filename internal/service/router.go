package service

import (
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultDecisionLogCapacity = 1000
	decisionQueryPrefix        = 50
)

// Router picks which registered sources to consult for a query. It performs
// no I/O.
type Router struct {
	registry        *SourceRegistry
	defaultStrategy domain.RoutingStrategy
	logger          *zap.Logger

	mu       sync.Mutex
	log      []domain.DecisionLogEntry
	next     int
	full     bool
	capacity int
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithDefaultStrategy sets the strategy used when Route is called without one.
func WithDefaultStrategy(s domain.RoutingStrategy) RouterOption {
	return func(r *Router) {
		r.defaultStrategy = s
	}
}

// WithDecisionLogCapacity bounds the decision log. Oldest entries are
// overwritten once it is full.
func WithDecisionLogCapacity(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func NewRouter(registry *SourceRegistry, logger *zap.Logger, opts ...RouterOption) *Router {
	r := &Router{
		registry:        registry,
		defaultStrategy: domain.StrategyMemoryFirst,
		logger:          logger,
		capacity:        DefaultDecisionLogCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = make([]domain.DecisionLogEntry, r.capacity)
	return r
}

func (r *Router) DefaultStrategy() domain.RoutingStrategy {
	return r.defaultStrategy
}

func (r *Router) Registry() *SourceRegistry {
	return r.registry
}

// Route decides which sources to query. An empty strategy selects the
// router default. reqContext is accepted for callers that carry request
// hints; no built-in strategy reads it.
func (r *Router) Route(query string, strategy domain.RoutingStrategy, reqContext map[string]any) (domain.RoutingDecision, error) {
	if strings.TrimSpace(query) == "" {
		return domain.RoutingDecision{}, ErrQueryEmpty
	}
	if strategy == "" {
		strategy = r.defaultStrategy
	}
	impl, err := strategyFor(strategy)
	if err != nil {
		return domain.RoutingDecision{}, err
	}

	decision := impl.decide(r.registry)
	r.record(query, decision)

	outcome := "selected"
	if len(decision.SourcesToQuery) == 0 {
		outcome = "empty"
	}
	RoutingDecisions.WithLabelValues(string(decision.Strategy), outcome).Inc()

	r.logger.Debug("routing decision",
		zap.String("query", truncateRunes(query, decisionQueryPrefix)),
		zap.String("strategy", string(decision.Strategy)),
		zap.Strings("sources", decision.SourcesToQuery),
		zap.Int("context_keys", len(reqContext)))

	return decision, nil
}

func (r *Router) record(query string, d domain.RoutingDecision) {
	sources := make([]string, len(d.SourcesToQuery))
	copy(sources, d.SourcesToQuery)

	entry := domain.DecisionLogEntry{
		Query:           truncateRunes(query, decisionQueryPrefix),
		Strategy:        d.Strategy,
		Sources:         sources,
		ExpectedQuality: d.ExpectedQuality,
		Timestamp:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.log[r.next] = entry
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
}

// RecentDecisions returns up to limit logged decisions, newest first.
// A non-positive limit returns everything retained.
func (r *Router) RecentDecisions(limit int) []domain.DecisionLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = r.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]domain.DecisionLogEntry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.next - 1 - i + r.capacity) % r.capacity
		out = append(out, r.log[idx])
	}
	return out
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
