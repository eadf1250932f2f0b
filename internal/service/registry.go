package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"go.uber.org/zap"
)

type registration struct {
	id           string
	sourceType   domain.SourceType
	handler      domain.SourceHandler
	priority     int
	registeredAt time.Time
	metrics      domain.SourceMetrics
	hits         int
	qualitySum   float64
}

// SourceRegistry tracks the known content sources and their running metrics.
// Iteration order is registration order; re-registering an id keeps its slot.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]*registration
	order   []string
	logger  *zap.Logger
}

func NewSourceRegistry(logger *zap.Logger) *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[string]*registration),
		logger:  logger,
	}
}

// Register adds or replaces a source. Replacing resets its metrics.
func (r *SourceRegistry) Register(id string, sourceType domain.SourceType, handler domain.SourceHandler, priority int) error {
	if strings.TrimSpace(id) == "" {
		return ErrSourceIDEmpty
	}
	if sourceType == "" {
		return ErrSourceTypeEmpty
	}
	if handler == nil {
		return ErrSourceHandlerNil
	}

	r.mu.Lock()
	_, exists := r.sources[id]
	r.sources[id] = &registration{
		id:           id,
		sourceType:   sourceType,
		handler:      handler,
		priority:     priority,
		registeredAt: time.Now().UTC(),
	}
	if !exists {
		r.order = append(r.order, id)
	}
	RegisteredSources.Set(float64(len(r.order)))
	r.mu.Unlock()

	if exists {
		r.logger.Warn("source already registered, overwriting",
			zap.String("source_id", id),
			zap.String("source_type", string(sourceType)))
	}
	r.logger.Info("source registered",
		zap.String("source_id", id),
		zap.String("source_type", string(sourceType)),
		zap.Int("priority", priority))
	return nil
}

func (r *SourceRegistry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[id]; !ok {
		return ErrSourceNotFound
	}
	delete(r.sources, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	RegisteredSources.Set(float64(len(r.order)))
	r.logger.Info("source unregistered", zap.String("source_id", id))
	return nil
}

// List returns every source by descending priority. Equal priorities keep
// registration order.
func (r *SourceRegistry) List() []domain.SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceInfo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sources[id].info())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// IDs returns the registered ids in registration order.
func (r *SourceRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// GetByType returns the highest-priority source of the given type. Ties go
// to the earliest registration.
func (r *SourceRegistry) GetByType(sourceType domain.SourceType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *registration
	for _, id := range r.order {
		reg := r.sources[id]
		if reg.sourceType != sourceType {
			continue
		}
		if best == nil || reg.priority > best.priority {
			best = reg
		}
	}
	if best == nil {
		return "", false
	}
	return best.id, true
}

func (r *SourceRegistry) Get(id string) (domain.SourceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.sources[id]
	if !ok {
		return domain.SourceInfo{}, false
	}
	return reg.info(), true
}

// Handler returns the query capability and type of a registered source.
func (r *SourceRegistry) Handler(id string) (domain.SourceHandler, domain.SourceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.sources[id]
	if !ok {
		return nil, "", false
	}
	return reg.handler, reg.sourceType, true
}

// QueryOutcome is what the content pipeline reports after querying a source.
type QueryOutcome struct {
	Success      bool
	ResponseTime time.Duration
	ResultCount  int
	AvgRelevance float64
}

// RecordQuery folds one query outcome into the source's running metrics.
// Unknown ids are ignored; the source may have been unregistered meanwhile.
func (r *SourceRegistry) RecordQuery(id string, outcome QueryOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.sources[id]
	if !ok {
		return
	}

	m := &reg.metrics
	m.QueryCount++
	n := float64(m.QueryCount)
	m.AvgResponseTime += (outcome.ResponseTime.Seconds() - m.AvgResponseTime) / n

	if outcome.Success {
		m.SuccessCount++
		if outcome.ResultCount > 0 {
			reg.hits++
			reg.qualitySum += outcome.AvgRelevance
			m.AvgQualityScore = reg.qualitySum / float64(reg.hits)
		}
	}
	m.HitRate = float64(reg.hits) / n
}

func (reg *registration) info() domain.SourceInfo {
	return domain.SourceInfo{
		ID:           reg.id,
		Type:         reg.sourceType,
		Priority:     reg.priority,
		RegisteredAt: reg.registeredAt,
		Metrics:      reg.metrics,
	}
}
