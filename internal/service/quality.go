package service

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultSourceReliability applies to source types missing from the table.
	DefaultSourceReliability = 0.5
	// CompletenessTargetWords is the length at which the length bonus saturates.
	CompletenessTargetWords = 500
	// CitationSaturation is the citation count that earns the full factor value.
	CitationSaturation = 10
	// MinFreshness is the floor for content older than a year.
	MinFreshness = 0.2
)

func DefaultFactorWeights() map[domain.ScoringFactor]float64 {
	return map[domain.ScoringFactor]float64{
		domain.FactorSourceReliability: 0.25,
		domain.FactorContentFreshness:  0.15,
		domain.FactorRelevance:         0.25,
		domain.FactorCompleteness:      0.15,
		domain.FactorAccuracy:          0.15,
		domain.FactorCitationCount:     0.03,
		domain.FactorUserFeedback:      0.02,
	}
}

func DefaultReliabilityTable() map[string]float64 {
	return map[string]float64{
		"memory":             0.95,
		"verified_api":       0.90,
		"published_research": 0.85,
		"news_aggregator":    0.75,
		"web_search":         0.65,
		"social_media":       0.40,
		"user_generated":     0.50,
	}
}

// ScoreInput carries the caller-computed signals for ScoreContent.
type ScoreInput struct {
	Relevance     float64
	Completeness  float64
	Accuracy      float64
	CitationCount int
	UserFeedback  float64
}

func DefaultScoreInput() ScoreInput {
	return ScoreInput{
		Relevance:    0.5,
		Completeness: 0.5,
		Accuracy:     0.5,
		UserFeedback: 0.5,
	}
}

// Validate rejects signals outside [0,1] and negative citation counts.
func (in ScoreInput) Validate() error {
	signals := []struct {
		name  string
		value float64
	}{
		{"relevance", in.Relevance},
		{"completeness", in.Completeness},
		{"accuracy", in.Accuracy},
		{"user_feedback", in.UserFeedback},
	}
	for _, s := range signals {
		if s.value < 0 || s.value > 1 || math.IsNaN(s.value) {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalidScoreInput, s.name)
		}
	}
	if in.CitationCount < 0 {
		return fmt.Errorf("%w: citation_count must not be negative", ErrInvalidScoreInput)
	}
	return nil
}

type QualityScorer struct {
	mu          sync.RWMutex
	weights     map[domain.ScoringFactor]float64
	reliability map[string]float64
	now         func() time.Time
	logger      *zap.Logger
}

func NewQualityScorer(logger *zap.Logger) *QualityScorer {
	return &QualityScorer{
		weights:     DefaultFactorWeights(),
		reliability: DefaultReliabilityTable(),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// SetClock replaces the clock used for freshness. Intended for tests.
func (s *QualityScorer) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *QualityScorer) ScoreContent(content string, sourceType string, createdAt time.Time, in ScoreInput) domain.ScoreResult {
	s.mu.RLock()
	weights := make(map[domain.ScoringFactor]float64, len(s.weights))
	for k, v := range s.weights {
		weights[k] = v
	}
	reliability := s.reliabilityFor(sourceType)
	days := daysOld(s.now(), createdAt)
	s.mu.RUnlock()

	freshness := FreshnessScore(days)
	completeness := CompletenessScore(content, in.Completeness)
	citations := CitationScore(in.CitationCount)

	components := []domain.ScoreComponent{
		domain.NewScoreComponent(domain.FactorSourceReliability, weights[domain.FactorSourceReliability], reliability,
			fmt.Sprintf("Source type '%s' has reliability score %g", sourceType, reliability)),
		domain.NewScoreComponent(domain.FactorContentFreshness, weights[domain.FactorContentFreshness], freshness,
			fmt.Sprintf("Content created %d days ago", days)),
		domain.NewScoreComponent(domain.FactorRelevance, weights[domain.FactorRelevance], in.Relevance,
			fmt.Sprintf("Semantic relevance to query: %.2f", in.Relevance)),
		domain.NewScoreComponent(domain.FactorCompleteness, weights[domain.FactorCompleteness], completeness,
			fmt.Sprintf("Content completeness score: %.2f", completeness)),
		domain.NewScoreComponent(domain.FactorAccuracy, weights[domain.FactorAccuracy], in.Accuracy,
			fmt.Sprintf("Claimed accuracy score: %.2f", in.Accuracy)),
		domain.NewScoreComponent(domain.FactorCitationCount, weights[domain.FactorCitationCount], citations,
			fmt.Sprintf("Number of citations: %d", in.CitationCount)),
		domain.NewScoreComponent(domain.FactorUserFeedback, weights[domain.FactorUserFeedback], in.UserFeedback,
			fmt.Sprintf("User feedback score: %.2f", in.UserFeedback)),
	}

	var overall float64
	for _, c := range components {
		overall += c.WeightedValue
	}
	overall = clampUnit(overall)
	level := domain.ComputeQualityLevel(overall)

	s.logger.Debug("scored content",
		zap.String("source_type", sourceType),
		zap.Float64("overall_score", overall),
		zap.String("quality_level", string(level)))

	return domain.ScoreResult{
		OverallScore: overall,
		QualityLevel: level,
		Components:   components,
	}
}

// SetFactorWeight assigns a weight and then rescales every weight, including
// the one just set, so the table sums to 1.
func (s *QualityScorer) SetFactorWeight(factor domain.ScoringFactor, weight float64) error {
	if !domain.ValidScoringFactor(string(factor)) {
		return fmt.Errorf("%w: %s", ErrUnknownFactor, factor)
	}
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return ErrInvalidWeight
	}

	s.mu.Lock()
	s.weights[factor] = weight
	var total float64
	for _, w := range s.weights {
		total += w
	}
	// all-zero table: nothing to rescale against
	if total > 0 {
		for k := range s.weights {
			s.weights[k] /= total
		}
	}
	s.mu.Unlock()

	s.logger.Info("updated factor weight",
		zap.String("factor", string(factor)),
		zap.Float64("weight", weight))
	return nil
}

func (s *QualityScorer) SetSourceReliability(sourceType string, reliability float64) error {
	if strings.TrimSpace(sourceType) == "" {
		return ErrSourceTypeEmpty
	}
	if math.IsNaN(reliability) || reliability < 0 || reliability > 1 {
		return ErrInvalidReliability
	}

	s.mu.Lock()
	s.reliability[sourceType] = reliability
	s.mu.Unlock()

	s.logger.Info("updated source reliability",
		zap.String("source_type", sourceType),
		zap.Float64("reliability", reliability))
	return nil
}

// Weights returns a copy of the current factor weights.
func (s *QualityScorer) Weights() map[domain.ScoringFactor]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.ScoringFactor]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Reliability returns a copy of the source reliability table.
func (s *QualityScorer) Reliability() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.reliability))
	for k, v := range s.reliability {
		out[k] = v
	}
	return out
}

// caller holds s.mu
func (s *QualityScorer) reliabilityFor(sourceType string) float64 {
	if v, ok := s.reliability[sourceType]; ok {
		return v
	}
	return DefaultSourceReliability
}

// FreshnessScore is non-increasing in age. Negative ages (future timestamps)
// count as fresh.
func FreshnessScore(days int) float64 {
	switch {
	case days <= 30:
		return 1.0
	case days <= 90:
		return 0.9
	case days <= 180:
		return 0.75
	case days <= 365:
		return 0.5
	default:
		return math.Max(MinFreshness, 1.0-float64(days)/730)
	}
}

func CompletenessScore(content string, supplied float64) float64 {
	words := len(strings.Fields(content))
	length := math.Min(float64(words)/CompletenessTargetWords, 1.0)
	return length*0.3 + supplied*0.7
}

func CitationScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(float64(count)/CitationSaturation, 1.0)
}

// daysOld counts whole elapsed days, rounding toward negative infinity.
func daysOld(now, createdAt time.Time) int {
	return int(math.Floor(now.Sub(createdAt).Hours() / 24))
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
