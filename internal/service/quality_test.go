package service

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestScorer() *QualityScorer {
	s := NewQualityScorer(zap.NewNop())
	s.SetClock(func() time.Time { return fixedNow })
	return s
}

func sumWeights(w map[domain.ScoringFactor]float64) float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

func componentValue(t *testing.T, res domain.ScoreResult, f domain.ScoringFactor) float64 {
	t.Helper()
	for _, c := range res.Components {
		if c.Factor == f {
			return c.Value
		}
	}
	t.Fatalf("component %s missing", f)
	return 0
}

func TestQualityScorer_DefaultWeightsSumToOne(t *testing.T) {
	s := newTestScorer()
	assert.InDelta(t, 1.0, sumWeights(s.Weights()), 1e-9)
	assert.Len(t, s.Weights(), len(domain.AllScoringFactors()))
}

func TestQualityScorer_SetFactorWeightRenormalizes(t *testing.T) {
	tests := []struct {
		name   string
		factor domain.ScoringFactor
		weight float64
	}{
		{"raise relevance", domain.FactorRelevance, 0.9},
		{"zero citations", domain.FactorCitationCount, 0},
		{"max feedback", domain.FactorUserFeedback, 1},
		{"lower reliability", domain.FactorSourceReliability, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScorer()
			before := s.Weights()

			require.NoError(t, s.SetFactorWeight(tt.factor, tt.weight))

			after := s.Weights()
			assert.InDelta(t, 1.0, sumWeights(after), 1e-9)

			total := sumWeights(before) - before[tt.factor] + tt.weight
			for f, w := range before {
				want := w / total
				if f == tt.factor {
					want = tt.weight / total
				}
				assert.InDelta(t, want, after[f], 1e-9, "factor %s", f)
			}
		})
	}
}

func TestQualityScorer_SetFactorWeightRejects(t *testing.T) {
	s := newTestScorer()

	for _, w := range []float64{-0.1, 1.01, math.NaN()} {
		err := s.SetFactorWeight(domain.FactorRelevance, w)
		assert.ErrorIs(t, err, ErrInvalidWeight)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	}

	err := s.SetFactorWeight("popularity", 0.5)
	assert.ErrorIs(t, err, ErrUnknownFactor)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, DefaultFactorWeights(), s.Weights())
}

func TestFreshnessScore(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{-3, 1.0},
		{0, 1.0},
		{30, 1.0},
		{31, 0.9},
		{90, 0.9},
		{91, 0.75},
		{180, 0.75},
		{181, 0.5},
		{365, 0.5},
		{366, 1.0 - 366.0/730},
		{584, 0.2},
		{5000, 0.2},
	}

	for _, tt := range tests {
		got := FreshnessScore(tt.days)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FreshnessScore(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestFreshnessScore_NonIncreasing(t *testing.T) {
	prev := FreshnessScore(0)
	for d := 1; d <= 1500; d++ {
		cur := FreshnessScore(d)
		if cur > prev {
			t.Fatalf("freshness increased at day %d: %v > %v", d, cur, prev)
		}
		prev = cur
	}
}

func TestQualityScorer_FreshnessUsesWholeDays(t *testing.T) {
	s := newTestScorer()

	// 30 days and 23 hours is still day 30
	created := fixedNow.Add(-(30*24 + 23) * time.Hour)
	res := s.ScoreContent("body", "memory", created, DefaultScoreInput())
	assert.Equal(t, 1.0, componentValue(t, res, domain.FactorContentFreshness))

	created = fixedNow.Add(-31 * 24 * time.Hour)
	res = s.ScoreContent("body", "memory", created, DefaultScoreInput())
	assert.Equal(t, 0.9, componentValue(t, res, domain.FactorContentFreshness))
}

func TestCompletenessScore(t *testing.T) {
	long := strings.Repeat("word ", 1200)

	assert.InDelta(t, 0.7*0.5, CompletenessScore("", 0.5), 1e-9)
	assert.InDelta(t, 0.3*0.5+0.7*0.5, CompletenessScore(strings.Repeat("w ", 250), 0.5), 1e-9)
	assert.InDelta(t, 0.3+0.7, CompletenessScore(long, 1.0), 1e-9)
}

func TestCitationScore(t *testing.T) {
	assert.Equal(t, 0.0, CitationScore(0))
	assert.Equal(t, 0.0, CitationScore(-4))
	assert.InDelta(t, 0.3, CitationScore(3), 1e-9)
	assert.Equal(t, 1.0, CitationScore(10))
	assert.Equal(t, 1.0, CitationScore(10000))
}

func TestQualityScorer_OverallBounded(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name string
		in   ScoreInput
	}{
		{"all zero", ScoreInput{}},
		{"all max", ScoreInput{Relevance: 1, Completeness: 1, Accuracy: 1, CitationCount: 10000, UserFeedback: 1}},
		{"out of range inputs", ScoreInput{Relevance: 7, Completeness: 3, Accuracy: 9, CitationCount: 10000, UserFeedback: 4}},
		{"negative inputs", ScoreInput{Relevance: -1, Completeness: -1, Accuracy: -1, CitationCount: -10, UserFeedback: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.ScoreContent(strings.Repeat("x ", 800), "memory", fixedNow, tt.in)
			assert.GreaterOrEqual(t, res.OverallScore, 0.0)
			assert.LessOrEqual(t, res.OverallScore, 1.0)
			assert.Len(t, res.Components, 7)
		})
	}
}

func TestQualityScorer_CitationCapContribution(t *testing.T) {
	s := newTestScorer()
	in := DefaultScoreInput()
	in.CitationCount = 10000

	res := s.ScoreContent("text", "memory", fixedNow, in)
	for _, c := range res.Components {
		if c.Factor == domain.FactorCitationCount {
			assert.InDelta(t, 0.03, c.WeightedValue, 1e-9)
		}
	}
}

func TestQualityScorer_CustomReliability(t *testing.T) {
	s := newTestScorer()

	require.NoError(t, s.SetSourceReliability("custom", 0.8))

	res := s.ScoreContent("text", "custom", fixedNow, DefaultScoreInput())
	assert.Equal(t, 0.8, componentValue(t, res, domain.FactorSourceReliability))

	res = s.ScoreContent("text", "never-seen", fixedNow, DefaultScoreInput())
	assert.Equal(t, DefaultSourceReliability, componentValue(t, res, domain.FactorSourceReliability))
}

func TestQualityScorer_SetSourceReliabilityRejects(t *testing.T) {
	s := newTestScorer()

	assert.ErrorIs(t, s.SetSourceReliability("custom", 1.5), ErrInvalidReliability)
	assert.ErrorIs(t, s.SetSourceReliability("custom", -0.5), ErrInvalidReliability)
	assert.ErrorIs(t, s.SetSourceReliability("  ", 0.5), ErrSourceTypeEmpty)

	_, ok := s.Reliability()["custom"]
	assert.False(t, ok)
}

func TestQualityScorer_KnownScore(t *testing.T) {
	s := newTestScorer()

	// memory, fresh, 500 words, all supplied scores 1, 10 citations
	in := ScoreInput{Relevance: 1, Completeness: 1, Accuracy: 1, CitationCount: 10, UserFeedback: 1}
	res := s.ScoreContent(strings.Repeat("w ", 500), "memory", fixedNow, in)

	want := 0.25*0.95 + 0.15 + 0.25 + 0.15 + 0.15 + 0.03 + 0.02
	assert.InDelta(t, want, res.OverallScore, 1e-9)
	assert.Equal(t, domain.QualityVerified, res.QualityLevel)
}

func TestQualityScorer_ReturnsCopies(t *testing.T) {
	s := newTestScorer()

	w := s.Weights()
	w[domain.FactorRelevance] = 42
	assert.Equal(t, 0.25, s.Weights()[domain.FactorRelevance])

	r := s.Reliability()
	r["memory"] = 0
	assert.Equal(t, 0.95, s.Reliability()["memory"])
}

func TestScoreInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScoreInput)
		wantErr string
	}{
		{"defaults", func(*ScoreInput) {}, ""},
		{"bounds inclusive", func(in *ScoreInput) { in.Relevance, in.Accuracy = 0, 1 }, ""},
		{"relevance above one", func(in *ScoreInput) { in.Relevance = 5 }, "relevance"},
		{"completeness negative", func(in *ScoreInput) { in.Completeness = -0.1 }, "completeness"},
		{"accuracy above one", func(in *ScoreInput) { in.Accuracy = 1.01 }, "accuracy"},
		{"feedback NaN", func(in *ScoreInput) { in.UserFeedback = math.NaN() }, "user_feedback"},
		{"negative citations", func(in *ScoreInput) { in.CitationCount = -1 }, "citation_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultScoreInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidScoreInput)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
