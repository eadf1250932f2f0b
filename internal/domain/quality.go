package domain

type QualityLevel string

const (
	QualityLow      QualityLevel = "low"
	QualityMedium   QualityLevel = "medium"
	QualityHigh     QualityLevel = "high"
	QualityVerified QualityLevel = "verified"
)

// ComputeQualityLevel maps a 0-1 score onto a quality level.
func ComputeQualityLevel(score float64) QualityLevel {
	switch {
	case score >= 0.9:
		return QualityVerified
	case score >= 0.75:
		return QualityHigh
	case score >= 0.5:
		return QualityMedium
	default:
		return QualityLow
	}
}

type ScoringFactor string

const (
	FactorSourceReliability ScoringFactor = "source_reliability"
	FactorContentFreshness  ScoringFactor = "content_freshness"
	FactorRelevance         ScoringFactor = "relevance"
	FactorCompleteness      ScoringFactor = "completeness"
	FactorAccuracy          ScoringFactor = "accuracy"
	FactorCitationCount     ScoringFactor = "citation_count"
	FactorUserFeedback      ScoringFactor = "user_feedback"
)

// AllScoringFactors returns the factors in the order they are scored.
func AllScoringFactors() []ScoringFactor {
	return []ScoringFactor{
		FactorSourceReliability,
		FactorContentFreshness,
		FactorRelevance,
		FactorCompleteness,
		FactorAccuracy,
		FactorCitationCount,
		FactorUserFeedback,
	}
}

func ValidScoringFactor(f string) bool {
	for _, sf := range AllScoringFactors() {
		if string(sf) == f {
			return true
		}
	}
	return false
}

// ScoreComponent is one weighted factor of a score. WeightedValue is always
// Value × Weight.
type ScoreComponent struct {
	Factor        ScoringFactor `json:"factor"`
	Weight        float64       `json:"weight"`
	Value         float64       `json:"value"`
	WeightedValue float64       `json:"weighted_value"`
	Reasoning     string        `json:"reasoning"`
}

func NewScoreComponent(factor ScoringFactor, weight, value float64, reasoning string) ScoreComponent {
	return ScoreComponent{
		Factor:        factor,
		Weight:        weight,
		Value:         value,
		WeightedValue: value * weight,
		Reasoning:     reasoning,
	}
}

type ScoreResult struct {
	OverallScore float64          `json:"overall_score"`
	QualityLevel QualityLevel     `json:"quality_level"`
	Components   []ScoreComponent `json:"components"`
}
