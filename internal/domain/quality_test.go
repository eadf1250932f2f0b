package domain

import "testing"

func TestComputeQualityLevel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  QualityLevel
	}{
		{"verified - 1.0", 1.0, QualityVerified},
		{"verified boundary - 0.90", 0.90, QualityVerified},
		{"high - 0.899", 0.899, QualityHigh},
		{"high boundary - 0.75", 0.75, QualityHigh},
		{"medium - 0.749", 0.749, QualityMedium},
		{"medium boundary - 0.50", 0.50, QualityMedium},
		{"low - 0.499", 0.499, QualityLow},
		{"low - 0.0", 0.0, QualityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeQualityLevel(tt.score)
			if got != tt.want {
				t.Errorf("ComputeQualityLevel(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestNewScoreComponent(t *testing.T) {
	c := NewScoreComponent(FactorRelevance, 0.2, 0.5, "caller supplied")
	if c.WeightedValue != 0.1 {
		t.Errorf("weighted value = %v, want 0.1", c.WeightedValue)
	}
}

func TestValidScoringFactor(t *testing.T) {
	for _, f := range AllScoringFactors() {
		if !ValidScoringFactor(string(f)) {
			t.Errorf("%s should be valid", f)
		}
	}
	if len(AllScoringFactors()) != 7 {
		t.Errorf("expected 7 scoring factors, got %d", len(AllScoringFactors()))
	}
	if ValidScoringFactor("novelty") {
		t.Error("novelty should not be valid")
	}
}

func TestValidStrategy(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"memory_first", true},
		{"external_first", true},
		{"balanced", true},
		{"memory_only", true},
		{"external_only", true},
		{"MEMORY_FIRST", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidStrategy(tt.input); got != tt.want {
			t.Errorf("ValidStrategy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidSourceType(t *testing.T) {
	for _, st := range []string{"memory", "web_search", "api", "external", "user_uploaded"} {
		if !ValidSourceType(st) {
			t.Errorf("%s should be valid", st)
		}
	}
	if ValidSourceType("verified_api") {
		t.Error("verified_api is a reliability key, not a source type")
	}
}
