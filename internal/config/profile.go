package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"gopkg.in/yaml.v3"
)

// ScoringProfile overrides the quality scorer's defaults.
//
//	weights:
//	  relevance: 0.4
//	reliability:
//	  web_search: 0.7
type ScoringProfile struct {
	Weights     map[string]float64 `yaml:"weights"`
	Reliability map[string]float64 `yaml:"reliability"`
}

// ScorerSettings is the part of the quality scorer a profile adjusts.
type ScorerSettings interface {
	SetFactorWeight(factor domain.ScoringFactor, weight float64) error
	SetSourceReliability(sourceType string, reliability float64) error
}

// LoadScoringProfile reads a YAML scoring profile from path.
func LoadScoringProfile(path string) (*ScoringProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring profile: %w", err)
	}
	var p ScoringProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse scoring profile: %w", err)
	}
	return &p, nil
}

// Apply pushes the profile through the scorer's setters, weights first.
// Each weight update renormalizes all weights, so entries are applied in
// name order to keep the result reproducible.
func (p *ScoringProfile) Apply(s ScorerSettings) error {
	for _, name := range sortedKeys(p.Weights) {
		if err := s.SetFactorWeight(domain.ScoringFactor(name), p.Weights[name]); err != nil {
			return fmt.Errorf("weight %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(p.Reliability) {
		if err := s.SetSourceReliability(name, p.Reliability[name]); err != nil {
			return fmt.Errorf("reliability %q: %w", name, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
