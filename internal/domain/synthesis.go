package domain

import "time"

type Contradiction struct {
	Source1     string `json:"source1"`
	Source2     string `json:"source2"`
	Description string `json:"description"`
}

// SynthesizedContent is the merged answer built from several content blocks.
// QualityScore is the mean block relevance (0 without blocks) and Sources
// holds each source identity at most once.
type SynthesizedContent struct {
	SynthesisID       string          `json:"synthesis_id"`
	Query             string          `json:"query"`
	AggregatedContent string          `json:"aggregated_content"`
	Sources           []ContentSource `json:"sources"`
	QualityScore      float64         `json:"quality_score"`
	Contradictions    []Contradiction `json:"contradictions"`
	Gaps              []string        `json:"gaps"`
	Recommendations   []string        `json:"recommendations"`
	Timestamp         time.Time       `json:"timestamp"`
}
