package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contradictionDescription = "Potentially conflicting information detected"
	lowQualityThreshold      = 0.6
	minGapTermLength         = 3
)

// ContradictionDetector decides whether two content blocks conflict.
type ContradictionDetector interface {
	Contradicts(ctx context.Context, a, b domain.ContentBlock) (bool, error)
}

// NeverContradicts is the default detector. It flags nothing.
type NeverContradicts struct{}

func (NeverContradicts) Contradicts(context.Context, domain.ContentBlock, domain.ContentBlock) (bool, error) {
	return false, nil
}

// LLMContradictionDetector asks an LLM whether two block bodies conflict.
type LLMContradictionDetector struct {
	client domain.LLMClient
}

func NewLLMContradictionDetector(client domain.LLMClient) *LLMContradictionDetector {
	return &LLMContradictionDetector{client: client}
}

func (d *LLMContradictionDetector) Contradicts(ctx context.Context, a, b domain.ContentBlock) (bool, error) {
	return d.client.CheckContradiction(ctx, a.Body, b.Body)
}

type Synthesizer struct {
	detector ContradictionDetector
	logger   *zap.Logger
	now      func() time.Time
}

func NewSynthesizer(detector ContradictionDetector, logger *zap.Logger) *Synthesizer {
	if detector == nil {
		detector = NeverContradicts{}
	}
	return &Synthesizer{
		detector: detector,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Synthesize merges blocks into one attributed answer. It reads no shared
// state; detector failures are logged and count as no contradiction.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, blocks []domain.ContentBlock) *domain.SynthesizedContent {
	contradictions := s.findContradictions(ctx, blocks)
	gaps := identifyGaps(query, blocks)
	quality := meanRelevance(blocks)

	out := &domain.SynthesizedContent{
		SynthesisID:       "syn_" + uuid.New().String(),
		Query:             query,
		AggregatedContent: aggregate(blocks),
		Sources:           distinctSources(blocks),
		QualityScore:      quality,
		Contradictions:    contradictions,
		Gaps:              gaps,
		Recommendations:   recommend(len(blocks), len(contradictions), gaps, quality),
		Timestamp:         s.now(),
	}

	SynthesisQuality.Observe(quality)
	Contradictions.Add(float64(len(contradictions)))

	s.logger.Info("synthesized content",
		zap.Int("sources", len(out.Sources)),
		zap.Float64("quality", quality),
		zap.Int("contradictions", len(contradictions)),
		zap.Int("gaps", len(gaps)))

	return out
}

func aggregate(blocks []domain.ContentBlock) string {
	if len(blocks) == 0 {
		return ""
	}
	sorted := make([]domain.ContentBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})

	parts := make([]string, len(sorted))
	for i, b := range sorted {
		parts[i] = fmt.Sprintf("%s\n[Source: %s]", b.Body, b.Source.Name)
	}
	return strings.Join(parts, "\n\n")
}

// distinctSources keeps the first occurrence of each source id.
func distinctSources(blocks []domain.ContentBlock) []domain.ContentSource {
	seen := make(map[string]struct{}, len(blocks))
	out := []domain.ContentSource{}
	for _, b := range blocks {
		if _, ok := seen[b.Source.SourceID]; ok {
			continue
		}
		seen[b.Source.SourceID] = struct{}{}
		out = append(out, b.Source)
	}
	return out
}

func (s *Synthesizer) findContradictions(ctx context.Context, blocks []domain.ContentBlock) []domain.Contradiction {
	out := []domain.Contradiction{}
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			conflict, err := s.detector.Contradicts(ctx, blocks[i], blocks[j])
			if err != nil {
				s.logger.Warn("contradiction check failed",
					zap.String("source1", blocks[i].Source.Name),
					zap.String("source2", blocks[j].Source.Name),
					zap.Error(err))
				continue
			}
			if conflict {
				out = append(out, domain.Contradiction{
					Source1:     blocks[i].Source.Name,
					Source2:     blocks[j].Source.Name,
					Description: contradictionDescription,
				})
			}
		}
	}
	return out
}

func identifyGaps(query string, blocks []domain.ContentBlock) []string {
	bodies := make([]string, len(blocks))
	for i, b := range blocks {
		bodies[i] = strings.ToLower(b.Body)
	}
	combined := strings.Join(bodies, " ")

	var missing []string
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(term) > minGapTermLength && !strings.Contains(combined, term) {
			missing = append(missing, term)
		}
	}

	gaps := []string{}
	if len(missing) > 0 {
		gaps = append(gaps, "Missing coverage on: "+strings.Join(missing, ", "))
	}
	switch len(blocks) {
	case 0:
		gaps = append(gaps, "No content available for query")
	case 1:
		gaps = append(gaps, "Only single source available, multiple sources recommended")
	}
	return gaps
}

func meanRelevance(blocks []domain.ContentBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range blocks {
		sum += b.RelevanceScore
	}
	return sum / float64(len(blocks))
}

func recommend(blockCount, contradictionCount int, gaps []string, quality float64) []string {
	recs := []string{}
	if contradictionCount > 0 {
		recs = append(recs, fmt.Sprintf("Verify %d contradiction(s) between sources", contradictionCount))
	}
	if len(gaps) > 0 {
		recs = append(recs, "Additional research needed: "+gaps[0])
	}
	if blockCount < 2 {
		recs = append(recs, "Consult multiple sources for better coverage")
	}
	if quality < lowQualityThreshold {
		recs = append(recs, "Consider re-querying with refined search terms")
	}
	return recs
}
