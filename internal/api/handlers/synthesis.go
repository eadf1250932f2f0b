package handlers

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/google/uuid"
)

type SynthesisHandler struct {
	synthesizer *service.Synthesizer
}

func NewSynthesisHandler(synthesizer *service.Synthesizer) *SynthesisHandler {
	return &SynthesisHandler{synthesizer: synthesizer}
}

type blockRequest struct {
	ContentID      string               `json:"content_id"`
	Source         domain.ContentSource `json:"source"`
	Title          string               `json:"title"`
	Body           string               `json:"body"`
	Summary        string               `json:"summary"`
	Keywords       []string             `json:"keywords"`
	RelevanceScore *float64             `json:"relevance_score"`
}

type synthesizeRequest struct {
	Query  string         `json:"query"`
	Blocks []blockRequest `json:"blocks"`
}

func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	blocks, msg := toBlocks(req.Blocks, time.Now().UTC())
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	writeJSON(w, http.StatusOK, h.synthesizer.Synthesize(r.Context(), req.Query, blocks))
}

// toBlocks validates caller-supplied blocks and fills the defaults a
// producer would normally set. A non-empty message reports the first
// invalid block.
func toBlocks(in []blockRequest, now time.Time) ([]domain.ContentBlock, string) {
	blocks := make([]domain.ContentBlock, 0, len(in))
	for _, b := range in {
		if b.Body == "" {
			return nil, "every block needs a body"
		}
		relevance := domain.DefaultRelevanceScore
		if b.RelevanceScore != nil {
			relevance = *b.RelevanceScore
		}
		if relevance < 0 || relevance > 1 {
			return nil, "relevance_score must be between 0 and 1"
		}
		if b.ContentID == "" {
			b.ContentID = "block_" + uuid.NewString()
		}
		if b.Source.SourceID == "" {
			b.Source.SourceID = b.ContentID
		}
		if b.Source.Name == "" {
			b.Source.Name = b.Source.SourceID
		}
		blocks = append(blocks, domain.ContentBlock{
			ContentID:      b.ContentID,
			Source:         b.Source,
			Title:          b.Title,
			Body:           b.Body,
			Summary:        b.Summary,
			Keywords:       b.Keywords,
			RelevanceScore: relevance,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return blocks, ""
}
