package handlers

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/go-chi/chi/v5"
)

type ScoringHandler struct {
	scorer *service.QualityScorer
}

func NewScoringHandler(scorer *service.QualityScorer) *ScoringHandler {
	return &ScoringHandler{scorer: scorer}
}

// scoreRequest leaves optional signals as pointers; absent ones take the
// scorer's neutral default.
type scoreRequest struct {
	Content       string     `json:"content"`
	SourceType    string     `json:"source_type"`
	CreatedAt     *time.Time `json:"created_at"`
	Relevance     *float64   `json:"relevance"`
	Completeness  *float64   `json:"completeness"`
	Accuracy      *float64   `json:"accuracy"`
	CitationCount int        `json:"citation_count"`
	UserFeedback  *float64   `json:"user_feedback"`
}

func (req scoreRequest) input() service.ScoreInput {
	in := service.DefaultScoreInput()
	if req.Relevance != nil {
		in.Relevance = *req.Relevance
	}
	if req.Completeness != nil {
		in.Completeness = *req.Completeness
	}
	if req.Accuracy != nil {
		in.Accuracy = *req.Accuracy
	}
	if req.UserFeedback != nil {
		in.UserFeedback = *req.UserFeedback
	}
	in.CitationCount = req.CitationCount
	return in
}

func (h *ScoringHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.SourceType == "" {
		writeError(w, http.StatusBadRequest, "source_type is required")
		return
	}
	in := req.input()
	if err := in.Validate(); err != nil {
		writeServiceError(w, err, "invalid score input")
		return
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	result := h.scorer.ScoreContent(req.Content, req.SourceType, createdAt, in)
	writeJSON(w, http.StatusOK, result)
}

func (h *ScoringHandler) Weights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"weights": h.scorer.Weights()})
}

type weightRequest struct {
	Weight *float64 `json:"weight"`
}

func (h *ScoringHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	var req weightRequest
	if err := decodeJSON(r, &req); err != nil || req.Weight == nil {
		writeError(w, http.StatusBadRequest, "weight is required")
		return
	}

	factor := domain.ScoringFactor(chi.URLParam(r, "factor"))
	if err := h.scorer.SetFactorWeight(factor, *req.Weight); err != nil {
		writeServiceError(w, err, "failed to set weight")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weights": h.scorer.Weights()})
}

func (h *ScoringHandler) Reliability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"reliability": h.scorer.Reliability()})
}

type reliabilityRequest struct {
	Reliability *float64 `json:"reliability"`
}

func (h *ScoringHandler) SetReliability(w http.ResponseWriter, r *http.Request) {
	var req reliabilityRequest
	if err := decodeJSON(r, &req); err != nil || req.Reliability == nil {
		writeError(w, http.StatusBadRequest, "reliability is required")
		return
	}

	sourceType := chi.URLParam(r, "sourceType")
	if err := h.scorer.SetSourceReliability(sourceType, *req.Reliability); err != nil {
		writeServiceError(w, err, "failed to set reliability")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reliability": h.scorer.Reliability()})
}
