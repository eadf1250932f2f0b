package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
)

type QueryHandler struct {
	svc *service.ContentService
}

func NewQueryHandler(svc *service.ContentService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type queryRequest struct {
	Query    string         `json:"query"`
	Strategy string         `json:"strategy"`
	Limit    int            `json:"limit"`
	Language string         `json:"language"`
	Context  map[string]any `json:"context"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	result, err := h.svc.Query(r.Context(), service.QueryRequest{
		Query:    req.Query,
		Strategy: domain.RoutingStrategy(req.Strategy),
		Options:  domain.QueryOptions{Limit: req.Limit, Language: req.Language},
		Context:  req.Context,
	})
	if err != nil {
		writeServiceError(w, err, "failed to query content")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
