package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/go-chi/chi/v5"
)

type RoutingHandler struct {
	router *service.Router
}

func NewRoutingHandler(router *service.Router) *RoutingHandler {
	return &RoutingHandler{router: router}
}

type routeRequest struct {
	Query    string         `json:"query"`
	Strategy string         `json:"strategy"`
	Context  map[string]any `json:"context"`
}

func (h *RoutingHandler) Route(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := h.router.Route(req.Query, domain.RoutingStrategy(req.Strategy), req.Context)
	if err != nil {
		writeServiceError(w, err, "failed to route request")
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// RecentDecisions returns the decision log, newest first.
func (h *RoutingHandler) RecentDecisions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	decisions := h.router.RecentDecisions(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// ListSources returns registered sources ordered by priority.
func (h *RoutingHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources := h.router.Registry().List()
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"count":   len(sources),
	})
}

func (h *RoutingHandler) UnregisterSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.router.Registry().Unregister(id); err != nil {
		writeServiceError(w, err, "failed to unregister source")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
