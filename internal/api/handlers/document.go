package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type createDocumentRequest struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Summary  string         `json:"summary"`
	URL      string         `json:"url"`
	Keywords []string       `json:"keywords"`
	Metadata map[string]any `json:"metadata"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc := &domain.Document{
		Title:    req.Title,
		Body:     req.Body,
		Summary:  req.Summary,
		URL:      req.URL,
		Keywords: req.Keywords,
		Metadata: req.Metadata,
	}
	if err := h.svc.Create(r.Context(), doc); err != nil {
		writeServiceError(w, err, "failed to create document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
