package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DocumentService interface {
	UploadURL(ctx context.Context, externalID string, req service.UploadRequest) (*domain.UploadTicket, error)
	Create(ctx context.Context, externalID string, in service.DocumentInput) (*domain.Document, error)
	Get(ctx context.Context, externalID, id string) (*domain.Document, error)
	List(ctx context.Context, externalID, userID string) ([]domain.Document, error)
	Delete(ctx context.Context, externalID, id string) error
	UpdateLog(ctx context.Context, externalID, id string, action domain.DocumentAction) (*domain.DocumentLog, error)
}

type DocumentHandler struct {
	service DocumentService
	logger  *zap.Logger
}

func NewDocumentHandler(s DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{service: s, logger: logger.Named("document-api")}
}

// UploadURL presigns a direct upload to object storage.
// POST /v1/documents/upload-url
func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req service.UploadRequest
	if err := readJSON(r, &req); err != nil {
		badBody(w, r, err)
		return
	}
	t, err := h.service.UploadURL(r.Context(), auth.ExternalIDFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /v1/documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.DocumentInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	d, err := h.service.Create(r.Context(), auth.ExternalIDFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GET /v1/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GET /v1/documents?user_id=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), auth.ExternalIDFrom(r.Context()), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DELETE /v1/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /v1/documents/logs/{id}
func (h *DocumentHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action domain.DocumentAction `json:"action"`
	}
	if err := readJSON(r, &body); err != nil {
		badBody(w, r, err)
		return
	}
	l, err := h.service.UpdateLog(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"), body.Action)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
