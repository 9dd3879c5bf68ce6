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

type CompanyService interface {
	CreateForCaller(ctx context.Context, externalID string, in service.CompanyInput) (*domain.Company, error)
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	Update(ctx context.Context, externalID, id string, in service.CompanyInput) (*domain.Company, error)
	Inactivate(ctx context.Context, externalID, id string) error
	List(ctx context.Context, showInactive bool) ([]domain.Company, error)
	Search(ctx context.Context, term string) ([]domain.Company, error)
}

type CompanyHandler struct {
	service CompanyService
	logger  *zap.Logger
}

func NewCompanyHandler(s CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{service: s, logger: logger.Named("company-api")}
}

// Create registers a company and attaches it to the caller.
// POST /v1/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CompanyInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	c, err := h.service.CreateForCaller(r.Context(), auth.ExternalIDFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// List also serves typeahead search with ?q=.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out []domain.Company
		err error
	)
	if term := r.URL.Query().Get("q"); term != "" {
		out, err = h.service.Search(r.Context(), term)
	} else {
		out, err = h.service.List(r.Context(), boolQuery(r, "show_inactive"))
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.CompanyInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	c, err := h.service.Update(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Inactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Inactivate(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
