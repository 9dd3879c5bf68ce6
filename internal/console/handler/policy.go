package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

type PolicyService interface {
	List(ctx context.Context) ([]domain.Policy, error)
	ListRequired(ctx context.Context) ([]domain.RequiredPolicy, error)
	Refresh(ctx context.Context) error
}

type PolicyHandler struct {
	service PolicyService
	logger  *zap.Logger
}

func NewPolicyHandler(s PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{service: s, logger: logger.Named("policy-api")}
}

// List returns the policy catalog.
// GET /v1/policies
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /v1/required-policies
func (h *PolicyHandler) Required(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListRequired(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Refresh reloads the catalog on every instance after the policies table changed.
// POST /v1/policies/refresh
func (h *PolicyHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
