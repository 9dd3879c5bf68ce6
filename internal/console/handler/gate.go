package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/gate"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GateEvaluator interface {
	Next(ctx context.Context, externalID string, entry gate.Entry) (gate.Decision, error)
}

type AccountResolver interface {
	Resolve(ctx context.Context, externalID string) (*domain.Account, error)
}

type GateHandler struct {
	gate     GateEvaluator
	accounts AccountResolver
	logger   *zap.Logger
}

func NewGateHandler(g GateEvaluator, accounts AccountResolver, logger *zap.Logger) *GateHandler {
	return &GateHandler{gate: g, accounts: accounts, logger: logger.Named("gate-api")}
}

// Next returns where the caller goes next.
// GET /v1/gate?entry=customer|company
func (h *GateHandler) Next(w http.ResponseWriter, r *http.Request) {
	d, err := h.gate.Next(r.Context(), auth.ExternalIDFrom(r.Context()), gate.Entry(r.URL.Query().Get("entry")))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type companyAccess struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// CompanyAccess tells the client whether the caller may view a company's pages.
// GET /v1/gate/companies/{id}
func (h *GateHandler) CompanyAccess(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Resolve(r.Context(), auth.ExternalIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if a == nil {
		writeError(w, r, http.StatusForbidden, CodeForbidden, "no account for this identity", nil)
		return
	}
	if to := gate.AuthorizeCompanyRoute(a, chi.URLParam(r, "id")); to != "" {
		writeJSON(w, http.StatusOK, companyAccess{RedirectTo: to})
		return
	}
	writeJSON(w, http.StatusOK, companyAccess{Allowed: true})
}
