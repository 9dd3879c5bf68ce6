package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/gate"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AccountService interface {
	MustResolve(ctx context.Context, externalID string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, externalID string, in service.AccountInput) (*domain.Account, error)
	Update(ctx context.Context, externalID, id string, in service.AccountInput) (*domain.Account, error)
	Inactivate(ctx context.Context, externalID, id string) error
	List(ctx context.Context, showInactive bool) ([]domain.Account, error)
	Search(ctx context.Context, term string) ([]domain.Account, error)
	AttachCompany(ctx context.Context, externalID, id, companyID string) error
	ListUserTypes(ctx context.Context) ([]domain.UserType, error)
}

type AccountHandler struct {
	service AccountService
	logger  *zap.Logger
}

func NewAccountHandler(s AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{service: s, logger: logger.Named("account-api")}
}

type meResponse struct {
	Account *domain.Account `json:"account"`
	Home    string          `json:"home"`
}

// Me returns the caller's account and where login should land.
// GET /v1/accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.MustResolve(r.Context(), auth.ExternalIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Account: a, Home: gate.Home(a)})
}

// GET /v1/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create binds a new account to the caller.
// POST /v1/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.AccountInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	a, err := h.service.Create(r.Context(), auth.ExternalIDFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// List returns accounts; ?show_inactive=true includes inactive ones.
// GET /v1/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if term := r.URL.Query().Get("q"); term != "" {
		h.search(w, r, term)
		return
	}
	out, err := h.service.List(r.Context(), boolQuery(r, "show_inactive"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AccountHandler) search(w http.ResponseWriter, r *http.Request, term string) {
	out, err := h.service.Search(r.Context(), term)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// PUT /v1/accounts/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.AccountInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	a, err := h.service.Update(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// POST /v1/accounts/{id}/inactivate
func (h *AccountHandler) Inactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Inactivate(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /v1/accounts/{id}/company
func (h *AccountHandler) AttachCompany(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID string `json:"company_id"`
	}
	if err := readJSON(r, &body); err != nil {
		badBody(w, r, err)
		return
	}
	if err := h.service.AttachCompany(r.Context(), auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"), body.CompanyID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/user-types
func (h *AccountHandler) UserTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListUserTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
