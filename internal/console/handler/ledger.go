package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/gate"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"go.uber.org/zap"
)

type LedgerService interface {
	UpsertUserPolicy(ctx context.Context, actor string, in service.UserPolicyInput) (*domain.UserPolicy, error)
	ListUserPolicies(ctx context.Context, actor string, q service.ListQuery) ([]domain.UserPolicy, error)
	UpsertUserSignature(ctx context.Context, actor string, in service.SignatureInput) (*domain.UserSignature, error)
	LoadUserSignature(ctx context.Context, actor string, q service.ListQuery) (*domain.UserSignature, error)
}

// LedgerHandler serves the consent pages. A successful write answers with the
// next gate decision; a failed write answers with save_failed and no
// destination, so the client stays on the current step.
type LedgerHandler struct {
	service LedgerService
	gate    GateEvaluator
	logger  *zap.Logger
}

func NewLedgerHandler(s LedgerService, g GateEvaluator, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{service: s, gate: g, logger: logger.Named("ledger-api")}
}

type userPolicyResponse struct {
	UserPolicy *domain.UserPolicy `json:"user_policy"`
	Next       *gate.Decision     `json:"next,omitempty"`
}

type signatureResponse struct {
	Signature *domain.UserSignature `json:"signature"`
	Next      *gate.Decision        `json:"next,omitempty"`
}

func listQuery(r *http.Request) service.ListQuery {
	q := r.URL.Query()
	return service.ListQuery{UserID: q.Get("user_id"), ExternalID: q.Get("external_id")}
}

// next re-runs the gate for the caller. The write already succeeded, so a
// gate failure only drops the hint and the client re-evaluates on navigation.
func (h *LedgerHandler) next(r *http.Request, actor string) *gate.Decision {
	entry := gate.Entry(r.URL.Query().Get("entry"))
	if !entry.Valid() {
		entry = gate.EntryCustomer
	}
	d, err := h.gate.Next(r.Context(), actor, entry)
	if err != nil {
		h.logger.Warn("post-write gate evaluation failed", zap.Error(err))
		return nil
	}
	return &d
}

// GET /v1/user-policies?user_id=|external_id=
func (h *LedgerHandler) ListUserPolicies(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListUserPolicies(r.Context(), auth.ExternalIDFrom(r.Context()), listQuery(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// PUT /v1/user-policies
func (h *LedgerHandler) UpsertUserPolicy(w http.ResponseWriter, r *http.Request) {
	var in service.UserPolicyInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	actor := auth.ExternalIDFrom(r.Context())
	up, err := h.service.UpsertUserPolicy(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userPolicyResponse{UserPolicy: up, Next: h.next(r, actor)})
}

// GET /v1/signatures?user_id=|external_id=
func (h *LedgerHandler) LoadSignature(w http.ResponseWriter, r *http.Request) {
	sig, err := h.service.LoadUserSignature(r.Context(), auth.ExternalIDFrom(r.Context()), listQuery(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// PUT /v1/signatures
func (h *LedgerHandler) UpsertSignature(w http.ResponseWriter, r *http.Request) {
	var in service.SignatureInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	actor := auth.ExternalIDFrom(r.Context())
	sig, err := h.service.UpsertUserSignature(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, signatureResponse{Signature: sig, Next: h.next(r, actor)})
}
