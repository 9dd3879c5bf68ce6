package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"go.uber.org/zap"
)

type AuditService interface {
	Consents(ctx context.Context, userID string, limit int) ([]audit.ConsentEvent, error)
}

type AuditHandler struct {
	service AuditService
	logger  *zap.Logger
}

func NewAuditHandler(s AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: s, logger: logger.Named("audit-api")}
}

// Consents returns a user's consent trail.
// GET /v1/audit/consents?user_id=...&limit=...
func (h *AuditHandler) Consents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.service.Consents(r.Context(), q.Get("user_id"), intQuery(r, "limit"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
