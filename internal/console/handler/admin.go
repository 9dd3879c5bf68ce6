package handler

import (
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"go.uber.org/zap"
)

// RequireAdministrator lets only global administrators through.
func RequireAdministrator(accounts AccountResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("admin-guard")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, err := accounts.Resolve(r.Context(), auth.ExternalIDFrom(r.Context()))
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}
			if a == nil || !a.UserType.IsGlobalAdmin() {
				writeError(w, r, http.StatusForbidden, CodeForbidden, "administrators only", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
