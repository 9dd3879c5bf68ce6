package auth

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator verifies an Authorization header value.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.IdentityClaims, error)
}

type ctxKey int

const claimsKey ctxKey = iota

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, c *domain.IdentityClaims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom returns the claims stored by the middleware, if any.
func ClaimsFrom(ctx context.Context) (*domain.IdentityClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*domain.IdentityClaims)
	return c, ok && c != nil
}

// ExternalIDFrom returns the caller's external identity or "".
func ExternalIDFrom(ctx context.Context) string {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.ExternalID()
	}
	return ""
}

// NewMiddleware rejects requests without a valid session token.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
