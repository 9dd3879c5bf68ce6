package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// BaseValidator checks identity provider tokens signed with RS256.
type BaseValidator struct {
	publicKey *rsa.PublicKey
	opts      []jwt.ParserOption
}

// NewBaseValidator builds a validator. Empty issuer or audience are not checked.
func NewBaseValidator(pubKey *rsa.PublicKey, issuer, audience string) *BaseValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &BaseValidator{publicKey: pubKey, opts: opts}
}

// VerifyToken accepts a raw token or an Authorization header value.
func (v *BaseValidator) VerifyToken(tokenStr string) (*domain.IdentityClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &domain.IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	}, v.opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*domain.IdentityClaims)
	if !ok || claims.ExternalID() == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ParseRSAPublicKey decodes a PEM encoded public key.
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return key, nil
}
