package domain

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims are the claims of an identity provider session token.
// The subject is the external identity an Account is bound to.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ExternalID returns the identity the token was issued for.
func (c *IdentityClaims) ExternalID() string { return c.Subject }
