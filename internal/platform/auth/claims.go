// Package auth binds verified identity-token claims into the policy
// engine's Claims value and enforces access decisions at the HTTP
// boundary. Token signature and issuer/audience verification happen
// upstream (at the gateway or in the echo-jwt middleware); this package
// only consumes the already-verified result.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cerberus100/Telehealthcrm-sub000/internal/policy"
)

type contextKey string

const claimsKey contextKey = "access_claims"

// TokenClaims is the JWT claim set issued by the platform's identity
// provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	OrgID           string   `json:"org_id"`
	OrgType         string   `json:"org_type"`
	Role            string   `json:"role"`
	PurposeOfUse    string   `json:"purpose_of_use,omitempty"`
	Scopes          []string `json:"scopes,omitempty"`
	BreakGlassUntil int64    `json:"break_glass_until,omitempty"`
}

// Policy converts the token claim set into the engine's Claims value.
func (c *TokenClaims) Policy() policy.Claims {
	return policy.Claims{
		OrgID:           c.OrgID,
		OrgType:         policy.OrgType(c.OrgType),
		Role:            policy.Role(c.Role),
		PurposeOfUse:    c.PurposeOfUse,
		Scopes:          c.Scopes,
		BreakGlassUntil: c.BreakGlassUntil,
	}
}

// WithClaims returns a context carrying the caller's policy claims.
func WithClaims(ctx context.Context, claims policy.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the policy claims stored by BindClaims. The
// zero Claims value (which denies everything) is returned when no claims
// are present, so speculative callers need no nil checks.
func ClaimsFromContext(ctx context.Context) (policy.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(policy.Claims)
	return claims, ok
}
