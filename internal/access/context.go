package access

import (
	"context"

	"demogate/internal/token"
)

type claimsKey struct{}

// WithClaims stores validated claims in the context. The claims object is
// treated as immutable once attached; handlers only read it.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom retrieves validated claims placed by the auth middleware.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return claims, ok
}
