// Package access decides who may do what. Authentication unwraps a session
// token; authorization always consults the live account record, so a token
// issued before a capability revocation or deactivation loses effect on the
// very next check even though it stays cryptographically valid until expiry.
package access

import (
	"demogate/internal/token"
	dErrors "demogate/pkg/domain-errors"
)

// TokenDecoder is the slice of the token service the policy consumes.
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// LiveAccount is the slice of the live account record consulted for
// authorization. Defining it here keeps the policy free of storage types.
type LiveAccount interface {
	Subject() string
	Active() bool
	HasAccess(resourceID string) bool
}

// Policy evaluates authentication and authorization checks. All checks are
// pure: they return typed errors, never retry, and never mutate state.
type Policy struct {
	tokens TokenDecoder
}

// NewPolicy constructs a policy over the given token decoder.
func NewPolicy(tokens TokenDecoder) *Policy {
	return &Policy{tokens: tokens}
}

// Authenticate decodes a bearer token into claims. An empty token is the
// boundary's "no credentials supplied" case and gets its own code so the
// transport can distinguish missing from invalid.
func (p *Policy) Authenticate(raw string) (*token.Claims, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token")
	}
	claims, err := p.tokens.Decode(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin denies unless the claims carry the admin flag.
func (p *Policy) RequireAdmin(claims *token.Claims) error {
	if claims == nil || !claims.IsAdmin {
		return dErrors.New(dErrors.CodeNotAdmin, "admin privileges required")
	}
	return nil
}

// RequireActive denies when the live account has been deactivated.
func (p *Policy) RequireActive(live LiveAccount) error {
	if live == nil || !live.Active() {
		return dErrors.New(dErrors.CodeAccountInactive, "account is disabled")
	}
	return nil
}

// AuthorizeResource reports whether the subject may open the resource.
// The decision reads only the live account's capability set and active
// flag; the capability snapshot inside the claims is never consulted.
// A claims/account subject mismatch always denies.
func (p *Policy) AuthorizeResource(claims *token.Claims, live LiveAccount, resourceID string) bool {
	if claims == nil || live == nil || resourceID == "" {
		return false
	}
	if claims.AccountID != live.Subject() {
		return false
	}
	if !live.Active() {
		return false
	}
	return live.HasAccess(resourceID)
}

// ForbidSelfAction blocks an actor from applying a destructive
// administrative action to its own account.
func (p *Policy) ForbidSelfAction(actorID, targetID string) error {
	if actorID != "" && actorID == targetID {
		return dErrors.New(dErrors.CodeSelfActionBlocked, "cannot perform this action on your own account")
	}
	return nil
}
