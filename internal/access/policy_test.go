package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demogate/internal/token"
	dErrors "demogate/pkg/domain-errors"
)

const testSigningKey = "policy-test-signing-key-32-chars!!!!"

func newPolicy(t *testing.T) (*Policy, *token.Service) {
	t.Helper()
	tokens := token.New(testSigningKey, "HS256", time.Hour)
	return NewPolicy(tokens), tokens
}

// liveRecord is a minimal LiveAccount for policy tests.
type liveRecord struct {
	id     string
	active bool
	access []string
}

func (r *liveRecord) Subject() string { return r.id }
func (r *liveRecord) Active() bool    { return r.active }

func (r *liveRecord) HasAccess(resourceID string) bool {
	for _, a := range r.access {
		if a == resourceID {
			return true
		}
	}
	return false
}

func activeAccount(id string, access ...string) *liveRecord {
	return &liveRecord{id: id, active: true, access: access}
}

func Test_Authenticate_Missing(t *testing.T) {
	p, _ := newPolicy(t)
	_, err := p.Authenticate("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenMissing))
}

func Test_Authenticate_Invalid(t *testing.T) {
	p, _ := newPolicy(t)
	_, err := p.Authenticate("garbage")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenInvalid))
}

func Test_Authenticate_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	expiredTokens := token.New(testSigningKey, "HS256", time.Hour,
		token.WithClock(func() time.Time { return past }))
	raw, err := expiredTokens.Issue("acme-dental", "Acme Dental", nil, false, time.Hour)
	require.NoError(t, err)

	p, _ := newPolicy(t)
	_, err = p.Authenticate(raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenExpired))
}

func Test_Authenticate_Valid(t *testing.T) {
	p, tokens := newPolicy(t)
	raw, err := tokens.Issue("acme-dental", "Acme Dental", []string{"harborlight"}, true, 0)
	require.NoError(t, err)

	claims, err := p.Authenticate(raw)
	require.NoError(t, err)
	assert.Equal(t, "acme-dental", claims.AccountID)
	assert.True(t, claims.IsAdmin)
}

func Test_RequireAdmin(t *testing.T) {
	p, _ := newPolicy(t)

	err := p.RequireAdmin(&token.Claims{IsAdmin: false})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAdmin))

	require.NoError(t, p.RequireAdmin(&token.Claims{IsAdmin: true}))
}

func Test_AuthorizeResource_FreshnessOverStaleness(t *testing.T) {
	p, tokens := newPolicy(t)

	// Token snapshot says the account may open "x".
	raw, err := tokens.Issue("acme-dental", "Acme Dental", []string{"x"}, false, 0)
	require.NoError(t, err)
	claims, err := p.Authenticate(raw)
	require.NoError(t, err)

	// Live state still grants "x".
	live := activeAccount("acme-dental", "x")
	assert.True(t, p.AuthorizeResource(claims, live, "x"))

	// Capability revoked after issuance: the unexpired token must lose
	// effect on the very next check.
	live.access = nil
	assert.False(t, p.AuthorizeResource(claims, live, "x"))

	// Deactivation denies regardless of capabilities.
	live.access = []string{"x"}
	live.active = false
	assert.False(t, p.AuthorizeResource(claims, live, "x"))
}

func Test_AuthorizeResource_SubjectMismatchDenies(t *testing.T) {
	p, _ := newPolicy(t)
	claims := &token.Claims{AccountID: "someone-else"}
	live := activeAccount("acme-dental", "x")
	assert.False(t, p.AuthorizeResource(claims, live, "x"))
}

func Test_ForbidSelfAction(t *testing.T) {
	p, _ := newPolicy(t)

	err := p.ForbidSelfAction("admin-a", "admin-a")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSelfActionBlocked))

	require.NoError(t, p.ForbidSelfAction("admin-a", "admin-b"))
}

func Test_RequireActive(t *testing.T) {
	p, _ := newPolicy(t)

	err := p.RequireActive(&liveRecord{id: "a"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAccountInactive))

	require.NoError(t, p.RequireActive(activeAccount("a")))
}
