package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"demogate/internal/access"
	"demogate/internal/audit"
	"demogate/internal/platform/logger"
	"demogate/internal/token"
	dErrors "demogate/pkg/domain-errors"
	"demogate/pkg/secrets"
)

// fakeTracker records summary lifecycle calls.
type fakeTracker struct {
	initialized []string
	paused      []string
	resumed     []string
}

func (f *fakeTracker) Initialize(_ context.Context, accountID, _ string) error {
	f.initialized = append(f.initialized, accountID)
	return nil
}

func (f *fakeTracker) PauseTracking(_ context.Context, accountID string) error {
	f.paused = append(f.paused, accountID)
	return nil
}

func (f *fakeTracker) ResumeTracking(_ context.Context, accountID string) error {
	f.resumed = append(f.resumed, accountID)
	return nil
}

type AccountServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	trail   *audit.InMemoryStore
	tracker *fakeTracker
	tokens  *token.Service
	service *Service
}

func (s *AccountServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.trail = audit.NewInMemoryStore()
	s.tracker = &fakeTracker{}
	s.tokens = token.New("0123456789abcdef0123456789abcdef", "HS256", time.Hour)
	s.service = NewService(
		s.store,
		s.tokens,
		access.NewPolicy(s.tokens),
		s.tracker,
		audit.NewRecorder(s.trail, audit.WithRecorderLogger(logger.Discard())),
		WithLogger(logger.Discard()),
	)
}

func (s *AccountServiceSuite) seed(id, password string, active bool, accessList []string) {
	hash, err := secrets.HashPassword(password)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.store.Create(context.Background(), &Account{
		ID:           id,
		Name:         "Jane Doe",
		PasswordHash: hash,
		Access:       accessList,
		IsActive:     active,
	}))
}

func (s *AccountServiceSuite) trailActions(action audit.Action) []audit.Entry {
	entries, err := s.trail.Query(context.Background(), audit.Filter{Action: action}, 100)
	require.NoError(s.T(), err)
	return entries
}

func (s *AccountServiceSuite) TestLoginSuccess() {
	s.seed("jane-doe", "s3cret", true, []string{"demo-alpha"})

	session, err := s.service.Login(context.Background(), LoginRequest{AccountID: "Jane Doe", Password: "s3cret"})
	require.NoError(s.T(), err)

	claims, err := s.tokens.Decode(session.Token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane-doe", claims.AccountID)
	assert.Equal(s.T(), []string{"demo-alpha"}, claims.Access)

	stored, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), stored.LastLogin)

	assert.Len(s.T(), s.trailActions(audit.ActionLoginSuccess), 1)
}

func (s *AccountServiceSuite) TestLoginUnknownAccount() {
	_, err := s.service.Login(context.Background(), LoginRequest{AccountID: "ghost", Password: "whatever"})
	require.Error(s.T(), err)
	// Unknown account and wrong password are indistinguishable to the caller.
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	entries := s.trailActions(audit.ActionLoginFailed)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "user_not_found", entries[0].Details["reason"])
}

func (s *AccountServiceSuite) TestLoginWrongPassword() {
	s.seed("jane-doe", "s3cret", true, nil)

	_, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe", Password: "nope"})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	entries := s.trailActions(audit.ActionLoginFailed)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "invalid_password", entries[0].Details["reason"])
}

func (s *AccountServiceSuite) TestLoginInactiveAccount() {
	s.seed("jane-doe", "s3cret", false, nil)

	_, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe", Password: "s3cret"})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeAccountInactive))
}

func (s *AccountServiceSuite) TestLoginRequiresCredentials() {
	_, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe"})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMalformedPayload))
}

func (s *AccountServiceSuite) TestValidateSessionReflectsLiveState() {
	s.seed("jane-doe", "s3cret", true, nil)
	session, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe", Password: "s3cret"})
	require.NoError(s.T(), err)

	info, err := s.service.ValidateSession(context.Background(), session.Token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane-doe", info.Account.ID)
	assert.False(s.T(), info.ExpiresAt.IsZero())

	// Deactivation invalidates the still-unexpired token on the next check.
	require.NoError(s.T(), s.service.Deactivate(context.Background(), "jane-doe", "admin"))

	_, err = s.service.ValidateSession(context.Background(), session.Token)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeAccountInactive))
}

func (s *AccountServiceSuite) TestValidateSessionRejectsGarbage() {
	_, err := s.service.ValidateSession(context.Background(), "not-a-token")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTokenInvalid))

	_, err = s.service.ValidateSession(context.Background(), "")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTokenMissing))
}

func (s *AccountServiceSuite) TestCreateAccount() {
	view, err := s.service.Create(context.Background(), CreateRequest{
		ID:       "New User",
		Name:     "New User",
		Password: "s3cret",
		Access:   []string{"demo-alpha"},
	}, "admin")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new-user", view.ID)
	assert.True(s.T(), view.IsActive)
	assert.True(s.T(), view.QuickAccess)

	assert.Equal(s.T(), []string{"new-user"}, s.tracker.initialized)
	assert.Len(s.T(), s.trailActions(audit.ActionAccountCreated), 1)
}

func (s *AccountServiceSuite) TestCreateDuplicate() {
	s.seed("jane-doe", "s3cret", true, nil)

	_, err := s.service.Create(context.Background(), CreateRequest{ID: "jane-doe", Password: "s3cret"}, "admin")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AccountServiceSuite) TestCreateRequiresPassword() {
	_, err := s.service.Create(context.Background(), CreateRequest{ID: "jane-doe"}, "admin")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMalformedPayload))
}

func (s *AccountServiceSuite) TestUpdateAccount() {
	s.seed("jane-doe", "s3cret", true, []string{"demo-alpha"})

	accessList := []string{"demo-alpha", "demo-beta"}
	view, err := s.service.Update(context.Background(), "jane-doe", UpdateRequest{Access: &accessList}, "admin")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), accessList, view.Access)

	entries := s.trailActions(audit.ActionAccountUpdated)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), []string{"access"}, entries[0].Details["fields"])
}

func (s *AccountServiceSuite) TestUpdateRejectsEmpty() {
	s.seed("jane-doe", "s3cret", true, nil)

	_, err := s.service.Update(context.Background(), "jane-doe", UpdateRequest{}, "admin")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMalformedPayload))
}

func (s *AccountServiceSuite) TestDeactivateBlocksSelf() {
	s.seed("admin", "s3cret", true, nil)

	err := s.service.Deactivate(context.Background(), "admin", "admin")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeSelfActionBlocked))
	assert.Empty(s.T(), s.tracker.paused)
}

func (s *AccountServiceSuite) TestDeactivateAndReactivate() {
	s.seed("jane-doe", "s3cret", true, nil)

	require.NoError(s.T(), s.service.Deactivate(context.Background(), "jane-doe", "admin"))
	assert.Equal(s.T(), []string{"jane-doe"}, s.tracker.paused)
	assert.Len(s.T(), s.trailActions(audit.ActionAccountDeactivated), 1)

	stored, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.False(s.T(), stored.IsActive)
	assert.NotNil(s.T(), stored.DeactivatedAt)

	require.NoError(s.T(), s.service.Reactivate(context.Background(), "jane-doe", "admin"))
	assert.Equal(s.T(), []string{"jane-doe"}, s.tracker.resumed)
	assert.Len(s.T(), s.trailActions(audit.ActionAccountReactivated), 1)

	stored, err = s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.IsActive)
}

func (s *AccountServiceSuite) TestDeactivateMissing() {
	err := s.service.Deactivate(context.Background(), "missing", "admin")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AccountServiceSuite) TestCheckDemoAccessUsesLiveRecord() {
	s.seed("jane-doe", "s3cret", true, []string{"demo-alpha"})
	session, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe", Password: "s3cret"})
	require.NoError(s.T(), err)
	claims, err := s.tokens.Decode(session.Token)
	require.NoError(s.T(), err)

	allowed, err := s.service.CheckDemoAccess(context.Background(), claims, "demo-alpha")
	require.NoError(s.T(), err)
	assert.True(s.T(), allowed)

	// Revoke the capability; the token still lists demo-alpha but the live
	// record decides.
	empty := []string{}
	_, err = s.service.Update(context.Background(), "jane-doe", UpdateRequest{Access: &empty}, "admin")
	require.NoError(s.T(), err)

	allowed, err = s.service.CheckDemoAccess(context.Background(), claims, "demo-alpha")
	require.NoError(s.T(), err)
	assert.False(s.T(), allowed)

	assert.Len(s.T(), s.trailActions(audit.ActionDemoAccessChecked), 2)
}

func (s *AccountServiceSuite) TestAccessibleDemosRequiresActive() {
	s.seed("jane-doe", "s3cret", true, []string{"demo-alpha"})
	session, err := s.service.Login(context.Background(), LoginRequest{AccountID: "jane-doe", Password: "s3cret"})
	require.NoError(s.T(), err)
	claims, err := s.tokens.Decode(session.Token)
	require.NoError(s.T(), err)

	accessList, quickAccess, err := s.service.AccessibleDemos(context.Background(), claims)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"demo-alpha"}, accessList)
	assert.False(s.T(), quickAccess)

	require.NoError(s.T(), s.service.Deactivate(context.Background(), "jane-doe", "admin"))

	_, _, err = s.service.AccessibleDemos(context.Background(), claims)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeAccountInactive))
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}
