package account

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"demogate/internal/sentinel"
	"demogate/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) seed(id string, active bool) *Account {
	acct := &Account{
		ID:       id,
		Name:     "Seeded",
		Access:   []string{"demo-alpha"},
		IsActive: active,
	}
	require.NoError(s.T(), s.store.Create(context.Background(), acct))
	return acct
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	s.seed("jane-doe", true)

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane-doe", got.ID)
	assert.Equal(s.T(), []string{"demo-alpha"}, got.Access)
}

func (s *InMemoryStoreSuite) TestGetNotFound() {
	_, err := s.store.Get(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCreateConflict() {
	s.seed("jane-doe", true)
	err := s.store.Create(context.Background(), &Account{ID: "jane-doe"})
	assert.ErrorIs(s.T(), err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestConcurrentCreateSingleWinner() {
	result := testutil.RunConcurrent(50, func(int) error {
		return s.store.Create(context.Background(), &Account{ID: "jane-doe", IsActive: true})
	})
	assert.Equal(s.T(), int32(1), result.Successes)
	assert.Equal(s.T(), int32(49), result.Conflicts)
}

func (s *InMemoryStoreSuite) TestUpdateFields() {
	s.seed("jane-doe", true)

	name := "Jane Q. Doe"
	accessList := []string{"demo-alpha", "demo-beta"}
	admin := true
	got, err := s.store.Update(context.Background(), "jane-doe", Updates{
		Name:    &name,
		Access:  &accessList,
		IsAdmin: &admin,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Jane Q. Doe", got.Name)
	assert.Equal(s.T(), accessList, got.Access)
	assert.True(s.T(), got.IsAdmin)
	assert.False(s.T(), got.UpdatedAt.IsZero())
}

func (s *InMemoryStoreSuite) TestUpdateNotFound() {
	name := "Nobody"
	_, err := s.store.Update(context.Background(), "missing", Updates{Name: &name})
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeactivationTimestamps() {
	s.seed("jane-doe", true)

	inactive := false
	got, err := s.store.Update(context.Background(), "jane-doe", Updates{IsActive: &inactive})
	require.NoError(s.T(), err)
	assert.False(s.T(), got.IsActive)
	require.NotNil(s.T(), got.DeactivatedAt)
	assert.Nil(s.T(), got.ReactivatedAt)

	active := true
	got, err = s.store.Update(context.Background(), "jane-doe", Updates{IsActive: &active})
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsActive)
	require.NotNil(s.T(), got.ReactivatedAt)
	// The deactivation mark stays: the record keeps its full history.
	assert.NotNil(s.T(), got.DeactivatedAt)
}

func (s *InMemoryStoreSuite) TestListFiltersInactive() {
	s.seed("alpha", true)
	s.seed("bravo", false)
	s.seed("charlie", true)

	activeOnly, err := s.store.List(context.Background(), false)
	require.NoError(s.T(), err)
	require.Len(s.T(), activeOnly, 2)
	assert.Equal(s.T(), "alpha", activeOnly[0].ID)
	assert.Equal(s.T(), "charlie", activeOnly[1].ID)

	all, err := s.store.List(context.Background(), true)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)
}

func (s *InMemoryStoreSuite) TestTouchLastLogin() {
	s.seed("jane-doe", true)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(s.T(), s.store.TouchLastLogin(context.Background(), "jane-doe", at))

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got.LastLogin)
	assert.Equal(s.T(), at, *got.LastLogin)

	err = s.store.TouchLastLogin(context.Background(), "missing", at)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedAccountIsIsolated() {
	s.seed("jane-doe", true)

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	got.Access[0] = "mutated"

	again, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "demo-alpha", again.Access[0])
}

func (s *InMemoryStoreSuite) TestConcurrentUpdates() {
	s.seed("jane-doe", true)

	result := testutil.RunConcurrent(50, func(idx int) error {
		name := fmt.Sprintf("Name %d", idx)
		_, err := s.store.Update(context.Background(), "jane-doe", Updates{Name: &name})
		return err
	})
	assert.Equal(s.T(), int32(50), result.Successes)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}
