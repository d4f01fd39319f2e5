package summary

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"demogate/internal/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	err := s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now)
	require.NoError(s.T(), err)

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane-doe", got.AccountID)
	assert.Equal(s.T(), "Jane Doe", got.Name)
	assert.True(s.T(), got.TrackingActive)
	assert.Zero(s.T(), got.TotalEvents)
	assert.Empty(s.T(), got.DemosVisited)
}

func (s *InMemoryStoreSuite) TestCreateIsIdempotent() {
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now))

	update := NewUpdate().IncrementField(FieldTotalEvents, 5)
	require.NoError(s.T(), s.store.Apply(context.Background(), "jane-doe", update))

	// Re-creating must not reset accumulated counters.
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now.Add(time.Hour)))

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(5), got.TotalEvents)
	assert.Equal(s.T(), s.now, got.CreatedAt)
}

func (s *InMemoryStoreSuite) TestGetNotFound() {
	_, err := s.store.Get(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestApplyNotFound() {
	update := NewUpdate().IncrementField(FieldTotalEvents, 1)
	err := s.store.Apply(context.Background(), "missing", update)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestApplyAccumulates() {
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now))

	update := NewUpdate().
		IncrementField(FieldTotalEvents, 1).
		IncrementField(FieldTotalSessions, 1).
		IncrementField(FieldTotalTimeSeconds, 42).
		UnionIntoSet(FieldDemosVisited, "demo-alpha").
		SetTime(FieldLastActivity, s.now)
	require.NoError(s.T(), s.store.Apply(context.Background(), "jane-doe", update))

	later := s.now.Add(time.Minute)
	update = NewUpdate().
		IncrementField(FieldTotalEvents, 1).
		UnionIntoSet(FieldDemosVisited, "demo-alpha").
		UnionIntoSet(FieldDemosVisited, "demo-beta").
		SetTime(FieldLastActivity, later)
	require.NoError(s.T(), s.store.Apply(context.Background(), "jane-doe", update))

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), got.TotalEvents)
	assert.Equal(s.T(), int64(1), got.TotalSessions)
	assert.Equal(s.T(), int64(42), got.TotalTimeSeconds)
	assert.Equal(s.T(), []string{"demo-alpha", "demo-beta"}, got.DemosVisited)
	assert.Equal(s.T(), later, got.LastActivity)
}

func (s *InMemoryStoreSuite) TestApplyUnknownField() {
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now))

	err := s.store.Apply(context.Background(), "jane-doe", NewUpdate().IncrementField("bogus", 1))
	assert.Error(s.T(), err)
}

func (s *InMemoryStoreSuite) TestConcurrentIncrementsAreNotLost() {
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now))

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			update := NewUpdate().
				IncrementField(FieldTotalEvents, 1).
				IncrementField(FieldTotalSessions, 1)
			_ = s.store.Apply(context.Background(), "jane-doe", update)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(workers), got.TotalEvents)
	assert.Equal(s.T(), int64(workers), got.TotalSessions)
}

func (s *InMemoryStoreSuite) TestSetTracking() {
	require.NoError(s.T(), s.store.Create(context.Background(), "jane-doe", "Jane Doe", s.now))

	pausedAt := s.now.Add(time.Hour)
	require.NoError(s.T(), s.store.SetTracking(context.Background(), "jane-doe", false, pausedAt))

	got, err := s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.False(s.T(), got.TrackingActive)
	require.NotNil(s.T(), got.TrackingPausedAt)
	assert.Equal(s.T(), pausedAt, *got.TrackingPausedAt)

	resumedAt := pausedAt.Add(time.Hour)
	require.NoError(s.T(), s.store.SetTracking(context.Background(), "jane-doe", true, resumedAt))

	got, err = s.store.Get(context.Background(), "jane-doe")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.TrackingActive)
	require.NotNil(s.T(), got.TrackingResumedAt)
	assert.Equal(s.T(), resumedAt, *got.TrackingResumedAt)

	err = s.store.SetTracking(context.Background(), "missing", false, s.now)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}
