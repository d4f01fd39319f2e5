package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"demogate/internal/activity/models"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	base  time.Time
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) append(accountID string, typ models.EventType, at time.Time, demoID string) string {
	id, err := s.store.Append(context.Background(), &models.Event{
		AccountID: accountID,
		Type:      typ,
		Timestamp: at,
		DemoID:    demoID,
	})
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), id)
	return id
}

func (s *InMemoryStoreSuite) TestAppendAssignsUniqueIDs() {
	first := s.append("jane-doe", models.EventPageView, s.base, "")
	second := s.append("jane-doe", models.EventPageView, s.base, "")
	assert.NotEqual(s.T(), first, second)
}

func (s *InMemoryStoreSuite) TestQueryDescendingOrder() {
	for i := 0; i < 5; i++ {
		s.append("jane-doe", models.EventPageView, s.base.Add(time.Duration(i)*time.Minute), "")
	}

	events, err := s.store.Query(context.Background(), "jane-doe", models.Filter{}, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 5)
	for i := 1; i < len(events); i++ {
		assert.False(s.T(), events[i].Timestamp.After(events[i-1].Timestamp))
	}
}

func (s *InMemoryStoreSuite) TestQueryIsolatedPerAccount() {
	s.append("jane-doe", models.EventPageView, s.base, "")
	s.append("john-roe", models.EventPageView, s.base, "")

	events, err := s.store.Query(context.Background(), "jane-doe", models.Filter{}, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), "jane-doe", events[0].AccountID)
}

func (s *InMemoryStoreSuite) TestQueryFilters() {
	s.append("jane-doe", models.EventPageView, s.base, "demo-alpha")
	s.append("jane-doe", models.EventButtonClick, s.base.Add(time.Minute), "demo-alpha")
	s.append("jane-doe", models.EventPageView, s.base.Add(2*time.Minute), "demo-beta")

	byType, err := s.store.Query(context.Background(), "jane-doe", models.Filter{Type: models.EventPageView}, 10)
	require.NoError(s.T(), err)
	assert.Len(s.T(), byType, 2)

	byDemo, err := s.store.Query(context.Background(), "jane-doe", models.Filter{DemoID: "demo-beta"}, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), byDemo, 1)
	assert.Equal(s.T(), "demo-beta", byDemo[0].DemoID)

	byRange, err := s.store.Query(context.Background(), "jane-doe", models.Filter{
		From: s.base.Add(30 * time.Second),
		To:   s.base.Add(90 * time.Second),
	}, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), byRange, 1)
	assert.Equal(s.T(), models.EventButtonClick, byRange[0].Type)
}

func (s *InMemoryStoreSuite) TestQueryCapsLimit() {
	for i := 0; i < MaxQueryLimit+50; i++ {
		s.append("jane-doe", models.EventPageView, s.base.Add(time.Duration(i)*time.Second), "")
	}

	events, err := s.store.Query(context.Background(), "jane-doe", models.Filter{}, MaxQueryLimit+50)
	require.NoError(s.T(), err)
	assert.Len(s.T(), events, MaxQueryLimit)
}

func (s *InMemoryStoreSuite) TestStoredEventIsCopied() {
	ev := &models.Event{
		AccountID: "jane-doe",
		Type:      models.EventPageView,
		Timestamp: s.base,
		PageURL:   "/demos/alpha",
	}
	_, err := s.store.Append(context.Background(), ev)
	require.NoError(s.T(), err)

	ev.PageURL = "/mutated"

	events, err := s.store.Query(context.Background(), "jane-doe", models.Filter{}, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), "/demos/alpha", events[0].PageURL)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: -1, want: 100},
		{in: 0, want: 100},
		{in: 1, want: 1},
		{in: 500, want: 500},
		{in: 501, want: 500},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("limit_%d", tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, ClampLimit(tc.in))
		})
	}
}
