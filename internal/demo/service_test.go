package demo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"demogate/internal/audit"
	"demogate/internal/demo"
	"demogate/internal/platform/logger"
	dErrors "demogate/pkg/domain-errors"
)

type DemoServiceSuite struct {
	suite.Suite

	ctx     context.Context
	store   *demo.InMemoryStore
	trail   *audit.InMemoryStore
	service *demo.Service
	now     time.Time
}

func (s *DemoServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = demo.NewInMemoryStore()
	s.trail = audit.NewInMemoryStore()
	recorder := audit.NewRecorder(s.trail, audit.WithRecorderLogger(logger.Discard()))
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = demo.NewService(s.store, recorder,
		demo.WithLogger(logger.Discard()),
		demo.WithClock(func() time.Time { return s.now }),
	)
}

func (s *DemoServiceSuite) create(req demo.CreateRequest) *demo.View {
	view, err := s.service.Create(s.ctx, req, "admin-a")
	s.Require().NoError(err)
	return view
}

func (s *DemoServiceSuite) TestCreateNormalizesID() {
	view := s.create(demo.CreateRequest{ID: "Harbor Light", Title: "Harborlight"})
	s.Equal("harbor-light", view.ID)
	s.True(view.IsActive)
	s.Equal(s.now, view.CreatedAt)

	entries, err := s.trail.Query(s.ctx, audit.Filter{Action: audit.ActionDemoCreated}, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("admin-a", entries[0].ActorID)
	s.Equal("harbor-light", entries[0].TargetID)
}

func (s *DemoServiceSuite) TestCreateDuplicateConflicts() {
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha"})
	_, err := s.service.Create(s.ctx, demo.CreateRequest{ID: "alpha", Title: "Alpha Again"}, "admin-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *DemoServiceSuite) TestCreateRequiresTitle() {
	_, err := s.service.Create(s.ctx, demo.CreateRequest{ID: "alpha"}, "admin-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMalformedPayload))
}

func (s *DemoServiceSuite) TestSpanishFieldsFallBackToEnglish() {
	s.create(demo.CreateRequest{
		ID:          "alpha",
		Title:       "Alpha Clinic",
		Description: "A clinic walkthrough",
		Tags:        []string{"health"},
	})

	view, err := s.service.Get(s.ctx, "alpha")
	s.Require().NoError(err)
	s.Equal("Alpha Clinic", view.TitleES)
	s.Equal("A clinic walkthrough", view.DescriptionES)
	s.Equal([]string{"health"}, view.TagsES)
}

func (s *DemoServiceSuite) TestSpanishFieldsKeptWhenSet() {
	s.create(demo.CreateRequest{
		ID:      "alpha",
		Title:   "Alpha Clinic",
		TitleES: "Clínica Alpha",
	})

	view, err := s.service.Get(s.ctx, "alpha")
	s.Require().NoError(err)
	s.Equal("Clínica Alpha", view.TitleES)
}

func (s *DemoServiceSuite) TestUpdateRecordsChangedFields() {
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha"})

	title := "Alpha v2"
	order := 5
	view, err := s.service.Update(s.ctx, "alpha", demo.UpdateRequest{
		Title:     &title,
		SortOrder: &order,
	}, "admin-a")
	s.Require().NoError(err)
	s.Equal("Alpha v2", view.Title)
	s.Equal(5, view.SortOrder)

	entries, err := s.trail.Query(s.ctx, audit.Filter{Action: audit.ActionDemoUpdated}, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal([]string{"title", "sort_order"}, entries[0].Details["fields"])
}

func (s *DemoServiceSuite) TestUpdateEmptyRejected() {
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha"})
	_, err := s.service.Update(s.ctx, "alpha", demo.UpdateRequest{}, "admin-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMalformedPayload))
}

func (s *DemoServiceSuite) TestDeleteIsSoft() {
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha"})
	s.Require().NoError(s.service.Delete(s.ctx, "alpha", "admin-a"))

	// Gone from the browsable catalog.
	views, err := s.service.List(s.ctx, false)
	s.Require().NoError(err)
	s.Empty(views)

	// Still present for admins and direct lookups.
	views, err = s.service.List(s.ctx, true)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.False(views[0].IsActive)

	view, err := s.service.Get(s.ctx, "alpha")
	s.Require().NoError(err)
	s.False(view.IsActive)

	entries, err := s.trail.Query(s.ctx, audit.Filter{Action: audit.ActionDemoDeleted}, 10)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *DemoServiceSuite) TestRestore() {
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha"})
	s.Require().NoError(s.service.Delete(s.ctx, "alpha", "admin-a"))

	view, err := s.service.Restore(s.ctx, "alpha", "admin-a")
	s.Require().NoError(err)
	s.True(view.IsActive)

	views, err := s.service.List(s.ctx, false)
	s.Require().NoError(err)
	s.Len(views, 1)
}

func (s *DemoServiceSuite) TestDeleteMissingNotFound() {
	err := s.service.Delete(s.ctx, "nope", "admin-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DemoServiceSuite) TestListOrdering() {
	s.create(demo.CreateRequest{ID: "zeta", Title: "Zeta", SortOrder: 1})
	s.create(demo.CreateRequest{ID: "beta", Title: "Beta", SortOrder: 2})
	s.create(demo.CreateRequest{ID: "alpha", Title: "Alpha", SortOrder: 2})

	views, err := s.service.List(s.ctx, false)
	s.Require().NoError(err)
	s.Require().Len(views, 3)
	s.Equal("zeta", views[0].ID)
	s.Equal("alpha", views[1].ID)
	s.Equal("beta", views[2].ID)
}

func TestDemoServiceSuite(t *testing.T) {
	suite.Run(t, new(DemoServiceSuite))
}

func Test_Updates_Empty(t *testing.T) {
	assert.True(t, demo.Updates{}.Empty())

	title := "x"
	assert.False(t, demo.Updates{Title: &title}.Empty())
}

func Test_Demo_CloneIsDeep(t *testing.T) {
	d := &demo.Demo{ID: "alpha", Tags: []string{"a"}, TagsES: []string{"b"}}
	cp := d.Clone()
	cp.Tags[0] = "mutated"
	cp.TagsES[0] = "mutated"
	require.Equal(t, "a", d.Tags[0])
	require.Equal(t, "b", d.TagsES[0])
}
