package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"demogate/internal/account"
	"demogate/internal/audit"
	"demogate/internal/platform/middleware"
	"demogate/internal/sentinel"
	dErrors "demogate/pkg/domain-errors"
)

// AuditRecorder captures trail entries without ever failing the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service owns the demo catalog lifecycle.
type Service struct {
	store   Store
	auditor AuditRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the catalog service.
// Panics if a required dependency is nil - fail fast at startup.
func NewService(store Store, auditor AuditRecorder, opts ...Option) *Service {
	if store == nil {
		panic("demo.NewService: store is required")
	}
	if auditor == nil {
		panic("demo.NewService: audit recorder is required")
	}
	s := &Service{
		store:   store,
		auditor: auditor,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View is the transport shape of a catalog entry. Spanish fields are
// always populated, falling back to the English values.
type View struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Industry      string    `json:"industry"`
	Path          string    `json:"path"`
	Tags          []string  `json:"tags"`
	Keywords      string    `json:"keywords,omitempty"`
	TitleES       string    `json:"title_es"`
	DescriptionES string    `json:"description_es"`
	TagsES        []string  `json:"tags_es"`
	SortOrder     int       `json:"sort_order"`
	IsActive      bool      `json:"is_active"`
	IsExternal    bool      `json:"is_external"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toView(d *Demo) View {
	v := View{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Icon:          d.Icon,
		Industry:      d.Industry,
		Path:          d.Path,
		Tags:          d.Tags,
		Keywords:      d.Keywords,
		TitleES:       d.TitleES,
		DescriptionES: d.DescriptionES,
		TagsES:        d.TagsES,
		SortOrder:     d.SortOrder,
		IsActive:      d.IsActive,
		IsExternal:    d.IsExternal,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.TitleES == "" {
		v.TitleES = d.Title
	}
	if v.DescriptionES == "" {
		v.DescriptionES = d.Description
	}
	if len(v.TagsES) == 0 {
		v.TagsES = v.Tags
	}
	return v
}

// List returns catalog views ordered by sort order then title.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]View, error) {
	demos, err := s.store.List(ctx, includeInactive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "list demos")
	}
	views := make([]View, 0, len(demos))
	for _, d := range demos {
		views = append(views, toView(d))
	}
	return views, nil
}

// Get returns a single catalog view.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	d, err := s.store.Get(ctx, account.NormalizeID(id))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "demo not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "load demo")
	}
	view := toView(d)
	return &view, nil
}

// CreateRequest carries the fields for a new catalog entry.
type CreateRequest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	Industry      string   `json:"industry"`
	Path          string   `json:"path"`
	Tags          []string `json:"tags"`
	Keywords      string   `json:"keywords"`
	TitleES       string   `json:"title_es"`
	DescriptionES string   `json:"description_es"`
	TagsES        []string `json:"tags_es"`
	SortOrder     int      `json:"sort_order"`
	IsExternal    bool     `json:"is_external"`
}

// Create registers a new catalog entry. New entries are active.
func (s *Service) Create(ctx context.Context, req CreateRequest, actorID string) (*View, error) {
	demoID := account.NormalizeID(req.ID)
	if demoID == "" {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "id is required")
	}
	if req.Title == "" {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "title is required")
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now().UTC()
	d := &Demo{
		ID:            demoID,
		Title:         req.Title,
		Description:   req.Description,
		Icon:          req.Icon,
		Industry:      req.Industry,
		Path:          req.Path,
		Tags:          tags,
		Keywords:      req.Keywords,
		TitleES:       req.TitleES,
		DescriptionES: req.DescriptionES,
		TagsES:        req.TagsES,
		SortOrder:     req.SortOrder,
		IsActive:      true,
		IsExternal:    req.IsExternal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("demo %q already exists", demoID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "create demo")
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionDemoCreated, actorID, demoID, map[string]any{
		"title": req.Title,
	}))

	view := toView(d)
	return &view, nil
}

// UpdateRequest carries a partial catalog update. Absent fields leave the
// stored values untouched.
type UpdateRequest struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Icon          *string   `json:"icon,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
	Path          *string   `json:"path,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	Keywords      *string   `json:"keywords,omitempty"`
	TitleES       *string   `json:"title_es,omitempty"`
	DescriptionES *string   `json:"description_es,omitempty"`
	TagsES        *[]string `json:"tags_es,omitempty"`
	SortOrder     *int      `json:"sort_order,omitempty"`
	IsExternal    *bool     `json:"is_external,omitempty"`
}

// Update applies a partial update to a catalog entry.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*View, error) {
	demoID := account.NormalizeID(id)

	updates := Updates{
		Title:         req.Title,
		Description:   req.Description,
		Icon:          req.Icon,
		Industry:      req.Industry,
		Path:          req.Path,
		Tags:          req.Tags,
		Keywords:      req.Keywords,
		TitleES:       req.TitleES,
		DescriptionES: req.DescriptionES,
		TagsES:        req.TagsES,
		SortOrder:     req.SortOrder,
		IsExternal:    req.IsExternal,
	}
	if updates.Empty() {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "no fields to update")
	}

	d, err := s.store.Update(ctx, demoID, updates)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("demo %q not found", demoID))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "update demo")
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionDemoUpdated, actorID, demoID, map[string]any{
		"fields": changedFields(req),
	}))

	view := toView(d)
	return &view, nil
}

func changedFields(req UpdateRequest) []string {
	var changed []string
	add := func(name string, set bool) {
		if set {
			changed = append(changed, name)
		}
	}
	add("title", req.Title != nil)
	add("description", req.Description != nil)
	add("icon", req.Icon != nil)
	add("industry", req.Industry != nil)
	add("path", req.Path != nil)
	add("tags", req.Tags != nil)
	add("keywords", req.Keywords != nil)
	add("title_es", req.TitleES != nil)
	add("description_es", req.DescriptionES != nil)
	add("tags_es", req.TagsES != nil)
	add("sort_order", req.SortOrder != nil)
	add("is_external", req.IsExternal != nil)
	return changed
}

// Delete soft-removes a catalog entry. The row survives so capability
// sets and ledger events that reference it stay resolvable.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	demoID := account.NormalizeID(id)

	inactive := false
	_, err := s.store.Update(ctx, demoID, Updates{IsActive: &inactive})
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("demo %q not found", demoID))
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "delete demo")
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionDemoDeleted, actorID, demoID, nil))
	return nil
}

// Restore re-activates a soft-removed catalog entry.
func (s *Service) Restore(ctx context.Context, id, actorID string) (*View, error) {
	demoID := account.NormalizeID(id)

	active := true
	d, err := s.store.Update(ctx, demoID, Updates{IsActive: &active})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("demo %q not found", demoID))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "restore demo")
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionDemoUpdated, actorID, demoID, map[string]any{
		"fields": []string{"is_active"},
	}))

	view := toView(d)
	return &view, nil
}

func (s *Service) entry(ctx context.Context, action audit.Action, actorID, targetID string, details map[string]any) audit.Entry {
	return audit.Entry{
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Details:   details,
		IPAddress: middleware.ClientIP(ctx),
		UserAgent: middleware.UserAgent(ctx),
	}
}
