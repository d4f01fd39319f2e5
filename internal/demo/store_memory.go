package demo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"demogate/internal/sentinel"
)

// InMemoryStore keeps catalog entries in a map. Used by tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	demos map[string]*Demo
}

// NewInMemoryStore constructs an empty in-memory catalog.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{demos: make(map[string]*Demo)}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Demo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.demos[id]; ok {
		return d.Clone(), nil
	}
	return nil, fmt.Errorf("demo %q: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Create(_ context.Context, d *Demo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.demos[d.ID]; ok {
		return fmt.Errorf("demo %q: %w", d.ID, sentinel.ErrConflict)
	}
	s.demos[d.ID] = d.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, updates Updates) (*Demo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.demos[id]
	if !ok {
		return nil, fmt.Errorf("demo %q: %w", id, sentinel.ErrNotFound)
	}

	if updates.Title != nil {
		d.Title = *updates.Title
	}
	if updates.Description != nil {
		d.Description = *updates.Description
	}
	if updates.Icon != nil {
		d.Icon = *updates.Icon
	}
	if updates.Industry != nil {
		d.Industry = *updates.Industry
	}
	if updates.Path != nil {
		d.Path = *updates.Path
	}
	if updates.Tags != nil {
		d.Tags = append([]string(nil), (*updates.Tags)...)
	}
	if updates.Keywords != nil {
		d.Keywords = *updates.Keywords
	}
	if updates.TitleES != nil {
		d.TitleES = *updates.TitleES
	}
	if updates.DescriptionES != nil {
		d.DescriptionES = *updates.DescriptionES
	}
	if updates.TagsES != nil {
		d.TagsES = append([]string(nil), (*updates.TagsES)...)
	}
	if updates.SortOrder != nil {
		d.SortOrder = *updates.SortOrder
	}
	if updates.IsActive != nil {
		d.IsActive = *updates.IsActive
	}
	if updates.IsExternal != nil {
		d.IsExternal = *updates.IsExternal
	}
	d.UpdatedAt = time.Now().UTC()

	return d.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, includeInactive bool) ([]*Demo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Demo, 0, len(s.demos))
	for _, d := range s.demos {
		if !includeInactive && !d.IsActive {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
