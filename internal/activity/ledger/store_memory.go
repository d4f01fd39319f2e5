package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"demogate/internal/activity/models"
)

// InMemoryStore keeps per-account event slices. Used by tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]*models.Event
}

// NewInMemoryStore constructs an empty in-memory ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]*models.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event *models.Event) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *event
	stored.ID = id.String()
	s.events[event.AccountID] = append(s.events[event.AccountID], &stored)
	return stored.ID, nil
}

func (s *InMemoryStore) Query(_ context.Context, accountID string, filter models.Filter, limit int) ([]*models.Event, error) {
	limit = ClampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Event, 0)
	for _, ev := range s.events[accountID] {
		if !matches(ev, filter) {
			continue
		}
		cp := *ev
		matched = append(matched, &cp)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matches(ev *models.Event, f models.Filter) bool {
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	if f.DemoID != "" && ev.DemoID != f.DemoID {
		return false
	}
	if f.SessionID != "" && ev.SessionID != f.SessionID {
		return false
	}
	if !f.From.IsZero() && ev.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ev.Timestamp.After(f.To) {
		return false
	}
	return true
}

var _ Store = (*InMemoryStore)(nil)
