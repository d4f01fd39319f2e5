package summary

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"demogate/internal/activity/models"
	"demogate/internal/sentinel"
)

type memoryEntry struct {
	summary models.Summary
	visited map[string]struct{}
}

// InMemoryStore keeps summaries under a single lock, which makes every
// Apply trivially linearizable. Used by tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewInMemoryStore constructs an empty in-memory summary store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *InMemoryStore) Create(_ context.Context, accountID, name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[accountID]; ok {
		return nil
	}
	s.entries[accountID] = &memoryEntry{
		summary: models.Summary{
			AccountID:      accountID,
			Name:           name,
			TrackingActive: true,
			CreatedAt:      now,
		},
		visited: make(map[string]struct{}),
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, accountID string) (*models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[accountID]
	if !ok {
		return nil, fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}
	out := entry.summary
	out.DemosVisited = sortedSet(entry.visited)
	return &out, nil
}

func (s *InMemoryStore) Apply(_ context.Context, accountID string, update *AtomicUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[accountID]
	if !ok {
		return fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}

	for _, o := range update.ops {
		switch o.kind {
		case opIncrement:
			switch o.field {
			case FieldTotalEvents:
				entry.summary.TotalEvents += o.delta
			case FieldTotalSessions:
				entry.summary.TotalSessions += o.delta
			case FieldTotalTimeSeconds:
				entry.summary.TotalTimeSeconds += o.delta
			default:
				return fmt.Errorf("increment on unknown field %q", o.field)
			}
		case opUnion:
			if o.field != FieldDemosVisited {
				return fmt.Errorf("union on unknown field %q", o.field)
			}
			entry.visited[o.value] = struct{}{}
		case opSetTime:
			if o.field != FieldLastActivity {
				return fmt.Errorf("set-time on unknown field %q", o.field)
			}
			entry.summary.LastActivity = o.at
		}
	}
	return nil
}

func (s *InMemoryStore) SetTracking(_ context.Context, accountID string, active bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[accountID]
	if !ok {
		return fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}
	entry.summary.TrackingActive = active
	at := now
	if active {
		entry.summary.TrackingResumedAt = &at
	} else {
		entry.summary.TrackingPausedAt = &at
	}
	return nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var _ Store = (*InMemoryStore)(nil)
