package account

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"demogate/internal/sentinel"
)

// InMemoryStore keeps accounts in a map. Used by tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewInMemoryStore constructs an empty in-memory account store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[string]*Account)}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acct, ok := s.accounts[id]; ok {
		return acct.Clone(), nil
	}
	return nil, fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Create(_ context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.ID]; ok {
		return fmt.Errorf("account %q: %w", acct.ID, sentinel.ErrConflict)
	}
	s.accounts[acct.ID] = acct.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, id string, updates Updates) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
	}

	now := time.Now().UTC()
	if updates.Name != nil {
		acct.Name = *updates.Name
	}
	if updates.PasswordHash != nil {
		acct.PasswordHash = *updates.PasswordHash
	}
	if updates.Access != nil {
		acct.Access = append([]string(nil), (*updates.Access)...)
	}
	if updates.IsAdmin != nil {
		acct.IsAdmin = *updates.IsAdmin
	}
	if updates.QuickAccess != nil {
		acct.QuickAccess = *updates.QuickAccess
	}
	if updates.IsActive != nil && *updates.IsActive != acct.IsActive {
		acct.IsActive = *updates.IsActive
		at := now
		if acct.IsActive {
			acct.ReactivatedAt = &at
		} else {
			acct.DeactivatedAt = &at
		}
	}
	acct.UpdatedAt = now

	return acct.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, includeInactive bool) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if !includeInactive && !acct.IsActive {
			continue
		}
		out = append(out, acct.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
	}
	t := at
	acct.LastLogin = &t
	return nil
}
