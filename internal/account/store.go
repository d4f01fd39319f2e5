package account

import (
	"context"
	"time"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the account does not exist
// - Return sentinel.ErrConflict (wrapped) when a create collides
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	Get(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, acct *Account) error
	Update(ctx context.Context, id string, updates Updates) (*Account, error)
	List(ctx context.Context, includeInactive bool) ([]*Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
