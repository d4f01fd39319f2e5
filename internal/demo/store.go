package demo

import "context"

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the demo does not exist
// - Return sentinel.ErrConflict (wrapped) when a create collides
// - List orders by sort order, then title
type Store interface {
	Get(ctx context.Context, id string) (*Demo, error)
	Create(ctx context.Context, d *Demo) error
	Update(ctx context.Context, id string, updates Updates) (*Demo, error)
	List(ctx context.Context, includeInactive bool) ([]*Demo, error)
}
