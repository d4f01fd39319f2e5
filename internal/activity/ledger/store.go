// Package ledger is the append-only, per-account event history. Events are
// immutable once appended and are never deleted through normal operation,
// matching the soft-delete-only account policy.
package ledger

import (
	"context"

	"demogate/internal/activity/models"
)

// MaxQueryLimit is the caller-facing hard cap on a single query, applied
// regardless of the requested value.
const MaxQueryLimit = 500

// Store appends and queries ledger events.
//
// Error Contract:
// - Append must be atomic: either the event is durably stored and its
//   assigned ID returned, or an error is returned and nothing is observable.
// - Query returns events descending by timestamp, capped at MaxQueryLimit.
type Store interface {
	Append(ctx context.Context, event *models.Event) (string, error)
	Query(ctx context.Context, accountID string, filter models.Filter, limit int) ([]*models.Event, error)
}

// ClampLimit normalizes a requested limit into (0, MaxQueryLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
