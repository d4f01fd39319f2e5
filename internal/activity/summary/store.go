// Package summary owns the per-account activity rollup: derived counters
// that stay eventually consistent with the ledger.
package summary

import (
	"context"
	"time"

	"demogate/internal/activity/models"
)

// Store persists summaries and applies atomic field-level updates.
//
// Error Contract:
// - Create is a no-op when a summary already exists for the account;
//   accumulated counters are never reset by re-initialization.
// - Get and Apply return sentinel.ErrNotFound (wrapped) when no summary
//   document exists; Apply callers use that to drive the
//   initialize-then-retry branch.
// - Apply must be linearizable per account.
type Store interface {
	Create(ctx context.Context, accountID, name string, now time.Time) error
	Get(ctx context.Context, accountID string) (*models.Summary, error)
	Apply(ctx context.Context, accountID string, update *AtomicUpdate) error
	SetTracking(ctx context.Context, accountID string, active bool, now time.Time) error
}
