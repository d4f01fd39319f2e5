package audit

import "context"

// MaxQueryLimit caps a single trail query.
const MaxQueryLimit = 500

// Store persists trail entries. Entries are immutable once appended.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter Filter, limit int) ([]Entry, error)
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
