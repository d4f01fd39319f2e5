package summary

import "time"

// Field names a backend must support. Keeping the update generic over
// named fields keeps the aggregation algorithm backend-agnostic.
const (
	FieldTotalEvents      = "total_events"
	FieldTotalSessions    = "total_sessions"
	FieldTotalTimeSeconds = "total_time_seconds"
	FieldDemosVisited     = "demos_visited"
	FieldLastActivity     = "last_activity"
)

type opKind int

const (
	opIncrement opKind = iota
	opUnion
	opSetTime
)

type op struct {
	kind  opKind
	field string
	delta int64
	value string
	at    time.Time
}

// AtomicUpdate collects field-level mutations that a backend applies as a
// single linearizable update against one account's summary. It is never a
// read-then-write of the whole document, so concurrent writers for the
// same account cannot lose increments.
type AtomicUpdate struct {
	ops []op
}

// NewUpdate returns an empty update.
func NewUpdate() *AtomicUpdate {
	return &AtomicUpdate{}
}

// IncrementField adds delta to a counter field.
func (u *AtomicUpdate) IncrementField(field string, delta int64) *AtomicUpdate {
	u.ops = append(u.ops, op{kind: opIncrement, field: field, delta: delta})
	return u
}

// UnionIntoSet inserts value into a set-valued field, idempotently.
func (u *AtomicUpdate) UnionIntoSet(field string, value string) *AtomicUpdate {
	u.ops = append(u.ops, op{kind: opUnion, field: field, value: value})
	return u
}

// SetTime overwrites a timestamp field. Last writer wins; under concurrent
// submission the stored value may not match logical event order, which is
// an accepted weak-ordering property.
func (u *AtomicUpdate) SetTime(field string, at time.Time) *AtomicUpdate {
	u.ops = append(u.ops, op{kind: opSetTime, field: field, at: at})
	return u
}

// Empty reports whether the update carries no operations.
func (u *AtomicUpdate) Empty() bool {
	return len(u.ops) == 0
}
