package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"demogate/internal/platform/metrics"
)

// Recorder captures trail entries. Record never returns an error: the trail
// must not block or fail the action it describes, so persistence failures
// are logged and counted only.
type Recorder struct {
	store   Store
	entries chan Entry
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
	now     func() time.Time
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithAsyncBuffer enables async persistence with the specified buffer size.
// When the buffer is full, entries are dropped rather than blocking.
func WithAsyncBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.entries = make(chan Entry, size)
			r.async = true
		}
	}
}

// WithRecorderLogger sets a logger for failure reporting.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

// WithRecorderMetrics sets the metrics collector.
func WithRecorderMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// WithRecorderClock overrides the time source. Used by tests.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a trail recorder over the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.async {
		r.wg.Add(1)
		go r.drain()
	}
	return r
}

// drain runs in a goroutine and persists buffered entries.
func (r *Recorder) drain() {
	defer r.wg.Done()
	for entry := range r.entries {
		r.persist(context.Background(), entry)
	}
}

// Close shuts down an async recorder and waits for pending entries.
func (r *Recorder) Close() {
	if r.async && r.entries != nil {
		close(r.entries)
		r.wg.Wait()
	}
}

// Record captures one entry, stamping the time when unset.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}
	if r.async {
		select {
		case r.entries <- entry:
		default:
			if r.logger != nil {
				r.logger.Warn("audit buffer full, entry dropped",
					"action", entry.Action,
					"actor_id", entry.ActorID,
				)
			}
			if r.metrics != nil {
				r.metrics.IncrementAuditWriteFailures()
			}
		}
		return
	}
	r.persist(ctx, entry)
}

func (r *Recorder) persist(ctx context.Context, entry Entry) {
	if err := r.store.Append(ctx, entry); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to persist audit entry",
				"error", err,
				"action", entry.Action,
				"actor_id", entry.ActorID,
			)
		}
		if r.metrics != nil {
			r.metrics.IncrementAuditWriteFailures()
		}
	}
}

// Query returns trail entries for administrative review.
func (r *Recorder) Query(ctx context.Context, filter Filter, limit int) ([]Entry, error) {
	return r.store.Query(ctx, filter, limit)
}
