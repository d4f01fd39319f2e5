// Package activity orchestrates the event ledger and the derived summary
// rollup. The ledger is the source of truth; summary aggregation is
// best-effort and self-healing.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"demogate/internal/activity/ledger"
	"demogate/internal/activity/models"
	"demogate/internal/activity/summary"
	"demogate/internal/platform/metrics"
	"demogate/internal/platform/tracing"
	"demogate/internal/sentinel"
	dErrors "demogate/pkg/domain-errors"
)

// MaxBatchSize is the hard cap on events accepted in one batch submission.
// Oversized batches are rejected wholesale before any item is recorded.
const MaxBatchSize = 100

// BatchItemError reports a single rejected item within an accepted batch.
type BatchItemError struct {
	Index   int    `json:"index"`
	Message string `json:"error"`
}

// BatchResult reports the per-item outcome of a batch submission.
type BatchResult struct {
	Tracked int              `json:"tracked_count"`
	Errors  []BatchItemError `json:"errors,omitempty"`
}

// Service records activity events and maintains per-account summaries.
type Service struct {
	ledger    ledger.Store
	summaries summary.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    tracing.Tracer
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the activity service.
// Panics if a required store is nil - fail fast at startup.
func NewService(eventStore ledger.Store, summaryStore summary.Store, opts ...Option) *Service {
	if eventStore == nil {
		panic("activity.NewService: ledger store is required")
	}
	if summaryStore == nil {
		panic("activity.NewService: summary store is required")
	}

	s := &Service{
		ledger:    eventStore,
		summaries: summaryStore,
		tracer:    tracing.NewNoop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordEvent validates and durably appends one event, then folds it into
// the account's summary. The append is the commit point: once it succeeds
// the event ID is returned even if aggregation fails, and the failure is
// absorbed so the summary can lag and catch up on later events.
func (s *Service) RecordEvent(ctx context.Context, event *models.Event) (string, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRecordEvent,
		tracing.String(tracing.AttrAccountID, event.AccountID),
		tracing.String(tracing.AttrEventType, string(event.Type)),
	)
	var spanErr error
	defer func() { span.End(spanErr) }()

	if err := validateEvent(event); err != nil {
		spanErr = err
		return "", err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}

	id, err := s.ledger.Append(ctx, event)
	if err != nil {
		spanErr = err
		return "", dErrors.Wrap(err, dErrors.CodePersistence, "record event")
	}
	if s.metrics != nil {
		s.metrics.IncrementEventsTracked(string(event.Type))
	}

	s.aggregate(ctx, event)
	return id, nil
}

// RecordBatch accepts up to MaxBatchSize events and records each
// independently. A batch over the cap is rejected wholesale; within an
// accepted batch, invalid items are reported per index and never block
// their neighbors.
func (s *Service) RecordBatch(ctx context.Context, accountID string, events []*models.Event) (*BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRecordBatch,
		tracing.String(tracing.AttrAccountID, accountID),
		tracing.Int64(tracing.AttrBatchSize, int64(len(events))),
	)
	var spanErr error
	defer func() { span.End(spanErr) }()

	if len(events) > MaxBatchSize {
		if s.metrics != nil {
			s.metrics.IncrementBatchesRejected()
		}
		spanErr = dErrors.New(dErrors.CodeBatchTooLarge,
			fmt.Sprintf("batch of %d exceeds limit of %d", len(events), MaxBatchSize))
		return nil, spanErr
	}

	result := &BatchResult{}
	for i, event := range events {
		event.AccountID = accountID
		if _, err := s.RecordEvent(ctx, event); err != nil {
			result.Errors = append(result.Errors, BatchItemError{Index: i, Message: err.Error()})
			continue
		}
		result.Tracked++
	}
	return result, nil
}

// Query returns the account's events, newest first, capped at the store's
// query limit.
func (s *Service) Query(ctx context.Context, accountID string, filter models.Filter, limit int) ([]*models.Event, error) {
	events, err := s.ledger.Query(ctx, accountID, filter, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "query events")
	}
	return events, nil
}

// Summarize returns the account's summary rollup.
func (s *Service) Summarize(ctx context.Context, accountID string) (*models.Summary, error) {
	sum, err := s.summaries.Get(ctx, accountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no activity summary for account")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "load summary")
	}
	return sum, nil
}

// Initialize creates the account's summary document. Re-initialization of
// an existing summary is a no-op; counters are never reset.
func (s *Service) Initialize(ctx context.Context, accountID, name string) error {
	if err := s.summaries.Create(ctx, accountID, name, s.now().UTC()); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "initialize summary")
	}
	return nil
}

// PauseTracking marks the account's summary as not tracking.
func (s *Service) PauseTracking(ctx context.Context, accountID string) error {
	return s.setTracking(ctx, accountID, false)
}

// ResumeTracking marks the account's summary as tracking again.
func (s *Service) ResumeTracking(ctx context.Context, accountID string) error {
	return s.setTracking(ctx, accountID, true)
}

func (s *Service) setTracking(ctx context.Context, accountID string, active bool) error {
	err := s.summaries.SetTracking(ctx, accountID, active, s.now().UTC())
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "no activity summary for account")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "set tracking state")
	}
	return nil
}

// aggregate folds one recorded event into the summary. A missing summary
// is created once and the update retried; any remaining failure is logged
// and counted but never surfaced, because the event is already durable.
func (s *Service) aggregate(ctx context.Context, event *models.Event) {
	update := buildDelta(event)

	err := s.summaries.Apply(ctx, event.AccountID, update)
	if errors.Is(err, sentinel.ErrNotFound) {
		if err = s.summaries.Create(ctx, event.AccountID, event.AccountID, s.now().UTC()); err == nil {
			err = s.summaries.Apply(ctx, event.AccountID, update)
		}
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "summary aggregation failed, ledger remains authoritative",
				"account_id", event.AccountID,
				"event_type", event.Type,
				"error", err,
			)
		}
		if s.metrics != nil {
			s.metrics.IncrementSummaryUpdateFailures()
		}
	}
}

// buildDelta maps one event onto summary field mutations.
func buildDelta(event *models.Event) *summary.AtomicUpdate {
	update := summary.NewUpdate().
		IncrementField(summary.FieldTotalEvents, 1).
		SetTime(summary.FieldLastActivity, event.Timestamp)

	if event.Type == models.EventSessionStart {
		update.IncrementField(summary.FieldTotalSessions, 1)
	}
	if event.Type == models.EventSessionEnd || event.Type == models.EventPageExit {
		if d := event.DurationSeconds(); d > 0 {
			update.IncrementField(summary.FieldTotalTimeSeconds, d)
		}
	}
	// Only a page view marks a demo as visited; launches, clicks, and the
	// rest may carry a demo id without implying the account saw it.
	if event.Type == models.EventPageView && event.DemoID != "" {
		update.UnionIntoSet(summary.FieldDemosVisited, event.DemoID)
	}
	return update
}

func validateEvent(event *models.Event) error {
	if event.AccountID == "" {
		return dErrors.New(dErrors.CodeMalformedPayload, "event has no account")
	}
	if !event.Type.Valid() {
		return dErrors.New(dErrors.CodeUnknownEventType,
			fmt.Sprintf("unknown event type %q", event.Type))
	}
	return nil
}
