package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins                prometheus.Counter
	AuthFailures          prometheus.Counter
	AccountsCreated       prometheus.Counter
	AccountsDeactivated   prometheus.Counter
	EventsTracked         *prometheus.CounterVec
	BatchesRejected       prometheus.Counter
	SummaryUpdateFailures prometheus.Counter
	AuditWriteFailures    prometheus.Counter
	EndpointLatency       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_accounts_deactivated_total",
			Help: "Total number of accounts soft-deactivated",
		}),
		EventsTracked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demogate_events_tracked_total",
			Help: "Total number of activity events recorded, labeled by event type",
		}, []string{"event_type"}),
		BatchesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_batches_rejected_total",
			Help: "Total number of activity batches rejected wholesale",
		}),
		SummaryUpdateFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_summary_update_failures_total",
			Help: "Total number of absorbed summary aggregation failures",
		}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "demogate_audit_write_failures_total",
			Help: "Total number of absorbed audit trail write failures",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "demogate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementLogins increments the successful login counter by 1.
func (m *Metrics) IncrementLogins() {
	m.Logins.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementAccountsCreated() {
	m.AccountsCreated.Inc()
}

func (m *Metrics) IncrementAccountsDeactivated() {
	m.AccountsDeactivated.Inc()
}

// IncrementEventsTracked increments the tracked-event counter with an event type label.
func (m *Metrics) IncrementEventsTracked(eventType string) {
	m.EventsTracked.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncrementBatchesRejected() {
	m.BatchesRejected.Inc()
}

func (m *Metrics) IncrementSummaryUpdateFailures() {
	m.SummaryUpdateFailures.Inc()
}

func (m *Metrics) IncrementAuditWriteFailures() {
	m.AuditWriteFailures.Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
