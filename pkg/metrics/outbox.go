package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publish outcomes recorded by OutboxMetrics.
const (
	OutcomePublished    = "published"
	OutcomeRetried      = "retried"
	OutcomeDeadLettered = "dead_lettered"
)

// OutboxMetrics tracks the outbox publisher. A nil receiver is a no-op.
type OutboxMetrics struct {
	events  *prometheus.CounterVec
	latency prometheus.Histogram
	lag     prometheus.Histogram
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	m := &OutboxMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlist_outbox_events_total",
			Help: "Outbox events handled by the publisher, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartlist_outbox_publish_seconds",
			Help:    "Time spent waiting for Pub/Sub to acknowledge a publish.",
			Buckets: prometheus.DefBuckets,
		}),
		lag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartlist_outbox_delivery_lag_seconds",
			Help:    "Age of an event when it was published.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
	}
	reg.MustRegister(m.events, m.latency, m.lag)
	return m
}

func (m *OutboxMetrics) Record(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}

func (m *OutboxMetrics) ObservePublish(d time.Duration) {
	if m == nil || m.latency == nil {
		return
	}
	m.latency.Observe(d.Seconds())
}

// ObserveLag records how long an event sat in the table before delivery.
func (m *OutboxMetrics) ObserveLag(d time.Duration) {
	if m == nil || m.lag == nil || d < 0 {
		return
	}
	m.lag.Observe(d.Seconds())
}
