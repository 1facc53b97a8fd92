package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outbox delivery results
const (
	OutboxResultSent   = "sent"
	OutboxResultFailed = "failed"
	OutboxResultDead   = "dead"
)

// OutboxMetrics tracks the outbox processor. A nil *OutboxMetrics is valid
// and records nothing.
type OutboxMetrics struct {
	delivered     *prometheus.CounterVec
	batchDuration prometheus.Histogram
	claimed       prometheus.Counter
	cleaned       prometheus.Counter
	backlog       *prometheus.GaugeVec
}

// NewOutboxMetrics creates and registers the outbox collectors
func NewOutboxMetrics(registerer prometheus.Registerer) *OutboxMetrics {
	return &OutboxMetrics{
		delivered: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "deliveries_total",
			Help:      "Outbox entries delivered to handlers by event type and result.",
		}, []string{"event_type", "result"})),
		batchDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one outbox batch.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})),
		claimed: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "claimed_total",
			Help:      "Outbox entries claimed for delivery.",
		})),
		cleaned: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "cleaned_total",
			Help:      "Sent outbox entries removed after the retention period.",
		})),
		backlog: register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "outbox",
			Name:      "entries",
			Help:      "Outbox entries by status.",
		}, []string{"status"})),
	}
}

// ObserveDelivery counts one delivery attempt
func (m *OutboxMetrics) ObserveDelivery(eventType, result string) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(eventType, result).Inc()
}

// ObserveBatch records the duration of a batch
func (m *OutboxMetrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

// AddClaimed counts claimed entries
func (m *OutboxMetrics) AddClaimed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.claimed.Add(float64(n))
}

// AddCleaned counts removed entries
func (m *OutboxMetrics) AddCleaned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.cleaned.Add(float64(n))
}

// SetBacklog replaces the per-status gauge values
func (m *OutboxMetrics) SetBacklog(counts map[string]int64) {
	if m == nil {
		return
	}
	m.backlog.Reset()
	for status, n := range counts {
		m.backlog.WithLabelValues(status).Set(float64(n))
	}
}
