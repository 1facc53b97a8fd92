package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LockMetrics tracks item lock acquisition. A nil *LockMetrics records nothing.
type LockMetrics struct {
	wait     *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewLockMetrics creates and registers the lock collectors
func NewLockMetrics(registerer prometheus.Registerer) *LockMetrics {
	return &LockMetrics{
		wait: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for item locks.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"backend"})),
		failures: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "lock",
			Name:      "failures_total",
			Help:      "Item lock acquisitions that failed or timed out.",
		}, []string{"backend"})),
	}
}

// ObserveWait records how long an acquisition took
func (m *LockMetrics) ObserveWait(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.wait.WithLabelValues(backend).Observe(d.Seconds())
}

// IncFailure counts a failed acquisition
func (m *LockMetrics) IncFailure(backend string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(backend).Inc()
}
