package publisher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "childminder/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for audit persistence.
type Metrics struct {
	Persisted       *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
	Dropped         prometheus.Counter
}

func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Persisted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_audit_events_persisted_total",
			Help: "Audit events written to the store by category",
		}, []string{"category"}),
		PersistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_audit_persist_failures_total",
			Help: "Audit events that failed to persist by category",
		}, []string{"category"}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "childminder_audit_persist_duration_seconds",
			Help:    "Time spent writing an audit event",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_audit_events_dropped_total",
			Help: "Non-compliance audit events dropped because the async buffer was full",
		}),
	}
}

func (m *Metrics) observe(cat audit.EventCategory, d time.Duration) {
	if m == nil {
		return
	}
	m.Persisted.WithLabelValues(string(cat)).Inc()
	m.PersistDuration.Observe(d.Seconds())
}

func (m *Metrics) incFailures(cat audit.EventCategory) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(string(cat)).Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}
