package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks outbound integration calls.
type Metrics struct {
	Calls    *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Breakers *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_provider_calls_total",
			Help: "Outbound integration calls by provider, operation and outcome",
		}, []string{"provider", "operation", "outcome"}),
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "childminder_provider_call_duration_seconds",
			Help:    "Outbound integration latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "operation"}),
		Breakers: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "childminder_provider_circuit_open",
			Help: "1 when the provider circuit breaker is open",
		}, []string{"provider"}),
	}
}
