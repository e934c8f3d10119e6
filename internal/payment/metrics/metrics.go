package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts payment attempts by outcome.
type Metrics struct {
	Attempts       *prometheus.CounterVec
	AmountPence    prometheus.Counter
	GatewayQueries prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_payment_attempts_total",
			Help: "Card payment attempts by outcome (paid, failed, pending, unavailable)",
		}, []string{"outcome"}),
		AmountPence: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_payment_amount_pence_total",
			Help: "Registration fees collected in pence",
		}),
		GatewayQueries: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_payment_gateway_queries_total",
			Help: "Pending orders checked with the gateway instead of charging again",
		}),
	}
}

func (m *Metrics) IncAttempt(outcome string) {
	if m != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddCollected(pence int) {
	if m != nil {
		m.AmountPence.Add(float64(pence))
	}
}

func (m *Metrics) IncGatewayQuery() {
	if m != nil {
		m.GatewayQueries.Inc()
	}
}
