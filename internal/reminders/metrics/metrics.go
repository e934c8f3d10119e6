package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RemindersSent prometheus.Counter
	Expired       prometheus.Counter
	SweepFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RemindersSent: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_reminders_sent_total",
			Help: "Inactivity reminder emails sent to idle drafts",
		}),
		Expired: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_reminders_expired_applications_total",
			Help: "Idle drafts deleted by the inactivity sweep",
		}),
		SweepFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_reminders_sweep_failures_total",
			Help: "Inactivity sweeps that stopped on an error",
		}),
	}
}

func (m *Metrics) IncReminderSent() {
	if m != nil {
		m.RemindersSent.Inc()
	}
}

func (m *Metrics) IncExpired() {
	if m != nil {
		m.Expired.Inc()
	}
}

func (m *Metrics) IncSweepFailure() {
	if m != nil {
		m.SweepFailures.Inc()
	}
}
