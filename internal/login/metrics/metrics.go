package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the sign in funnel.
type Metrics struct {
	LinksSent       prometheus.Counter
	LinksThrottled  prometheus.Counter
	CodesSent       prometheus.Counter
	FactorFailures  *prometheus.CounterVec
	Lockouts        prometheus.Counter
	SessionsCreated prometheus.Counter
	SessionsRevoked prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer lets tests use an isolated registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinksSent: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_links_sent_total",
			Help: "Magic link emails sent",
		}),
		LinksThrottled: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_links_throttled_total",
			Help: "Magic link requests dropped by the per-user limit",
		}),
		CodesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_sms_codes_sent_total",
			Help: "SMS security codes sent, including resends",
		}),
		FactorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_login_factor_failures_total",
			Help: "Wrong second factor answers by factor",
		}, []string{"factor"}),
		Lockouts: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_lockouts_total",
			Help: "Accounts hard locked after repeated failures",
		}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_sessions_created_total",
			Help: "Sessions issued after a completed sign in",
		}),
		SessionsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_login_sessions_revoked_total",
			Help: "Sessions ended by sign out",
		}),
	}
}

func (m *Metrics) IncLinkSent() {
	if m != nil {
		m.LinksSent.Inc()
	}
}

func (m *Metrics) IncLinkThrottled() {
	if m != nil {
		m.LinksThrottled.Inc()
	}
}

func (m *Metrics) IncCodeSent() {
	if m != nil {
		m.CodesSent.Inc()
	}
}

func (m *Metrics) IncFactorFailure(factor string) {
	if m != nil {
		m.FactorFailures.WithLabelValues(factor).Inc()
	}
}

func (m *Metrics) IncLockout() {
	if m != nil {
		m.Lockouts.Inc()
	}
}

func (m *Metrics) IncSessionCreated() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}

func (m *Metrics) IncSessionRevoked() {
	if m != nil {
		m.SessionsRevoked.Inc()
	}
}
