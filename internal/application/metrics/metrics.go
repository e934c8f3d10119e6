package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks wizard progress and the submission pipeline.
type Metrics struct {
	PagesSaved           *prometheus.CounterVec
	PageRejections       *prometheus.CounterVec
	HealthChecksSent     prometheus.Counter
	HealthChecksDone     prometheus.Counter
	Submissions          prometheus.Counter
	Resubmissions        prometheus.Counter
	RegistrationFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer lets tests use an isolated registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_application_pages_saved_total",
			Help: "Wizard pages saved by task and resulting task status",
		}, []string{"task", "status"}),
		PageRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "childminder_application_page_rejections_total",
			Help: "Wizard pages refused by validation, by task",
		}, []string{"task"}),
		HealthChecksSent: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_application_health_checks_sent_total",
			Help: "Health questionnaire emails sent to adults in the home",
		}),
		HealthChecksDone: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_application_health_checks_completed_total",
			Help: "Health questionnaires completed by adults in the home",
		}),
		Submissions: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_application_submissions_total",
			Help: "Applications submitted after payment",
		}),
		Resubmissions: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_application_resubmissions_total",
			Help: "Applications returned to review after further information",
		}),
		RegistrationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "childminder_application_registration_failures_total",
			Help: "Submitted applications the national register refused or could not take",
		}),
	}
}

func (m *Metrics) IncPageSaved(task, status string) {
	if m != nil {
		m.PagesSaved.WithLabelValues(task, status).Inc()
	}
}

func (m *Metrics) IncPageRejected(task string) {
	if m != nil {
		m.PageRejections.WithLabelValues(task).Inc()
	}
}

func (m *Metrics) AddHealthChecksSent(n int) {
	if m != nil {
		m.HealthChecksSent.Add(float64(n))
	}
}

func (m *Metrics) IncHealthCheckDone() {
	if m != nil {
		m.HealthChecksDone.Inc()
	}
}

func (m *Metrics) IncSubmission() {
	if m != nil {
		m.Submissions.Inc()
	}
}

func (m *Metrics) IncResubmission() {
	if m != nil {
		m.Resubmissions.Inc()
	}
}

func (m *Metrics) IncRegistrationFailure() {
	if m != nil {
		m.RegistrationFailures.Inc()
	}
}
