// Package metrics exposes Prometheus instruments for contact submissions and outbound mail.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomePartial   = "partial"
)

// Metrics groups the collectors registered for one process.
type Metrics struct {
	Submissions  *prometheus.CounterVec
	EmailsSent   *prometheus.CounterVec
	SendDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "emails_sent_total",
			Help:      "Outbound email attempts by stage and result",
		}, []string{"stage", "result"}),
		SendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Name:      "email_send_duration_seconds",
			Help:      "Latency of a single mail provider call",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
}

// ObserveSend records one provider call.
func (m *Metrics) ObserveSend(stage string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EmailsSent.WithLabelValues(stage, result).Inc()
	m.SendDuration.WithLabelValues(stage).Observe(took.Seconds())
}

// ObserveSubmission records the final outcome of one contact request.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}
