package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes do endpoint de contato (label "outcome").
const (
	OutcomeAccepted         = "accepted"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeUnsupportedType  = "unsupported_media_type"
	OutcomeMalformed        = "malformed"
	OutcomeInvalid          = "invalid"
	OutcomeDispatchFailed   = "dispatch_failed"
)

type Contact struct {
	Submissions      *prometheus.CounterVec
	InvalidFields    *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Contact {
	f := promauto.With(reg)
	return &Contact{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome",
		}, []string{"outcome"}),
		InvalidFields: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_invalid_fields_total",
			Help: "Rejected submissions by first invalid field",
		}, []string{"field"}),
		DispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "contact_dispatch_duration_seconds",
			Help:    "Latency of message delivery to the mail provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Os métodos aceitam receiver nil para quem roda sem métricas.

func (m *Contact) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Contact) InvalidField(field string) {
	if m == nil {
		return
	}
	m.InvalidFields.WithLabelValues(field).Inc()
}

func (m *Contact) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchDuration.Observe(d.Seconds())
}
