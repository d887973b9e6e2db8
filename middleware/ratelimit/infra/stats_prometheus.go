package infra

import (
	"context"

	"portfolio-contact/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusStatsStore expõe as decisões como contador
// contact_ratelimit_decisions_total{decision,route}.
//
// A chave (IP) não vira label: cardinalidade ilimitada.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) *PrometheusStatsStore {
	return &PrometheusStatsStore{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "contact_ratelimit_decisions_total",
			Help: "Rate limit decisions taken by the contact endpoint",
		}, []string{"decision", "route"}),
	}
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	decision := "denied"
	if ev.Allowed {
		decision = "allowed"
	}
	s.decisions.WithLabelValues(decision, ev.Method+" "+ev.Path).Inc()
	return nil
}
