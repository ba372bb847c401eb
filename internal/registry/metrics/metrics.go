package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ThirdPartiesCreated prometheus.Counter
	AccessDecisions     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		ThirdPartiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sftgate_third_parties_created_total",
			Help: "Total number of third parties registered",
		}),
		AccessDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sftgate_container_access_decisions_total",
			Help: "Container access decisions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementThirdPartiesCreated() {
	m.ThirdPartiesCreated.Inc()
}

func (m *Metrics) IncrementAccessGranted() {
	m.AccessDecisions.WithLabelValues("granted").Inc()
}

func (m *Metrics) IncrementAccessDenied() {
	m.AccessDecisions.WithLabelValues("denied").Inc()
}
