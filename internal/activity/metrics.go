package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Appends *prometheus.CounterVec
	Dropped prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Appends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sftgate_activity_appends_total",
			Help: "Activity records written by action",
		}, []string{"action"}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sftgate_activity_records_dropped_total",
			Help: "Activity records lost to store failures",
		}),
	}
}

func (m *Metrics) IncrementAppends(action Action) {
	m.Appends.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) IncrementDropped() {
	m.Dropped.Inc()
}
