package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts boundary traffic. Register it with a prometheus
// registry to expose it; an unregistered instance still counts.
type Metrics struct {
	Fetches *prometheus.CounterVec
	Submits *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datatypes_fetches_total",
			Help: "Fetches through the store boundary by result",
		}, []string{"result"}),
		Submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datatypes_submits_total",
			Help: "Operation submissions through the store boundary by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.Fetches); err != nil {
		return err
	}
	return reg.Register(m.Submits)
}

const (
	resultOK     = "ok"
	resultError  = "error"
	resultCached = "cached"
	resultNoop   = "noop"
)
