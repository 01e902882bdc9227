package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/gate"
)

// #region metrics

// metrics holds the server's Prometheus collectors on a private registry so
// multiple servers (e.g. in tests) never collide.
type metrics struct {
	registry  *prometheus.Registry
	motions   *prometheus.CounterVec
	ticks     prometheus.Counter
	resets    prometheus.Counter
	entropy   prometheus.Gauge
	gatesOpen *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		motions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldstate",
			Name:      "motions_applied_total",
			Help:      "Motions applied, by dimension and motion.",
		}, []string{"dimension", "motion"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldstate",
			Name:      "ticks_total",
			Help:      "Decay ticks applied.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldstate",
			Name:      "resets_total",
			Help:      "Engine resets.",
		}),
		entropy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fieldstate",
			Name:      "entropy",
			Help:      "Divergence between current and ideal state.",
		}),
		gatesOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fieldstate",
			Name:      "gate_open",
			Help:      "Gate activation flag per dimension (1 = open).",
		}, []string{"dimension"}),
	}
	m.registry.MustRegister(m.motions, m.ticks, m.resets, m.entropy, m.gatesOpen)
	return m
}

// observeState refreshes the entropy and gate gauges after a mutation.
func (m *metrics) observeState(entropyScore float64, gates map[field.Dimension]gate.Status) {
	m.entropy.Set(entropyScore)
	for d, st := range gates {
		v := 0.0
		if st.Open {
			v = 1.0
		}
		m.gatesOpen.WithLabelValues(d.String()).Set(v)
	}
}

// #endregion metrics
