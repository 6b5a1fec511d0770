package resilience

import "github.com/prometheus/client_golang/prometheus"

var (
	// BreakerState is 0 closed, 1 open, 2 half-open per target.
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "orcamento",
		Subsystem: "resilience",
		Name:      "breaker_state",
		Help:      "Breaker state per target (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})
	// BreakerTransitions counts state changes per target.
	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orcamento",
		Subsystem: "resilience",
		Name:      "breaker_transitions_total",
		Help:      "Breaker state changes per target.",
	}, []string{"target", "from", "to"})
)

// MustRegister adds the breaker collectors to reg, or the default registerer.
func MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(BreakerState, BreakerTransitions)
}
