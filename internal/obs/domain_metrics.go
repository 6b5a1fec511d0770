package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteSubmissionsTotal counts quote submissions by outcome.
	QuoteSubmissionsTotal *prometheus.CounterVec
	// QuoteRenderTotal counts document renders by outcome.
	QuoteRenderTotal *prometheus.CounterVec
	// QuoteStateTransitionsTotal counts every state entered by the submission flow.
	QuoteStateTransitionsTotal *prometheus.CounterVec
	// QuoteSubmitLatency records submission latency in milliseconds.
	QuoteSubmitLatency prometheus.Histogram
	// DocumentArchiveTotal counts background document archive outcomes.
	DocumentArchiveTotal *prometheus.CounterVec
	// LowStockAlertsTotal counts stock.low events emitted by the sweep.
	LowStockAlertsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_submissions_total",
			Help:      "Count of quote submission outcomes.",
		}, []string{"result"})
		QuoteRenderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_render_total",
			Help:      "Count of quote document render outcomes.",
		}, []string{"result"})
		QuoteStateTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_state_transitions_total",
			Help:      "Count of states entered by quote submissions.",
		}, []string{"state"})
		QuoteSubmitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_submit_duration_ms",
			Help:      "Latency of quote submissions in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		})
		DocumentArchiveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_archive_total",
			Help:      "Count of quote document archive task outcomes.",
		}, []string{"result"})
		LowStockAlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_alerts_total",
			Help:      "Number of low stock alerts emitted.",
		})

		QuoteSubmissionsTotal = register(reg, QuoteSubmissionsTotal)
		QuoteRenderTotal = register(reg, QuoteRenderTotal)
		QuoteStateTransitionsTotal = register(reg, QuoteStateTransitionsTotal)
		QuoteSubmitLatency = register(reg, QuoteSubmitLatency)
		DocumentArchiveTotal = register(reg, DocumentArchiveTotal)
		LowStockAlertsTotal = register(reg, LowStockAlertsTotal)
	})
}
