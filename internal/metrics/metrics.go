// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BudgetsCalculated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_budgets_calculated_total",
			Help: "Total number of budgets calculated",
		},
	)

	ModulesPriced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_modules_priced_total",
			Help: "Modules included in calculated budgets",
		},
		[]string{"module"},
	)

	NarrativeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_narrative_requests_total",
			Help: "Narrative generation requests by outcome",
		},
		[]string{"outcome"},
	)

	NarrativeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_narrative_duration_seconds",
			Help:    "Time taken to compose a proposal narrative, retries included",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	ExportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_exports_rendered_total",
			Help: "Session exports rendered by format",
		},
		[]string{"format"},
	)

	SessionsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_sessions_saved_total",
			Help: "Sessions saved to history",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Narrative outcomes.
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
	OutcomeDisabled  = "disabled"
)

// RecordBudget counts one calculated budget and the modules it priced.
func RecordBudget(modules []string) {
	BudgetsCalculated.Inc()
	for _, m := range modules {
		ModulesPriced.WithLabelValues(m).Inc()
	}
}

// RecordNarrative records a finished compose call.
func RecordNarrative(outcome string, duration time.Duration) {
	NarrativeRequests.WithLabelValues(outcome).Inc()
	NarrativeDuration.Observe(duration.Seconds())
}

// RecordHTTP records a served request. route is the matched pattern, not the
// raw path, to keep label cardinality bounded.
func RecordHTTP(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
