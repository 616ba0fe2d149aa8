package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nimbus"

// Provider request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeStatus  = "status_error"
	OutcomeEmpty   = "empty"
	OutcomeNetwork = "network_error"
)

// Enrichment names for the degraded counter.
const (
	EnrichmentState         = "state"
	EnrichmentPrecipitation = "precipitation"
)

// Metrics holds the Prometheus collectors for lookups, upstream providers
// and the HTTP surface. Every method is safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	LookupsTotal            *prometheus.CounterVec   // labels: outcome
	LookupDuration          prometheus.Histogram
	ProviderRequests        *prometheus.CounterVec   // labels: provider, operation, outcome
	ProviderRequestDuration *prometheus.HistogramVec // labels: provider, operation
	EnrichmentDegraded      *prometheus.CounterVec   // labels: enrichment
	StaleResults            prometheus.Counter

	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route
	HTTPActiveRequests  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "City weather lookups by outcome.",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a complete geocode and weather lookup.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream API requests by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		ProviderRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "operation"}),
		EnrichmentDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_degraded_total",
			Help:      "Optional lookups that fell back to the N/A sentinel.",
		}, []string{"enrichment"}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Results discarded because a newer search superseded them.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Number of HTTP requests in flight.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.LookupsTotal,
			m.LookupDuration,
			m.ProviderRequests,
			m.ProviderRequestDuration,
			m.EnrichmentDegraded,
			m.StaleResults,
			m.HTTPRequests,
			m.HTTPRequestDuration,
			m.HTTPActiveRequests,
		)
	}

	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry so tests never
// collide on "already registered".
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveProvider(provider, operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func (m *Metrics) EnrichmentFailed(enrichment string) {
	if m == nil {
		return
	}
	m.EnrichmentDegraded.WithLabelValues(enrichment).Inc()
}

func (m *Metrics) StaleResultDropped() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

func (m *Metrics) HTTPStarted() {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Inc()
}

func (m *Metrics) HTTPFinished(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Dec()
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
