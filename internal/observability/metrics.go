package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weatherboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// resolution pipeline and the autocomplete controller.
type Metrics struct {
	// Outbound provider calls.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,empty,error,decode_error,unavailable,network_error,cancelled}
	ProviderDuration *prometheus.HistogramVec // labels: provider

	// Orchestrator results.
	Resolutions        *prometheus.CounterVec // labels: outcome={success,not_found,unavailable,network_error,cancelled,error}
	ResolutionDuration prometheus.Histogram
	Records            prometheus.Gauge

	// Autocomplete.
	SuggestionRequests *prometheus.CounterVec // labels: outcome={success,error,cancelled}
	StaleResponses     prometheus.Counter
	ActiveSessions     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Geocoding and forecast API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider API request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Weather resolutions by outcome.",
		}, []string{"outcome"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Duration of a complete geocode and forecast resolution.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Number of weather records currently in the result list.",
		}),
		SuggestionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_requests_total",
			Help:      "Autocomplete lookups by outcome.",
		}, []string{"outcome"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_stale_responses_total",
			Help:      "Autocomplete responses discarded because a newer query superseded them.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "autocomplete_sessions",
			Help:      "Open autocomplete sessions.",
		}),
	}

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.Resolutions,
		m.ResolutionDuration,
		m.Records,
		m.SuggestionRequests,
		m.StaleResponses,
		m.ActiveSessions,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProviderRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "provider_requests_total"}, []string{"provider", "outcome"}),
		ProviderDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "provider_request_duration_seconds"}, []string{"provider"}),
		Resolutions:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "resolutions_total"}, []string{"outcome"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "resolution_duration_seconds"}),
		Records:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "records"}),
		SuggestionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "suggestion_requests_total"}, []string{"outcome"}),
		StaleResponses:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "suggestion_stale_responses_total"}),
		ActiveSessions:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "autocomplete_sessions"}),
	}
}

// ObserveRequest records one provider call.
func (m *Metrics) ObserveRequest(provider, outcome string, d time.Duration) {
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveResolution records one orchestrator run.
func (m *Metrics) ObserveResolution(outcome string, d time.Duration) {
	m.Resolutions.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.Observe(d.Seconds())
}

// SetRecordCount publishes the current result list length.
func (m *Metrics) SetRecordCount(n int) {
	m.Records.Set(float64(n))
}

// ObserveSuggestions records one autocomplete lookup.
func (m *Metrics) ObserveSuggestions(outcome string) {
	m.SuggestionRequests.WithLabelValues(outcome).Inc()
}

// StaleDiscarded counts a superseded autocomplete response.
func (m *Metrics) StaleDiscarded() {
	m.StaleResponses.Inc()
}

// SetSessionCount publishes the number of open autocomplete sessions.
func (m *Metrics) SetSessionCount(n int) {
	m.ActiveSessions.Set(float64(n))
}
