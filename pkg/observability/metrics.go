package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler outcome labels recorded by RecordHandlerResult.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
)

// Metrics holds all Prometheus metrics for the runtime
type Metrics struct {
	registry *prometheus.Registry

	// Generic event bus metrics
	EventsDispatched *prometheus.CounterVec
	ListenerErrors   *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Domain event metrics
	EventsEmitted  *prometheus.CounterVec
	HandlerResults *prometheus.CounterVec
	EmitDuration   *prometheus.HistogramVec

	// Plugin lifecycle metrics
	PluginsEnabled       prometheus.Gauge
	LifecycleTransitions *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		EventsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_events_dispatched_total",
				Help: "Total number of events dispatched on the generic bus",
			},
			[]string{"event"},
		),
		ListenerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_listener_errors_total",
				Help: "Total number of listener panics swallowed during dispatch",
			},
			[]string{"event"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pluginkit_dispatch_duration_seconds",
				Help:    "Generic bus dispatch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event"},
		),
		EventsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_domain_events_emitted_total",
				Help: "Total number of domain events emitted",
			},
			[]string{"event"},
		),
		HandlerResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_handler_results_total",
				Help: "Domain event handler outcomes by event and result",
			},
			[]string{"event", "outcome"},
		),
		EmitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pluginkit_emit_duration_seconds",
				Help:    "Domain event emit duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event"},
		),
		PluginsEnabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginkit_plugins_enabled",
				Help: "Number of plugins currently enabled",
			},
		),
		LifecycleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_lifecycle_transitions_total",
				Help: "Plugin lifecycle transitions by target status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.EventsDispatched,
		m.ListenerErrors,
		m.DispatchDuration,
		m.EventsEmitted,
		m.HandlerResults,
		m.EmitDuration,
		m.PluginsEnabled,
		m.LifecycleTransitions,
	)

	return m
}

// Handler returns an HTTP handler exposing the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDispatch records one generic bus dispatch
func (m *Metrics) RecordDispatch(event string, duration time.Duration) {
	if m == nil {
		return
	}
	m.EventsDispatched.WithLabelValues(event).Inc()
	m.DispatchDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordListenerError records a swallowed listener panic
func (m *Metrics) RecordListenerError(event string) {
	if m == nil {
		return
	}
	m.ListenerErrors.WithLabelValues(event).Inc()
}

// RecordEmit records one domain event emit
func (m *Metrics) RecordEmit(event string, duration time.Duration) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(event).Inc()
	m.EmitDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordHandlerResult records a single handler outcome
func (m *Metrics) RecordHandlerResult(event, outcome string) {
	if m == nil {
		return
	}
	m.HandlerResults.WithLabelValues(event, outcome).Inc()
}

// SetPluginsEnabled sets the enabled-plugin gauge
func (m *Metrics) SetPluginsEnabled(count int) {
	if m == nil {
		return
	}
	m.PluginsEnabled.Set(float64(count))
}

// RecordLifecycleTransition records a plugin status transition
func (m *Metrics) RecordLifecycleTransition(status string) {
	if m == nil {
		return
	}
	m.LifecycleTransitions.WithLabelValues(status).Inc()
}
