// Package metrics holds the Prometheus collectors for the relay.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally and tests can pass nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smsrelay"

// Metrics holds all Prometheus metrics for the relay.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Event fan-out metrics
	subscribersActive *prometheus.GaugeVec
	broadcastsTotal   *prometheus.CounterVec
	deliveryFailures  *prometheus.CounterVec

	// Translation metrics
	translationsTotal *prometheus.CounterVec

	// Upstream metrics
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		subscribersActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "subscribers_active",
				Help:      "Number of currently connected push subscribers",
			},
			[]string{"transport"},
		),
		broadcastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Total number of events broadcast by event type",
			},
			[]string{"event"},
		),
		deliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_failures_total",
				Help:      "Total number of subscriber writes that failed and caused removal",
			},
			[]string{"transport"},
		),
		translationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translations_total",
				Help:      "Total number of translation attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of outbound requests by provider, method and status",
			},
			[]string{"provider", "method", "status"},
		),
		upstreamRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Outbound request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.subscribersActive,
		m.broadcastsTotal,
		m.deliveryFailures,
		m.translationsTotal,
		m.upstreamRequestsTotal,
		m.upstreamRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SubscriberAdded increments the active subscriber gauge.
func (m *Metrics) SubscriberAdded(transport string) {
	if m == nil {
		return
	}
	m.subscribersActive.WithLabelValues(transport).Inc()
}

// SubscriberRemoved decrements the active subscriber gauge.
func (m *Metrics) SubscriberRemoved(transport string) {
	if m == nil {
		return
	}
	m.subscribersActive.WithLabelValues(transport).Dec()
}

// Broadcast counts one broadcast of the given event type.
func (m *Metrics) Broadcast(event string) {
	if m == nil {
		return
	}
	m.broadcastsTotal.WithLabelValues(event).Inc()
}

// DeliveryFailed counts a failed subscriber write.
func (m *Metrics) DeliveryFailed(transport string) {
	if m == nil {
		return
	}
	m.deliveryFailures.WithLabelValues(transport).Inc()
}

// Translation counts a translation attempt. outcome is one of
// "translated", "skipped", "fallback" or "error".
func (m *Metrics) Translation(provider, outcome string) {
	if m == nil {
		return
	}
	m.translationsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveUpstream records one outbound round trip. It has the signature of
// transport.Observer.
func (m *Metrics) ObserveUpstream(provider, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequestsTotal.WithLabelValues(provider, method, strconv.Itoa(status)).Inc()
	m.upstreamRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
