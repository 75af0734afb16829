// Package observability exposes the Prometheus metrics of the web process.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for inbound requests and outbound API calls.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	apiCalls        *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	staleResponses  prometheus.Counter
	workspaces      prometheus.Gauge
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crudio_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crudio_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	apiCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crudio_api_calls_total",
		Help: "Customer API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crudio_api_call_duration_seconds",
		Help:    "Customer API call latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crudio_list_stale_responses_total",
		Help: "Customer list responses dropped because a newer fetch was issued.",
	})
	workspaces := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crudio_workspaces",
		Help: "Live session workspaces.",
	})
	registry.MustRegister(requests, duration, apiCalls, apiDuration, stale, workspaces)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		apiCalls:        apiCalls,
		apiDuration:     apiDuration,
		staleResponses:  stale,
		workspaces:      workspaces,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAPICall records one outbound call to the customer API.
func (m *Metrics) ObserveAPICall(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(operation, outcome).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// StaleResponse counts a dropped list response.
func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

// SetWorkspaces reports the number of live workspaces.
func (m *Metrics) SetWorkspaces(n int) {
	if m == nil {
		return
	}
	m.workspaces.Set(float64(n))
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
