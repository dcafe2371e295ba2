// Package monitoring exposes gateway metrics in Prometheus format and the
// pprof profiling routes.
package monitoring

import (
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "ai_gateway"

const (
	unmatchedRoute = "unmatched"
	otherModel     = "other"
)

// Metrics holds application metrics on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpInFlight     prometheus.Gauge
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec
	pollAttempts     *prometheus.CounterVec
	jobOutcomes      *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors plus the Go runtime and
// process collectors on a new registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),

		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Backend dispatches by provider, mode and outcome",
		}, []string{"provider", "mode", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Backend exchange duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		}, []string{"provider", "mode"}),

		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fallbacks_total",
			Help:      "Requests whose model was replaced during resolution",
		}, []string{"provider", "requested_model"}),

		pollAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_poll_attempts_total",
			Help:      "Job status queries by outcome",
		}, []string{"outcome"}),

		jobOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_outcomes_total",
			Help:      "Asynchronous jobs that reached a terminal state",
		}, []string{"mode", "status"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartTime is when the metrics were created, used for uptime reporting.
func (m *Metrics) StartTime() time.Time {
	return m.startTime
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDispatch counts one backend exchange.
func (m *Metrics) RecordDispatch(provider types.Provider, mode types.Mode, outcome string, duration time.Duration) {
	m.dispatches.WithLabelValues(string(provider), string(mode), outcome).Inc()
	m.dispatchDuration.WithLabelValues(string(provider), string(mode)).Observe(duration.Seconds())
}

// RecordFallback counts one model replacement. Identifiers outside the
// registry share one label value.
func (m *Metrics) RecordFallback(provider types.Provider, requested string) {
	label := requested
	switch {
	case requested == "":
		label = "none"
	case !isKnownModel(requested):
		label = otherModel
	}
	m.fallbacks.WithLabelValues(string(provider), label).Inc()
}

// RecordPollAttempt counts one job status query.
func (m *Metrics) RecordPollAttempt(outcome string) {
	m.pollAttempts.WithLabelValues(outcome).Inc()
}

// RecordJobOutcome counts one job reaching a terminal state.
func (m *Metrics) RecordJobOutcome(mode types.Mode, status types.JobStatus) {
	m.jobOutcomes.WithLabelValues(string(mode), string(status)).Inc()
}

// Middleware records request count, latency and in-flight requests. It must
// wrap the ServeMux directly so the matched pattern is visible after serving.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapper, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapper.statusCode)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func isKnownModel(id string) bool {
	_, ok := models.Describe(id)
	return ok
}

// SetupPprofRoutes adds pprof endpoints to the router
func SetupPprofRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
}
