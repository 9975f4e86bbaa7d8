package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets       = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	navigationDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	backendDurationBuckets    = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	historyDepthBuckets       = []float64{1, 2, 5, 10, 25, 50, 100}
)

// Metrics holds all Prometheus metric instruments for the console.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Navigation metrics
	NavigationsTotal       *prometheus.CounterVec
	NavigationDuration     *prometheus.HistogramVec
	NavigationsRejected    prometheus.Counter
	HistoryDepth           prometheus.Histogram

	// Backend API metrics
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsLive          prometheus.Gauge
	SessionsResumedTotal  prometheus.Counter
	SessionsEvictedTotal  prometheus.Counter
	ResumeCacheHitsTotal  prometheus.Counter
	ResumeCacheMissesTotal prometheus.Counter
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		// Navigation
		NavigationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_navigations_total",
			Help: "Total number of settled navigations.",
		}, []string{"route", "result"}),
		NavigationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_navigation_duration_seconds",
			Help:    "Navigation pipeline duration in seconds.",
			Buckets: navigationDurationBuckets,
		}, []string{"route"}),
		NavigationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_navigations_rejected_total",
			Help: "Total navigations rejected because another was in flight.",
		}),
		HistoryDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "console_history_depth",
			Help:    "History stack depth observed after each push.",
			Buckets: historyDepthBuckets,
		}),

		// Backend API
		BackendRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Total number of platform API requests.",
		}, []string{"method", "path", "status"}),
		BackendRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Platform API request duration in seconds.",
			Buckets: backendDurationBuckets,
		}, []string{"method", "path"}),

		// Sessions
		SessionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_sessions_live",
			Help: "Number of live console sessions.",
		}),
		SessionsResumedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_sessions_resumed_total",
			Help: "Total sessions resumed from the resume cache.",
		}),
		SessionsEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_sessions_evicted_total",
			Help: "Total sessions evicted for idleness.",
		}),
		ResumeCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_resume_cache_hits_total",
			Help: "Total resume cache hits.",
		}),
		ResumeCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_resume_cache_misses_total",
			Help: "Total resume cache misses.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.NavigationsTotal,
		m.NavigationDuration,
		m.NavigationsRejected,
		m.HistoryDepth,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.SessionsLive,
		m.SessionsResumedTotal,
		m.SessionsEvictedTotal,
		m.ResumeCacheHitsTotal,
		m.ResumeCacheMissesTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordNavigation records a settled navigation.
func (m *Metrics) RecordNavigation(route, result string, duration time.Duration) {
	m.NavigationsTotal.WithLabelValues(route, result).Inc()
	m.NavigationDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordNavigationRejected records a navigation rejected while busy.
func (m *Metrics) RecordNavigationRejected() {
	m.NavigationsRejected.Inc()
}

// RecordHistoryDepth records the history stack depth after a push.
func (m *Metrics) RecordHistoryDepth(depth int) {
	m.HistoryDepth.Observe(float64(depth))
}

// RecordBackendRequest records a platform API request.
func (m *Metrics) RecordBackendRequest(method, path string, status int, duration time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.BackendRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetSessionsLive sets the live session gauge.
func (m *Metrics) SetSessionsLive(n int) {
	m.SessionsLive.Set(float64(n))
}

// RecordSessionResumed records a session resumed from cache.
func (m *Metrics) RecordSessionResumed() {
	m.SessionsResumedTotal.Inc()
}

// RecordSessionsEvicted records sessions evicted by the idle sweeper.
func (m *Metrics) RecordSessionsEvicted(n int) {
	m.SessionsEvictedTotal.Add(float64(n))
}

// RecordResumeCacheHit records a resume cache hit.
func (m *Metrics) RecordResumeCacheHit() {
	m.ResumeCacheHitsTotal.Inc()
}

// RecordResumeCacheMiss records a resume cache miss.
func (m *Metrics) RecordResumeCacheMiss() {
	m.ResumeCacheMissesTotal.Inc()
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}
