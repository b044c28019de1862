// Package metrics provides Prometheus metrics for the AvalieCE dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	loadBuckets      []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpPanics          prometheus.Counter

	// Authentication and sessions
	loginAttempts  *prometheus.CounterVec
	logouts        prometheus.Counter
	activeSessions prometheus.Gauge

	// Dataset
	datasetLoads         *prometheus.CounterVec
	datasetLoadLatency   prometheus.Histogram
	datasetCacheHits     prometheus.Counter
	datasetInvalidations prometheus.Counter
	datasetRows          prometheus.Gauge

	// View pipeline
	viewBuilds     *prometheus.CounterVec
	filteredRows   prometheus.Histogram
	chartRenders   *prometheus.CounterVec
	chartBarsTotal prometheus.Counter

	// Errors
	errorsByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "avaliece",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		loadBuckets:      []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpPanics = auto.NewCounter(m.counterOpts("http_panics_total", "Handler panics recovered by middleware"))

	m.loginAttempts = auto.NewCounterVec(
		m.counterOpts("login_attempts_total", "Login attempts by result"),
		[]string{"result"},
	)
	m.logouts = auto.NewCounter(m.counterOpts("logouts_total", "Explicit logouts"))
	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Sessions currently held in the session store"))

	m.datasetLoads = auto.NewCounterVec(
		m.counterOpts("dataset_loads_total", "Dataset reads from the source by result"),
		[]string{"result"},
	)
	m.datasetLoadLatency = auto.NewHistogram(
		m.histogramOpts("dataset_load_latency_milliseconds", "Dataset read latency in milliseconds", m.loadBuckets),
	)
	m.datasetCacheHits = auto.NewCounter(m.counterOpts("dataset_cache_hits_total", "Dataset loads served from cache"))
	m.datasetInvalidations = auto.NewCounter(m.counterOpts("dataset_invalidations_total", "Dataset cache invalidations triggered by file changes"))
	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Rows in the cached dataset"))

	m.viewBuilds = auto.NewCounterVec(
		m.counterOpts("view_builds_total", "Dashboard view builds by outcome"),
		[]string{"outcome"},
	)
	m.filteredRows = auto.NewHistogram(
		m.histogramOpts("filtered_rows", "Rows left after the filter pipeline",
			prometheus.ExponentialBuckets(1, 4, 10)),
	)
	m.chartRenders = auto.NewCounterVec(
		m.counterOpts("chart_renders_total", "Charts rendered by output format"),
		[]string{"format"},
	)
	m.chartBarsTotal = auto.NewCounter(m.counterOpts("chart_bars_total", "Bars drawn across all rendered charts"))

	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Error responses by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPPanic counts a recovered handler panic.
func RecordHTTPPanic() {
	globalManager.httpPanics.Inc()
}

// RecordLogin records a login attempt; result is "success" or "failure".
func RecordLogin(result string) {
	globalManager.loginAttempts.WithLabelValues(result).Inc()
}

// RecordLogout counts an explicit logout.
func RecordLogout() {
	globalManager.logouts.Inc()
}

// UpdateActiveSessions sets the active sessions gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordDatasetLoad records a dataset read; result is "ok", "not_found" or "error".
func RecordDatasetLoad(result string, latencyMs float64) {
	globalManager.datasetLoads.WithLabelValues(result).Inc()
	globalManager.datasetLoadLatency.Observe(latencyMs)
}

// RecordDatasetCacheHit counts a load served from cache.
func RecordDatasetCacheHit() {
	globalManager.datasetCacheHits.Inc()
}

// RecordDatasetInvalidation counts a watcher-triggered cache drop.
func RecordDatasetInvalidation() {
	globalManager.datasetInvalidations.Inc()
}

// UpdateDatasetRows sets the cached dataset row gauge.
func UpdateDatasetRows(rows int) {
	globalManager.datasetRows.Set(float64(rows))
}

// RecordViewBuild records a view build; outcome is "ok", "empty", "not_found" or "error".
func RecordViewBuild(outcome string, filteredRows int) {
	globalManager.viewBuilds.WithLabelValues(outcome).Inc()
	if outcome == "ok" || outcome == "empty" {
		globalManager.filteredRows.Observe(float64(filteredRows))
	}
}

// RecordChartRender records a rendered chart in the given format ("svg" or "png").
func RecordChartRender(format string, bars int) {
	globalManager.chartRenders.WithLabelValues(format).Inc()
	globalManager.chartBarsTotal.Add(float64(bars))
}

// RecordErrorByEndpoint records error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for serving metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
