// Package metrics provides Prometheus metrics for the workload index service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Survey history
	entriesAdded    *prometheus.CounterVec
	entriesRejected *prometheus.CounterVec
	entriesRemoved  *prometheus.CounterVec
	employees       prometheus.Gauge
	profiles        prometheus.Gauge

	// Index computation
	indexComputed *prometheus.CounterVec
	indexLatency  prometheus.Histogram

	// Persistence
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ewi",
		subsystem:        "",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.entriesAdded = m.counterVec("entries_added_total",
		"Survey entries accepted, by category", "category")
	m.entriesRejected = m.counterVec("entries_rejected_total",
		"Survey entries rejected, by reason", "reason")
	m.entriesRemoved = m.counterVec("entries_removed_total",
		"Survey entries removed, by category", "category")
	m.employees = m.gauge("employees", "Employee histories known to the store")
	m.profiles = m.gauge("job_profiles", "Job definitions loaded")

	m.indexComputed = m.counterVec("index_computed_total",
		"Workload index computations, by category", "category")
	m.indexLatency = auto.NewHistogram(m.histogramOpts("index_latency_milliseconds",
		"Workload index computation latency in milliseconds"))

	m.storeOperations = m.counterVec("store_operations_total",
		"History file operations, by operation and result", "op", "result")
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"History file operation latency in milliseconds"), []string{"op"})

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
}

// RecordEntryAdded counts an accepted entry.
func RecordEntryAdded(category string) {
	globalManager.entriesAdded.WithLabelValues(category).Inc()
}

// RecordEntryRejected counts an entry refused by validation or ordering.
func RecordEntryRejected(reason string) {
	globalManager.entriesRejected.WithLabelValues(reason).Inc()
}

// RecordEntryRemoved counts a removed entry.
func RecordEntryRemoved(category string) {
	globalManager.entriesRemoved.WithLabelValues(category).Inc()
}

// UpdateEmployees sets the number of known employees.
func UpdateEmployees(count int) {
	globalManager.employees.Set(float64(count))
}

// UpdateProfiles sets the number of loaded job definitions.
func UpdateProfiles(count int) {
	globalManager.profiles.Set(float64(count))
}

// RecordIndexComputed counts a workload index computation and its latency.
func RecordIndexComputed(category string, latencyMs float64) {
	globalManager.indexComputed.WithLabelValues(category).Inc()
	globalManager.indexLatency.Observe(latencyMs)
}

// RecordStoreOperation records a store load, save, list or delete.
func RecordStoreOperation(op string, err error, latencyMs float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.storeOperations.WithLabelValues(op, result).Inc()
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
