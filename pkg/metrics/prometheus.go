// Package metrics provides Prometheus metrics for the GAD-7 scoring service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
	maxTotalScore          = 21
)

// latencyBuckets are in milliseconds. A forest walk takes well under one.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace       string
	subsystem       string
	enabled         bool
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// Prediction metrics
	predictions      *prometheus.CounterVec
	predictionErrors *prometheus.CounterVec
	inferenceLatency prometheus.Histogram
	totalScore       prometheus.Histogram
	modelLoaded      prometheus.Gauge

	// Batch scoring metrics
	batchJobs      *prometheus.CounterVec
	batchQueueSize prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:       "gad7",
		subsystem:       "api",
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of successful predictions by anxiety level"),
		[]string{"anxiety_level"},
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Total number of failed predictions by error kind"),
		[]string{"kind"},
	)
	m.inferenceLatency = auto.NewHistogram(
		m.histogramOpts("inference_latency_milliseconds", "Classifier call latency in milliseconds", latencyBuckets),
	)
	m.totalScore = auto.NewHistogram(
		m.histogramOpts("total_score", "Distribution of GAD-7 total scores", prometheus.LinearBuckets(0, 1, maxTotalScore+1)),
	)
	m.modelLoaded = auto.NewGauge(
		m.gaugeOpts("model_loaded", "1 when the classifier and label encoder are loaded"),
	)

	m.batchJobs = auto.NewCounterVec(
		m.counterOpts("batch_jobs_total", "Batch responses processed by status"),
		[]string{"status"},
	)
	m.batchQueueSize = auto.NewGauge(m.gaugeOpts("batch_queue_size", "Responses waiting in the batch queue"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordPrediction counts a successful prediction and its total score.
func (m *Manager) RecordPrediction(level string, totalScore int) {
	if !m.enabled {
		return
	}
	m.predictions.WithLabelValues(level).Inc()
	m.totalScore.Observe(float64(totalScore))
}

// RecordPredictionError counts a failed prediction by error kind.
func (m *Manager) RecordPredictionError(kind string) {
	if !m.enabled {
		return
	}
	m.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordInferenceLatency records one classifier call in milliseconds.
func (m *Manager) RecordInferenceLatency(latencyMs float64) {
	if !m.enabled {
		return
	}
	m.inferenceLatency.Observe(latencyMs)
}

// SetModelLoaded flips the model_loaded gauge.
func (m *Manager) SetModelLoaded(loaded bool) {
	if !m.enabled {
		return
	}
	if loaded {
		m.modelLoaded.Set(1)
		return
	}
	m.modelLoaded.Set(0)
}

// RecordHTTPRequest records one HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response by endpoint, type and severity.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordBatchJob counts one processed batch response.
func (m *Manager) RecordBatchJob(status string) {
	if !m.enabled {
		return
	}
	m.batchJobs.WithLabelValues(status).Inc()
}

// UpdateBatchQueueSize sets the current batch queue depth.
func (m *Manager) UpdateBatchQueueSize(size int) {
	if !m.enabled {
		return
	}
	m.batchQueueSize.Set(float64(size))
}

// UpdateSystem records memory, goroutine and GC pause figures.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, gcPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if gcPauseMs > 0 {
		m.systemGCPauseTime.Observe(gcPauseMs)
	}
}

// Package-level helpers record on the global manager.

// RecordPrediction counts a successful prediction on the global manager.
func RecordPrediction(level string, totalScore int) { globalManager.RecordPrediction(level, totalScore) }

// RecordPredictionError counts a failed prediction on the global manager.
func RecordPredictionError(kind string) { globalManager.RecordPredictionError(kind) }

// RecordInferenceLatency records classifier latency on the global manager.
func RecordInferenceLatency(latencyMs float64) { globalManager.RecordInferenceLatency(latencyMs) }

// SetModelLoaded flips the global model_loaded gauge.
func SetModelLoaded(loaded bool) { globalManager.SetModelLoaded(loaded) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an HTTP error on the global manager.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity)
}

// RecordBatchJob counts a batch response on the global manager.
func RecordBatchJob(status string) { globalManager.RecordBatchJob(status) }

// UpdateBatchQueueSize sets the batch queue depth on the global manager.
func UpdateBatchQueueSize(size int) { globalManager.UpdateBatchQueueSize(size) }

// UpdateSystem records system figures on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int, gcPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, gcPauseMs)
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
