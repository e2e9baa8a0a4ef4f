// Package metrics provides Prometheus metrics for the predictor service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// Model load result label values.
const (
	LoadOK       = "ok"
	LoadNotFound = "not_found"
	LoadDecode   = "decode_error"
	LoadShape    = "shape_mismatch"
)

// latencyBuckets covers sub-millisecond inference up to slow requests.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250}

// Manager manages all Prometheus metrics for the predictor service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictedClass    *prometheus.CounterVec

	// Model lifecycle metrics
	modelLoaded prometheus.Gauge
	modelLoads  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	panicsRecovered     prometheus.Counter

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
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
		namespace:        "diabetes",
		subsystem:        "predictor",
		histogramBuckets: latencyBuckets,
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

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of prediction calls by outcome"),
		[]string{"outcome"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "Time spent inside the classifier in milliseconds"),
	)
	m.predictedClass = auto.NewCounterVec(
		m.counterOpts("predicted_class_total", "Total number of successful predictions by predicted class"),
		[]string{"class"},
	)

	m.modelLoaded = auto.NewGauge(
		m.gaugeOpts("model_loaded", "1 when a model is loaded and serving, 0 in degraded mode"),
	)
	m.modelLoads = auto.NewCounterVec(
		m.counterOpts("model_loads_total", "Total number of model load attempts by result"),
		[]string{"result"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.panicsRecovered = auto.NewCounter(
		m.counterOpts("http_panics_recovered_total", "Total number of handler panics recovered by middleware"),
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that ended in an error"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutines", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause time in milliseconds"),
	)
}

// RecordPrediction counts a prediction call and its classifier latency.
func (m *Manager) RecordPrediction(outcome string, latencyMs float64) {
	m.predictions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeUnavailable {
		m.predictionLatency.Observe(latencyMs)
	}
}

// RecordPredictedClass counts a successful prediction of label.
func (m *Manager) RecordPredictedClass(label int) {
	m.predictedClass.WithLabelValues(strconv.Itoa(label)).Inc()
}

// RecordModelLoad counts a load attempt and updates the loaded gauge.
func (m *Manager) RecordModelLoad(result string) {
	m.modelLoads.WithLabelValues(result).Inc()
	if result == LoadOK {
		m.modelLoaded.Set(1)
		return
	}
	m.modelLoaded.Set(0)
}

// SetModelLoaded sets the loaded gauge directly, e.g. on teardown.
func (m *Manager) SetModelLoaded(loaded bool) {
	if loaded {
		m.modelLoaded.Set(1)
		return
	}
	m.modelLoaded.Set(0)
}

// Package-level helpers forward to the global manager.

// RecordPrediction counts a prediction call on the global manager.
func RecordPrediction(outcome string, latencyMs float64) {
	globalManager.RecordPrediction(outcome, latencyMs)
}

// RecordPredictedClass counts a predicted label on the global manager.
func RecordPredictedClass(label int) {
	globalManager.RecordPredictedClass(label)
}

// RecordModelLoad records a load attempt on the global manager.
func RecordModelLoad(result string) {
	globalManager.RecordModelLoad(result)
}

// SetModelLoaded sets the loaded gauge on the global manager.
func SetModelLoaded(loaded bool) {
	globalManager.SetModelLoaded(loaded)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordPanicRecovered increments the recovered panic counter.
func RecordPanicRecovered() {
	globalManager.panicsRecovered.Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
