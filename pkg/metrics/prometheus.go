// Package metrics provides Prometheus metrics for the Nova scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Store
	mutations       *prometheus.CounterVec
	partnersTotal   prometheus.Gauge
	reviewsTotal    prometheus.Gauge
	journalEntries  prometheus.Gauge
	subscriberCount *prometheus.GaugeVec

	// Sync
	flushes        *prometheus.CounterVec
	flushLatency   prometheus.Histogram
	pendingChanges prometheus.Gauge
	syncState      prometheus.Gauge
	online         prometheus.Gauge

	// Scoring
	scoreComputations prometheus.Counter
	scoreDistribution prometheus.Histogram
	scoringErrors     prometheus.Counter

	// Import pipeline and workers
	importsTotal     *prometheus.CounterVec
	importDuration   prometheus.Histogram
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	workerCount      prometheus.Gauge
	workerProcessing prometheus.Histogram

	// Messaging
	changesPublished *prometheus.CounterVec

	// Gateway
	gatewayLatency *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nova",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
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

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.mutations = m.counterVec("store_mutations_total", "Store mutations by journal event type", "type")
	m.partnersTotal = m.gauge("store_partners", "Number of partners currently held by the store")
	m.reviewsTotal = m.gauge("store_reviews", "Number of reviews currently held by the store")
	m.journalEntries = m.gauge("journal_entries", "Entries retained in the change journal")
	m.subscriberCount = m.gaugeVec("store_subscribers", "Registered observers by stream", "stream")

	m.flushes = m.counterVec("sync_flushes_total", "Flush attempts by result", "result")
	m.flushLatency = m.histogram("sync_flush_latency_milliseconds", "Persistence gateway round-trip latency", m.histogramBuckets)
	m.pendingChanges = m.gauge("sync_pending_changes", "Mutations not yet persisted")
	m.syncState = m.gauge("sync_state", "Sync state: 0 idle, 1 syncing, 2 error, 3 offline")
	m.online = m.gauge("connectivity_online", "1 when the persistence endpoint is reachable")

	m.scoreComputations = m.counter("score_computations_total", "Nova score computations")
	m.scoreDistribution = m.histogram("score_distribution", "Distribution of computed Nova scores",
		[]float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000})
	m.scoringErrors = m.counter("scoring_errors_total", "Scoring failures in the worker pool")

	m.importsTotal = m.counterVec("imports_total", "Import pipeline runs by result", "result")
	m.importDuration = m.histogram("import_duration_milliseconds", "Import pipeline duration", m.histogramBuckets)
	m.queueSize = m.gauge("queue_size", "Jobs waiting in the rescoring queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the rescoring queue")
	m.workerCount = m.gauge("worker_count", "Rescoring workers running")
	m.workerProcessing = m.histogram("worker_processing_latency_milliseconds", "Per-job processing latency", m.histogramBuckets)

	m.changesPublished = m.counterVec("changes_published_total", "Change events published to the broker", "result")

	m.gatewayLatency = m.histogramVec("gateway_latency_milliseconds", "Gateway operation latency", "backend", "op")
	m.breakerState = m.gaugeVec("gateway_breaker_state", "Circuit breaker state: 0 closed, 1 half-open, 2 open", "backend")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordMutation counts a journaled store mutation.
func RecordMutation(eventType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.mutations.WithLabelValues(eventType).Inc()
}

// UpdateStoreSize sets the partner and review gauges.
func UpdateStoreSize(partners, reviews int) {
	globalManager.partnersTotal.Set(float64(partners))
	globalManager.reviewsTotal.Set(float64(reviews))
}

// UpdateJournalEntries sets the retained journal size.
func UpdateJournalEntries(n int) {
	globalManager.journalEntries.Set(float64(n))
}

// UpdateSubscribers sets the observer count for a stream.
func UpdateSubscribers(stream string, n int) {
	globalManager.subscriberCount.WithLabelValues(stream).Set(float64(n))
}

// RecordFlush counts a flush attempt and its latency.
func RecordFlush(result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.flushes.WithLabelValues(result).Inc()
	globalManager.flushLatency.Observe(latencyMs)
}

// UpdateSyncStatus mirrors the scheduler status into gauges.
func UpdateSyncStatus(state float64, pending int) {
	globalManager.syncState.Set(state)
	globalManager.pendingChanges.Set(float64(pending))
}

// UpdateOnline records connectivity.
func UpdateOnline(online bool) {
	v := 0.0
	if online {
		v = 1
	}
	globalManager.online.Set(v)
}

// RecordScore counts a computed score.
func RecordScore(score int) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoreComputations.Inc()
	globalManager.scoreDistribution.Observe(float64(score))
}

// RecordScoringError counts a scoring failure.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordImport counts an import run.
func RecordImport(result string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.importsTotal.WithLabelValues(result).Inc()
	globalManager.importDuration.Observe(durationMs)
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessing.Observe(latencyMs)
}

// RecordChangePublished counts a broker publish attempt.
func RecordChangePublished(result string) {
	globalManager.changesPublished.WithLabelValues(result).Inc()
}

// RecordGatewayLatency records a gateway call.
func RecordGatewayLatency(backend, op string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.gatewayLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// UpdateBreakerState records circuit breaker state for a backend.
func UpdateBreakerState(backend string, state float64) {
	globalManager.breakerState.WithLabelValues(backend).Set(state)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the service exposes on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
