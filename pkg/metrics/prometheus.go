// Package metrics provides Prometheus metrics for the cujulink player link service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Snapshot metrics
	snapshotBuilds        prometheus.Counter
	snapshotBuildDuration prometheus.Histogram
	snapshotPlayers       prometheus.Gauge
	snapshotParseFailures prometheus.Counter
	snapshotSkipped       *prometheus.CounterVec
	snapshotCacheLookups  *prometheus.CounterVec
	storeGeneration       prometheus.Gauge

	// Engine metrics
	searchDuration   prometheus.Histogram
	searchExpansions prometheus.Histogram
	searchOutcomes   *prometheus.CounterVec
	searchPathLength prometheus.Histogram
	validations      *prometheus.CounterVec
	invalidLinks     *prometheus.CounterVec
	suggestions      prometheus.Counter
	suggestionSize   prometheus.Histogram

	// Import metrics
	importRecords *prometheus.CounterVec
	importRuns    *prometheus.CounterVec

	// Queue and worker pool metrics
	queueDepth        *prometheus.GaugeVec
	queueRejected     *prometheus.CounterVec
	workerJobs        *prometheus.CounterVec
	workerJobDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager and the custom registry it registers on, kept apart
// from the default Go metrics. Both are swapped together by Configure.
var (
	globalManager  atomic.Pointer[Manager]            //nolint:gochecknoglobals // singleton metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // metrics registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry and returns that registry. Call it before handlers read GetRegistry.
func Configure(opts ...Option) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(reg))...)
	customRegistry.Store(reg)
	globalManager.Store(m)
	return reg
}

func global() *Manager { return globalManager.Load() }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cujulink",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	countBuckets := []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}
	lengthBuckets := []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20}

	m.snapshotBuilds = m.counter("snapshot_builds_total", "Total number of snapshots built from the store")
	m.snapshotBuildDuration = m.histogram("snapshot_build_duration_milliseconds", "Snapshot build duration in milliseconds", m.histogramBuckets)
	m.snapshotPlayers = m.gauge("snapshot_players", "Number of players in the most recently built snapshot")
	m.snapshotParseFailures = m.counter("snapshot_parse_failures_total", "Records whose career text could not be parsed")
	m.snapshotSkipped = m.counterVec("snapshot_skipped_records_total", "Records left out of a snapshot", "reason")
	m.snapshotCacheLookups = m.counterVec("snapshot_cache_lookups_total", "Snapshot cache lookups by result", "result")
	m.storeGeneration = m.gauge("store_generation", "Last observed store generation")

	m.searchDuration = m.histogram("search_duration_milliseconds", "Shortest link search duration in milliseconds", m.histogramBuckets)
	m.searchExpansions = m.histogram("search_expansions", "Players expanded per shortest link search", countBuckets)
	m.searchOutcomes = m.counterVec("search_outcomes_total", "Shortest link searches by outcome and mode", "outcome", "mode")
	m.searchPathLength = m.histogram("search_path_length", "Number of links in found chains", lengthBuckets)
	m.validations = m.counterVec("validations_total", "Chain validations by outcome", "outcome")
	m.invalidLinks = m.counterVec("invalid_links_total", "Invalid links reported by reason", "reason")
	m.suggestions = m.counter("suggestions_total", "Name suggestion requests")
	m.suggestionSize = m.histogram("suggestion_results", "Number of names returned per suggestion request", []float64{0, 1, 2, 3, 4, 5, 10})

	m.importRecords = m.counterVec("import_records_total", "Records seen by the importer by result", "result")
	m.importRuns = m.counterVec("import_runs_total", "Importer runs by outcome", "outcome")

	m.queueDepth = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_depth",
		Help:        "Items waiting in an in-memory queue",
		ConstLabels: m.customLabels,
	}, []string{"queue"})
	m.queueRejected = m.counterVec("queue_rejected_total", "Items a queue refused by reason", "queue", "reason")
	m.workerJobs = m.counterVec("worker_jobs_total", "Jobs handled by a worker pool by outcome", "pool", "outcome")
	m.workerJobDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_job_duration_milliseconds",
		Help:        "Worker job duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"pool"})

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Snapshot Metrics Functions.

// RecordSnapshotBuild records a finished snapshot build.
func RecordSnapshotBuild(durationMs float64, players int) {
	if !global().Enabled() {
		return
	}
	global().snapshotBuilds.Inc()
	global().snapshotBuildDuration.Observe(durationMs)
	global().snapshotPlayers.Set(float64(players))
}

// RecordSnapshotParseFailure increments the per-record parse failure counter.
func RecordSnapshotParseFailure() {
	global().snapshotParseFailures.Inc()
}

// RecordSnapshotSkipped counts a record dropped from a snapshot.
func RecordSnapshotSkipped(reason string) {
	global().snapshotSkipped.WithLabelValues(reason).Inc()
}

// RecordSnapshotCacheHit counts a snapshot served from cache.
func RecordSnapshotCacheHit() {
	global().snapshotCacheLookups.WithLabelValues("hit").Inc()
}

// RecordSnapshotCacheMiss counts a snapshot rebuilt because the cache was stale or empty.
func RecordSnapshotCacheMiss() {
	global().snapshotCacheLookups.WithLabelValues("miss").Inc()
}

// UpdateStoreGeneration sets the last observed store generation.
func UpdateStoreGeneration(gen uint64) {
	global().storeGeneration.Set(float64(gen))
}

// Engine Metrics Functions.

// RecordSearch records one shortest link search.
func RecordSearch(mode, outcome string, durationMs float64, expanded, links int) {
	if !global().Enabled() {
		return
	}
	global().searchDuration.Observe(durationMs)
	global().searchExpansions.Observe(float64(expanded))
	global().searchOutcomes.WithLabelValues(outcome, mode).Inc()
	if outcome == "found" {
		global().searchPathLength.Observe(float64(links))
	}
}

// RecordValidation records a chain validation and its invalid link reasons.
func RecordValidation(valid bool, reasons []string) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	global().validations.WithLabelValues(outcome).Inc()
	for _, r := range reasons {
		global().invalidLinks.WithLabelValues(r).Inc()
	}
}

// RecordSuggestion records a suggestion request and how many names it returned.
func RecordSuggestion(results int) {
	global().suggestions.Inc()
	global().suggestionSize.Observe(float64(results))
}

// Import Metrics Functions.

// RecordImportRecords adds n records with the given result (stored, skipped, duplicate).
func RecordImportRecords(result string, n int) {
	global().importRecords.WithLabelValues(result).Add(float64(n))
}

// RecordImportRun counts an importer run by outcome (ok, failed).
func RecordImportRun(outcome string) {
	global().importRuns.WithLabelValues(outcome).Inc()
}

// Queue and Worker Metrics Functions.

// UpdateQueueSize sets the number of items waiting in the named queue.
func UpdateQueueSize(queue string, n int) {
	global().queueDepth.WithLabelValues(queue).Set(float64(n))
}

// RecordQueueRejected counts an item the named queue refused (full, closed, canceled).
func RecordQueueRejected(queue, reason string) {
	global().queueRejected.WithLabelValues(queue, reason).Inc()
}

// RecordWorkerJob records one job handled by the named pool.
func RecordWorkerJob(pool, outcome string, durationMs float64) {
	if !global().Enabled() {
		return
	}
	global().workerJobs.WithLabelValues(pool, outcome).Inc()
	global().workerJobDuration.WithLabelValues(pool).Observe(durationMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	global().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	global().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	global().errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	global().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	global().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	global().systemGCPauseTime.Observe(pauseMs)
}

// SetEnabled switches recording of the high-volume engine metrics on or off.
func SetEnabled(enabled bool) {
	global().enabled.Store(enabled)
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	return global().refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
