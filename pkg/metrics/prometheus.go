// Package metrics provides Prometheus metrics for the gridiron scoreboard service.
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
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Business metrics
	gamesAssembled prometheus.Counter
	unrankedTeams  *prometheus.CounterVec

	// Upstream provider metrics
	upstreamRequests        *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec

	// Rankings cache metrics
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheRefreshes     *prometheus.CounterVec
	cacheRefreshErrors *prometheus.CounterVec
	cacheLeagues       prometheus.Gauge

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
		namespace:        "gridiron",
		subsystem:        "scoreboard",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
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
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.gamesAssembled = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_assembled_total",
		Help:        "Total number of scoreboard records assembled",
		ConstLabels: m.customLabels,
	})
	m.unrankedTeams = m.counterVec("unranked_teams_total",
		"Games whose home or away team had no ranking, by policy outcome", "league", "outcome")

	m.upstreamRequests = m.counterVec("upstream_requests_total",
		"Requests sent to the data provider by endpoint and status code", "endpoint", "status_code")
	m.upstreamRequestDuration = m.histogramVec("upstream_request_duration_milliseconds",
		"Data provider round-trip latency in milliseconds", "endpoint")

	m.cacheHits = m.counterVec("rankings_cache_hits_total",
		"Rankings lookups served from a fresh cache entry", "league")
	m.cacheMisses = m.counterVec("rankings_cache_misses_total",
		"Rankings lookups that found no entry or a stale one", "league")
	m.cacheRefreshes = m.counterVec("rankings_cache_refreshes_total",
		"Rankings fetched from the provider to (re)populate the cache", "league")
	m.cacheRefreshErrors = m.counterVec("rankings_cache_refresh_errors_total",
		"Failed rankings refreshes", "league")
	m.cacheLeagues = m.gauge("rankings_cache_leagues",
		"Number of leagues currently held in the rankings cache")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.customLabels,
	})
}

// Business metrics.

// RecordGamesAssembled adds n assembled scoreboard records.
func (m *Manager) RecordGamesAssembled(n int) {
	if m.enabled {
		m.gamesAssembled.Add(float64(n))
	}
}

// RecordUnrankedTeam counts a game with an unranked team; outcome is "skip" or "fault".
func (m *Manager) RecordUnrankedTeam(league, outcome string) {
	if m.enabled {
		m.unrankedTeams.WithLabelValues(league, outcome).Inc()
	}
}

// Upstream metrics.

// RecordUpstreamRequest records one provider call.
func (m *Manager) RecordUpstreamRequest(endpoint, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, statusCode).Inc()
	m.upstreamRequestDuration.WithLabelValues(endpoint).Observe(durationMs)
}

// Cache metrics.

// RecordCacheHit counts a fresh cache read.
func (m *Manager) RecordCacheHit(league string) {
	if m.enabled {
		m.cacheHits.WithLabelValues(league).Inc()
	}
}

// RecordCacheMiss counts a read that found no entry or a stale one.
func (m *Manager) RecordCacheMiss(league string) {
	if m.enabled {
		m.cacheMisses.WithLabelValues(league).Inc()
	}
}

// RecordCacheRefresh counts a refresh attempt and its outcome.
func (m *Manager) RecordCacheRefresh(league string, err error) {
	if !m.enabled {
		return
	}
	m.cacheRefreshes.WithLabelValues(league).Inc()
	if err != nil {
		m.cacheRefreshErrors.WithLabelValues(league).Inc()
	}
}

// UpdateCacheLeagues sets the number of cached leagues.
func (m *Manager) UpdateCacheLeagues(n int) {
	if m.enabled {
		m.cacheLeagues.Set(float64(n))
	}
}

// HTTP metrics.

// RecordHTTPRequest records a served request and its latency.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError records an error response by endpoint and by type.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers write to the global manager.

// Default returns the process-wide manager bound to GetRegistry.
func Default() *Manager { return globalManager }

// RecordGamesAssembled adds n assembled scoreboard records.
func RecordGamesAssembled(n int) { globalManager.RecordGamesAssembled(n) }

// RecordUnrankedTeam counts a game with an unranked team.
func RecordUnrankedTeam(league, outcome string) { globalManager.RecordUnrankedTeam(league, outcome) }

// RecordUpstreamRequest records one provider call.
func RecordUpstreamRequest(endpoint, statusCode string, durationMs float64) {
	globalManager.RecordUpstreamRequest(endpoint, statusCode, durationMs)
}

// RecordCacheHit counts a fresh cache read.
func RecordCacheHit(league string) { globalManager.RecordCacheHit(league) }

// RecordCacheMiss counts a stale or missing cache read.
func RecordCacheMiss(league string) { globalManager.RecordCacheMiss(league) }

// RecordCacheRefresh counts a refresh attempt.
func RecordCacheRefresh(league string, err error) { globalManager.RecordCacheRefresh(league, err) }

// UpdateCacheLeagues sets the number of cached leagues.
func UpdateCacheLeagues(n int) { globalManager.UpdateCacheLeagues(n) }

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error response.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
