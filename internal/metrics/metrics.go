// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Clustering Metrics
	ClusteringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clustering_duration_seconds",
			Help:    "Duration of clustering runs in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	ClusteringPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clustering_input_points",
			Help:    "Number of points passed to a clustering run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ClusteringClusters = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clustering_output_clusters",
			Help:    "Number of clusters produced by a clustering run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Popup Placement Metrics
	PopupPlacements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popup_placements_total",
			Help: "Total number of popup placements by anchor",
		},
		[]string{"anchor"},
	)

	// Memoization Cache Metrics
	CacheHitRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_hit_rate_percent",
			Help: "Cache hit rate in percent since start",
		},
		[]string{"cache_type"}, // "distance", "popup"
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// Dataset Metrics
	DatasetReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_reloads_total",
			Help: "Total number of dataset reload attempts",
		},
		[]string{"source", "result"}, // result: "success", "failure"
	)

	DatasetReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_reload_duration_seconds",
			Help:    "Duration of dataset reloads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DatasetLocations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_locations",
			Help: "Number of locations in the current dataset snapshot",
		},
	)

	DatasetLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_last_success_timestamp",
			Help: "Unix timestamp of the last successful dataset reload",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Photo of the Day Metrics
	PhotoOfDayPicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_of_day_picks_total",
			Help: "Photo of the day lookups by outcome",
		},
		[]string{"outcome"}, // "new", "existing", "error"
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordClustering records one clustering run.
func RecordClustering(duration time.Duration, points, clusters int) {
	ClusteringDuration.Observe(duration.Seconds())
	ClusteringPoints.Observe(float64(points))
	ClusteringClusters.Observe(float64(clusters))
}

// RecordPopupPlacement counts a placement by anchor.
func RecordPopupPlacement(anchor string) {
	PopupPlacements.WithLabelValues(anchor).Inc()
}

// UpdateCacheStats publishes a memoization cache snapshot.
func UpdateCacheStats(cacheType string, hitRate float64, size int) {
	CacheHitRate.WithLabelValues(cacheType).Set(hitRate)
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

// RecordDatasetReload records a dataset reload attempt.
func RecordDatasetReload(source string, duration time.Duration, locations int, err error) {
	DatasetReloadDuration.Observe(duration.Seconds())
	if err != nil {
		DatasetReloads.WithLabelValues(source, "failure").Inc()
		return
	}
	DatasetReloads.WithLabelValues(source, "success").Inc()
	DatasetLocations.Set(float64(locations))
	DatasetLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordPhotoOfDay counts a photo of the day lookup.
func RecordPhotoOfDay(outcome string) {
	PhotoOfDayPicks.WithLabelValues(outcome).Inc()
}
