package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tracker service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbb_api_calls_total",
			Help: "Total number of scoreboard API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cbb_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Ingestion metrics
	IngestBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbb_ingest_batches_total",
			Help: "Total number of ingestion batches",
		},
		[]string{"status"},
	)

	EventsSeenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_ingest_events_seen_total",
			Help: "Total number of scoreboard events seen",
		},
	)

	EventsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_ingest_events_skipped_total",
			Help: "Total number of malformed scoreboard events skipped",
		},
	)

	GamesUpsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_ingest_games_upserted_total",
			Help: "Total number of games upserted",
		},
	)

	// Rating metrics
	RatingsAppliedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_ratings_applied_total",
			Help: "Total number of games whose ratings were applied",
		},
	)

	FinalGamesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_final_games_pending",
			Help: "Final games awaiting rating application after the last scan",
		},
	)

	// Prediction metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbb_predictions_total",
			Help: "Total number of prediction queries",
		},
		[]string{"source"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cbb_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Ingested entity gauges
	TeamsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_teams_ingested_total",
			Help: "Total number of teams in database",
		},
	)

	GamesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_games_ingested_total",
			Help: "Total number of games in database",
		},
	)

	ActiveGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_active_games",
			Help: "Number of currently in-progress games",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbb_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cbb_last_successful_sync_timestamp",
			Help: "Timestamp of last successful ingest cycle",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordIngestBatch records the outcome of one ingestion batch
func RecordIngestBatch(status string, eventsSeen, skipped, gamesUpserted int) {
	IngestBatchesTotal.WithLabelValues(status).Inc()
	EventsSeenTotal.Add(float64(eventsSeen))
	EventsSkippedTotal.Add(float64(skipped))
	GamesUpsertedTotal.Add(float64(gamesUpserted))

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordRatingsApplied records the outcome of one rating application scan
func RecordRatingsApplied(found, applied int) {
	RatingsAppliedTotal.Add(float64(applied))
	FinalGamesPending.Set(float64(found - applied))
}

// RecordPrediction records a prediction query; source is "cache" or "computed"
func RecordPrediction(source string) {
	PredictionsTotal.WithLabelValues(source).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateIngestionStats updates ingested entity gauges
func UpdateIngestionStats(teams, games, activeGames int) {
	TeamsIngested.Set(float64(teams))
	GamesIngested.Set(float64(games))
	ActiveGames.Set(float64(activeGames))
}
