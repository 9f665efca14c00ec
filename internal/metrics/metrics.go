package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_calendar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_calendar_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_calendar_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"outcome"}, // "commit" or "rollback"
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_calendar_db_rows_affected",
			Help:    "Rows affected by write operations",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_indexer_runs_total",
			Help: "Total number of scans by result",
		},
		[]string{"result"}, // "success", "error", "cancelled"
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	IndexerLastRunFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_last_run_files",
			Help: "Number of files in the last scan by outcome",
		},
		[]string{"outcome"},
	)

	IndexerFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_indexer_files_processed_total",
			Help: "Total number of files processed by outcome",
		},
		[]string{"outcome"}, // "inserted", "updated", "unchanged", "failed", "pruned"
	)

	IndexerExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_indexer_extractions_total",
			Help: "Total number of capture-date extractions by date source",
		},
		[]string{"source"},
	)

	IndexerBatchFlushes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_calendar_indexer_batch_flushes_total",
			Help: "Total number of batched writes to the index",
		},
	)

	IndexerWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_workers",
			Help: "Number of extraction workers used by the current or last scan",
		},
	)

	IndexerUnreachableDirs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_calendar_indexer_unreachable_dirs_total",
			Help: "Total number of roots or directories that could not be listed",
		},
	)

	IndexerSchedulerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_indexer_scheduler_state",
			Help: "Current scan scheduler state (1 for the active state)",
		},
		[]string{"state"},
	)
)

// Index content metrics
var (
	IndexRecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_index_records",
			Help: "Number of indexed records by media kind",
		},
		[]string{"kind"},
	)

	IndexRecordsBySource = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_index_records_by_source",
			Help: "Number of indexed records by capture-date source",
		},
		[]string{"source"},
	)

	IndexCompanionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_index_live_photo_companions",
			Help: "Number of photos carrying a Live-Photo companion video",
		},
	)

	IndexYearsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_index_years",
			Help: "Number of distinct capture years in the index",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_calendar_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_calendar_filesystem_stale_errors_total",
			Help: "Total number of stale NFS file handle errors",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_memory_usage_ratio",
			Help: "Go heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_calendar_memory_paused",
			Help: "Whether scanning is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_calendar_memory_gc_pauses_total",
			Help: "Total number of times scanning paused for memory pressure",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_calendar_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// SetSchedulerState marks state as the active scheduler state.
func SetSchedulerState(state string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		IndexerSchedulerState.WithLabelValues(s).Set(v)
	}
}
