// Package metrics provides Prometheus instrumentation for media-calendar.
//
// All metrics are registered with promauto on the default registry and are
// prefixed with "media_calendar_". InitializeMetrics pre-creates the known
// label combinations so dashboards see zero values before the first scan.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: store operations by name and status
//   - DBTransactionDuration: batch transactions by outcome
//   - DBRowsAffected: rows touched by record writes and deletes
//   - DBConnectionsOpen / DBSizeBytes: connection pool and file sizes
//
// ## Indexer Metrics
//
//   - IndexerRunsTotal: scans by result (success, error, cancelled)
//   - IndexerIsRunning, IndexerLastRunTimestamp, IndexerLastRunDuration
//   - IndexerFilesProcessed / IndexerLastRunFiles: files by outcome
//     (inserted, updated, unchanged, failed, pruned)
//   - IndexerExtractionsTotal: extractions by date source
//   - IndexerBatchFlushes, IndexerWorkers, IndexerUnreachableDirs
//   - IndexerSchedulerState: idle, scanning or shutdown
//
// ## Index Content Metrics
//
// Refreshed by the Collector from the cached index statistics:
//   - IndexRecordsTotal by kind, IndexRecordsBySource by date source
//   - IndexCompanionsTotal, IndexYearsTotal
//
// ## Filesystem Metrics
//
// Reported through the filesystem.Observer returned by
// NewFilesystemObserver: operation durations and errors, NFS retry
// attempts, successes, failures and stale handle errors.
//
// ## Memory Metrics
//
// Set by the memory monitor: MemoryUsageRatio (heap over limit),
// MemoryPaused and MemoryGCPauses.
//
// # Usage
//
//	metrics.InitializeMetrics()
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	http.Handle("/metrics", promhttp.Handler())
package metrics
