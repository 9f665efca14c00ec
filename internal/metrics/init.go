package metrics

// Label values known up front. Kept in sync with mediatypes and indexer.
var (
	kinds       = []string{"photo", "video"}
	dateSources = []string{"exif-original", "exif-fallback", "filesystem"}
	outcomes    = []string{"inserted", "updated", "unchanged", "failed", "pruned"}
	fsOps       = []string{"stat", "open", "readdir"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	for _, op := range []string{"initialize_schema", "load_records", "save_records", "delete_by_paths",
		"count", "list_by_day", "get_record_by_path", "get_record_by_hash", "calculate_stats",
		"get_metadata", "set_metadata", "vacuum"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, o := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(o)
	}
	for _, op := range []string{"insert_record", "update_record", "delete_records"} {
		DBRowsAffected.WithLabelValues(op)
	}

	for _, r := range []string{"success", "error", "cancelled"} {
		IndexerRunsTotal.WithLabelValues(r)
	}
	for _, o := range outcomes {
		IndexerFilesProcessed.WithLabelValues(o)
		IndexerLastRunFiles.WithLabelValues(o)
	}
	for _, s := range dateSources {
		IndexerExtractionsTotal.WithLabelValues(s)
		IndexRecordsBySource.WithLabelValues(s)
	}
	for _, k := range kinds {
		IndexRecordsTotal.WithLabelValues(k)
	}

	for _, op := range fsOps {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
