package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitializeMetricsPrepopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if n := testutil.CollectAndCount(IndexerFilesProcessed); n != len(outcomes) {
		t.Errorf("IndexerFilesProcessed series = %d, want %d", n, len(outcomes))
	}
	if n := testutil.CollectAndCount(IndexerExtractionsTotal); n != len(dateSources) {
		t.Errorf("IndexerExtractionsTotal series = %d, want %d", n, len(dateSources))
	}
	if n := testutil.CollectAndCount(FilesystemRetryAttempts); n != len(fsOps) {
		t.Errorf("FilesystemRetryAttempts series = %d, want %d", n, len(fsOps))
	}
}

func TestSetSchedulerState(t *testing.T) {
	states := []string{"idle", "scanning", "shutdown"}

	SetSchedulerState("scanning", states)

	if v := testutil.ToFloat64(IndexerSchedulerState.WithLabelValues("scanning")); v != 1 {
		t.Errorf("scanning = %v, want 1", v)
	}
	for _, s := range []string{"idle", "shutdown"} {
		if v := testutil.ToFloat64(IndexerSchedulerState.WithLabelValues(s)); v != 0 {
			t.Errorf("%s = %v, want 0", s, v)
		}
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	beforeErr := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("stat"))
	beforeStale := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("readdir"))
	beforeAttempts := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("open"))

	obs.ObserveOperation("stat", 0.01, errors.New("boom"))
	obs.ObserveOperation("stat", 0.01, nil)
	obs.ObserveStaleError("readdir")
	obs.ObserveRetryAttempt("open")
	obs.ObserveRetryAttempt("open")

	if got := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("stat")) - beforeErr; got != 1 {
		t.Errorf("operation errors delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("readdir")) - beforeStale; got != 1 {
		t.Errorf("stale errors delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("open")) - beforeAttempts; got != 2 {
		t.Errorf("retry attempts delta = %v, want 2", got)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc", "go1.25")
	if v := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc", "go1.25")); v != 1 {
		t.Errorf("AppInfo = %v, want 1", v)
	}
}
