package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"media-calendar/internal/database"
	"media-calendar/internal/logging"
	"media-calendar/internal/metadata"
	"media-calendar/internal/metrics"
)

// Minimum records in the index before marking the server as ready
const minFilesForReady = 100

// ErrScanInProgress is returned when a scan is requested while one is running.
var ErrScanInProgress = errors.New("scan already in progress")

// ErrWalkAborted is returned when the memory gate stopped a walk before it
// covered every root.
var ErrWalkAborted = errors.New("walk aborted by memory backpressure")

// Store is the persistent index the reconciler writes to.
type Store interface {
	LoadRecords(ctx context.Context) (map[string]*database.Record, error)
	SaveRecords(ctx context.Context, records []*database.Record) error
	DeleteByPaths(ctx context.Context, paths []string) (int64, error)
	Count(ctx context.Context) (int, error)
	SetMetadata(ctx context.Context, key, value string) error
}

// statsStore is implemented by stores that cache index statistics.
type statsStore interface {
	CalculateStats(ctx context.Context) (database.IndexStats, error)
	UpdateStats(stats database.IndexStats)
}

// Extractor dates one media file. Implementations must be safe for
// concurrent use and must not return errors; metadata.Extractor is the
// production implementation.
type Extractor interface {
	Extract(path string, modTime time.Time) metadata.Result
}

// RootsProvider supplies the directories to scan. It is consulted at the
// start of every scan.
type RootsProvider interface {
	Roots() []string
}

// StaticRoots is a fixed list of roots.
type StaticRoots []string

// Roots returns the list itself.
func (s StaticRoots) Roots() []string { return s }

// Summary is the outcome of one scan.
type Summary = database.ScanSummary

// Indexer scans the media roots and reconciles the results into the store.
type Indexer struct {
	store     Store
	extractor Extractor
	roots     RootsProvider
	config    PipelineConfig

	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	lastSummary          *Summary
	lastError            error
	initialIndexComplete bool
	startTime            time.Time

	// Progress tracking
	knownRecords  atomic.Int64
	filesIndexed  atomic.Int64
	indexProgress atomic.Value

	// Callback when a scan completes
	onIndexComplete func(Summary)
}

// IndexProgress tracks the current scan progress
type IndexProgress struct {
	ScanID         string    `json:"scanId,omitempty"`
	FilesProcessed int64     `json:"filesProcessed"`
	IsIndexing     bool      `json:"isIndexing"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready         bool           `json:"ready"`
	Indexing      bool           `json:"indexing"`
	StartTime     time.Time      `json:"startTime"`
	Uptime        string         `json:"uptime"`
	LastIndexed   time.Time      `json:"lastIndexed,omitempty"`
	LastError     string         `json:"lastError,omitempty"`
	FilesIndexed  int64          `json:"filesIndexed"`
	IndexProgress *IndexProgress `json:"indexProgress,omitempty"`
	LastScan      *Summary       `json:"lastScan,omitempty"`
}

// New creates a new Indexer instance.
func New(store Store, extractor Extractor, roots RootsProvider, config PipelineConfig) *Indexer {
	idx := &Indexer{
		store:     store,
		extractor: extractor,
		roots:     roots,
		config:    config.withDefaults(),
		startTime: time.Now(),
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// SetOnIndexComplete sets a callback to be invoked when a scan completes.
func (idx *Indexer) SetOnIndexComplete(callback func(Summary)) {
	idx.onIndexComplete = callback
}

// Prime loads the current record count so an existing index reports ready
// before the first scan of this process finishes.
func (idx *Indexer) Prime(ctx context.Context) error {
	n, err := idx.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count indexed records: %w", err)
	}
	idx.knownRecords.Store(int64(n))
	idx.refreshStats(ctx)
	return nil
}

// Scan performs one full scan of the configured roots. Cancelling ctx stops
// the walk and the workers; records already extracted are still written but
// nothing is pruned.
func (idx *Indexer) Scan(ctx context.Context) (Summary, error) {
	if !idx.tryStartIndexing() {
		return Summary{}, ErrScanInProgress
	}

	completed := false
	defer func() {
		if !completed {
			idx.abortIndexing()
		}
	}()

	summary, err := idx.scan(ctx)
	completed = true
	idx.finishIndexing(summary, err)
	return summary, err
}

func (idx *Indexer) scan(ctx context.Context) (summary Summary, err error) {
	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)

	summary = Summary{
		ScanID:    uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := logging.With("scan_id", summary.ScanID)

	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		idx.recordRunMetrics(summary, err)
	}()

	idx.resetCounters(summary)

	roots := cleanRoots(idx.roots.Roots())
	summary.Roots = roots
	if len(roots) == 0 {
		log.Warn("No media roots configured, nothing to scan")
		summary.Total = int(idx.knownRecords.Load())
		return summary, nil
	}

	previous, err := idx.store.LoadRecords(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load existing records: %w", err)
	}
	log.Info("Starting scan of %d root(s) with %d workers (%d records indexed)",
		len(roots), idx.config.NumWorkers, len(previous))

	p := &pipeline{
		config:     idx.config,
		extractor:  idx.extractor,
		previous:   previous,
		companions: newCompanionResolver(idx.config.Retry),
		log:        log,
	}
	rec := newReconciler(idx.store, previous, idx.config.BatchSize, log)
	rec.progress = func(processed int) {
		idx.filesIndexed.Store(int64(processed))
		if processed%idx.config.BatchSize == 0 {
			idx.updateProgress(summary)
		}
	}

	results := make(chan extraction, idx.config.ChannelBuffer)
	walk := &walkResult{}
	go p.run(ctx, roots, results, walk)

	rec.consume(ctx, results)

	summary.Candidates = len(walk.candidates)
	summary.Inserted = rec.summary.Inserted
	summary.Updated = rec.summary.Updated
	summary.Unchanged = rec.summary.Unchanged
	summary.Failed = rec.summary.Failed

	switch {
	case ctx.Err() != nil:
		summary.Cancelled = true
		err = ctx.Err()
		log.Info("Scan cancelled after %d files, skipping cleanup", rec.processed)
	case rec.flushErr != nil:
		err = rec.flushErr
		log.Error("Skipping cleanup after write failure: %v", err)
	case walk.err != nil:
		err = walk.err
		log.Error("Skipping cleanup after walk failure: %v", err)
	case walk.aborted:
		err = ErrWalkAborted
		log.Warn("Walk stopped by memory backpressure, skipping cleanup")
	default:
		if pruneErr := rec.prune(ctx, walk); pruneErr != nil {
			err = pruneErr
		}
		summary.Pruned = rec.summary.Pruned
	}

	storeCtx := context.WithoutCancel(ctx)
	if total, countErr := idx.store.Count(storeCtx); countErr == nil {
		summary.Total = total
		idx.knownRecords.Store(int64(total))
	} else {
		log.Warn("Failed to count records after scan: %v", countErr)
	}

	summary.Duration = time.Since(summary.StartedAt)
	idx.saveSummary(storeCtx, summary, log)
	idx.refreshStats(storeCtx)

	log.Info("Scan complete in %v: %d candidates, %d inserted, %d updated, %d unchanged, %d failed, %d pruned, %d total",
		summary.Duration.Round(time.Millisecond), summary.Candidates, summary.Inserted, summary.Updated,
		summary.Unchanged, summary.Failed, summary.Pruned, summary.Total)

	return summary, err
}

// cleanRoots makes roots absolute and drops empty entries, duplicates and
// roots nested inside another root, so no file is walked twice.
func cleanRoots(roots []string) []string {
	seen := make(map[string]bool, len(roots))
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" {
			continue
		}
		p, err := filepath.Abs(r)
		if err != nil {
			p = filepath.Clean(r)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		abs = append(abs, p)
	}

	out := abs[:0:0]
	for _, p := range abs {
		if !nestedIn(p, abs) {
			out = append(out, p)
		}
	}
	return out
}

// nestedIn reports whether path lies strictly below one of roots.
func nestedIn(path string, roots []string) bool {
	for _, r := range roots {
		if r != path && strings.HasPrefix(path, strings.TrimSuffix(r, string(filepath.Separator))+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (idx *Indexer) saveSummary(ctx context.Context, summary Summary, log *logging.Scoped) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Warn("Failed to encode scan summary: %v", err)
		return
	}
	if err := idx.store.SetMetadata(ctx, database.LastScanKey, string(data)); err != nil {
		log.Warn("Failed to persist scan summary: %v", err)
	}
}

// refreshStats recalculates the cached index statistics when the store
// supports them.
func (idx *Indexer) refreshStats(ctx context.Context) {
	ss, ok := idx.store.(statsStore)
	if !ok {
		return
	}
	stats, err := ss.CalculateStats(ctx)
	if err != nil {
		logging.Warn("Failed to calculate index stats: %v", err)
		return
	}

	idx.indexMu.Lock()
	if idx.lastSummary != nil {
		stats.LastIndexed = idx.lastIndexTime
		stats.IndexDuration = idx.lastSummary.Duration.String()
	}
	idx.indexMu.Unlock()

	ss.UpdateStats(stats)
}

func (idx *Indexer) recordRunMetrics(summary Summary, err error) {
	result := "success"
	switch {
	case summary.Cancelled:
		result = "cancelled"
	case err != nil:
		result = "error"
	}
	metrics.IndexerRunsTotal.WithLabelValues(result).Inc()
	metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexerLastRunDuration.Set(summary.Duration.Seconds())

	for outcome, n := range map[string]int{
		"inserted":  summary.Inserted,
		"updated":   summary.Updated,
		"unchanged": summary.Unchanged,
		"failed":    summary.Failed,
		"pruned":    summary.Pruned,
	} {
		metrics.IndexerLastRunFiles.WithLabelValues(outcome).Set(float64(n))
	}
}

// tryStartIndexing attempts to start indexing, returns false if already in progress.
func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

// finishIndexing marks indexing as complete.
func (idx *Indexer) finishIndexing(summary Summary, err error) {
	idx.indexMu.Lock()
	idx.isIndexing = false
	idx.lastError = err
	if !summary.Cancelled {
		idx.initialIndexComplete = true
		idx.lastIndexTime = time.Now()
		s := summary
		idx.lastSummary = &s
	}
	callback := idx.onIndexComplete
	idx.indexMu.Unlock()

	idx.indexProgress.Store(IndexProgress{
		ScanID:         summary.ScanID,
		FilesProcessed: idx.filesIndexed.Load(),
	})

	if callback != nil && !summary.Cancelled {
		callback(summary)
	}
}

// abortIndexing releases the scan guard after a panic.
func (idx *Indexer) abortIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	idx.isIndexing = false
	idx.lastError = errors.New("scan aborted")
}

// resetCounters resets the indexing counters.
func (idx *Indexer) resetCounters(summary Summary) {
	idx.filesIndexed.Store(0)
	idx.updateProgress(summary)
}

// updateProgress updates the indexing progress.
func (idx *Indexer) updateProgress(summary Summary) {
	idx.indexProgress.Store(IndexProgress{
		ScanID:         summary.ScanID,
		FilesProcessed: idx.filesIndexed.Load(),
		IsIndexing:     true,
		StartedAt:      summary.StartedAt,
	})
}

// getProgress safely retrieves the current IndexProgress.
func (idx *Indexer) getProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

// IsReady returns true if the server is ready to accept traffic.
func (idx *Indexer) IsReady() bool {
	if idx.knownRecords.Load() >= minFilesForReady || idx.filesIndexed.Load() >= minFilesForReady {
		return true
	}

	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.initialIndexComplete
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	ready := idx.IsReady()

	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	status := HealthStatus{
		Ready:        ready,
		Indexing:     idx.isIndexing,
		StartTime:    idx.startTime,
		Uptime:       time.Since(idx.startTime).String(),
		LastIndexed:  idx.lastIndexTime,
		FilesIndexed: idx.knownRecords.Load(),
		LastScan:     idx.lastSummary,
	}

	if idx.isIndexing {
		progress := idx.getProgress()
		status.IndexProgress = &progress
	}

	if idx.lastError != nil {
		status.LastError = idx.lastError.Error()
	}

	return status
}

// IsIndexing returns whether a scan is currently in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns the time of the last completed scan.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// LastSummary returns the summary of the last completed scan of this
// process, or nil.
func (idx *Indexer) LastSummary() *Summary {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	if idx.lastSummary == nil {
		return nil
	}
	s := *idx.lastSummary
	return &s
}

// GetProgress returns the current scan progress.
func (idx *Indexer) GetProgress() IndexProgress {
	return idx.getProgress()
}
