package indexer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"media-calendar/internal/database"
	"media-calendar/internal/logging"
	"media-calendar/internal/metrics"
)

// pendingRecord is a record waiting in the current batch.
type pendingRecord struct {
	record *database.Record
	isNew  bool
}

// reconciler is the single consumer of extraction results and the only
// writer to the store during a scan.
type reconciler struct {
	store     Store
	previous  map[string]*database.Record
	batchSize int
	log       *logging.Scoped
	now       func() time.Time
	progress  func(processed int)

	batch     []pendingRecord
	processed int
	summary   Summary
	flushErr  error
}

func newReconciler(store Store, previous map[string]*database.Record, batchSize int, log *logging.Scoped) *reconciler {
	return &reconciler{
		store:     store,
		previous:  previous,
		batchSize: batchSize,
		log:       log,
		now:       time.Now,
		batch:     make([]pendingRecord, 0, batchSize),
	}
}

// writeContext returns ctx, or a context without its cancellation once ctx
// is done so already-extracted work still reaches the store.
func writeContext(ctx context.Context) context.Context {
	if ctx.Err() != nil {
		return context.WithoutCancel(ctx)
	}
	return ctx
}

// consume drains results until the channel is closed, flushing after every
// batchSize processed items and once more at the end. Unchanged and failed
// items count toward the threshold even though they add nothing to write.
func (r *reconciler) consume(ctx context.Context, results <-chan extraction) {
	for e := range results {
		r.apply(e)
		r.processed++

		if r.processed%r.batchSize == 0 {
			r.flush(writeContext(ctx))
		}
		if r.progress != nil {
			r.progress(r.processed)
		}
	}
	r.flush(writeContext(ctx))
}

func (r *reconciler) apply(e extraction) {
	prev := r.previous[e.path]

	switch e.outcome {
	case outcomeFailed:
		r.summary.Failed++
		metrics.IndexerFilesProcessed.WithLabelValues("failed").Inc()
		r.log.Warn("Failed to index %s: %v", e.path, e.err)
		return

	case outcomeUnchanged:
		r.summary.Unchanged++
		metrics.IndexerFilesProcessed.WithLabelValues("unchanged").Inc()
		return

	case outcomeRelinked:
		if prev == nil {
			return
		}
		rec := *prev
		rec.CompanionVideoPath = e.companion
		rec.IndexedAt = r.now()
		r.batch = append(r.batch, pendingRecord{record: &rec})
		return
	}

	rec := &database.Record{
		DateSource:         e.result.Source,
		Kind:               e.result.Kind,
		IndexedAt:          r.now(),
		CompanionVideoPath: e.companion,
	}
	rec.SetFile(e.path, e.size, e.modTime)
	rec.SetCapture(e.result.CapturedAt)
	if prev != nil {
		rec.ID = prev.ID
	}

	metrics.IndexerExtractionsTotal.WithLabelValues(string(e.result.Source)).Inc()
	r.batch = append(r.batch, pendingRecord{record: rec, isNew: prev == nil})
}

// flush writes the current batch in one transaction. A failed batch is
// logged and remembered; its files keep their previous records.
func (r *reconciler) flush(ctx context.Context) {
	if len(r.batch) == 0 {
		return
	}

	records := make([]*database.Record, len(r.batch))
	for i, p := range r.batch {
		records[i] = p.record
	}

	if err := r.store.SaveRecords(ctx, records); err != nil {
		r.log.Error("Failed to write batch of %d records: %v", len(records), err)
		r.summary.Failed += len(records)
		metrics.IndexerFilesProcessed.WithLabelValues("failed").Add(float64(len(records)))
		if r.flushErr == nil {
			r.flushErr = fmt.Errorf("failed to write batch: %w", err)
		}
	} else {
		for _, p := range r.batch {
			if p.isNew {
				r.summary.Inserted++
				metrics.IndexerFilesProcessed.WithLabelValues("inserted").Inc()
			} else {
				r.summary.Updated++
				metrics.IndexerFilesProcessed.WithLabelValues("updated").Inc()
			}
		}
		metrics.IndexerBatchFlushes.Inc()
		r.log.Debug("Wrote batch of %d records (%d processed so far)", len(records), r.processed)
	}

	r.batch = r.batch[:0]
}

// stalePaths returns the previously indexed paths the walk no longer
// observed, excluding paths under roots or directories it could not list.
func stalePaths(previous map[string]*database.Record, walk *walkResult) []string {
	var stale []string
	for path := range previous {
		if _, ok := walk.candidates[path]; ok {
			continue
		}
		if walk.covers(path) {
			continue
		}
		stale = append(stale, path)
	}
	sort.Strings(stale)
	return stale
}

// prune deletes the stale records in one store call.
func (r *reconciler) prune(ctx context.Context, walk *walkResult) error {
	stale := stalePaths(r.previous, walk)
	if len(stale) == 0 {
		return nil
	}

	deleted, err := r.store.DeleteByPaths(writeContext(ctx), stale)
	if err != nil {
		return fmt.Errorf("failed to prune %d stale records: %w", len(stale), err)
	}

	r.summary.Pruned = int(deleted)
	metrics.IndexerFilesProcessed.WithLabelValues("pruned").Add(float64(deleted))
	r.log.Info("Removed %d missing files from index", deleted)
	return nil
}
