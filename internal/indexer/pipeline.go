package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"media-calendar/internal/database"
	"media-calendar/internal/filesystem"
	"media-calendar/internal/logging"
	"media-calendar/internal/mediatypes"
	"media-calendar/internal/metadata"
	"media-calendar/internal/metrics"
	"media-calendar/internal/workers"
)

// defaultMaxWorkers caps the GOMAXPROCS-derived worker count so NFS mounts
// are not flooded with concurrent reads. Extraction mostly waits on file
// reads, hence the I/O profile.
const defaultMaxWorkers = 8

// MemoryGate holds back the walker while memory is tight. WaitIfPaused
// returns false when the walk should stop.
type MemoryGate interface {
	WaitIfPaused(ctx context.Context) bool
}

// PipelineConfig configures the extraction pipeline
type PipelineConfig struct {
	// NumWorkers is the number of parallel extraction workers (0 = auto based on CPU)
	NumWorkers int
	// BatchSize is the number of results to collect before writing to the database
	BatchSize int
	// ChannelBuffer is the size of the results channel buffer
	ChannelBuffer int
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
	// Retry configures NFS retries for stat and readdir calls
	Retry filesystem.RetryConfig
	// Gate applies memory backpressure before each file is queued (optional)
	Gate MemoryGate
}

// DefaultPipelineConfig returns sensible defaults based on available resources.
// INDEX_WORKERS overrides the worker count.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		NumWorkers:    workers.Size(workers.IOBound, defaultMaxWorkers),
		BatchSize:     500,
		ChannelBuffer: 1000,
		SkipHidden:    true,
		Retry:         filesystem.DefaultRetryConfig(),
	}
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	d := DefaultPipelineConfig()
	if c.NumWorkers <= 0 {
		c.NumWorkers = d.NumWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.ChannelBuffer < 0 {
		c.ChannelBuffer = 0
	}
	if c.Retry == (filesystem.RetryConfig{}) {
		c.Retry = d.Retry
	}
	return c
}

// outcome is what a worker decided for one candidate file.
type outcome int

const (
	outcomeExtracted outcome = iota
	outcomeUnchanged
	outcomeRelinked
	outcomeFailed
)

// extraction is the result of processing one candidate file.
type extraction struct {
	path      string
	outcome   outcome
	size      int64
	modTime   time.Time
	result    metadata.Result
	companion string
	err       error
}

// walkResult is what the walker learned about the trees. It is written only
// by the producer goroutine and read after the results channel is closed.
type walkResult struct {
	candidates map[string]struct{}
	unobserved []string
	// aborted is set when the memory gate stopped the walk early.
	aborted bool
	// err is set when the walk itself failed.
	err error
}

// covers reports whether path lies in a root or directory the walk could
// not list.
func (w *walkResult) covers(path string) bool {
	for _, dir := range w.unobserved {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// pipeline walks the roots and extracts every candidate on a bounded
// worker pool.
type pipeline struct {
	config     PipelineConfig
	extractor  Extractor
	previous   map[string]*database.Record
	companions *companionResolver
	log        *logging.Scoped
}

// run walks roots, processes each candidate and sends one extraction per
// processed file to results. results is closed once every producer is done.
// A panic in the walk is recorded in walk.err; the jobs already queued
// still finish before results is closed.
func (p *pipeline) run(ctx context.Context, roots []string, results chan<- extraction, walk *walkResult) {
	walk.candidates = make(map[string]struct{})

	var g errgroup.Group
	g.SetLimit(p.config.NumWorkers)
	metrics.IndexerWorkers.Set(float64(p.config.NumWorkers))

	defer func() {
		if v := recover(); v != nil {
			walk.err = fmt.Errorf("walk panicked: %v", v)
			p.log.Error("Walk panicked, keeping all records: %v", v)
		}
		// Jobs never return errors; failures travel as extraction values.
		_ = g.Wait()
		close(results)
	}()

	submit := func(path string) {
		walk.candidates[path] = struct{}{}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results <- p.process(path)
			return nil
		})
	}

	for _, root := range roots {
		if ctx.Err() != nil || walk.aborted {
			break
		}
		p.walkRoot(ctx, root, walk, submit)
	}
}

func (p *pipeline) walkRoot(ctx context.Context, root string, walk *walkResult, submit func(string)) {
	info, err := filesystem.StatWithRetry(root, p.config.Retry)
	if err != nil {
		p.log.Warn("Media root %s is unreachable, keeping its records: %v", root, err)
		walk.unobserved = append(walk.unobserved, root)
		metrics.IndexerUnreachableDirs.Inc()
		return
	}
	if !info.IsDir() {
		p.log.Warn("Media root %s is not a directory, skipping", root)
		walk.unobserved = append(walk.unobserved, root)
		metrics.IndexerUnreachableDirs.Inc()
		return
	}

	p.walkDir(ctx, root, walk, submit)
}

func (p *pipeline) walkDir(ctx context.Context, dir string, walk *walkResult, submit func(string)) {
	if ctx.Err() != nil {
		return
	}

	entries, err := filesystem.ReadDirWithRetry(dir, p.config.Retry)
	if err != nil {
		p.log.Warn("Error listing directory %s, keeping its records: %v", dir, err)
		walk.unobserved = append(walk.unobserved, dir)
		metrics.IndexerUnreachableDirs.Inc()
		return
	}
	p.companions.prime(dir, entries)

	for _, entry := range entries {
		if ctx.Err() != nil || walk.aborted {
			return
		}

		name := entry.Name()
		if p.config.SkipHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			p.walkDir(ctx, path, walk, submit)
			continue
		}

		if !mediatypes.IsSupported(path) {
			continue
		}
		if mediatypes.IsLivePhotoCandidate(path) && p.companions.hasPhotoSibling(path) {
			p.log.Debug("Skipping Live-Photo companion %s", path)
			continue
		}

		if p.config.Gate != nil && !p.config.Gate.WaitIfPaused(ctx) {
			walk.aborted = true
			return
		}
		submit(path)
	}
}

// process runs change detection and, when needed, extraction for one file.
// It never panics; a panic inside the extractor becomes a failed extraction.
func (p *pipeline) process(path string) (e extraction) {
	defer func() {
		if r := recover(); r != nil {
			e = extraction{path: path, outcome: outcomeFailed, err: fmt.Errorf("extractor panic: %v", r)}
		}
	}()

	info, err := filesystem.StatWithRetry(path, p.config.Retry)
	if err != nil {
		return extraction{path: path, outcome: outcomeFailed, err: fmt.Errorf("stat: %w", err)}
	}

	existing := p.previous[path]
	if !NeedsReindex(existing, info.Size(), info.ModTime()) {
		if existing.Kind == mediatypes.KindPhoto {
			if companion := p.companions.findVideoCompanion(path); companion != existing.CompanionVideoPath {
				return extraction{path: path, outcome: outcomeRelinked, companion: companion}
			}
		}
		return extraction{path: path, outcome: outcomeUnchanged}
	}

	res := p.extractor.Extract(path, info.ModTime())
	e = extraction{
		path:    path,
		outcome: outcomeExtracted,
		size:    info.Size(),
		modTime: info.ModTime(),
		result:  res,
	}
	if res.Kind == mediatypes.KindPhoto {
		e.companion = p.companions.findVideoCompanion(path)
	}
	return e
}
