package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"media-calendar/internal/database"
	"media-calendar/internal/filesystem"
	"media-calendar/internal/metadata"
)

// memStore is an in-memory Store.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*database.Record
	meta      map[string]string
	nextID    int64
	saveSizes []int
	deletes   int
	loads     int
	failSave  error
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]*database.Record),
		meta:    make(map[string]string),
	}
}

func (m *memStore) LoadRecords(context.Context) (map[string]*database.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	out := make(map[string]*database.Record, len(m.records))
	for k, v := range m.records {
		c := *v
		out[k] = &c
	}
	return out, nil
}

func (m *memStore) SaveRecords(_ context.Context, records []*database.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.saveSizes = append(m.saveSizes, len(records))
	for _, r := range records {
		r.SetCapture(r.CapturedAt)
		if r.ID == 0 {
			m.nextID++
			r.ID = m.nextID
		}
		c := *r
		m.records[r.FilePath] = &c
	}
	return nil
}

func (m *memStore) DeleteByPaths(_ context.Context, paths []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	var n int64
	for _, p := range paths {
		if _, ok := m.records[p]; ok {
			delete(m.records, p)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *memStore) SetMetadata(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[key] = value
	return nil
}

func (m *memStore) get(path string) *database.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[path]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (m *memStore) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.records {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// tagMap serves date tags keyed by file base name.
type tagMap map[string]metadata.DateTags

func (m tagMap) ReadDateTags(path string) (metadata.DateTags, error) {
	tags, ok := m[filepath.Base(path)]
	if !ok {
		return metadata.DateTags{}, errors.New("no exif data")
	}
	return tags, nil
}

// countingExtractor records every Extract call.
type countingExtractor struct {
	inner Extractor

	mu    sync.Mutex
	calls map[string]int
	panic map[string]bool
	block chan struct{}
}

func newCountingExtractor(tags tagMap) *countingExtractor {
	return &countingExtractor{
		inner: metadata.NewWithReader(tags),
		calls: make(map[string]int),
		panic: make(map[string]bool),
	}
}

func (c *countingExtractor) Extract(path string, modTime time.Time) metadata.Result {
	c.mu.Lock()
	c.calls[filepath.Base(path)]++
	shouldPanic := c.panic[filepath.Base(path)]
	block := c.block
	c.mu.Unlock()

	if block != nil {
		<-block
	}
	if shouldPanic {
		panic("corrupt file")
	}
	return c.inner.Extract(path, modTime)
}

func (c *countingExtractor) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingExtractor) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *countingExtractor) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[string]int)
}

// writeMedia creates a file with the given modification time.
func writeMedia(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("media:"+name), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() PipelineConfig {
	return PipelineConfig{
		NumWorkers:    4,
		BatchSize:     500,
		ChannelBuffer: 16,
		SkipHidden:    true,
		Retry:         filesystem.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}
}

func mustScan(t *testing.T, idx *Indexer) Summary {
	t.Helper()
	summary, err := idx.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return summary
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func removeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
}
