package database

import (
	"encoding/hex"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"media-calendar/internal/mediatypes"
)

// Record is one indexed media file.
type Record struct {
	ID                 int64                 `json:"id"`
	FilePath           string                `json:"filePath"`
	FileName           string                `json:"fileName"`
	FileHash           string                `json:"fileHash"`
	CapturedAt         time.Time             `json:"capturedAt"`
	Year               int                   `json:"year"`
	Month              int                   `json:"month"`
	Day                int                   `json:"day"`
	DateSource         mediatypes.DateSource `json:"dateSource"`
	Kind               mediatypes.Kind       `json:"kind"`
	FileSize           int64                 `json:"fileSize"`
	FileModTime        time.Time             `json:"fileModTime"`
	IndexedAt          time.Time             `json:"indexedAt"`
	CompanionVideoPath string                `json:"companionVideoPath,omitempty"`
}

// Capture times are stored as unix nanoseconds.
var (
	minCapture = time.Unix(0, math.MinInt64)
	maxCapture = time.Unix(0, math.MaxInt64)
)

// SetCapture sets CapturedAt and the derived calendar fields. The timestamp
// is clamped to the storable range and normalized to the local time zone,
// so the calendar fields survive a store round trip.
func (r *Record) SetCapture(t time.Time) {
	switch {
	case t.Before(minCapture):
		t = minCapture
	case t.After(maxCapture):
		t = maxCapture
	}
	t = t.In(time.Local)
	r.CapturedAt = t
	r.Year = t.Year()
	r.Month = int(t.Month())
	r.Day = t.Day()
}

// SetFile sets the path-derived and fingerprint fields.
func (r *Record) SetFile(path string, size int64, modTime time.Time) {
	r.FilePath = path
	r.FileName = filepath.Base(path)
	r.FileSize = size
	r.FileModTime = modTime
	r.FileHash = FileHash(path, size, modTime)
}

// FileHash returns the content identifier of a file: the hex BLAKE2b-256 of
// its path, size and modification time.
func FileHash(path string, size int64, modTime time.Time) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())))
	return hex.EncodeToString(sum[:])
}

// DayGroup is the records of one calendar day in a single year.
type DayGroup struct {
	Year    int      `json:"year"`
	Records []Record `json:"records"`
}

// IndexStats summarizes the index contents.
type IndexStats struct {
	TotalRecords  int            `json:"totalRecords"`
	Photos        int            `json:"photos"`
	Videos        int            `json:"videos"`
	Companions    int            `json:"companions"`
	Years         int            `json:"years"`
	OldestYear    int            `json:"oldestYear,omitempty"`
	NewestYear    int            `json:"newestYear,omitempty"`
	BySource      map[string]int `json:"bySource"`
	LastIndexed   time.Time      `json:"lastIndexed"`
	IndexDuration string         `json:"indexDuration"`
}

// ScanSummary is the outcome of one indexing scan.
type ScanSummary struct {
	ScanID     string        `json:"scanId"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Roots      []string      `json:"roots"`
	Candidates int           `json:"candidates"`
	Inserted   int           `json:"inserted"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Failed     int           `json:"failed"`
	Pruned     int           `json:"pruned"`
	Total      int           `json:"total"`
	Cancelled  bool          `json:"cancelled,omitempty"`
}
