package metadata

import (
	"time"

	"media-calendar/internal/logging"
	"media-calendar/internal/mediatypes"
)

// Result is the outcome of extracting one file.
type Result struct {
	CapturedAt time.Time
	Source     mediatypes.DateSource
	Kind       mediatypes.Kind
}

// Extractor dates media files. It holds no per-file state and is safe for
// concurrent use.
type Extractor struct {
	tags TagReader
}

// New returns an Extractor backed by goexif.
func New() *Extractor {
	return NewWithReader(NewExifReader())
}

// NewWithReader returns an Extractor reading tags with r.
func NewWithReader(r TagReader) *Extractor {
	return &Extractor{tags: r}
}

// Extract returns the capture timestamp, its source and the media kind of
// path. modTime is the file's last-modified time, used as the final fallback.
func (e *Extractor) Extract(path string, modTime time.Time) Result {
	kind := mediatypes.KindOf(path)
	fallback := Result{CapturedAt: modTime, Source: mediatypes.SourceFilesystem, Kind: kind}

	if kind == mediatypes.KindVideo {
		return fallback
	}

	tags, err := e.tags.ReadDateTags(path)
	if err != nil {
		logging.Debug("No readable metadata in %s: %v", path, err)
		return fallback
	}

	if t, ok := ParseDate(tags.Original); ok {
		return Result{CapturedAt: t, Source: mediatypes.SourceExifOriginal, Kind: kind}
	}
	if t, ok := ParseDate(tags.Modified); ok {
		return Result{CapturedAt: t, Source: mediatypes.SourceExifFallback, Kind: kind}
	}
	return fallback
}
