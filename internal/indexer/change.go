package indexer

import (
	"time"

	"media-calendar/internal/database"
)

// NeedsReindex reports whether a file must be re-extracted. It is false only
// when the file has a record whose size and modification time both match.
func NeedsReindex(existing *database.Record, size int64, modTime time.Time) bool {
	if existing == nil {
		return true
	}
	return existing.FileSize != size || !existing.FileModTime.Equal(modTime)
}
