package handlers

import (
	"context"
	"time"

	"media-calendar/internal/database"
	"media-calendar/internal/indexer"
)

// RecordStore is the read side of the index. *database.Database implements it.
type RecordStore interface {
	ListByDay(ctx context.Context, month, day int) ([]database.DayGroup, error)
	GetRecordByHash(ctx context.Context, hash string) (*database.Record, error)
	GetStats() database.IndexStats
	GetLastScan(ctx context.Context) (*database.ScanSummary, error)
}

// IndexStatus reports indexer health. *indexer.Indexer implements it.
type IndexStatus interface {
	IsReady() bool
	GetHealthStatus() indexer.HealthStatus
}

// ScanTrigger requests an immediate scan. *indexer.Scheduler implements it.
type ScanTrigger interface {
	Trigger() error
}

// Handlers serves the JSON API.
type Handlers struct {
	db      RecordStore
	indexer IndexStatus
	trigger ScanTrigger
	now     func() time.Time
}

// New creates the API handlers.
func New(db RecordStore, idx IndexStatus, trigger ScanTrigger) *Handlers {
	return &Handlers{
		db:      db,
		indexer: idx,
		trigger: trigger,
		now:     time.Now,
	}
}
