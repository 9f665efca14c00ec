package database

import (
	"context"
	"fmt"
	"time"

	"media-calendar/internal/mediatypes"
)

// ListByDay returns the records captured on month/day of any year, grouped
// by year with the newest year first. Records within a year are ordered by
// capture time.
func (d *Database) ListByDay(ctx context.Context, month, day int) (groups []DayGroup, err error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("invalid calendar day %02d-%02d", month, day)
	}

	start := time.Now()
	defer func() { recordQuery("list_by_day", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM media_records
		WHERE month = ? AND day = ?
		ORDER BY year DESC, captured_at ASC, file_path ASC
	`, month, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups = []DayGroup{}
	for rows.Next() {
		r, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if n := len(groups); n == 0 || groups[n-1].Year != r.Year {
			groups = append(groups, DayGroup{Year: r.Year})
		}
		g := &groups[len(groups)-1]
		g.Records = append(g.Records, *r)
	}
	return groups, rows.Err()
}

// GetRecordByPath retrieves a single record by file path.
func (d *Database) GetRecordByPath(ctx context.Context, path string) (r *Record, err error) {
	start := time.Now()
	defer func() { recordQuery("get_record_by_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return scanRecord(d.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM media_records WHERE file_path = ?", path))
}

// GetRecordByHash retrieves a single record by its content identifier.
func (d *Database) GetRecordByHash(ctx context.Context, hash string) (r *Record, err error) {
	start := time.Now()
	defer func() { recordQuery("get_record_by_hash", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return scanRecord(d.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM media_records WHERE file_hash = ? LIMIT 1", hash))
}

// CalculateStats calculates current index statistics
func (d *Database) CalculateStats(ctx context.Context) (stats IndexStats, err error) {
	start := time.Now()
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM media_records", &stats.TotalRecords},
		{"SELECT COUNT(*) FROM media_records WHERE media_kind = '" + string(mediatypes.KindPhoto) + "'", &stats.Photos},
		{"SELECT COUNT(*) FROM media_records WHERE media_kind = '" + string(mediatypes.KindVideo) + "'", &stats.Videos},
		{"SELECT COUNT(*) FROM media_records WHERE companion_video_path != ''", &stats.Companions},
		{"SELECT COUNT(DISTINCT year) FROM media_records", &stats.Years},
		{"SELECT COALESCE(MIN(year), 0) FROM media_records", &stats.OldestYear},
		{"SELECT COALESCE(MAX(year), 0) FROM media_records", &stats.NewestYear},
	}

	for _, q := range queries {
		if err = d.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return stats, err
		}
	}

	rows, err := d.db.QueryContext(ctx, "SELECT date_source, COUNT(*) FROM media_records GROUP BY date_source")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.BySource = make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err = rows.Scan(&source, &n); err != nil {
			return stats, err
		}
		stats.BySource[source] = n
	}
	err = rows.Err()
	return stats, err
}
