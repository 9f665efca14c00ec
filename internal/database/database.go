package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-calendar/internal/logging"
	"media-calendar/internal/mediatypes"
	"media-calendar/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// deleteChunkSize bounds the number of bound parameters per DELETE statement.
const deleteChunkSize = 500

// Database manages all database operations for the media index.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   IndexStats
	statsMu sync.RWMutex
}

// New creates a new Database instance.
// dbPath is the full path to the database FILE (e.g., "/database/media.db");
// its parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS media_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		captured_at INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		date_source TEXT NOT NULL,
		media_kind TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		file_mod_time INTEGER NOT NULL,
		indexed_at INTEGER NOT NULL,
		companion_video_path TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_media_records_month_day ON media_records(month, day);
	CREATE INDEX IF NOT EXISTS idx_media_records_file_hash ON media_records(file_hash);
	CREATE INDEX IF NOT EXISTS idx_media_records_captured_at ON media_records(captured_at);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch starts a transaction for batch operations.
// The caller is responsible for calling EndBatch when done.
func (d *Database) BeginBatch(ctx context.Context) (*sql.Tx, time.Time, error) {
	start := time.Now()
	tx, err := d.db.BeginTx(ctx, nil)
	return tx, start, err
}

// EndBatch commits or rolls back a transaction.
func (d *Database) EndBatch(tx *sql.Tx, start time.Time, err error) error {
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		rbErr := tx.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

const recordColumns = `id, file_path, file_name, file_hash, captured_at, year, month, day,
	date_source, media_kind, file_size, file_mod_time, indexed_at, companion_video_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		r                              Record
		capturedAt, modTime, indexedAt int64
		source, kind                   string
	)
	err := row.Scan(
		&r.ID, &r.FilePath, &r.FileName, &r.FileHash, &capturedAt,
		&r.Year, &r.Month, &r.Day, &source, &kind,
		&r.FileSize, &modTime, &indexedAt, &r.CompanionVideoPath,
	)
	if err != nil {
		return nil, err
	}
	r.CapturedAt = time.Unix(0, capturedAt).In(time.Local)
	r.FileModTime = time.Unix(0, modTime)
	r.IndexedAt = time.Unix(0, indexedAt)
	r.DateSource = mediatypes.DateSource(source)
	r.Kind = mediatypes.Kind(kind)
	return &r, nil
}

// LoadRecords returns every indexed record keyed by file path.
func (d *Database) LoadRecords(ctx context.Context) (records map[string]*Record, err error) {
	start := time.Now()
	defer func() { recordQuery("load_records", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM media_records")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records = make(map[string]*Record)
	for rows.Next() {
		r, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records[r.FilePath] = r
	}
	return records, rows.Err()
}

// SaveRecords writes a batch of records in one transaction. Records with a
// zero ID are inserted and receive their new ID; the others are updated in
// place. Derived calendar fields are recomputed from CapturedAt before each
// write.
func (d *Database) SaveRecords(ctx context.Context, records []*Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { recordQuery("save_records", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, txStart, err := d.BeginBatch(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var inserted, updated int
	for _, r := range records {
		r.SetCapture(r.CapturedAt)
		if r.FileName == "" {
			r.FileName = filepath.Base(r.FilePath)
		}

		if r.ID != 0 {
			var ok bool
			ok, err = updateRecord(ctx, tx, r)
			if err != nil {
				return d.EndBatch(tx, txStart, fmt.Errorf("failed to update %s: %w", r.FilePath, err))
			}
			if ok {
				updated++
				continue
			}
		}

		if err = insertRecord(ctx, tx, r); err != nil {
			return d.EndBatch(tx, txStart, fmt.Errorf("failed to insert %s: %w", r.FilePath, err))
		}
		inserted++
	}

	if inserted > 0 {
		metrics.DBRowsAffected.WithLabelValues("insert_record").Observe(float64(inserted))
	}
	if updated > 0 {
		metrics.DBRowsAffected.WithLabelValues("update_record").Observe(float64(updated))
	}
	return d.EndBatch(tx, txStart, nil)
}

// insertRecord inserts r and sets r.ID. A row already holding the same path
// is updated instead so a path never gets a second record.
func insertRecord(ctx context.Context, tx *sql.Tx, r *Record) error {
	query := `
	INSERT INTO media_records (file_path, file_name, file_hash, captured_at, year, month, day,
		date_source, media_kind, file_size, file_mod_time, indexed_at, companion_video_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(file_path) DO UPDATE SET
		file_name = excluded.file_name,
		file_hash = excluded.file_hash,
		captured_at = excluded.captured_at,
		year = excluded.year,
		month = excluded.month,
		day = excluded.day,
		date_source = excluded.date_source,
		media_kind = excluded.media_kind,
		file_size = excluded.file_size,
		file_mod_time = excluded.file_mod_time,
		indexed_at = excluded.indexed_at,
		companion_video_path = excluded.companion_video_path
	RETURNING id
	`
	return tx.QueryRowContext(ctx, query,
		r.FilePath, r.FileName, r.FileHash, r.CapturedAt.UnixNano(),
		r.Year, r.Month, r.Day, string(r.DateSource), string(r.Kind),
		r.FileSize, r.FileModTime.UnixNano(), r.IndexedAt.UnixNano(), r.CompanionVideoPath,
	).Scan(&r.ID)
}

// updateRecord rewrites the row with r.ID. It reports false when no such
// row exists.
func updateRecord(ctx context.Context, tx *sql.Tx, r *Record) (bool, error) {
	query := `
	UPDATE media_records SET
		file_path = ?, file_name = ?, file_hash = ?, captured_at = ?, year = ?, month = ?, day = ?,
		date_source = ?, media_kind = ?, file_size = ?, file_mod_time = ?, indexed_at = ?,
		companion_video_path = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		r.FilePath, r.FileName, r.FileHash, r.CapturedAt.UnixNano(),
		r.Year, r.Month, r.Day, string(r.DateSource), string(r.Kind),
		r.FileSize, r.FileModTime.UnixNano(), r.IndexedAt.UnixNano(), r.CompanionVideoPath,
		r.ID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByPaths removes the records of paths in one transaction and returns
// the number of rows deleted.
func (d *Database) DeleteByPaths(ctx context.Context, paths []string) (deleted int64, err error) {
	if len(paths) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { recordQuery("delete_by_paths", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, txStart, err := d.BeginBatch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := 0; i < len(paths); i += deleteChunkSize {
		end := min(i+deleteChunkSize, len(paths))
		chunk := paths[i:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for j, p := range chunk {
			args[j] = p
		}

		result, execErr := tx.ExecContext(ctx,
			"DELETE FROM media_records WHERE file_path IN ("+placeholders+")", args...)
		if execErr != nil {
			return 0, d.EndBatch(tx, txStart, fmt.Errorf("failed to delete records: %w", execErr))
		}
		n, _ := result.RowsAffected()
		deleted += n
	}

	if err = d.EndBatch(tx, txStart, nil); err != nil {
		return 0, err
	}
	if deleted > 0 {
		metrics.DBRowsAffected.WithLabelValues("delete_records").Observe(float64(deleted))
	}
	return deleted, nil
}

// Count returns the number of indexed records.
func (d *Database) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { recordQuery("count", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_records").Scan(&n)
	return n, err
}

// UpdateStats updates the cached statistics.
func (d *Database) UpdateStats(stats IndexStats) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats = stats
}

// GetStats returns the cached index statistics.
func (d *Database) GetStats() IndexStats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.stats
}

// Vacuum optimizes the database.
func (d *Database) Vacuum(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("vacuum", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "VACUUM")
	return err
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection and file size metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))

	for label, suffix := range map[string]string{"main": "", "wal": "-wal", "shm": "-shm"} {
		if info, err := os.Stat(d.dbPath + suffix); err == nil {
			metrics.DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
		} else {
			metrics.DBSizeBytes.WithLabelValues(label).Set(0)
		}
	}
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	logging.Debug("Database directory is writable")

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		path := dbPath + suffix
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("%s file exists: %s (mode: %v, size: %d bytes)", strings.ToUpper(suffix[1:]), path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("%s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
			if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
				logging.Error("Failed to fix permissions on %s: %v", path, chmodErr)
			} else {
				logging.Info("Fixed permissions on %s", path)
			}
		}
	}

	return nil
}
