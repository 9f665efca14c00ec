package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"media-calendar/internal/database"
	"media-calendar/internal/indexer"
	"media-calendar/internal/mediatypes"
	"media-calendar/internal/metadata"
	"media-calendar/internal/startup"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "scan", "status", "vacuum":
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(os.Stderr)
		os.Exit(1)
	}

	// Cancel on interrupt; a cancelled scan still writes what it extracted
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}

	db, err := database.New(ctx, filepath.Join(databaseDir, "media.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	out := newOutput(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))

	var ok bool
	switch command {
	case "scan":
		ok = runScan(ctx, db, envDirectories(), out)
	case "status":
		ok = showStatus(ctx, db, out)
	case "vacuum":
		ok = runVacuum(ctx, db, out)
	}
	if !ok {
		os.Exit(1)
	}
}

// envDirectories resolves roots the same way the server does.
func envDirectories() *startup.DirectorySource {
	dirs := os.Getenv("MEDIA_DIRS")
	if dirs == "" {
		dirs = "/media"
	}
	return startup.NewDirectorySource(startup.SplitDirs(dirs), startup.DefaultRescanInterval, os.Getenv("CONFIG_FILE"))
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character that is not alphanumeric, a hyphen, or an underscore becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "media-calendar index maintenance")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: indexctl <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan    - Run one scan of the media roots now")
	fmt.Fprintln(w, "  status  - Show index statistics and the last scan")
	fmt.Fprintln(w, "  vacuum  - Compact the database file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Fprintln(w, "  MEDIA_DIRS   - Media roots separated by ';' or ',' (default: /media)")
	fmt.Fprintln(w, "  CONFIG_FILE  - Optional YAML file overriding MEDIA_DIRS")
}

// output prints either aligned tables for a terminal or JSON for pipes.
type output struct {
	w     io.Writer
	table bool
}

func newOutput(w io.Writer, table bool) *output {
	return &output{w: w, table: table}
}

// print writes v as JSON, or rows as an aligned key/value table.
func (o *output) print(v interface{}, rows [][2]string) error {
	if !o.table {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func summaryRows(s indexer.Summary) [][2]string {
	rows := [][2]string{
		{"Scan", s.ScanID},
		{"Started", s.StartedAt.Format(time.RFC1123)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
		{"Roots", strings.Join(s.Roots, ", ")},
		{"Candidates", fmt.Sprint(s.Candidates)},
		{"Inserted", fmt.Sprint(s.Inserted)},
		{"Updated", fmt.Sprint(s.Updated)},
		{"Unchanged", fmt.Sprint(s.Unchanged)},
		{"Failed", fmt.Sprint(s.Failed)},
		{"Pruned", fmt.Sprint(s.Pruned)},
		{"Total", fmt.Sprint(s.Total)},
	}
	if s.Cancelled {
		rows = append(rows, [2]string{"Cancelled", "yes"})
	}
	return rows
}

func runScan(ctx context.Context, db *database.Database, roots indexer.RootsProvider, out *output) bool {
	idx := indexer.New(db, metadata.New(), roots, indexer.DefaultPipelineConfig())

	summary, err := idx.Scan(ctx)
	if perr := out.print(summary, summaryRows(summary)); perr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		return false
	}
	return true
}

// statusReport is the JSON form of the status command.
type statusReport struct {
	Stats    database.IndexStats   `json:"stats"`
	LastScan *database.ScanSummary `json:"lastScan,omitempty"`
}

func showStatus(ctx context.Context, db *database.Database, out *output) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats, err := db.CalculateStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read index statistics: %v\n", err)
		return false
	}
	last, err := db.GetLastScan(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to read last scan: %v\n", err)
	}

	rows := [][2]string{
		{"Records", fmt.Sprint(stats.TotalRecords)},
		{"Photos", fmt.Sprint(stats.Photos)},
		{"Videos", fmt.Sprint(stats.Videos)},
		{"Live Photos", fmt.Sprint(stats.Companions)},
		{"Years", yearRange(stats)},
	}
	for _, source := range []mediatypes.DateSource{mediatypes.SourceExifOriginal, mediatypes.SourceExifFallback, mediatypes.SourceFilesystem} {
		rows = append(rows, [2]string{"Dated by " + string(source), fmt.Sprint(stats.BySource[string(source)])})
	}
	if last != nil {
		rows = append(rows, [2]string{"Last scan", last.StartedAt.Format(time.RFC1123)})
		rows = append(rows, summaryRows(*last)[4:]...)
	} else {
		rows = append(rows, [2]string{"Last scan", "never"})
	}

	if err := out.print(statusReport{Stats: stats, LastScan: last}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	return true
}

func yearRange(stats database.IndexStats) string {
	if stats.Years == 0 {
		return "none"
	}
	return fmt.Sprintf("%d (%d-%d)", stats.Years, stats.OldestYear, stats.NewestYear)
}

func runVacuum(ctx context.Context, db *database.Database, out *output) bool {
	start := time.Now()
	if err := db.Vacuum(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: vacuum failed: %v\n", err)
		return false
	}
	d := time.Since(start).Round(time.Millisecond)
	if err := out.print(map[string]string{"vacuum": "ok", "duration": d.String()},
		[][2]string{{"Vacuum", "ok"}, {"Duration", d.String()}}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	return true
}
