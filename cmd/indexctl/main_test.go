package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"media-calendar/internal/database"
	"media-calendar/internal/indexer"
)

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scan", "scan"},
		{"re-index_2", "re-index_2"},
		{"rm -rf /", "rm_-rf__"},
		{"status\n\x1b[31m", "status___31m"},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.input); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, want := range []string{"scan", "status", "vacuum", "DATABASE_DIR", "MEDIA_DIRS"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage does not mention %q", want)
		}
	}
}

func TestOutputModes(t *testing.T) {
	summary := indexer.Summary{ScanID: "abc", Inserted: 3, Total: 3, Roots: []string{"/a", "/b"}}

	var jsonBuf bytes.Buffer
	if err := newOutput(&jsonBuf, false).print(summary, summaryRows(summary)); err != nil {
		t.Fatal(err)
	}
	var decoded indexer.Summary
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not decode: %v", err)
	}
	if decoded.ScanID != "abc" || decoded.Inserted != 3 {
		t.Errorf("decoded = %+v", decoded)
	}

	var tableBuf bytes.Buffer
	if err := newOutput(&tableBuf, true).print(summary, summaryRows(summary)); err != nil {
		t.Fatal(err)
	}
	table := tableBuf.String()
	if !strings.Contains(table, "Roots:") || !strings.Contains(table, "/a, /b") {
		t.Errorf("table output missing roots:\n%s", table)
	}
	if strings.Contains(table, "Cancelled") {
		t.Error("table should not show Cancelled for a complete scan")
	}
}

func TestSummaryRowsMarksCancelled(t *testing.T) {
	rows := summaryRows(indexer.Summary{Cancelled: true})
	if last := rows[len(rows)-1]; last[0] != "Cancelled" {
		t.Errorf("last row = %v", last)
	}
}

func TestYearRange(t *testing.T) {
	if got := yearRange(database.IndexStats{}); got != "none" {
		t.Errorf("empty = %q", got)
	}
	if got := yearRange(database.IndexStats{Years: 3, OldestYear: 2001, NewestYear: 2024}); got != "3 (2001-2024)" {
		t.Errorf("range = %q", got)
	}
}

func TestEnvDirectories(t *testing.T) {
	t.Setenv("MEDIA_DIRS", "/photos;/videos")
	t.Setenv("CONFIG_FILE", "")

	roots := envDirectories().Roots()
	if len(roots) != 2 || roots[0] != "/photos" || roots[1] != "/videos" {
		t.Errorf("roots = %v", roots)
	}
}

func TestScanStatusVacuumIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	root := t.TempDir()
	mtime := time.Date(2020, 5, 17, 12, 0, 0, 0, time.Local)
	for _, name := range []string{"a.mp4", "b.mkv"} {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if !runScan(ctx, db, indexer.StaticRoots{root}, newOutput(&buf, false)) {
		t.Fatal("runScan failed")
	}
	var summary indexer.Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("scan output: %v", err)
	}
	if summary.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", summary.Inserted)
	}

	buf.Reset()
	if !showStatus(ctx, db, newOutput(&buf, false)) {
		t.Fatal("showStatus failed")
	}
	var report statusReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("status output: %v", err)
	}
	if report.Stats.Videos != 2 || report.LastScan == nil || report.LastScan.ScanID != summary.ScanID {
		t.Errorf("report = %+v", report)
	}

	buf.Reset()
	if !runVacuum(ctx, db, newOutput(&buf, true)) {
		t.Fatal("runVacuum failed")
	}
	if !strings.Contains(buf.String(), "Vacuum:") {
		t.Errorf("vacuum output = %q", buf.String())
	}
}
