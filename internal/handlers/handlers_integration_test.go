package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"media-calendar/internal/database"
	"media-calendar/internal/mediatypes"
)

func TestDayAndMediaWithSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var records []*database.Record
	for i, year := range []int{2015, 2020, 2020} {
		r := &database.Record{Kind: mediatypes.KindPhoto, DateSource: mediatypes.SourceExifOriginal, IndexedAt: time.Now()}
		r.SetFile(filepath.Join("/media", "photo"+string(rune('a'+i))+".jpg"), 10, time.Now())
		r.SetCapture(time.Date(year, 12, 25, 9+i, 0, 0, 0, time.Local))
		records = append(records, r)
	}
	if err := db.SaveRecords(ctx, records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	h := New(db, &mockIndexer{}, &mockTrigger{})
	router := mux.NewRouter()
	router.HandleFunc("/api/days/{month}/{day}", h.GetDay).Methods("GET")
	router.HandleFunc("/api/media/{hash}", h.GetMedia).Methods("GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/days/12/25", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var day DayResponse
	decode(t, rec, &day)
	if day.Total != 3 || len(day.Years) != 2 || day.Years[0].Year != 2020 || len(day.Years[0].Records) != 2 {
		t.Errorf("unexpected day response: %+v", day)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/media/"+records[0].FileHash, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("media status = %d", rec.Code)
	}
	var got database.Record
	decode(t, rec, &got)
	if got.FilePath != records[0].FilePath {
		t.Errorf("record path = %s", got.FilePath)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/media/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown hash status = %d, want 404", rec.Code)
	}
}
