package metrics

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
	calls atomic.Int32
}

func (m *mockStatsProvider) GetStats() Stats {
	m.calls.Add(1)
	return m.stats
}

func TestCollectorCollect(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		TotalRecords: 12,
		Photos:       9,
		Videos:       3,
		Companions:   2,
		Years:        4,
		BySource:     map[string]int{"exif-original": 7, "filesystem": 5},
	}}

	c := NewCollector(provider, time.Hour)
	c.collect()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"photos", testutil.ToFloat64(IndexRecordsTotal.WithLabelValues("photo")), 9},
		{"videos", testutil.ToFloat64(IndexRecordsTotal.WithLabelValues("video")), 3},
		{"companions", testutil.ToFloat64(IndexCompanionsTotal), 2},
		{"years", testutil.ToFloat64(IndexYearsTotal), 4},
		{"exif-original", testutil.ToFloat64(IndexRecordsBySource.WithLabelValues("exif-original")), 7},
		{"exif-fallback", testutil.ToFloat64(IndexRecordsBySource.WithLabelValues("exif-fallback")), 0},
		{"filesystem", testutil.ToFloat64(IndexRecordsBySource.WithLabelValues("filesystem")), 5},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.calls.Load() < 2 {
		t.Errorf("expected at least 2 collections, got %d", provider.calls.Load())
	}

	// Stop waits for the loop, so no refresh may start afterwards.
	after := provider.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if provider.calls.Load() != after {
		t.Error("collector kept refreshing after Stop returned")
	}
	c.Stop()
}
