package metrics

import (
	"sync"
	"time"

	"media-calendar/internal/logging"
)

// StatsProvider supplies the index statistics the collector publishes.
type StatsProvider interface {
	GetStats() Stats
}

// Stats is the index snapshot behind the index gauges.
type Stats struct {
	TotalRecords int
	Photos       int
	Videos       int
	Companions   int
	Years        int
	BySource     map[string]int
}

// Collector refreshes the index gauges on a fixed interval. The first
// refresh happens as soon as it starts.
type Collector struct {
	provider StatsProvider
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewCollector returns a collector that has not been started.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop.
func (c *Collector) Start() {
	go c.loop()
}

// Stop ends the refresh loop and waits for an in-flight refresh, so the
// provider's backing store can be closed right after. It must only be
// called after Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Collector) loop() {
	defer close(c.done)
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}
	publish(c.provider.GetStats())
}

// publish copies a stats snapshot into the index gauges. Sources missing
// from the snapshot are reset to zero.
func publish(stats Stats) {
	IndexRecordsTotal.WithLabelValues("photo").Set(float64(stats.Photos))
	IndexRecordsTotal.WithLabelValues("video").Set(float64(stats.Videos))
	IndexCompanionsTotal.Set(float64(stats.Companions))
	IndexYearsTotal.Set(float64(stats.Years))
	for _, source := range dateSources {
		IndexRecordsBySource.WithLabelValues(source).Set(float64(stats.BySource[source]))
	}

	logging.Debug("Index gauges refreshed: %d records (%d photos, %d videos, %d companions)",
		stats.TotalRecords, stats.Photos, stats.Videos, stats.Companions)
}
