package metrics

import (
	"time"

	"photo-index/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current index statistics
type Stats struct {
	TotalEntries   int
	DeletedEntries int
	WithFaces      int
	Rotated        int
	Geocoded       int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	StoreEntries.WithLabelValues("total").Set(float64(stats.TotalEntries))
	StoreEntries.WithLabelValues("deleted").Set(float64(stats.DeletedEntries))
	StoreEntries.WithLabelValues("with_faces").Set(float64(stats.WithFaces))
	StoreEntries.WithLabelValues("rotated").Set(float64(stats.Rotated))
	StoreEntries.WithLabelValues("geocoded").Set(float64(stats.Geocoded))

	logging.Debug("Metrics collected: entries=%d, deleted=%d, faces=%d, rotated=%d, geocoded=%d",
		stats.TotalEntries, stats.DeletedEntries, stats.WithFaces, stats.Rotated, stats.Geocoded)
}
