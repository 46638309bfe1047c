package metrics

import (
	"time"

	"image-browser/internal/logging"
)

// StatsProvider supplies current gallery statistics for the collector.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current gallery statistics.
type Stats struct {
	TotalImages     int
	CacheSizeBytes  int64
	CacheEntryCount int
}

// Collector periodically collects and updates gallery gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
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

	GalleryImagesTotal.Set(float64(stats.TotalImages))
	ThumbnailCacheSize.Set(float64(stats.CacheSizeBytes))
	ThumbnailCacheCount.Set(float64(stats.CacheEntryCount))

	logging.Debug("Metrics collected: images=%d, cacheBytes=%d, cacheEntries=%d",
		stats.TotalImages, stats.CacheSizeBytes, stats.CacheEntryCount)
}
