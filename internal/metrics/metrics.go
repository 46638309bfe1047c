package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_browser_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scanner metrics
var (
	ScannerScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_scanner_scans_total",
			Help: "Total number of image directory scans",
		},
		[]string{"status"},
	)

	ScannerScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_browser_scanner_scan_duration_seconds",
			Help:    "Image directory scan duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ScannerImagesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_browser_scanner_images_returned",
			Help:    "Number of images returned per scan",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	ScannerWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_scanner_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	ScannerWatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_scanner_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"tier", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_browser_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tier"},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_thumbnail_cache_size_bytes",
			Help: "Total size of the thumbnail cache in bytes",
		},
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_thumbnail_cache_count",
			Help: "Number of thumbnails in the cache",
		},
	)
)

// Caption metrics
var (
	CaptionLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_caption_loads_total",
			Help: "Total number of caption sidecar lookups",
		},
		[]string{"status"}, // "found", "missing"
	)
)

// Gallery metrics
var (
	GalleryImagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_gallery_images_total",
			Help: "Number of images currently in the gallery directory",
		},
	)

	GalleryDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_gallery_deletes_total",
			Help: "Total number of image delete operations",
		},
		[]string{"status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_browser_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
