package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		ScannerScansTotal.WithLabelValues(status)
	}

	tiers := []string{"small", "medium", "large"}
	thumbStatuses := []string{"success", "error_not_found", "error_decode", "error_encode", "error_cache"}
	for _, tier := range tiers {
		ThumbnailGenerationDuration.WithLabelValues(tier)
		for _, status := range thumbStatuses {
			ThumbnailGenerationsTotal.WithLabelValues(tier, status)
		}
	}

	for _, status := range []string{"found", "missing"} {
		CaptionLoadsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "not_found", "error"} {
		GalleryDeletesTotal.WithLabelValues(status)
	}

	for _, event := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		ScannerWatcherEventsTotal.WithLabelValues(event)
	}
}
