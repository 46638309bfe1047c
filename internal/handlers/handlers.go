package handlers

import (
	"image-browser/internal/gallery"
	"image-browser/internal/metrics"
	"image-browser/internal/startup"
	"image-browser/internal/web"
)

type Handlers struct {
	scanner  *gallery.Scanner
	captions *gallery.CaptionLoader
	thumbs   *gallery.ThumbnailCache
	renderer *web.Renderer
	imageDir string
	cacheDir string
}

func New(scanner *gallery.Scanner, captions *gallery.CaptionLoader, thumbs *gallery.ThumbnailCache, renderer *web.Renderer, config *startup.Config) *Handlers {
	return &Handlers{
		scanner:  scanner,
		captions: captions,
		thumbs:   thumbs,
		renderer: renderer,
		imageDir: config.ImageDir,
		cacheDir: config.CacheDir,
	}
}

// GetStats implements metrics.StatsProvider for the periodic collector.
func (h *Handlers) GetStats() metrics.Stats {
	size, count, err := h.thumbs.CacheSize()
	if err != nil {
		size, count = 0, 0
	}
	return metrics.Stats{
		TotalImages:     len(h.scanner.ListImages()),
		CacheSizeBytes:  size,
		CacheEntryCount: count,
	}
}
