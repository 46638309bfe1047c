package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"image-browser/internal/logging"
	"image-browser/internal/metrics"

	"github.com/gorilla/mux"
)

// ServeImage serves an original image file verbatim.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if !validFilename(name) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.imageDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

// ServeThumbnail serves a cached thumbnail file verbatim. The cache only
// ever contains derived JPEGs; a miss here means the caller skipped the
// gallery page, so no on-demand generation happens.
func (h *Handlers) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	// Dot-prefixed names cover the generator's in-flight temp files,
	// which must never be observable mid-write.
	if !validFilename(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.cacheDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// Delete removes a source image and all of its cached thumbnail tiers.
// Responds 204 on success, 404 when the source is absent, 500 on a
// deletion I/O error.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if !validFilename(name) {
		metrics.GalleryDeletesTotal.WithLabelValues("not_found").Inc()
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.imageDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		metrics.GalleryDeletesTotal.WithLabelValues("not_found").Inc()
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if err := os.Remove(path); err != nil {
		logging.Error("failed to delete %s: %v", name, err)
		metrics.GalleryDeletesTotal.WithLabelValues("error").Inc()
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	if err := h.thumbs.Invalidate(name); err != nil {
		// The source is gone; stale cache entries are only wasted disk.
		logging.Warn("failed to invalidate thumbnails for %s: %v", name, err)
	}

	logging.Info("deleted %s", name)
	metrics.GalleryDeletesTotal.WithLabelValues("success").Inc()
	w.WriteHeader(http.StatusNoContent)
}
