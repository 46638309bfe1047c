package gallery

import (
	"strings"

	"image-browser/internal/logging"
	"image-browser/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the gallery directory with fsnotify and keeps the image
// count gauge current. Listing correctness never depends on the watcher;
// it only feeds metrics. Watch blocks until the watcher is closed or
// fails, so it is normally run in its own goroutine.
func (s *Scanner) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("Failed to create file watcher: %v", err)
		metrics.ScannerWatcherErrors.Inc()
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	if err := watcher.Add(s.imageDir); err != nil {
		logging.Warn("failed to watch gallery directory %s: %v", s.imageDir, err)
		metrics.ScannerWatcherErrors.Inc()
		return
	}
	logging.Debug("Gallery watcher started on %s", s.imageDir)

	metrics.GalleryImagesTotal.Set(float64(len(s.ListImages())))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleWatcherEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			metrics.ScannerWatcherErrors.Inc()
		}
	}
}

func (s *Scanner) handleWatcherEvent(event fsnotify.Event) {
	// Ignore dotfiles and thumbnail temp files landing in the directory.
	if strings.HasPrefix(strings.TrimPrefix(event.Name, s.imageDir+"/"), ".") {
		return
	}

	metrics.ScannerWatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		metrics.GalleryImagesTotal.Set(float64(len(s.ListImages())))
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
