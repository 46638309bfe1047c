package gallery

import (
	"os"
	"path/filepath"
	"strings"

	"image-browser/internal/logging"
	"image-browser/internal/metrics"
)

// CaptionLoader reads optional sidecar caption files for images.
//
// A caption for photo.jpg lives at <captionDir>/photo.txt. Captions are
// user-authored and read fresh on every request; the loader never caches.
type CaptionLoader struct {
	captionDir string
}

// NewCaptionLoader creates a CaptionLoader rooted at captionDir.
func NewCaptionLoader(captionDir string) *CaptionLoader {
	return &CaptionLoader{captionDir: captionDir}
}

// Load returns the caption for an image filename. The second return value
// is false when no caption is available: the sidecar file is absent,
// unreadable, or contains only whitespace. Read errors are logged and
// never propagated.
func (c *CaptionLoader) Load(filename string) (string, bool) {
	path := filepath.Join(c.captionDir, BaseName(filename)+".txt")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("Caption unreadable for %s: %v", filename, err)
		}
		metrics.CaptionLoadsTotal.WithLabelValues("missing").Inc()
		return "", false
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		metrics.CaptionLoadsTotal.WithLabelValues("missing").Inc()
		return "", false
	}

	metrics.CaptionLoadsTotal.WithLabelValues("found").Inc()
	return text, true
}
