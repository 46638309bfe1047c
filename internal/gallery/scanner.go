package gallery

import (
	"os"
	"sort"
	"time"

	"image-browser/internal/metrics"
)

// Scanner lists the images in the configured gallery directory.
type Scanner struct {
	imageDir string
}

// NewScanner creates a Scanner for the given directory.
func NewScanner(imageDir string) *Scanner {
	return &Scanner{imageDir: imageDir}
}

// ImageDir returns the directory the scanner reads.
func (s *Scanner) ImageDir() string {
	return s.imageDir
}

// ListImages enumerates the direct children of the gallery directory and
// returns the filenames with an allowed image extension, sorted in
// case-sensitive lexicographic order (uppercase letters sort before all
// lowercase letters). The directory is re-read on every call; nothing is
// cached. A missing directory yields an empty listing, not an error.
func (s *Scanner) ListImages() []string {
	start := time.Now()

	entries, err := os.ReadDir(s.imageDir)
	if err != nil {
		metrics.ScannerScansTotal.WithLabelValues("error").Inc()
		metrics.ScannerScanDuration.Observe(time.Since(start).Seconds())
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsImageFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	metrics.ScannerScansTotal.WithLabelValues("success").Inc()
	metrics.ScannerScanDuration.Observe(time.Since(start).Seconds())
	metrics.ScannerImagesReturned.Observe(float64(len(names)))

	return names
}

// Contains reports whether name is present in the current listing.
func (s *Scanner) Contains(name string) bool {
	for _, n := range s.ListImages() {
		if n == name {
			return true
		}
	}
	return false
}

// Neighbors returns the filenames immediately before and after name in the
// current sorted listing. An empty string marks a missing neighbor. The
// second return value is false when name is not in the listing.
func (s *Scanner) Neighbors(name string) (prev, next string, ok bool) {
	names := s.ListImages()
	for i, n := range names {
		if n != name {
			continue
		}
		if i > 0 {
			prev = names[i-1]
		}
		if i < len(names)-1 {
			next = names[i+1]
		}
		return prev, next, true
	}
	return "", "", false
}
