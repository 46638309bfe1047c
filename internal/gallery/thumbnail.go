package gallery

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"image-browser/internal/logging"
	"image-browser/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the fixed encoding quality for cached thumbnails.
const jpegQuality = 85

// cacheSizeTTL bounds how often the cache directory is re-measured.
const cacheSizeTTL = 2 * time.Minute

// ThumbnailCache resolves (source image, size tier) pairs to cached JPEG
// thumbnails on disk, generating them on first request.
//
// A cache hit is never revalidated against the source file: editing an
// image in place shows the stale thumbnail until the image is deleted.
type ThumbnailCache struct {
	cacheDir string
	imageDir string
	tiers    map[SizeTier]BoundingBox

	// keyMu guards keyLocks; each cache key gets its own mutex so that
	// concurrent misses for the same key converge on one generation
	// without serializing unrelated keys. Entries are refcounted and
	// removed once the last holder releases, so the map stays bounded by
	// the number of in-flight generations.
	keyMu    sync.Mutex
	keyLocks map[string]*keyLock

	cachedSize      atomic.Int64
	cachedCount     atomic.Int64
	lastSizeMeasure atomic.Int64
	sizeMu          sync.Mutex
}

// NewThumbnailCache creates the cache rooted at cacheDir for images in
// imageDir. The cache directory is created if absent.
func NewThumbnailCache(cacheDir, imageDir string, tiers map[SizeTier]BoundingBox) (*ThumbnailCache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	if tiers == nil {
		tiers = DefaultSizeTiers()
	}
	return &ThumbnailCache{
		cacheDir: cacheDir,
		imageDir: imageDir,
		tiers:    tiers,
		keyLocks: make(map[string]*keyLock),
	}, nil
}

// CacheDir returns the directory holding cached thumbnails.
func (t *ThumbnailCache) CacheDir() string {
	return t.cacheDir
}

// CacheName returns the cache filename for a source image and tier. The
// hash suffix covers the full source filename so that images differing
// only by extension (photo.jpg vs photo.png) key distinct entries.
func CacheName(filename string, tier SizeTier) string {
	sum := md5.Sum([]byte(filename))
	return fmt.Sprintf("%s_%s_%x.jpg", BaseName(filename), tier, sum[:4])
}

// Resolve returns the path of the cached thumbnail for (filename, tier),
// generating it on first request. On any decode, resize or encode failure
// it returns an error and leaves nothing in the cache; the caller is
// expected to fall back to serving the original image.
func (t *ThumbnailCache) Resolve(filename string, tier SizeTier) (string, error) {
	box, ok := t.tiers[tier]
	if !ok {
		return "", fmt.Errorf("unknown size tier %q", tier)
	}

	cachePath := filepath.Join(t.cacheDir, CacheName(filename, tier))

	if _, err := os.Stat(cachePath); err == nil {
		logging.Debug("Thumbnail cache hit: %s (%s)", filename, tier)
		metrics.ThumbnailCacheHits.Inc()
		return cachePath, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	unlock := t.lockKey(cachePath)
	defer unlock()

	// Another request may have generated it while we waited for the lock.
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	start := time.Now()
	status, err := t.generate(filepath.Join(t.imageDir, filename), cachePath, box)
	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(tier), status).Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(string(tier)).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.Warn("Thumbnail generation failed for %s (%s): %v", filename, tier, err)
		return "", err
	}

	logging.Debug("Thumbnail generated: %s (%s) in %v", filename, tier, time.Since(start))
	return cachePath, nil
}

// Invalidate removes the cached thumbnails of a source image across all
// tiers. Missing entries are not an error.
func (t *ThumbnailCache) Invalidate(filename string) error {
	var firstErr error
	for _, tier := range Tiers {
		path := filepath.Join(t.cacheDir, CacheName(filename, tier))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
			logging.Warn("Failed to remove cached thumbnail %s: %v", path, err)
		}
	}
	return firstErr
}

// CacheSize returns the total size in bytes and the entry count of the
// cache directory. Results are memoized for a short interval; on a
// measurement error the last known values are returned.
func (t *ThumbnailCache) CacheSize() (int64, int, error) {
	if time.Now().Unix()-t.lastSizeMeasure.Load() < int64(cacheSizeTTL.Seconds()) {
		return t.cachedSize.Load(), int(t.cachedCount.Load()), nil
	}

	t.sizeMu.Lock()
	defer t.sizeMu.Unlock()

	if time.Now().Unix()-t.lastSizeMeasure.Load() < int64(cacheSizeTTL.Seconds()) {
		return t.cachedSize.Load(), int(t.cachedCount.Load()), nil
	}

	entries, err := os.ReadDir(t.cacheDir)
	if err != nil {
		return t.cachedSize.Load(), int(t.cachedCount.Load()), err
	}

	var size int64
	var count int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		size += info.Size()
		count++
	}

	t.cachedSize.Store(size)
	t.cachedCount.Store(count)
	t.lastSizeMeasure.Store(time.Now().Unix())
	return size, int(count), nil
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (t *ThumbnailCache) lockKey(key string) func() {
	t.keyMu.Lock()
	l, ok := t.keyLocks[key]
	if !ok {
		l = &keyLock{}
		t.keyLocks[key] = l
	}
	l.refs++
	t.keyMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.keyMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.keyLocks, key)
		}
		t.keyMu.Unlock()
	}
}

// generate decodes, resizes and encodes one thumbnail, publishing it to
// cachePath via a temp file and rename so that a concurrent reader never
// observes a partially written entry. The returned status labels the
// generation outcome for metrics.
func (t *ThumbnailCache) generate(srcPath, cachePath string, box BoundingBox) (string, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return "error_not_found", fmt.Errorf("source not accessible: %w", err)
	}

	img, err := t.loadImage(srcPath, box)
	if err != nil {
		return "error_decode", fmt.Errorf("decode failed: %w", err)
	}

	// Downscale-only fit: imaging.Fit preserves aspect ratio and returns
	// the original when it already fits inside the bounding box.
	thumb := imaging.Fit(img, box.Width, box.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattenForJPEG(thumb), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "error_encode", fmt.Errorf("encode failed: %w", err)
	}

	tmp, err := os.CreateTemp(t.cacheDir, ".thumb-*")
	if err != nil {
		return "error_cache", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "error_cache", fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "error_cache", fmt.Errorf("failed to close thumbnail: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return "error_cache", fmt.Errorf("failed to publish thumbnail: %w", err)
	}

	return "success", nil
}

// loadImage decodes a source image, shrinking at decode time through
// libvips when it is available and falling back to imaging otherwise.
func (t *ThumbnailCache) loadImage(srcPath string, box BoundingBox) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := LoadImageWithVips(srcPath, box.Width, box.Height)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back to imaging", srcPath, err)
	}
	return imaging.Open(srcPath, imaging.AutoOrientation(true))
}

// flattenForJPEG converts an image with an alpha channel or palette into a
// plain color image the JPEG encoder can serialize without surprises. The
// stored color values are kept and the alpha channel is forced opaque:
// transparency is dropped, not composited.
func flattenForJPEG(img image.Image) image.Image {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok && o.Opaque() {
		return img
	}

	flat := imaging.Clone(img)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}
	return flat
}
