package gallery

import (
	"path/filepath"
	"strings"
)

// SizeTier names a thumbnail size preset.
type SizeTier string

const (
	// TierSmall is the small thumbnail preset.
	TierSmall SizeTier = "small"
	// TierMedium is the medium thumbnail preset.
	TierMedium SizeTier = "medium"
	// TierLarge is the large thumbnail preset.
	TierLarge SizeTier = "large"
)

// Tiers lists all size tiers in ascending order.
var Tiers = []SizeTier{TierSmall, TierMedium, TierLarge}

// BoundingBox is the maximum width and height of a thumbnail tier in pixels.
type BoundingBox struct {
	Width  int
	Height int
}

// DefaultSizeTiers returns the tier table used unless the configuration
// overrides it. The table is fixed for the lifetime of the process.
func DefaultSizeTiers() map[SizeTier]BoundingBox {
	return map[SizeTier]BoundingBox{
		TierSmall:  {Width: 200, Height: 200},
		TierMedium: {Width: 400, Height: 400},
		TierLarge:  {Width: 800, Height: 800},
	}
}

// ParseSizeTier maps a request token to a size tier.
// Unknown tokens fall back to medium.
func ParseSizeTier(token string) SizeTier {
	switch SizeTier(token) {
	case TierSmall, TierMedium, TierLarge:
		return SizeTier(token)
	default:
		return TierMedium
	}
}

// ImageExtensions maps lowercased file extensions to whether they are
// browsable image formats.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether the filename carries an allowed image
// extension. Matching is case-insensitive.
func IsImageFile(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// BaseName strips the extension from an image filename.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
