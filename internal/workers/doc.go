// Package workers calculates worker pool sizes for parallel thumbnail
// resolution, respecting container CPU limits and the GALLERY_WORKERS
// override.
package workers
