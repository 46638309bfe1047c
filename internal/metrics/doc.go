// Package metrics defines the Prometheus metrics exported by the image
// browser and a small periodic collector that keeps the gallery gauges
// (image count, thumbnail cache size) current.
//
// All metrics are registered with the default registry via promauto at
// package load time and carry the image_browser_ prefix.
package metrics
