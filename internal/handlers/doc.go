// Package handlers contains the HTTP handlers of the gallery: the
// paginated index, the single-image viewer, original and thumbnail file
// serving, deletion, and the health/version/metrics endpoints.
package handlers
