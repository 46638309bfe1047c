package handlers

import (
	"net/http"
	"os"
	"runtime"

	"image-browser/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`

	// Gallery state
	TotalImages     int   `json:"totalImages"`
	CacheSizeBytes  int64 `json:"cacheSizeBytes"`
	CacheEntryCount int   `json:"cacheEntryCount"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The gallery is
// degraded when the image directory has become unreadable after startup.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.GetStats()

	response := HealthResponse{
		Status:          statusHealthy,
		Version:         startup.Version,
		TotalImages:     stats.TotalImages,
		CacheSizeBytes:  stats.CacheSizeBytes,
		CacheEntryCount: stats.CacheEntryCount,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	statusCode := http.StatusOK
	if _, err := os.Stat(h.imageDir); err != nil {
		response.Status = statusDegraded
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 while the image directory is readable
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if _, err := os.Stat(h.imageDir); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_ready"})
		return
	}
	writeJSONStatus(w, "ready")
}
