package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of workers to use for resolving a page of
// thumbnails. It respects container CPU limits via GOMAXPROCS and can be
// overridden with the GALLERY_WORKERS environment variable.
//
// The multiplier adjusts for task characteristics: 1.0 for CPU-bound
// work, 2.0 for I/O-bound work. The limit parameter caps the worker
// count; use 0 for no limit.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("GALLERY_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
