package workers

import (
	"os"
	"runtime"
	"strconv"
)

const (
	// IndexWorkersEnv overrides the index builder pool size.
	IndexWorkersEnv = "INDEX_WORKERS"
	// RenderWorkersEnv overrides the display rendition pool size.
	RenderWorkersEnv = "RENDER_WORKERS"
)

// Count returns the number of workers for a pool. It respects container CPU
// limits via GOMAXPROCS.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit caps the result; use 0 for no limit. When envKey names a set
// positive integer it replaces the computed value (still capped by limit).
func Count(envKey string, multiplier float64, limit int) int {
	if n, ok := Override(envKey); ok {
		if limit > 0 && n > limit {
			return limit
		}
		return n
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

// Override reports the positive integer held by envKey, if any.
func Override(envKey string) (int, bool) {
	if envKey == "" {
		return 0, false
	}
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ForIndex returns the index builder pool size. Building is dominated by
// exiftool, geocoder and face detector round trips, so it is I/O bound.
func ForIndex(limit int) int {
	return Count(IndexWorkersEnv, 2.0, limit)
}

// ForRender returns the pool size for decoding, resizing and encoding
// display renditions (1 per CPU).
func ForRender(limit int) int {
	return Count(RenderWorkersEnv, 1.0, limit)
}
