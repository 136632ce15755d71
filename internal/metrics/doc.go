// Package metrics provides Prometheus instrumentation for the photo index
// service. All metrics are prefixed with "photo_index_".
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests.
//   - Database: SQLite query counts and durations.
//   - Index build: runs by outcome, files processed, checkpoints, durations.
//   - Index store: entry gauges and snapshot persistence timings/failures.
//   - Collaborators: metadata reads, geocoding cache and provider calls,
//     face detection calls and orientation results.
//   - Display cache: hits/misses per namespace, render phase timings, rotations.
//   - Object store: operations and latency per backend.
//   - Sampling: chunks served and buffer resets.
//
// Collectors are registered with the default registry through promauto.
// Call InitializeMetrics at startup so every label combination is exported
// from the first scrape, and run a Collector to refresh the store gauges.
package metrics
