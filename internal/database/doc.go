// Package database provides SQLite storage for the indexer's auxiliary state.
//
// It holds:
//   - the reverse geocoding cache, reloaded into memory at start
//   - index build history, keyed by a UUID run ID
//   - the pending enrichment queue for entries added without enrichment
//   - key/value metadata such as the last successful build time
//
// The photo index itself is not stored here; it lives in JSON snapshots
// owned by the photoindex package. The database uses WAL mode and creates
// its schema on open.
package database
