// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]
// ([ReadConfig] reads the same values without side effects). The following
// environment variables are supported:
//
//   - MEDIA_DIR: Root of the photo library (default: /media)
//   - CACHE_DIR: Directory holding the index snapshots (default: /cache)
//   - DATABASE_PATH: SQLite database for build history, geocode cache and
//     the enrichment queue (default: CACHE_DIR/photo_index.db)
//   - PORT: HTTP server port (default: 8001)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - OBJECT_STORE: Display image storage, one of s3, local, memory (default: local)
//   - LOCAL_STORE_DIR: Root for the local object store (default: CACHE_DIR/objects)
//   - S3_ENDPOINT, S3_REGION, S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY, S3_USE_SSL
//   - ORIGINALS_PREFIX: Key prefix of originals (default: photos/originals)
//   - CACHE_PREFIX: Key prefix of display images (default: cache-image/600px)
//   - FACE_DETECTOR_URL: Face detection service; empty disables orientation voting
//   - GEOCODER_URL: Nominatim-compatible service, "off" disables (default: OpenStreetMap)
//   - GEOCODER_USER_AGENT, GEOCODER_MIN_INTERVAL (default: 1s)
//   - EXIFTOOL_PATH: exiftool binary (default: looked up on PATH)
//   - COLLABORATOR_TIMEOUT: Bound on each external call (default: 30s)
//   - INDEX_WORKERS: Enrichment workers, 0 sizes from the CPU count
//   - CHECKPOINT_INTERVAL: Files between build checkpoints (default: 1000)
//   - ORIENTATION_MAX_YEAR: Last capture year that gets orientation voting (default: 2008)
//   - ENRICH_ON_INGEST: Enrich added files inline (default: false)
//   - ENRICH_INTERVAL: Period of background enrichment of queued files (default: off)
//   - WATCH_MEDIA: Ingest photos as they appear in MEDIA_DIR (default: false)
//   - WATCH_DEBOUNCE: Quiet period before watched files are ingested (default: 5s)
//   - WEB_ALLOWED_ORIGINS: Comma-separated CORS origins
//   - LOG_LEVEL, LOG_FILE, LOG_FILE_MAX_MB, LOG_FILE_MAX_BACKUPS, LOG_HEALTH_CHECKS
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// The Log* functions print the banner sections seen at startup and shutdown
// so every command reports its progress the same way.
package startup
