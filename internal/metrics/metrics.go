package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	PendingEnrichment = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_pending_enrichment",
			Help: "Number of ingested entries awaiting enrichment",
		},
	)
)

// Index build metrics
var (
	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_builds_total",
			Help: "Total number of index builds by outcome",
		},
		[]string{"status"}, // "success", "cancelled", "error"
	)

	IndexBuildRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_build_running",
			Help: "Whether an index build is currently running (1 = running, 0 = idle)",
		},
	)

	IndexBuildLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_build_last_duration_seconds",
			Help: "Duration of the last index build in seconds",
		},
	)

	IndexBuildLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_build_last_timestamp",
			Help: "Unix timestamp of the last completed index build",
		},
	)

	IndexFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_files_processed_total",
			Help: "Total number of media files processed by the index builder",
		},
		[]string{"result"}, // "indexed", "reused"
	)

	IndexFileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_index_file_duration_seconds",
			Help:    "Time spent enriching a single media file",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexCheckpointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_checkpoints_total",
			Help: "Total number of checkpoint snapshots written during builds",
		},
	)

	IndexBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_build_errors_total",
			Help: "Total number of non-fatal errors during index builds",
		},
	)
)

// Index store metrics
var (
	StoreEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_index_store_entries",
			Help: "Number of index entries by state",
		},
		[]string{"state"}, // "total", "deleted", "with_faces", "rotated", "geocoded"
	)

	StorePersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_store_persist_duration_seconds",
			Help:    "Time spent writing a store snapshot to disk",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"snapshot"}, // "index", "deleted", "checkpoint"
	)

	StorePersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_store_persist_failures_total",
			Help: "Snapshot writes that failed after all retries",
		},
		[]string{"snapshot"},
	)

	StoreDirty = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_store_dirty",
			Help: "Whether the store holds mutations not yet persisted (1 = dirty)",
		},
	)
)

// Collaborator metrics
var (
	ExifReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_exif_reads_total",
			Help: "Metadata tag reads by reader and status",
		},
		[]string{"reader", "status"}, // reader: "exiftool", "goexif"
	)

	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_geocode_lookups_total",
			Help: "Geocode lookups by proximity cache result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	GeocodeProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_geocode_provider_calls_total",
			Help: "Calls to the reverse geocoding provider by status",
		},
		[]string{"status"},
	)

	GeocodeCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_geocode_cache_entries",
			Help: "Number of resolved locations held by the proximity cache",
		},
	)

	FaceDetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_face_detections_total",
			Help: "Face detector calls by status",
		},
		[]string{"status"},
	)

	FaceDetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_index_face_detection_duration_seconds",
			Help:    "Face detector call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	OrientationVotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_orientation_results_total",
			Help: "Inferred orientation results by angle",
		},
		[]string{"angle"},
	)
)

// Display image cache metrics
var (
	DisplayCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_display_cache_requests_total",
			Help: "Display image requests by cache result",
		},
		[]string{"namespace", "result"}, // result: "hit", "miss", "error"
	)

	DisplayRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_display_render_duration_seconds",
			Help:    "Display image rendering duration by phase",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"phase"}, // "fetch", "decode", "transform", "encode", "store"
	)

	DisplayCachePutErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_display_cache_put_errors_total",
			Help: "Rendered display images that could not be written to the cache",
		},
	)

	RotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_rotations_total",
			Help: "Manual rotation requests by status",
		},
		[]string{"status"},
	)
)

// Object store metrics
var (
	ObjectStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_object_store_operations_total",
			Help: "Object store operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)

	ObjectStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_index_object_store_duration_seconds",
			Help:    "Object store operation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)
)

// Sampling metrics
var (
	SamplingChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_sampling_chunks_total",
			Help: "Random chunks served by the sampling buffer",
		},
	)

	SamplingResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_sampling_resets_total",
			Help: "Sampling buffer resets by reason",
		},
		[]string{"reason"}, // "requested", "exhausted", "clear_all"
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a failure",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)
)

// Memory pressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit (0.0-1.0)",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_memory_paused",
			Help: "Whether rendition work is paused for memory pressure (1 = paused, 0 = running)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_memory_gc_pauses_total",
			Help: "Times rendition work was paused for memory pressure",
		},
	)
)

// Media watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_watcher_events_total",
			Help: "File system events seen by the media watcher",
		},
		[]string{"type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_index_watcher_errors_total",
			Help: "Media watcher errors",
		},
	)

	WatcherWatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_index_watcher_watched_directories",
			Help: "Number of directories watched for new photos",
		},
	)

	WatcherIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_index_watcher_ingested_total",
			Help: "Files handed to ingest by the media watcher",
		},
		[]string{"status"},
	)
)
