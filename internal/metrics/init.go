package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "cancelled", "error"} {
		IndexBuildsTotal.WithLabelValues(status)
	}
	for _, result := range []string{"indexed", "reused"} {
		IndexFilesProcessed.WithLabelValues(result)
	}

	for _, state := range []string{"total", "deleted", "with_faces", "rotated", "geocoded"} {
		StoreEntries.WithLabelValues(state)
	}
	for _, snapshot := range []string{"index", "deleted", "checkpoint"} {
		StorePersistDuration.WithLabelValues(snapshot)
		StorePersistFailures.WithLabelValues(snapshot)
	}

	for _, reader := range []string{"exiftool", "goexif"} {
		ExifReadsTotal.WithLabelValues(reader, "success")
		ExifReadsTotal.WithLabelValues(reader, "error")
	}

	for _, result := range []string{"hit", "miss"} {
		GeocodeLookupsTotal.WithLabelValues(result)
	}
	for _, status := range []string{"success", "error", "no_address"} {
		GeocodeProviderCalls.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error"} {
		FaceDetectionsTotal.WithLabelValues(status)
		RotationsTotal.WithLabelValues(status)
	}
	for _, angle := range []string{"0", "90", "-90"} {
		OrientationVotesTotal.WithLabelValues(angle)
	}

	for _, ns := range []string{"rotated", "unrotated"} {
		for _, result := range []string{"hit", "miss", "error"} {
			DisplayCacheRequests.WithLabelValues(ns, result)
		}
	}
	for _, phase := range []string{"fetch", "decode", "transform", "encode", "store"} {
		DisplayRenderDuration.WithLabelValues(phase)
	}

	for _, backend := range []string{"s3", "local", "memory"} {
		for _, op := range []string{"get", "put", "list", "exists"} {
			ObjectStoreOperations.WithLabelValues(backend, op, "success")
			ObjectStoreOperations.WithLabelValues(backend, op, "error")
			ObjectStoreOperations.WithLabelValues(backend, op, "not_found")
			ObjectStoreDuration.WithLabelValues(backend, op)
		}
	}

	for _, reason := range []string{"requested", "exhausted", "clear_all"} {
		SamplingResetsTotal.WithLabelValues(reason)
	}

	for _, op := range []string{"open", "stat", "write"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
	}

	for _, op := range []string{"initialize_schema", "geocode_insert", "geocode_load",
		"build_start", "build_finish", "metadata_get", "metadata_set",
		"enrichment_enqueue", "enrichment_pending", "enrichment_done",
		"enrichment_attempt", "build_list"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
