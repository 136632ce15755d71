package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"DBQueryTotal", DBQueryTotal},
		{"IndexBuildsTotal", IndexBuildsTotal},
		{"IndexFilesProcessed", IndexFilesProcessed},
		{"StorePersistDuration", StorePersistDuration},
		{"GeocodeLookupsTotal", GeocodeLookupsTotal},
		{"FaceDetectionsTotal", FaceDetectionsTotal},
		{"DisplayCacheRequests", DisplayCacheRequests},
		{"ObjectStoreOperations", ObjectStoreOperations},
		{"SamplingResetsTotal", SamplingResetsTotal},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPrepopulatesLabels(t *testing.T) {
	InitializeMetrics()

	tests := []struct {
		name      string
		collector prometheus.Collector
		minSeries int
	}{
		{"IndexBuildsTotal", IndexBuildsTotal, 3},
		{"StoreEntries", StoreEntries, 5},
		{"DisplayCacheRequests", DisplayCacheRequests, 6},
		{"ObjectStoreOperations", ObjectStoreOperations, 36},
		{"OrientationVotesTotal", OrientationVotesTotal, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.CollectAndCount(tt.collector); got < tt.minSeries {
				t.Errorf("CollectAndCount(%s) = %d, want >= %d", tt.name, got, tt.minSeries)
			}
		})
	}
}

func TestCounterOperations(t *testing.T) {
	before := testutil.ToFloat64(GeocodeLookupsTotal.WithLabelValues("hit"))
	GeocodeLookupsTotal.WithLabelValues("hit").Inc()
	GeocodeLookupsTotal.WithLabelValues("hit").Inc()

	if got := testutil.ToFloat64(GeocodeLookupsTotal.WithLabelValues("hit")); got != before+2 {
		t.Errorf("GeocodeLookupsTotal{hit} = %v, want %v", got, before+2)
	}
}

func TestHistogramObserve(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Observe panicked: %v", r)
		}
	}()

	DisplayRenderDuration.WithLabelValues("encode").Observe(0.2)
	StorePersistDuration.WithLabelValues("index").Observe(0.01)
	FaceDetectionDuration.Observe(1.5)
	ObjectStoreDuration.WithLabelValues("memory", "get").Observe(0.001)
}
