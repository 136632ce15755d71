package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"photo-index/internal/database"
	"photo-index/internal/exif"
	"photo-index/internal/filesystem"
	"photo-index/internal/geocode"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
	"photo-index/internal/orientation"
	"photo-index/internal/photoindex"
)

const (
	// CheckpointFile is written next to the live index while a build runs.
	CheckpointFile = "photo_index.checkpoint.json"

	// DefaultCheckpointInterval is the number of entries between checkpoints.
	DefaultCheckpointInterval = 1000

	defaultWorkers = 4
)

// ErrBuildInProgress is returned when a build or enrichment pass is already
// running.
var ErrBuildInProgress = errors.New("index build already in progress")

// TagReader reads the EXIF tags of a file.
type TagReader interface {
	ReadTags(ctx context.Context, path string) (exif.Tags, error)
}

// LocationResolver resolves the coordinate read from a file to a locality.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, src geocode.GPSSource, path string) (*exif.GPS, *geocode.Location)
}

// RotationInferrer detects faces in a file and votes on its rotation.
type RotationInferrer interface {
	InferRotation(ctx context.Context, path string) orientation.Result
}

// Store is the index the builder writes to.
type Store interface {
	All(excludeDeleted bool) []photoindex.Entry
	Replace(ctx context.Context, entries []photoindex.Entry) error
	Upsert(ctx context.Context, entries ...photoindex.Entry) error
}

// History records builds and the enrichment queue.
type History interface {
	StartBuild(ctx context.Context, mode database.BuildMode, startedAt time.Time) (string, error)
	FinishBuild(ctx context.Context, id string, result database.BuildResult) error
	GetLastIndexBuild(ctx context.Context) (time.Time, error)
	SetLastIndexBuild(ctx context.Context, t time.Time) error
	EnqueueEnrichment(ctx context.Context, filenames ...string) error
	PendingEnrichment(ctx context.Context, limit int) ([]string, error)
	MarkEnriched(ctx context.Context, filenames ...string) error
	RecordEnrichmentAttempt(ctx context.Context, filename string) error
}

// Config configures a Builder.
type Config struct {
	// MediaDir is the root of the media tree.
	MediaDir string
	// CacheDir holds the build checkpoint.
	CacheDir string
	// Workers bounds the enrichment pool; defaults to 4.
	Workers int
	// CheckpointInterval defaults to DefaultCheckpointInterval.
	CheckpointInterval int
	// Incremental makes Build reuse entries of unchanged files.
	Incremental bool
	// OrientationMaxYear, when positive, restricts voted rotations to photos
	// taken before that year. Later photos keep angle 0.
	OrientationMaxYear int
	// EnrichOnIngest enriches ingested files inline instead of queueing them.
	EnrichOnIngest bool
	// Retry configures checkpoint writes; filesystem defaults when nil.
	Retry *filesystem.RetryConfig
}

// Collaborators are the per-file enrichment sources. Nil members disable
// the feature they provide.
type Collaborators struct {
	Tags     TagReader
	Location LocationResolver
	Rotation RotationInferrer
}

// Progress describes the current or last build.
type Progress struct {
	Running    bool                 `json:"running"`
	RunID      string               `json:"runId,omitempty"`
	Mode       database.BuildMode   `json:"mode,omitempty"`
	Status     database.BuildStatus `json:"status,omitempty"`
	Total      int                  `json:"total"`
	Processed  int                  `json:"processed"`
	Reused     int                  `json:"reused"`
	StartedAt  time.Time            `json:"startedAt,omitempty"`
	FinishedAt *time.Time           `json:"finishedAt,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Builder builds and maintains the photo index.
type Builder struct {
	cfg     Config
	collab  Collaborators
	store   Store
	history History
	retry   filesystem.RetryConfig

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc

	progressMu sync.RWMutex
	progress   Progress
	onProgress func(Progress)
}

// New creates a Builder. history may be nil, in which case build records,
// incremental mode and the enrichment queue are unavailable.
func New(cfg Config, collab Collaborators, store Store, history History) *Builder {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}
	retry := filesystem.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &Builder{
		cfg:     cfg,
		collab:  collab,
		store:   store,
		history: history,
		retry:   retry,
	}
}

// SetOnProgress sets a callback invoked after every file of a build. It is
// called from a single goroutine.
func (b *Builder) SetOnProgress(fn func(Progress)) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	b.onProgress = fn
}

// CheckpointPath returns where build checkpoints are written.
func (b *Builder) CheckpointPath() string {
	return filepath.Join(b.cfg.CacheDir, CheckpointFile)
}

// GetProgress returns a snapshot of the current or last build.
func (b *Builder) GetProgress() Progress {
	b.progressMu.RLock()
	defer b.progressMu.RUnlock()
	return b.progress
}

// IsRunning reports whether a build or enrichment pass is running.
func (b *Builder) IsRunning() bool {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	return b.running
}

// Stop cancels the running build, if any. The build writes a final
// checkpoint and returns context.Canceled.
func (b *Builder) Stop() {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
}

// Build runs a build in the configured mode and returns the new index.
func (b *Builder) Build(ctx context.Context) ([]photoindex.Entry, error) {
	return b.Run(ctx, b.cfg.Incremental)
}

// Run runs a build, full or incremental, and returns the new index.
func (b *Builder) Run(ctx context.Context, incremental bool) ([]photoindex.Entry, error) {
	ctx, release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return b.build(ctx, incremental)
}

// StartBackground starts a build on its own goroutine. It fails with
// ErrBuildInProgress when one is already running.
func (b *Builder) StartBackground(incremental bool) error {
	ctx, release, err := b.acquire(context.Background())
	if err != nil {
		return err
	}
	go func() {
		defer release()
		if _, err := b.build(ctx, incremental); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Background index build failed: %v", err)
		}
	}()
	return nil
}

// acquire marks the builder busy and returns a cancellable context for the
// run together with the function that releases it.
func (b *Builder) acquire(ctx context.Context) (context.Context, func(), error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.running {
		return nil, nil, ErrBuildInProgress
	}

	ctx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancel = cancel

	release := func() {
		cancel()
		b.runMu.Lock()
		b.running = false
		b.cancel = nil
		b.runMu.Unlock()
	}
	return ctx, release, nil
}

func (b *Builder) build(ctx context.Context, incremental bool) ([]photoindex.Entry, error) {
	metrics.IndexBuildRunning.Set(1)
	defer metrics.IndexBuildRunning.Set(0)

	startTime := time.Now()
	mode := database.BuildModeFull
	if incremental {
		mode = database.BuildModeIncremental
	}

	runID := b.startRecord(ctx, mode, startTime)
	b.resetProgress(runID, mode, startTime)
	startAngles := angles(b.store.All(false))
	logging.Info("Starting %s index build of %s", mode, b.cfg.MediaDir)

	entries, stats, err := b.collect(ctx, incremental)

	status := database.BuildStatusSucceeded
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = database.BuildStatusCancelled
		metrics.IndexBuildsTotal.WithLabelValues("cancelled").Inc()
		logging.Info("Index build cancelled after %d files", stats.indexed+stats.reused)
	case err != nil:
		status = database.BuildStatusFailed
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		metrics.IndexBuildErrors.Inc()
		logging.Error("Index build failed: %v", err)
	}

	if err == nil {
		err = b.complete(ctx, entries, startAngles, startTime)
		if err != nil {
			status = database.BuildStatusFailed
			metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
		}
	}

	duration := time.Since(startTime)
	metrics.IndexBuildLastDuration.Set(duration.Seconds())
	metrics.IndexBuildLastTimestamp.Set(float64(time.Now().Unix()))

	result := database.BuildResult{
		Status:       status,
		FilesIndexed: stats.indexed,
		FilesReused:  stats.reused,
		Err:          err,
	}
	b.finishRecord(ctx, runID, result)
	b.finishProgress(result)

	if err != nil {
		return nil, err
	}
	logging.Info("Index build complete: %d entries (%d indexed, %d reused) in %v",
		len(entries), stats.indexed, stats.reused, duration)
	return entries, nil
}

// complete publishes a finished build. Rotations set on the live index
// while the build ran are carried into the published entries.
func (b *Builder) complete(ctx context.Context, entries []photoindex.Entry, startAngles map[string]int, startTime time.Time) error {
	keepRotations(entries, startAngles, angles(b.store.All(false)))
	if err := b.store.Replace(ctx, entries); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}

	if err := os.Remove(b.CheckpointPath()); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove checkpoint %s: %v", b.CheckpointPath(), err)
	}

	if b.history == nil {
		return nil
	}
	if err := b.history.SetLastIndexBuild(ctx, startTime); err != nil {
		logging.Warn("Failed to record last index build time: %v", err)
	}
	b.clearEnriched(ctx, entries)
	return nil
}

// keepRotations overwrites the angle of every entry whose live angle
// changed since the build started.
func keepRotations(entries []photoindex.Entry, before, now map[string]int) {
	for i, e := range entries {
		was, ok := before[e.Filename]
		if !ok {
			continue
		}
		if cur, ok := now[e.Filename]; ok && cur != was {
			logging.Debug("Keeping rotation of %s set during the build: %d", e.Filename, cur)
			entries[i].Angle = cur
		}
	}
}

func angles(entries []photoindex.Entry) map[string]int {
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		m[e.Filename] = e.Angle
	}
	return m
}

// clearEnriched drops queued filenames that the build just enriched.
func (b *Builder) clearEnriched(ctx context.Context, entries []photoindex.Entry) {
	pending, err := b.history.PendingEnrichment(ctx, 0)
	if err != nil {
		logging.Warn("Failed to read enrichment queue: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	built := make(map[string]bool, len(entries))
	for _, e := range entries {
		built[e.Filename] = true
	}
	var done []string
	for _, name := range pending {
		if built[name] {
			done = append(done, name)
		}
	}
	if err := b.history.MarkEnriched(ctx, done...); err != nil {
		logging.Warn("Failed to clear enrichment queue: %v", err)
	}
}

func (b *Builder) startRecord(ctx context.Context, mode database.BuildMode, startTime time.Time) string {
	if b.history == nil {
		return ""
	}
	id, err := b.history.StartBuild(ctx, mode, startTime)
	if err != nil {
		logging.Warn("Failed to record build start: %v", err)
		return ""
	}
	return id
}

func (b *Builder) finishRecord(ctx context.Context, runID string, result database.BuildResult) {
	if b.history == nil || runID == "" {
		return
	}
	if err := b.history.FinishBuild(context.WithoutCancel(ctx), runID, result); err != nil {
		logging.Warn("Failed to record build %s: %v", runID, err)
	}
}

func (b *Builder) resetProgress(runID string, mode database.BuildMode, startTime time.Time) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	b.progress = Progress{
		Running:   true,
		RunID:     runID,
		Mode:      mode,
		Status:    database.BuildStatusRunning,
		StartedAt: startTime,
	}
}

func (b *Builder) updateProgress(update func(p *Progress)) {
	b.progressMu.Lock()
	update(&b.progress)
	snapshot := b.progress
	fn := b.onProgress
	b.progressMu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

func (b *Builder) finishProgress(result database.BuildResult) {
	now := time.Now()
	b.updateProgress(func(p *Progress) {
		p.Running = false
		p.Status = result.Status
		p.FinishedAt = &now
		if result.Err != nil {
			p.Error = result.Err.Error()
		}
	})
}
