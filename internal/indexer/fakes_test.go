package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photo-index/internal/database"
	"photo-index/internal/exif"
	"photo-index/internal/filesystem"
	"photo-index/internal/geocode"
	"photo-index/internal/orientation"
	"photo-index/internal/photoindex"
)

var _ History = (*database.Database)(nil)

var (
	_ TagReader        = (*exif.Extractor)(nil)
	_ LocationResolver = (*geocode.Resolver)(nil)
	_ RotationInferrer = (*orientation.Voter)(nil)
	_ Store            = (*photoindex.Store)(nil)
)

// fakeTags serves tags keyed by base name.
type fakeTags struct {
	tags  map[string]exif.Tags
	calls atomic.Int32
}

func (f *fakeTags) ReadTags(_ context.Context, path string) (exif.Tags, error) {
	f.calls.Add(1)
	tags, ok := f.tags[filepath.Base(path)]
	if !ok {
		return nil, errors.New("no exif")
	}
	return tags, nil
}

// fakeRotation serves results keyed by base name and can run a hook on
// every call.
type fakeRotation struct {
	results map[string]orientation.Result
	calls   atomic.Int32
	hook    func(n int32)
}

func (f *fakeRotation) InferRotation(_ context.Context, path string) orientation.Result {
	n := f.calls.Add(1)
	if f.hook != nil {
		f.hook(n)
	}
	return f.results[filepath.Base(path)]
}

// fakeLocation resolves every coordinate to the same place.
type fakeLocation struct {
	loc   geocode.Location
	calls atomic.Int32
}

func (f *fakeLocation) ResolveLocation(ctx context.Context, src geocode.GPSSource, path string) (*exif.GPS, *geocode.Location) {
	f.calls.Add(1)
	gps, ok := src.GPS(ctx, path)
	if !ok {
		return nil, nil
	}
	loc := f.loc
	return &gps, &loc
}

// fakeHistory is an in-memory History.
type fakeHistory struct {
	mu        sync.Mutex
	modes     []database.BuildMode
	results   []database.BuildResult
	lastBuild time.Time
	pending   []string
	attempts  map[string]int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{attempts: make(map[string]int)}
}

func (h *fakeHistory) StartBuild(_ context.Context, mode database.BuildMode, _ time.Time) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modes = append(h.modes, mode)
	h.results = append(h.results, database.BuildResult{Status: database.BuildStatusRunning})
	return string(rune('a' + len(h.modes) - 1)), nil
}

func (h *fakeHistory) FinishBuild(_ context.Context, id string, result database.BuildResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results[int(id[0]-'a')] = result
	return nil
}

func (h *fakeHistory) GetLastIndexBuild(context.Context) (time.Time, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastBuild, nil
}

func (h *fakeHistory) SetLastIndexBuild(_ context.Context, t time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastBuild = t
	return nil
}

func (h *fakeHistory) EnqueueEnrichment(_ context.Context, names ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range names {
		if !contains(h.pending, name) {
			h.pending = append(h.pending, name)
		}
	}
	return nil
}

func (h *fakeHistory) PendingEnrichment(_ context.Context, _ int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pending...), nil
}

func (h *fakeHistory) MarkEnriched(_ context.Context, names ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.pending[:0]
	for _, p := range h.pending {
		if !contains(names, p) {
			kept = append(kept, p)
		}
	}
	h.pending = kept
	return nil
}

func (h *fakeHistory) RecordEnrichmentAttempt(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts[name]++
	return nil
}

func (h *fakeHistory) statuses() []database.BuildStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]database.BuildStatus, len(h.results))
	for i, r := range h.results {
		out[i] = r.Status
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// fixture is a media tree, a cache dir with an open store, and fakes.
type fixture struct {
	mediaDir string
	cacheDir string
	store    *photoindex.Store
	history  *fakeHistory
	tags     *fakeTags
	rotation *fakeRotation
	location *fakeLocation
}

func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()

	f := &fixture{
		mediaDir: t.TempDir(),
		cacheDir: t.TempDir(),
		history:  newFakeHistory(),
		tags:     &fakeTags{tags: make(map[string]exif.Tags)},
		rotation: &fakeRotation{results: make(map[string]orientation.Result)},
		location: &fakeLocation{loc: geocode.Location{City: "Lisbon", Country: "Portugal"}},
	}
	for _, name := range files {
		f.addFile(t, name)
	}

	retry := filesystem.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	f.store = photoindex.New(photoindex.Options{Dir: f.cacheDir, Retry: &retry})
	if err := f.store.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return f
}

func (f *fixture) addFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.mediaDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("image"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func (f *fixture) builder(cfg Config) *Builder {
	cfg.MediaDir = f.mediaDir
	cfg.CacheDir = f.cacheDir
	if cfg.Retry == nil {
		retry := filesystem.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
		cfg.Retry = &retry
	}
	collab := Collaborators{Tags: f.tags, Location: f.location, Rotation: f.rotation}
	return New(cfg, collab, f.store, f.history)
}

func dated(date string) exif.Tags {
	return exif.Tags{"DateTimeOriginal": date + " 10:00:00", "Model": "Canon"}
}

func byName(entries []photoindex.Entry) map[string]photoindex.Entry {
	m := make(map[string]photoindex.Entry, len(entries))
	for _, e := range entries {
		m[e.Filename] = e
	}
	return m
}
