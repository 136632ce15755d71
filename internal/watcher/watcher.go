package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"photo-index/internal/logging"
	"photo-index/internal/mediatypes"
	"photo-index/internal/metrics"
	"photo-index/internal/photoindex"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must be quiet before a flush.
const DefaultDebounce = 5 * time.Second

// Ingester adds individual files to the index.
type Ingester interface {
	Ingest(ctx context.Context, paths ...string) ([]photoindex.Entry, error)
	IsRunning() bool
}

// Config configures a Watcher.
type Config struct {
	MediaDir string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// Watcher feeds new media files to an Ingester.
type Watcher struct {
	root     string
	debounce time.Duration
	ingester Ingester

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a watcher over cfg.MediaDir.
func New(cfg Config, ingester Ingester) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		root:     cfg.MediaDir,
		debounce: cfg.Debounce,
		ingester: ingester,
		pending:  make(map[string]struct{}),
	}
}

// Run watches until ctx is cancelled. Files still pending at that point are
// dropped; the next incremental build picks them up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return err
	}
	defer func() {
		if err := fw.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	count := w.addTree(fw, w.root)
	metrics.WatcherWatchedDirectories.Set(float64(count))
	logging.Info("Media watcher started, watching %d directories", count)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case <-timer.C:
			if !w.flush(ctx) {
				timer.Reset(w.debounce)
			}
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) int {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && mediatypes.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		if addErr := fw.Add(path); addErr != nil {
			logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			metrics.WatcherErrors.Inc()
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		logging.Error("failed to walk media directory for watcher: %v", err)
		metrics.WatcherErrors.Inc()
	}
	return count
}

// handle records event and reports whether a file was queued.
func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if mediatypes.IsHidden(base) {
		return false
	}
	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			n := w.addTree(fw, event.Name)
			metrics.WatcherWatchedDirectories.Add(float64(n))
			logging.Debug("Added new directory to watcher: %s", event.Name)
		}
		return false
	}
	if !mediatypes.IsIndexable(base) {
		return false
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()
	return true
}

// Pending returns the files waiting to be ingested, sorted.
func (w *Watcher) Pending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// flush ingests the pending files one by one. It reports false when the
// ingester is busy with a build and the flush must be retried.
func (w *Watcher) flush(ctx context.Context) bool {
	if w.ingester.IsRunning() {
		logging.Debug("Index build running, holding %d watched files", len(w.Pending()))
		return false
	}

	paths := w.Pending()
	if len(paths) == 0 {
		return true
	}

	added := 0
	for _, p := range paths {
		if ctx.Err() != nil {
			return true
		}
		_, err := w.ingester.Ingest(ctx, p)
		switch {
		case err == nil:
			added++
			metrics.WatcherIngestedTotal.WithLabelValues("ok").Inc()
		case errors.Is(err, fs.ErrNotExist):
			metrics.WatcherIngestedTotal.WithLabelValues("vanished").Inc()
		default:
			logging.Warn("Watcher failed to ingest %s: %v", p, err)
			metrics.WatcherIngestedTotal.WithLabelValues("error").Inc()
		}

		w.mu.Lock()
		delete(w.pending, p)
		w.mu.Unlock()
	}

	logging.Info("Media watcher added %d of %d new files", added, len(paths))
	return true
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
