package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photo-index/internal/logging"
	"photo-index/internal/mediatypes"
	"photo-index/internal/metrics"
	"photo-index/internal/photoindex"
)

// ErrInvalidPath is returned by Ingest for paths that are not indexable
// files inside the media directory.
var ErrInvalidPath = errors.New("not an indexable file in the media directory")

// Ingest adds or refreshes the entries of individual files. Paths are
// absolute or relative to the media directory. With EnrichOnIngest the
// entries are fully enriched; otherwise they carry capture metadata only
// and are queued for EnrichPending. A file already in the index keeps its
// rotation, and without inline enrichment also its faces and location.
func (b *Builder) Ingest(ctx context.Context, paths ...string) ([]photoindex.Entry, error) {
	files := make([]mediaFile, 0, len(paths))
	for _, p := range paths {
		f, err := b.resolveFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return []photoindex.Entry{}, nil
	}

	existing := b.liveEntries()
	entries := make([]photoindex.Entry, len(files))
	if b.cfg.EnrichOnIngest {
		filled := 0
		for r := range b.enrichAll(ctx, files, sequence(len(files))) {
			entries[r.index] = keepAngle(r.entry, existing)
			filled++
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if filled != len(files) {
			return nil, fmt.Errorf("enriched %d of %d ingested files", filled, len(files))
		}
	} else {
		for i, f := range files {
			entries[i] = keepEnrichment(b.withDefaults(ctx, f), existing)
		}
	}

	if err := b.store.Upsert(ctx, entries...); err != nil {
		return nil, fmt.Errorf("store ingested entries: %w", err)
	}
	metrics.IndexFilesProcessed.WithLabelValues("ingested").Add(float64(len(entries)))

	if !b.cfg.EnrichOnIngest {
		if b.history == nil {
			logging.Warn("No enrichment queue; %d ingested files keep default values", len(entries))
			return entries, nil
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Filename
		}
		if err := b.history.EnqueueEnrichment(ctx, names...); err != nil {
			return entries, fmt.Errorf("queue enrichment: %w", err)
		}
	}

	logging.Info("Ingested %d files (enriched inline: %v)", len(entries), b.cfg.EnrichOnIngest)
	return entries, nil
}

// EnrichPending enriches every queued file and returns how many were
// completed. Queued files that no longer exist are dropped from the queue.
// A rotation already set on an entry is kept.
func (b *Builder) EnrichPending(ctx context.Context) (int, error) {
	if b.history == nil {
		return 0, nil
	}

	ctx, release, err := b.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	names, err := b.history.PendingEnrichment(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read enrichment queue: %w", err)
	}
	if len(names) == 0 {
		return 0, nil
	}

	var files []mediaFile
	var gone []string
	for _, name := range names {
		path := sourcePath(b.cfg.MediaDir, name)
		info, err := os.Stat(path)
		if err != nil {
			logging.Warn("Queued file %s is no longer readable: %v", name, err)
			gone = append(gone, name)
			continue
		}
		if err := b.history.RecordEnrichmentAttempt(ctx, name); err != nil {
			logging.Warn("Failed to record enrichment attempt for %s: %v", name, err)
		}
		files = append(files, mediaFile{name: name, path: path, modTime: info.ModTime()})
	}
	if err := b.history.MarkEnriched(ctx, gone...); err != nil {
		logging.Warn("Failed to drop missing files from enrichment queue: %v", err)
	}

	existing := b.liveEntries()
	var entries []photoindex.Entry
	var done []string
	for r := range b.enrichAll(ctx, files, sequence(len(files))) {
		entries = append(entries, keepAngle(r.entry, existing))
		done = append(done, r.entry.Filename)
	}

	// Work finished before a cancellation is still published.
	persistCtx := context.WithoutCancel(ctx)
	if len(entries) > 0 {
		if err := b.store.Upsert(persistCtx, entries...); err != nil {
			return 0, fmt.Errorf("store enriched entries: %w", err)
		}
		if err := b.history.MarkEnriched(persistCtx, done...); err != nil {
			return len(done), fmt.Errorf("clear enrichment queue: %w", err)
		}
	}

	logging.Info("Enriched %d of %d queued files", len(done), len(names))
	return len(done), ctx.Err()
}

func (b *Builder) liveEntries() map[string]photoindex.Entry {
	live := make(map[string]photoindex.Entry)
	for _, e := range b.store.All(false) {
		live[e.Filename] = e
	}
	return live
}

// keepEnrichment carries the enrichment of an already indexed file into its
// refreshed entry. Only capture metadata comes from the file.
func keepEnrichment(entry photoindex.Entry, live map[string]photoindex.Entry) photoindex.Entry {
	prev, ok := live[entry.Filename]
	if !ok {
		return entry
	}
	entry.Angle = prev.Angle
	entry.HasFaces = prev.HasFaces
	entry.GPS = prev.GPS
	entry.Location = prev.Location
	return entry
}

// keepAngle keeps a non-zero rotation already stored for the file over the
// voted one.
func keepAngle(entry photoindex.Entry, live map[string]photoindex.Entry) photoindex.Entry {
	if prev, ok := live[entry.Filename]; ok && prev.Angle != 0 {
		entry.Angle = prev.Angle
	}
	return entry
}

// resolveFile validates an ingest path and returns its media file.
func (b *Builder) resolveFile(p string) (mediaFile, error) {
	root, err := filepath.Abs(b.cfg.MediaDir)
	if err != nil {
		return mediaFile{}, fmt.Errorf("resolve media directory: %w", err)
	}

	path := p
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(p))
	}
	path = filepath.Clean(path)

	name, err := relativeName(root, path)
	if err != nil || name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return mediaFile{}, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	if hasHiddenSegment(name) || !mediatypes.IsIndexable(filepath.Base(path)) {
		return mediaFile{}, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}

	info, err := os.Stat(path)
	if err != nil {
		return mediaFile{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return mediaFile{}, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, p)
	}
	return mediaFile{name: name, path: path, modTime: info.ModTime()}, nil
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
