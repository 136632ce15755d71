package indexer

import (
	"context"

	"photo-index/internal/logging"
	"photo-index/internal/metrics"
	"photo-index/internal/photoindex"
)

// buildStats counts how the entries of a build were obtained.
type buildStats struct {
	indexed int
	reused  int
}

// collect walks the media tree and produces the entries of a build,
// reusing checkpointed and, in incremental mode, unchanged entries.
func (b *Builder) collect(ctx context.Context, incremental bool) ([]photoindex.Entry, buildStats, error) {
	var stats buildStats

	files, err := walkMedia(ctx, b.cfg.MediaDir)
	if err != nil {
		return nil, stats, err
	}

	reuse := b.reusable(ctx, files, incremental)
	slots := make([]*photoindex.Entry, len(files))
	var pending []int
	for i, f := range files {
		if e, ok := reuse[f.name]; ok {
			slots[i] = &e
			stats.reused++
			continue
		}
		pending = append(pending, i)
	}
	metrics.IndexFilesProcessed.WithLabelValues("reused").Add(float64(stats.reused))

	b.updateProgress(func(p *Progress) {
		p.Total = len(files)
		p.Reused = stats.reused
	})
	logging.Info("Indexing %d files (%d reused, %d workers)", len(pending), stats.reused, b.cfg.Workers)

	sinceCheckpoint := 0
	for r := range b.enrichAll(ctx, files, pending) {
		entry := r.entry
		slots[r.index] = &entry
		stats.indexed++
		sinceCheckpoint++

		indexed := stats.indexed
		b.updateProgress(func(p *Progress) { p.Processed = indexed })

		if sinceCheckpoint >= b.cfg.CheckpointInterval {
			sinceCheckpoint = 0
			b.writeCheckpoint(ctx, compact(slots))
			logging.Info("Indexed %d/%d files...", indexed, len(pending))
		}
	}

	entries := compact(slots)
	if err := ctx.Err(); err != nil {
		b.writeCheckpoint(context.WithoutCancel(ctx), entries)
		return entries, stats, err
	}
	return entries, stats, nil
}

// reusable returns the entries that need no processing: those of a
// previous interrupted build and, in incremental mode, live entries of
// files not modified since the last successful build.
func (b *Builder) reusable(ctx context.Context, files []mediaFile, incremental bool) map[string]photoindex.Entry {
	reuse := make(map[string]photoindex.Entry)

	checkpoint, err := photoindex.ReadSnapshot(b.CheckpointPath())
	if err != nil {
		logging.Warn("Ignoring unreadable checkpoint: %v", err)
	} else if len(checkpoint) > 0 {
		for _, e := range checkpoint {
			if _, dup := reuse[e.Filename]; !dup {
				reuse[e.Filename] = e
			}
		}
		logging.Info("Resuming from checkpoint with %d entries", len(reuse))
	}

	if !incremental {
		return reuse
	}
	if b.history == nil {
		logging.Warn("Incremental build without build history; processing every file")
		return reuse
	}

	lastBuild, err := b.history.GetLastIndexBuild(ctx)
	if err != nil {
		logging.Warn("Failed to read last index build time: %v", err)
		return reuse
	}
	if lastBuild.IsZero() {
		logging.Info("No previous successful build; processing every file")
		return reuse
	}

	live := make(map[string]photoindex.Entry)
	for _, e := range b.store.All(false) {
		live[e.Filename] = e
	}
	for _, f := range files {
		if _, ok := reuse[f.name]; ok {
			continue
		}
		if e, ok := live[f.name]; ok && !f.modTime.After(lastBuild) {
			reuse[f.name] = e
		}
	}
	return reuse
}

func (b *Builder) writeCheckpoint(ctx context.Context, entries []photoindex.Entry) {
	if err := photoindex.WriteSnapshot(ctx, b.CheckpointPath(), "checkpoint", entries, b.retry); err != nil {
		logging.Warn("Failed to write checkpoint: %v", err)
		metrics.IndexBuildErrors.Inc()
		return
	}
	metrics.IndexCheckpointsTotal.Inc()
	logging.Debug("Checkpoint written: %d entries", len(entries))
}

// compact returns the filled slots in walk order.
func compact(slots []*photoindex.Entry) []photoindex.Entry {
	entries := make([]photoindex.Entry, 0, len(slots))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries
}
