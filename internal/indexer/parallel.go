package indexer

import (
	"context"
	"sync"
	"time"

	"photo-index/internal/exif"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
	"photo-index/internal/photoindex"
)

// enriched is the entry produced for files[index].
type enriched struct {
	index int
	entry photoindex.Entry
}

// enrichAll enriches files[i] for every i in indices on a pool of
// cfg.Workers goroutines. The returned channel is closed once all workers
// have exited. After ctx is cancelled no new file is started and results of
// files that were in flight are dropped, so a cancelled run only reports
// complete entries.
func (b *Builder) enrichAll(ctx context.Context, files []mediaFile, indices []int) <-chan enriched {
	jobs := make(chan int)
	results := make(chan enriched, b.cfg.Workers)

	var wg sync.WaitGroup
	for w := 0; w < b.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}

				start := time.Now()
				entry := b.enrich(ctx, files[i])
				if ctx.Err() != nil {
					continue
				}
				metrics.IndexFileDuration.Observe(time.Since(start).Seconds())
				metrics.IndexFilesProcessed.WithLabelValues("indexed").Inc()

				results <- enriched{index: i, entry: entry}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, i := range indices {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// gpsValue hands an already extracted coordinate to the location resolver.
type gpsValue exif.GPS

func (g gpsValue) GPS(context.Context, string) (exif.GPS, bool) {
	return exif.GPS(g), true
}

// enrich builds the full entry for one file. Every collaborator degrades to
// its empty result on failure.
func (b *Builder) enrich(ctx context.Context, f mediaFile) photoindex.Entry {
	tags := b.readTags(ctx, f)
	entry := entryFromTags(f.name, tags)

	if gps, ok := exif.GPSFromTags(tags); ok {
		entry.GPS = &photoindex.GPS{Latitude: gps.Latitude, Longitude: gps.Longitude}
		if b.collab.Location != nil {
			_, loc := b.collab.Location.ResolveLocation(ctx, gpsValue(gps), f.path)
			if loc != nil {
				entry.Location = &photoindex.Location{City: loc.City, State: loc.State, Country: loc.Country}
			}
		}
	}

	if b.collab.Rotation != nil {
		result := b.collab.Rotation.InferRotation(ctx, f.path)
		entry.HasFaces = result.Faces > 0
		if b.applyVote(entry) {
			entry.Angle = result.Angle
		}
	}

	return entry
}

// withDefaults builds the entry of an ingested file that is queued for
// enrichment: capture metadata only.
func (b *Builder) withDefaults(ctx context.Context, f mediaFile) photoindex.Entry {
	return entryFromTags(f.name, b.readTags(ctx, f))
}

func (b *Builder) readTags(ctx context.Context, f mediaFile) exif.Tags {
	if b.collab.Tags == nil {
		return nil
	}
	tags, err := b.collab.Tags.ReadTags(ctx, f.path)
	if err != nil {
		logging.Debug("No EXIF tags for %s: %v", f.name, err)
		return nil
	}
	return tags
}

func entryFromTags(name string, tags exif.Tags) photoindex.Entry {
	md := exif.FromTags(tags)
	return photoindex.Entry{Filename: name, Date: md.Date, Camera: md.Camera}
}

// applyVote reports whether the voted angle is used for entry. With an
// orientation cut-off only photos with a known year before it qualify.
func (b *Builder) applyVote(entry photoindex.Entry) bool {
	if b.cfg.OrientationMaxYear <= 0 {
		return true
	}
	year, ok := entry.Year()
	return ok && year < b.cfg.OrientationMaxYear
}
