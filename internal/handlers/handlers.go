package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"photo-index/internal/indexer"
	"photo-index/internal/photoindex"
	"photo-index/internal/sampling"
)

// IndexStore is the part of the index store the API reads and mutates.
type IndexStore interface {
	Len() int
	All(excludeDeleted bool) []photoindex.Entry
	FilterByYear(start, end int) []photoindex.Entry
	YearRange() photoindex.YearRange
	Deleted() []string
	MarkDeleted(ctx context.Context, name string) error
	IndexPath() string
	DeletedPath() string
}

// Builder runs index builds and ingests individual files.
type Builder interface {
	StartBackground(incremental bool) error
	GetProgress() indexer.Progress
	IsRunning() bool
	Ingest(ctx context.Context, paths ...string) ([]photoindex.Entry, error)
}

// ImageCache serves display renditions and rotates them.
type ImageCache interface {
	GetDisplayImage(ctx context.Context, filename string) ([]byte, error)
	Rotate(ctx context.Context, filename string) (int, error)
	ContentType() string
}

// Sampler hands out random chunks of a filtered view.
type Sampler interface {
	NextChunk(sig sampling.Signature, view []photoindex.Entry, size int, clear bool) []photoindex.Entry
	ClearAll()
}

// Handlers holds the dependencies of the HTTP API.
type Handlers struct {
	store   IndexStore
	builder Builder
	images  ImageCache
	sampler Sampler

	startTime time.Time
	ready     atomic.Bool
}

// New creates the API handlers. The service reports ready once SetReady is
// called.
func New(store IndexStore, builder Builder, images ImageCache, sampler Sampler) *Handlers {
	return &Handlers{
		store:     store,
		builder:   builder,
		images:    images,
		sampler:   sampler,
		startTime: time.Now(),
	}
}

// SetReady marks the service as ready (or not) to accept traffic.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}
