package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"photo-index/internal/logging"
	"photo-index/internal/metrics"
	"photo-index/internal/objectstore"
	"photo-index/internal/photoindex"
)

const (
	// NamespaceRotated holds renditions of entries with a non-zero angle.
	NamespaceRotated = "rotated"
	// NamespaceUnrotated holds renditions of entries at angle 0.
	NamespaceUnrotated = "unrotated"

	defaultOriginalsPrefix = "originals"
	defaultCachePrefix     = "cache"
)

// Encoder turns a rendition into bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	ContentType() string
}

// IndexView is the part of the index store the cache reads and updates.
type IndexView interface {
	ByFilename(name string) (photoindex.Entry, bool)
	SetAngle(ctx context.Context, name string, angle int) error
}

// Config configures a DisplayCache.
type Config struct {
	OriginalsPrefix string
	CachePrefix     string
	// Encoder defaults to WebPEncoder.
	Encoder Encoder
	// Throttle, when set, is waited on before each warm-up render.
	Throttle Throttle
}

// Throttle holds back rendering while memory is under pressure.
type Throttle interface {
	Wait(ctx context.Context) error
}

// DisplayCache serves fixed-width display renditions of originals,
// generating and storing them on first request.
type DisplayCache struct {
	index           IndexView
	store           objectstore.Store
	encoder         Encoder
	originalsPrefix string
	cachePrefix     string
	throttle        Throttle

	// rotateMu is held exclusively by Rotate and shared by every other
	// writer of renditions, so no stale render lands after a rotation.
	rotateMu sync.RWMutex
}

// NewDisplayCache creates a cache over store, reading orientation from index.
func NewDisplayCache(index IndexView, store objectstore.Store, cfg Config) *DisplayCache {
	if cfg.OriginalsPrefix == "" {
		cfg.OriginalsPrefix = defaultOriginalsPrefix
	}
	if cfg.CachePrefix == "" {
		cfg.CachePrefix = defaultCachePrefix
	}
	if cfg.Encoder == nil {
		cfg.Encoder = WebPEncoder{Quality: 80}
	}
	return &DisplayCache{
		index:           index,
		store:           store,
		encoder:         cfg.Encoder,
		originalsPrefix: cfg.OriginalsPrefix,
		cachePrefix:     cfg.CachePrefix,
		throttle:        cfg.Throttle,
	}
}

// SetThrottle replaces the throttle used by Warm. It must not be called
// while a warm-up is running.
func (c *DisplayCache) SetThrottle(t Throttle) {
	c.throttle = t
}

// ContentType is the content type of served renditions.
func (c *DisplayCache) ContentType() string {
	return c.encoder.ContentType()
}

// Namespace returns the cache namespace for a stored angle.
func Namespace(angle int) string {
	if normalizeAngle(angle) != 0 {
		return NamespaceRotated
	}
	return NamespaceUnrotated
}

// OriginalKey returns the object key of an original.
func (c *DisplayCache) OriginalKey(filename string) string {
	return objectstore.Join(c.originalsPrefix, filename)
}

// CacheKey returns the object key of the rendition for filename at angle.
func (c *DisplayCache) CacheKey(filename string, angle int) string {
	return objectstore.Join(c.cachePrefix, Namespace(angle), filename+".webp")
}

func (c *DisplayCache) lookup(filename string) (photoindex.Entry, error) {
	entry, ok := c.index.ByFilename(filename)
	if !ok {
		return photoindex.Entry{}, fmt.Errorf("%w: %s", photoindex.ErrNotFound, filename)
	}
	return entry, nil
}

// GetDisplayImage returns the display rendition of filename, generating it
// on a cache miss. Unknown or deleted filenames and missing originals are
// reported as not found.
func (c *DisplayCache) GetDisplayImage(ctx context.Context, filename string) ([]byte, error) {
	c.rotateMu.RLock()
	defer c.rotateMu.RUnlock()

	entry, err := c.lookup(filename)
	if err != nil {
		return nil, err
	}

	ns := Namespace(entry.Angle)
	key := c.CacheKey(filename, entry.Angle)

	data, err := c.store.Get(ctx, key)
	if err == nil {
		metrics.DisplayCacheRequests.WithLabelValues(ns, "hit").Inc()
		logging.Debug("Display cache hit: %s", key)
		return data, nil
	}
	if !errors.Is(err, objectstore.ErrNotFound) {
		// An unreadable cache is treated as a miss.
		logging.Warn("Display cache read failed for %s: %v", key, err)
	}
	metrics.DisplayCacheRequests.WithLabelValues(ns, "miss").Inc()

	img, err := c.fetchOriginal(ctx, filename)
	if err != nil {
		metrics.DisplayCacheRequests.WithLabelValues(ns, "error").Inc()
		return nil, err
	}

	data, err = c.render(img, filename, entry.Angle)
	if err != nil {
		metrics.DisplayCacheRequests.WithLabelValues(ns, "error").Inc()
		return nil, err
	}
	if err := c.put(ctx, key, data); err != nil {
		logging.Warn("Failed to cache display image %s: %v", key, err)
	}
	return data, nil
}

// Rotate turns filename a further 90 degrees clockwise, persists the new
// angle and regenerates its rendition. It returns the new angle.
//
// When the rendition cannot be stored the previous angle is restored, so the
// cached slot never disagrees with the index. When only the index write
// fails the new angle is held in memory, the rendition is still regenerated
// and the persistence error is returned.
func (c *DisplayCache) Rotate(ctx context.Context, filename string) (angle int, err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RotationsTotal.WithLabelValues(status).Inc()
	}()

	c.rotateMu.Lock()
	defer c.rotateMu.Unlock()

	entry, err := c.lookup(filename)
	if err != nil {
		return 0, err
	}

	// Decode before touching the index so a missing original leaves the
	// angle unchanged.
	img, err := c.fetchOriginal(ctx, filename)
	if err != nil {
		return 0, err
	}

	angle = normalizeAngle(entry.Angle + 90)
	data, err := c.render(img, filename, angle)
	if err != nil {
		return 0, err
	}

	var persistErr error
	if err := c.index.SetAngle(ctx, filename, angle); err != nil {
		if !errors.Is(err, photoindex.ErrPersistence) {
			return 0, fmt.Errorf("persist angle for %s: %w", filename, err)
		}
		persistErr = fmt.Errorf("persist angle for %s: %w", filename, err)
	}

	if err := c.put(ctx, c.CacheKey(filename, angle), data); err != nil {
		if rerr := c.index.SetAngle(ctx, filename, entry.Angle); rerr != nil && !errors.Is(rerr, photoindex.ErrPersistence) {
			logging.Error("Failed to restore angle %d of %s: %v", entry.Angle, filename, rerr)
		}
		return 0, fmt.Errorf("store rotated rendition of %s: %w", filename, err)
	}
	if persistErr != nil {
		return angle, persistErr
	}

	logging.Info("Rotated %s to %d degrees", filename, angle)
	return angle, nil
}

func (c *DisplayCache) fetchOriginal(ctx context.Context, filename string) (image.Image, error) {
	start := time.Now()
	data, err := c.store.Get(ctx, c.OriginalKey(filename))
	metrics.DisplayRenderDuration.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch original %s: %w", filename, err)
	}

	start = time.Now()
	img, err := decodeImage(data, filename)
	metrics.DisplayRenderDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("decode original %s: %w", filename, err)
	}
	return img, nil
}

// render rotates, resizes and encodes img for angle.
func (c *DisplayCache) render(img image.Image, filename string, angle int) ([]byte, error) {
	start := time.Now()
	out := renderDisplay(img, angle)
	metrics.DisplayRenderDuration.WithLabelValues("transform").Observe(time.Since(start).Seconds())

	start = time.Now()
	data, err := c.encoder.Encode(out)
	metrics.DisplayRenderDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", filename, err)
	}

	return data, nil
}

func (c *DisplayCache) put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := c.store.Put(ctx, key, data, c.encoder.ContentType())
	metrics.DisplayRenderDuration.WithLabelValues("store").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DisplayCachePutErrors.Inc()
		return err
	}
	logging.Debug("Display image cached: %s", key)
	return nil
}

// WarmResult summarizes a Warm run.
type WarmResult struct {
	Generated int
	Skipped   int
	Failed    int
}

// Warm generates missing renditions for entries using up to workers
// goroutines. progress, when set, is called after each entry.
func (c *DisplayCache) Warm(ctx context.Context, entries []photoindex.Entry, workers int, progress func(done, total int)) (WarmResult, error) {
	if err := ctx.Err(); err != nil {
		return WarmResult{}, err
	}

	existing := make(map[string]struct{})
	for _, ns := range []string{NamespaceRotated, NamespaceUnrotated} {
		keys, err := c.store.List(ctx, objectstore.Join(c.cachePrefix, ns)+"/")
		if err != nil {
			return WarmResult{}, fmt.Errorf("list cached renditions: %w", err)
		}
		for _, k := range keys {
			existing[k] = struct{}{}
		}
	}

	if workers < 1 {
		workers = 1
	}

	var (
		generated, skipped, failed, done atomic.Int64
		wg                               sync.WaitGroup
	)
	jobs := make(chan photoindex.Entry)
	total := len(entries)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				if _, ok := existing[c.CacheKey(entry.Filename, entry.Angle)]; ok {
					skipped.Add(1)
				} else if err := c.warmOne(ctx, entry); err != nil {
					failed.Add(1)
					logging.Warn("Cache warm failed for %s: %v", entry.Filename, err)
				} else {
					generated.Add(1)
				}
				n := done.Add(1)
				if progress != nil {
					progress(int(n), total)
				}
			}
		}()
	}

	var err error
feed:
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- entry:
		}
	}
	close(jobs)
	wg.Wait()

	result := WarmResult{
		Generated: int(generated.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	logging.Info("Cache warm: %d generated, %d already cached, %d failed", result.Generated, result.Skipped, result.Failed)
	return result, err
}

func (c *DisplayCache) warmOne(ctx context.Context, entry photoindex.Entry) error {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return err
		}
	}

	c.rotateMu.RLock()
	defer c.rotateMu.RUnlock()

	// The listed angle may predate a rotation.
	entry, err := c.lookup(entry.Filename)
	if err != nil {
		return err
	}
	img, err := c.fetchOriginal(ctx, entry.Filename)
	if err != nil {
		return err
	}
	data, err := c.render(img, entry.Filename, entry.Angle)
	if err != nil {
		return err
	}
	return c.put(ctx, c.CacheKey(entry.Filename, entry.Angle), data)
}
