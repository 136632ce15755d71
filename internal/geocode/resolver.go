package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"photo-index/internal/exif"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
)

// DefaultThresholdKm is the radius within which a cached resolution is reused.
const DefaultThresholdKm = 5.0

// Location is a resolved locality. The zero value is the "attempted but
// unresolved" result.
type Location struct {
	City    string
	State   string
	Country string
}

// IsEmpty reports whether no component is set.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.State == "" && l.Country == ""
}

// CacheEntry is one remembered resolution.
type CacheEntry struct {
	Latitude  float64
	Longitude float64
	Location  Location
}

// CacheStore persists cache entries across runs.
type CacheStore interface {
	LoadGeocodeCache(ctx context.Context) ([]CacheEntry, error)
	AppendGeocodeCache(ctx context.Context, entry CacheEntry) error
}

// GPSSource reads a coordinate from a file.
type GPSSource interface {
	GPS(ctx context.Context, path string) (exif.GPS, bool)
}

// Config configures a Resolver.
type Config struct {
	// ThresholdKm defaults to DefaultThresholdKm.
	ThresholdKm float64
	// Timeout bounds each provider call. Zero disables the bound.
	Timeout time.Duration
	// Store persists resolutions; optional.
	Store CacheStore
}

// Resolver turns coordinates into localities, reusing any earlier
// resolution within the threshold distance before calling the provider.
type Resolver struct {
	geocoder    ReverseGeocoder
	store       CacheStore
	thresholdKm float64
	timeout     time.Duration

	// mu is held across lookup and provider call so two nearby points never
	// both miss the cache.
	mu      sync.Mutex
	entries []CacheEntry
}

// NewResolver creates a resolver. A nil geocoder disables provider calls;
// cached entries are still served.
func NewResolver(geocoder ReverseGeocoder, cfg Config) *Resolver {
	if cfg.ThresholdKm <= 0 {
		cfg.ThresholdKm = DefaultThresholdKm
	}
	return &Resolver{
		geocoder:    geocoder,
		store:       cfg.Store,
		thresholdKm: cfg.ThresholdKm,
		timeout:     cfg.Timeout,
	}
}

// Load reads persisted entries into memory.
func (r *Resolver) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	entries, err := r.store.LoadGeocodeCache(ctx)
	if err != nil {
		return fmt.Errorf("load geocode cache: %w", err)
	}

	r.mu.Lock()
	r.entries = append(r.entries[:0], entries...)
	n := len(r.entries)
	r.mu.Unlock()

	metrics.GeocodeCacheEntries.Set(float64(n))
	logging.Info("Geocode cache loaded: %d entries", n)
	return nil
}

// Len returns the number of cached resolutions.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Enabled reports whether a provider is configured.
func (r *Resolver) Enabled() bool {
	return r.geocoder != nil
}

// lookupLocked returns the first cached resolution within the threshold.
func (r *Resolver) lookupLocked(gps exif.GPS) (Location, bool) {
	for _, e := range r.entries {
		if DistanceKm(gps.Latitude, gps.Longitude, e.Latitude, e.Longitude) <= r.thresholdKm {
			return e.Location, true
		}
	}
	return Location{}, false
}

// Resolve returns the locality of gps. Any failure yields an empty
// Location; failures are not cached.
func (r *Resolver) Resolve(ctx context.Context, gps exif.GPS) Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loc, ok := r.lookupLocked(gps); ok {
		metrics.GeocodeLookupsTotal.WithLabelValues("hit").Inc()
		return loc
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("miss").Inc()

	if r.geocoder == nil {
		return Location{}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	addr, err := r.geocoder.Reverse(callCtx, gps.Latitude, gps.Longitude)
	if err != nil {
		status := "error"
		if errors.Is(err, ErrNoAddress) {
			status = "no_address"
		}
		metrics.GeocodeProviderCalls.WithLabelValues(status).Inc()
		logging.Warn("Reverse geocoding (%.5f, %.5f) failed: %v", gps.Latitude, gps.Longitude, err)
		return Location{}
	}

	loc := fromAddress(addr)
	if loc.IsEmpty() {
		metrics.GeocodeProviderCalls.WithLabelValues("no_address").Inc()
		logging.Debug("Reverse geocoding (%.5f, %.5f) returned no usable components", gps.Latitude, gps.Longitude)
		return Location{}
	}
	metrics.GeocodeProviderCalls.WithLabelValues("success").Inc()

	entry := CacheEntry{Latitude: gps.Latitude, Longitude: gps.Longitude, Location: loc}
	r.entries = append(r.entries, entry)
	metrics.GeocodeCacheEntries.Set(float64(len(r.entries)))

	if r.store != nil {
		if err := r.store.AppendGeocodeCache(ctx, entry); err != nil {
			logging.Warn("Failed to persist geocode cache entry: %v", err)
		}
	}
	return loc
}

// ResolveLocation reads the coordinate of path and resolves it. A file
// without GPS yields (nil, nil); with a disabled provider and no cached
// match the location is nil as well.
func (r *Resolver) ResolveLocation(ctx context.Context, src GPSSource, path string) (*exif.GPS, *Location) {
	gps, ok := src.GPS(ctx, path)
	if !ok {
		return nil, nil
	}
	if !r.Enabled() {
		r.mu.Lock()
		loc, hit := r.lookupLocked(gps)
		r.mu.Unlock()
		if !hit {
			return &gps, nil
		}
		return &gps, &loc
	}
	loc := r.Resolve(ctx, gps)
	return &gps, &loc
}

// fromAddress picks city, falling back to town then village.
func fromAddress(a Address) Location {
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}
	return Location{City: city, State: a.State, Country: a.Country}
}
