// Package geocode resolves photo coordinates to a city, state and country.
//
// A Resolver keeps every successful resolution and reuses it for any later
// point within DefaultThresholdKm (great-circle distance), so a photo album
// taken in one place costs a single provider call. Resolutions can be
// persisted through a CacheStore. The provider is a Nominatim-compatible
// reverse geocoding API.
package geocode
