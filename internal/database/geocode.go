package database

import (
	"context"
	"time"

	"photo-index/internal/geocode"
)

var _ geocode.CacheStore = (*Database)(nil)

// LoadGeocodeCache returns every cached resolution in insertion order.
func (d *Database) LoadGeocodeCache(ctx context.Context) (entries []geocode.CacheEntry, err error) {
	start := time.Now()
	defer func() { recordQuery("geocode_load", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT latitude, longitude, city, state, country
		FROM geocode_cache
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e geocode.CacheEntry
		if err = rows.Scan(&e.Latitude, &e.Longitude, &e.Location.City, &e.Location.State, &e.Location.Country); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	err = rows.Err()
	return entries, err
}

// AppendGeocodeCache stores one resolution.
func (d *Database) AppendGeocodeCache(ctx context.Context, entry geocode.CacheEntry) (err error) {
	start := time.Now()
	defer func() { recordQuery("geocode_insert", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (latitude, longitude, city, state, country) VALUES (?, ?, ?, ?, ?)
	`, entry.Latitude, entry.Longitude, entry.Location.City, entry.Location.State, entry.Location.Country)
	return err
}
