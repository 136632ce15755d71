package database

import (
	"context"
	"time"

	"photo-index/internal/metrics"
)

// EnqueueEnrichment queues filenames whose entries still carry defaults.
// Already-queued names are left as they are.
func (d *Database) EnqueueEnrichment(ctx context.Context, filenames ...string) (err error) {
	if len(filenames) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { recordQuery("enrichment_enqueue", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO pending_enrichment (filename) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range filenames {
		if _, err = stmt.ExecContext(ctx, name); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	d.updatePendingGauge(ctx)
	return nil
}

// PendingEnrichment returns up to limit queued filenames, oldest first.
// A limit <= 0 returns all of them.
func (d *Database) PendingEnrichment(ctx context.Context, limit int) (names []string, err error) {
	start := time.Now()
	defer func() { recordQuery("enrichment_pending", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT filename FROM pending_enrichment
		ORDER BY queued_at, filename
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	err = rows.Err()
	return names, err
}

// MarkEnriched removes filenames from the queue.
func (d *Database) MarkEnriched(ctx context.Context, filenames ...string) (err error) {
	if len(filenames) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { recordQuery("enrichment_done", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, name := range filenames {
		if _, err = d.db.ExecContext(ctx, `DELETE FROM pending_enrichment WHERE filename = ?`, name); err != nil {
			return err
		}
	}

	d.updatePendingGauge(ctx)
	return nil
}

// RecordEnrichmentAttempt bumps the attempt counter of a queued filename.
func (d *Database) RecordEnrichmentAttempt(ctx context.Context, filename string) (err error) {
	start := time.Now()
	defer func() { recordQuery("enrichment_attempt", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `UPDATE pending_enrichment SET attempts = attempts + 1 WHERE filename = ?`, filename)
	return err
}

// updatePendingGauge refreshes the queue length gauge. Caller holds d.mu.
func (d *Database) updatePendingGauge(ctx context.Context) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_enrichment`).Scan(&n); err == nil {
		metrics.PendingEnrichment.Set(float64(n))
	}
}
