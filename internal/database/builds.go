package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// StartBuild records the start of an index build and returns its run ID.
func (d *Database) StartBuild(ctx context.Context, mode BuildMode, startedAt time.Time) (id string, err error) {
	start := time.Now()
	defer func() { recordQuery("build_start", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id = uuid.NewString()
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO index_builds (id, mode, status, started_at) VALUES (?, ?, ?, ?)
	`, id, string(mode), string(BuildStatusRunning), startedAt.UnixMilli())
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishBuild records the outcome of the build with the given run ID.
func (d *Database) FinishBuild(ctx context.Context, id string, result BuildResult) (err error) {
	start := time.Now()
	defer func() { recordQuery("build_finish", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var errText sql.NullString
	if result.Err != nil {
		errText = sql.NullString{String: result.Err.Error(), Valid: true}
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE index_builds
		SET status = ?, finished_at = ?, files_indexed = ?, files_reused = ?, error = ?
		WHERE id = ?
	`, string(result.Status), time.Now().UnixMilli(), result.FilesIndexed, result.FilesReused, errText, id)
	return err
}

// RecentBuilds returns up to limit builds, newest first.
func (d *Database) RecentBuilds(ctx context.Context, limit int) (builds []BuildRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("build_list", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, mode, status, started_at, finished_at, files_indexed, files_reused, error
		FROM index_builds
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      BuildRecord
			mode     string
			status   string
			started  int64
			finished sql.NullInt64
			errText  sql.NullString
		)
		if err = rows.Scan(&rec.ID, &mode, &status, &started, &finished, &rec.FilesIndexed, &rec.FilesReused, &errText); err != nil {
			return nil, err
		}
		rec.Mode = BuildMode(mode)
		rec.Status = BuildStatus(status)
		rec.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			t := time.UnixMilli(finished.Int64)
			rec.FinishedAt = &t
		}
		rec.Error = errText.String
		builds = append(builds, rec)
	}
	err = rows.Err()
	return builds, err
}
