package photoindex

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"photo-index/internal/filesystem"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
)

const (
	// IndexFileName is the snapshot holding all entries.
	IndexFileName = "photo_index.json"
	// DeletedFileName is the snapshot holding the deletion set.
	DeletedFileName = "deleted_photos.json"
)

// Options configures a Store.
type Options struct {
	// Dir holds both snapshots.
	Dir string
	// Retry controls snapshot write retries. Zero value uses the defaults.
	Retry *filesystem.RetryConfig
}

// Store owns the in-memory index and deletion set. Every mutation is written
// to disk before it returns; on a write failure the mutation stays in
// memory, the store is marked dirty and ErrPersistence is returned until a
// later persist succeeds.
type Store struct {
	mu sync.RWMutex

	indexPath   string
	deletedPath string
	retry       filesystem.RetryConfig

	entries []Entry
	byName  map[string]int
	deleted btree.Set[string]

	indexDirty   bool
	deletedDirty bool
	closed       bool
}

// New creates a store rooted at opts.Dir. Call Open before use.
func New(opts Options) *Store {
	retry := filesystem.DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	return &Store{
		indexPath:   filepath.Join(opts.Dir, IndexFileName),
		deletedPath: filepath.Join(opts.Dir, DeletedFileName),
		retry:       retry,
		byName:      make(map[string]int),
	}
}

// IndexPath returns the path of the index snapshot.
func (s *Store) IndexPath() string { return s.indexPath }

// DeletedPath returns the path of the deletion set snapshot.
func (s *Store) DeletedPath() string { return s.deletedPath }

// Open loads both snapshots. Missing files yield an empty store; a corrupt
// file is an error so it is never silently overwritten.
func (s *Store) Open(_ context.Context) error {
	entries, err := ReadSnapshot(s.indexPath)
	if err != nil {
		return err
	}
	names, err := readNames(s.deletedPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repaired := s.setEntriesLocked(entries)
	s.deleted = btree.Set[string]{}
	for _, name := range names {
		if name != "" {
			s.deleted.Insert(name)
		}
	}
	s.closed = false
	s.indexDirty = false
	s.deletedDirty = false

	logging.Info("Index store opened: %d entries, %d deleted (%s)", len(s.entries), s.deleted.Len(), s.indexPath)
	if repaired > 0 {
		logging.Warn("Index store repaired %d entries while loading; they will be rewritten on the next save", repaired)
	}
	return nil
}

// Flush writes any mutation still pending after an earlier persistence
// failure.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Close flushes pending mutations and rejects further ones.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	err := s.persistLocked(ctx)
	s.closed = true
	return err
}

// Dirty reports whether a mutation is waiting to be persisted.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexDirty || s.deletedDirty
}

// Len returns the number of entries, deleted ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns a copy of the entries, optionally without deleted ones.
func (s *Store) All(excludeDeleted bool) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if excludeDeleted && s.deleted.Contains(e.Filename) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ByFilename returns the entry for name. Deleted entries are not returned.
func (s *Store) ByFilename(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byName[name]
	if !ok || s.deleted.Contains(name) {
		return Entry{}, false
	}
	return s.entries[i], true
}

// IsDeleted reports whether name is in the deletion set.
func (s *Store) IsDeleted(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deleted.Contains(name)
}

// FilterByYear returns non-deleted entries whose year lies in [start, end].
// Entries without a year are excluded.
func (s *Store) FilterByYear(start, end int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if s.deleted.Contains(e.Filename) {
			continue
		}
		y, ok := e.Year()
		if ok && y >= start && y <= end {
			out = append(out, e)
		}
	}
	return out
}

// YearRange returns the smallest and largest year among non-deleted entries,
// or DefaultYearRange when none has a year.
func (s *Store) YearRange() YearRange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := YearRange{}
	found := false
	for _, e := range s.entries {
		if s.deleted.Contains(e.Filename) {
			continue
		}
		y, ok := e.Year()
		if !ok {
			continue
		}
		if !found || y < r.Min {
			r.Min = y
		}
		if !found || y > r.Max {
			r.Max = y
		}
		found = true
	}
	if !found {
		return DefaultYearRange
	}
	return r
}

// Deleted returns the deletion set in ascending order.
func (s *Store) Deleted() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, s.deleted.Len())
	s.deleted.Scan(func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// MarkDeleted adds name to the deletion set and persists it.
func (s *Store) MarkDeleted(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing filename", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if !s.deleted.Contains(name) {
		s.deleted.Insert(name)
		s.deletedDirty = true
	}
	return s.persistLocked(ctx)
}

// SetAngle updates the stored rotation of name and persists the index.
func (s *Store) SetAngle(ctx context.Context, name string, angle int) error {
	if !ValidAngle(angle) {
		return fmt.Errorf("%w: angle %d not in {0, 90, 180, 270, -90}", ErrValidation, angle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	i, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if s.entries[i].Angle != angle {
		s.entries[i].Angle = angle
		s.indexDirty = true
	}
	return s.persistLocked(ctx)
}

// Replace swaps the whole index for entries, as produced by a full build,
// and persists it. Duplicate filenames keep their first occurrence.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.setEntriesLocked(entries)
	s.indexDirty = true
	return s.persistLocked(ctx)
}

// Upsert inserts new entries and overwrites existing ones with the same
// filename, then persists the index.
func (s *Store) Upsert(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		if strings.TrimSpace(e.Filename) == "" {
			return fmt.Errorf("%w: entry without filename", ErrValidation)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, e := range entries {
		e, _ = normalize(e)
		if i, ok := s.byName[e.Filename]; ok {
			s.entries[i] = e
		} else {
			s.byName[e.Filename] = len(s.entries)
			s.entries = append(s.entries, e)
		}
	}
	if len(entries) > 0 {
		s.indexDirty = true
	}
	return s.persistLocked(ctx)
}

// GetStats implements metrics.StatsProvider.
func (s *Store) GetStats() metrics.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := metrics.Stats{
		TotalEntries:   len(s.entries),
		DeletedEntries: s.deleted.Len(),
	}
	for _, e := range s.entries {
		if e.HasFaces {
			stats.WithFaces++
		}
		if e.Angle != 0 {
			stats.Rotated++
		}
		if e.Location != nil && !e.Location.IsEmpty() {
			stats.Geocoded++
		}
	}
	return stats
}

// setEntriesLocked installs entries, repairing and de-duplicating them, and
// returns how many were repaired or dropped.
func (s *Store) setEntriesLocked(entries []Entry) int {
	repaired := 0
	s.entries = make([]Entry, 0, len(entries))
	s.byName = make(map[string]int, len(entries))

	for _, e := range entries {
		e, repairs := normalize(e)
		if e.Filename == "" {
			logging.Warn("Dropping index entry without filename")
			repaired++
			continue
		}
		if _, dup := s.byName[e.Filename]; dup {
			logging.Warn("Dropping duplicate index entry for %s", e.Filename)
			repaired++
			continue
		}
		if len(repairs) > 0 {
			logging.Warn("Repaired index entry %s: %s", e.Filename, strings.Join(repairs, "; "))
			repaired++
		}
		s.byName[e.Filename] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return repaired
}

// persistLocked writes whichever snapshots are dirty.
func (s *Store) persistLocked(ctx context.Context) error {
	defer func() {
		if s.indexDirty || s.deletedDirty {
			metrics.StoreDirty.Set(1)
		} else {
			metrics.StoreDirty.Set(0)
		}
	}()

	if s.indexDirty {
		if err := WriteSnapshot(ctx, s.indexPath, "index", s.entries, s.retry); err != nil {
			logging.Error("Index snapshot write failed, keeping mutation pending: %v", err)
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		s.indexDirty = false
	}

	if s.deletedDirty {
		names := make([]string, 0, s.deleted.Len())
		s.deleted.Scan(func(name string) bool {
			names = append(names, name)
			return true
		})
		if err := writeNames(ctx, s.deletedPath, names, s.retry); err != nil {
			logging.Error("Deletion set write failed, keeping mutation pending: %v", err)
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		s.deletedDirty = false
	}

	return nil
}
