package photoindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"

	"photo-index/internal/filesystem"
	"photo-index/internal/metrics"
)

// ReadSnapshot loads a JSON array of entries. A missing file yields an
// empty slice and no error.
func ReadSnapshot(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// WriteSnapshot atomically replaces path with the indented JSON encoding of
// entries. label names the snapshot in metrics.
func WriteSnapshot(ctx context.Context, path, label string, entries []Entry, retry filesystem.RetryConfig) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeAtomic(ctx, path, label, data, retry)
}

func readNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return names, nil
}

func writeNames(ctx context.Context, path string, names []string, retry filesystem.RetryConfig) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode deletion set: %w", err)
	}
	return writeAtomic(ctx, path, "deleted", data, retry)
}

func writeAtomic(ctx context.Context, path, label string, data []byte, retry filesystem.RetryConfig) error {
	start := time.Now()
	defer func() {
		metrics.StorePersistDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	err := filesystem.WriteWithRetry(ctx, path, retry, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return renameio.WriteFile(path, data, 0o644)
	})
	if err != nil {
		metrics.StorePersistFailures.WithLabelValues(label).Inc()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
