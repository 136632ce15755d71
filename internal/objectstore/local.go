package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/renameio"

	"photo-index/internal/filesystem"
)

// Local stores each object as a file below a root directory. Content types
// are not persisted.
type Local struct {
	root  string
	retry filesystem.RetryConfig
}

// NewLocal creates a store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Local{root: dir, retry: filesystem.DefaultRetryConfig()}, nil
}

func (*Local) Name() string {
	return "local"
}

// Root returns the store's base directory.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

func (l *Local) Get(_ context.Context, key string) (data []byte, err error) {
	defer func(start time.Time) { observe("local", "get", start, err) }(time.Now())

	p, err := l.path(key)
	if err != nil {
		return nil, err
	}
	data, err = os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (l *Local) Put(ctx context.Context, key string, data []byte, _ string) (err error) {
	defer func(start time.Time) { observe("local", "put", start, err) }(time.Now())

	p, err := l.path(key)
	if err != nil {
		return err
	}
	return filesystem.WriteWithRetry(ctx, p, l.retry, func() error {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		return renameio.WriteFile(p, data, 0o644)
	})
}

func (l *Local) List(ctx context.Context, prefix string) (keys []string, err error) {
	defer func(start time.Time) { observe("local", "list", start, err) }(time.Now())

	// Walk from the deepest directory fully named by the prefix.
	base := ""
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		base = prefix[:i]
	}
	walkRoot := filepath.Join(l.root, filepath.FromSlash(base))

	err = filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		// renameio temp files
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(keys)
	return keys, nil
}

func (l *Local) Exists(_ context.Context, key string) (ok bool, err error) {
	defer func(start time.Time) { observe("local", "exists", start, err) }(time.Now())

	p, err := l.path(key)
	if err != nil {
		return false, err
	}
	info, err := filesystem.StatWithRetry(p, l.retry)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
