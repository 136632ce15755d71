package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"photo-index/internal/logging"
	"photo-index/internal/mediatypes"
)

// mediaFile is one indexable file found under the media root.
type mediaFile struct {
	name    string // index filename
	path    string // on-disk path
	modTime time.Time
}

// walkMedia lists the indexable files under root in lexical order. Hidden
// entries and "._" sidecars are skipped, hidden directories with all their
// contents. Unreadable entries are logged and skipped; only an unreadable
// root fails the walk.
func walkMedia(ctx context.Context, root string) ([]mediaFile, error) {
	var files []mediaFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}

		base := d.Name()
		if mediatypes.IsHidden(base) || mediatypes.IsSidecar(base) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !mediatypes.IsIndexable(base) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Error getting info for %s: %v", path, err)
			return nil
		}
		name, err := relativeName(root, path)
		if err != nil {
			logging.Warn("Skipping %s: %v", path, err)
			return nil
		}

		files = append(files, mediaFile{name: name, path: path, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	logging.Debug("Found %d indexable files under %s", len(files), root)
	return files, nil
}

// relativeName turns path into an index filename: relative to root,
// forward-slash separated and NFC-normalized.
func relativeName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	rel = strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
	return norm.NFC.String(rel), nil
}

// sourcePath maps an index filename back to the file on disk. Names that
// were NFC-normalized from a decomposed on-disk form are tried in NFD as
// well.
func sourcePath(root, name string) string {
	path := filepath.Join(root, filepath.FromSlash(name))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	alt := filepath.Join(root, filepath.FromSlash(norm.NFD.String(name)))
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return path
}

// hasHiddenSegment reports whether any element of a slash-separated
// relative path is hidden.
func hasHiddenSegment(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if mediatypes.IsHidden(segment) {
			return true
		}
	}
	return false
}
