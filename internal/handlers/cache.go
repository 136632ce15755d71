package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"photo-index/internal/filesystem"
	"photo-index/internal/logging"
	"photo-index/internal/photoindex"

	"github.com/gorilla/mux"
)

// GetCacheFile serves the raw index snapshots.
func (h *Handlers) GetCacheFile(w http.ResponseWriter, r *http.Request) {
	var path string
	switch mux.Vars(r)["name"] {
	case photoindex.IndexFileName:
		path = h.store.IndexPath()
	case photoindex.DeletedFileName:
		path = h.store.DeletedPath()
	default:
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if errors.Is(err, fs.ErrNotExist) {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("Open snapshot %s: %v", path, err)
		writeJSONError(w, "Failed to read snapshot", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("Stat snapshot %s: %v", path, err)
		writeJSONError(w, "Failed to read snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
