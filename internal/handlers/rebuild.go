package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"photo-index/internal/logging"
)

// Rebuild starts a background index build. A build already in progress
// yields 409.
func (h *Handlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	incremental := queryBool(r, "incremental")
	if err := h.builder.StartBackground(incremental); err != nil {
		writeError(w, "Start index build", err)
		return
	}

	mode := "full"
	if incremental {
		mode = "incremental"
	}
	logging.Info("Index build (%s) started via API", mode)
	writeJSONStatusCode(w, http.StatusAccepted, map[string]string{"status": "started", "mode": mode})
}

// RebuildStatus reports the progress of the current or last build.
func (h *Handlers) RebuildStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.builder.GetProgress())
}

type addRequest struct {
	Paths []string `json:"paths"`
}

// AddPhotos indexes individual files given relative to the media directory.
func (h *Handlers) AddPhotos(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		writeJSONError(w, "Missing paths", http.StatusBadRequest)
		return
	}
	for _, p := range req.Paths {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
			writeJSONError(w, "Paths must be relative to the media directory", http.StatusBadRequest)
			return
		}
	}

	added, err := h.builder.Ingest(r.Context(), req.Paths...)
	if err != nil {
		writeError(w, "Add photos", err)
		return
	}
	writeJSONStatusCode(w, http.StatusCreated, entries(added))
}
