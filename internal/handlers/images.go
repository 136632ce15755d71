package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ServeImage returns the display rendition of a photo.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if filename == "" {
		writeJSONError(w, "Missing filename", http.StatusBadRequest)
		return
	}

	data, err := h.images.GetDisplayImage(r.Context(), filename)
	if err != nil {
		writeError(w, "Serve image", err)
		return
	}

	w.Header().Set("Content-Type", h.images.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	// Rotation replaces the rendition behind the same URL.
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		return
	}
}

// RotatePhoto turns a photo a quarter turn clockwise.
func (h *Handlers) RotatePhoto(w http.ResponseWriter, r *http.Request) {
	filename, ok := readFilename(w, r)
	if !ok {
		return
	}

	angle, err := h.images.Rotate(r.Context(), filename)
	if err != nil {
		writeError(w, "Rotate photo", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"status":   "rotated",
		"angle":    angle,
		"filename": filename,
	})
}
