package handlers

import (
	"net/http"

	"photo-index/internal/photoindex"
	"photo-index/internal/sampling"
)

const (
	defaultChunkSize = 15
	sampleSize       = 3
)

// GetFullIndex returns every entry that is not deleted.
func (h *Handlers) GetFullIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries(h.store.All(true)))
}

// GetSample returns the first few entries, for quick inspection.
func (h *Handlers) GetSample(w http.ResponseWriter, _ *http.Request) {
	all := h.store.All(true)
	if len(all) > sampleSize {
		all = all[:sampleSize]
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries(all))
}

// GetRange returns the entries whose year lies in [from, to].
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearBounds(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries(h.store.FilterByYear(from, to)))
}

// GetYearRange returns the smallest and largest known year.
func (h *Handlers) GetYearRange(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.store.YearRange())
}

// GetRandomChunk returns up to size random entries of the filtered view that
// have not been served since the view's buffer was last reset.
func (h *Handlers) GetRandomChunk(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearBounds(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := queryInt(r, "size", defaultChunkSize)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sig := sampling.Signature{From: from, To: to, HasFaces: queryBool(r, "hasFaces")}
	view := h.store.FilterByYear(from, to)
	if sig.HasFaces {
		view = withFaces(view)
	}

	chunk := h.sampler.NextChunk(sig, view, size, queryBool(r, "clear"))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries(chunk))
}

func withFaces(view []photoindex.Entry) []photoindex.Entry {
	out := view[:0:0]
	for _, e := range view {
		if e.HasFaces {
			out = append(out, e)
		}
	}
	return out
}

// ClearBuffer forgets what every view has served.
func (h *Handlers) ClearBuffer(w http.ResponseWriter, _ *http.Request) {
	h.sampler.ClearAll()
	writeJSONStatus(w, "buffer cleared")
}

// DeletePhoto adds a filename to the deletion set.
func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	filename, ok := readFilename(w, r)
	if !ok {
		return
	}
	if err := h.store.MarkDeleted(r.Context(), filename); err != nil {
		writeError(w, "Delete photo", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "deleted", "filename": filename})
}

// GetDeleted returns the deletion set in sorted order.
func (h *Handlers) GetDeleted(w http.ResponseWriter, _ *http.Request) {
	names := h.store.Deleted()
	if names == nil {
		names = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, names)
}
