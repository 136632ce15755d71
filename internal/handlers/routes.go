package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes registers every API route on r.
func (h *Handlers) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/serve-image/{filename:.+}", h.ServeImage).Methods(http.MethodGet)
	r.HandleFunc("/cache/{name}", h.GetCacheFile).Methods(http.MethodGet)
	r.HandleFunc("/deleted-photos", h.GetDeleted).Methods(http.MethodGet)

	idx := r.PathPrefix("/photo-index").Subrouter()
	idx.HandleFunc("/full", h.GetFullIndex).Methods(http.MethodGet)
	idx.HandleFunc("/sample", h.GetSample).Methods(http.MethodGet)
	idx.HandleFunc("/range", h.GetRange).Methods(http.MethodGet)
	idx.HandleFunc("/range-of-years", h.GetYearRange).Methods(http.MethodGet)
	idx.HandleFunc("/random-chunk", h.GetRandomChunk).Methods(http.MethodGet)
	idx.HandleFunc("/clear-buffer", h.ClearBuffer).Methods(http.MethodGet, http.MethodPost)
	idx.HandleFunc("/delete", h.DeletePhoto).Methods(http.MethodPost)
	idx.HandleFunc("/rotate", h.RotatePhoto).Methods(http.MethodPost)
	idx.HandleFunc("/add", h.AddPhotos).Methods(http.MethodPost)
	idx.HandleFunc("/rebuild", h.Rebuild).Methods(http.MethodGet, http.MethodPost)
	idx.HandleFunc("/rebuild/status", h.RebuildStatus).Methods(http.MethodGet)
}

// NewRouter returns a router with every API route registered.
func (h *Handlers) NewRouter() *mux.Router {
	r := mux.NewRouter()
	h.Routes(r)
	return r
}
