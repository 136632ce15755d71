package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"photo-index/internal/indexer"
	"photo-index/internal/logging"
	"photo-index/internal/objectstore"
	"photo-index/internal/photoindex"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response writer.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatusCode writes v as JSON with the given status code.
func writeJSONStatusCode(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatusCode(w, statusCode, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeError maps err to a status code and writes it as a JSON error.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, photoindex.ErrNotFound):
		writeJSONError(w, "Photo not found", http.StatusNotFound)
	case errors.Is(err, objectstore.ErrNotFound):
		writeJSONError(w, "Original image not found", http.StatusNotFound)
	case errors.Is(err, photoindex.ErrValidation), errors.Is(err, indexer.ErrInvalidPath):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, indexer.ErrBuildInProgress):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Warn("%s: %v", op, err)
		writeJSONError(w, "Request cancelled", http.StatusServiceUnavailable)
	default:
		logging.Error("%s: %v", op, err)
		writeJSONError(w, op+" failed", http.StatusInternalServerError)
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// filenameRequest is the body of the delete and rotate endpoints.
type filenameRequest struct {
	Filename string `json:"filename"`
}

// readFilename returns the filename of a filenameRequest body, writing a 400
// response and returning false when it is missing.
func readFilename(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req filenameRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return "", false
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeJSONError(w, "Missing filename", http.StatusBadRequest)
		return "", false
	}
	return req.Filename, true
}

// queryInt returns the integer query parameter key, or def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + strconv.Quote(raw))
	}
	return v, nil
}

// queryBool is true only for a case-insensitive "true".
func queryBool(r *http.Request, key string) bool {
	return strings.EqualFold(r.URL.Query().Get(key), "true")
}

// yearBounds reads the from/to query parameters.
func yearBounds(r *http.Request) (from, to int, err error) {
	if from, err = queryInt(r, "from", 1900); err != nil {
		return 0, 0, err
	}
	if to, err = queryInt(r, "to", photoindex.SentinelYear); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// entries never encodes as null.
func entries(list []photoindex.Entry) []photoindex.Entry {
	if list == nil {
		return []photoindex.Entry{}
	}
	return list
}
