package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photo-index/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResponseWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404 after repeated WriteHeader", rw.statusCode)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("recorder code = %d, want 404", w.Code)
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	data := []byte("test data")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if rw.bytesWritten != int64(len(data)) {
		t.Errorf("bytesWritten = %d, want %d", rw.bytesWritten, len(data))
	}
	if !rw.wroteHeader {
		t.Error("Expected wroteHeader to be true after Write")
	}
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
		want   bool
	}{
		{name: "regular request", path: "/photo-index/full", config: DefaultLoggingConfig(), want: false},
		{name: "health skipped by default", path: "/healthz", config: DefaultLoggingConfig(), want: true},
		{name: "health logged when enabled", path: "/health", config: LoggingConfig{LogHealthChecks: true}, want: false},
		{name: "skip prefix", path: "/cache/photo_index.json", config: LoggingConfig{SkipPaths: []string{"/cache/"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkip(tt.path, tt.config); got != tt.want {
				t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line break"},
		{"cr\rlf", "cr lf"},
		{"nul\x00byte", "nulbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for list", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.2.3.4:5", want: "10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.9"}, remote: "1.2.3.4:5", want: "10.0.0.9"},
		{name: "remote addr", remote: "192.168.1.4:5123", want: "192.168.1.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAccessLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/photo-index/range?from=2004&to=2005", http.NoBody)
	req.RemoteAddr = "10.1.1.1:4000"
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11)")
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusTeapot)
	_, _ = rw.Write([]byte("abc"))

	line := formatAccessLine(req, rw, 42*time.Millisecond)

	fields := []string{"10.1.1.1", "GET", "/photo-index/range", "from=2004&to=2005", "418", " 3 ", " 42 ", `"Mozilla/5.0 (X11)"`}
	for _, f := range fields {
		if !strings.Contains(line, f) {
			t.Errorf("access line %q missing %q", line, f)
		}
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(LoggingConfig{SlowThreshold: time.Nanosecond})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/photo-index/rebuild", http.NoBody))

	if w.Code != http.StatusAccepted || w.Body.String() != "ok" {
		t.Errorf("response = %d %q, want 202 ok", w.Code, w.Body.String())
	}
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"filename":"2004/a.jpg"},`, 100)

	tests := []struct {
		name           string
		acceptEncoding string
		contentType    string
		body           string
		wantGzip       bool
	}{
		{name: "large json", acceptEncoding: "gzip", contentType: "application/json", body: large, wantGzip: true},
		{name: "json with charset", acceptEncoding: "gzip, deflate", contentType: "application/json; charset=utf-8", body: large, wantGzip: true},
		{name: "small json", acceptEncoding: "gzip", contentType: "application/json", body: `{"status":"ok"}`, wantGzip: false},
		{name: "webp image", acceptEncoding: "gzip", contentType: "image/webp", body: large, wantGzip: false},
		{name: "client without gzip", acceptEncoding: "", contentType: "application/json", body: large, wantGzip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusCreated)
				// Two writes so the decision spans a buffer boundary.
				half := len(tt.body) / 2
				_, _ = w.Write([]byte(tt.body[:half]))
				_, _ = w.Write([]byte(tt.body[half:]))
			}))

			req := httptest.NewRequest(http.MethodGet, "/photo-index/full", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("status = %d, want 201", w.Code)
			}

			gotGzip := w.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}

			body := w.Body.Bytes()
			if gotGzip {
				zr, err := gzip.NewReader(bytes.NewReader(body))
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				body, err = io.ReadAll(zr)
				if err != nil {
					t.Fatalf("reading gzip body: %v", err)
				}
			}
			if string(body) != tt.body {
				t.Errorf("body length = %d, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{name: "no list allows all", allowed: nil, origin: "http://gallery.example", wantOrigin: "*"},
		{name: "listed origin", allowed: []string{"http://gallery.example/"}, origin: "http://gallery.example", wantOrigin: "http://gallery.example"},
		{name: "localhost always", allowed: []string{"http://gallery.example"}, origin: "http://localhost:3000", wantOrigin: "http://localhost:3000"},
		{name: "localhost lookalike", allowed: []string{"http://gallery.example"}, origin: "http://localhost.evil.example", wantOrigin: ""},
		{name: "unlisted origin", allowed: []string{"http://gallery.example"}, origin: "http://other.example", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/photo-index/full", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := CORS(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/photo-index/rotate", http.NoBody)
	req.Header.Set("Origin", "http://gallery.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if called {
		t.Error("preflight reached the wrapped handler")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/photo-index/full", "/photo-index/full"},
		{"/health", "/health"},
		{"/serve-image/2004/trip/a.jpg", "/serve-image/2004/{path}"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/serve-image/{filename:.+}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/serve-image/{filename:.+}", "404")
	before := testutil.ToFloat64(counter)

	for _, name := range []string{"2004/a.jpg", "2005/b.jpg"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/serve-image/"+name, http.NoBody))
	}
	healthBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("route counter increased by %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")); got != healthBefore {
		t.Errorf("health requests were recorded")
	}
}

func BenchmarkCompressionMiddleware(b *testing.B) {
	body := []byte(strings.Repeat(`{"filename":"2004/a.jpg"},`, 200))
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	req := httptest.NewRequest(http.MethodGet, "/photo-index/full", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
