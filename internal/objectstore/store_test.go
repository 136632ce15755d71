package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	local, err := NewLocal(filepath.Join(t.TempDir(), "objects"))
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"local":  local,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte{0x52, 0x49, 0x46, 0x46, 0x00, 0xff}
			key := "cache/unrotated/2004/trip/a.jpg.webp"

			if err := s.Put(ctx, key, data, "image/webp"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Get() = %v, want %v", got, data)
			}

			// Returned bytes must not alias stored state.
			got[0] = 0
			again, _ := s.Get(ctx, key)
			if again[0] != 0x52 {
				t.Error("mutating Get() result changed stored object")
			}

			ok, err := s.Exists(ctx, key)
			if err != nil || !ok {
				t.Errorf("Exists() = %v, %v; want true", ok, err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := "cache/rotated/b.png.webp"
			if err := s.Put(ctx, key, []byte("first"), ""); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, key, []byte("second"), ""); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != "second" {
				t.Errorf("Get() = %q, want second", got)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "originals/missing.jpg")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
			ok, err := s.Exists(ctx, "originals/missing.jpg")
			if err != nil || ok {
				t.Errorf("Exists() = %v, %v; want false, nil", ok, err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	keys := []string{
		"cache/rotated/2004/b.jpg.webp",
		"cache/unrotated/2004/a.jpg.webp",
		"cache/unrotated/2005/c.jpg.webp",
		"originals/2004/a.jpg",
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"cache/unrotated/", []string{"cache/unrotated/2004/a.jpg.webp", "cache/unrotated/2005/c.jpg.webp"}},
		{"cache/unrotated/2004", []string{"cache/unrotated/2004/a.jpg.webp"}},
		{"cache/", keys[:3]},
		{"nothing/", nil},
		{"", keys},
	}

	for name, s := range backends(t) {
		for _, k := range keys {
			if err := s.Put(ctx, k, []byte(k), ""); err != nil {
				t.Fatal(err)
			}
		}
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%q", name, tt.prefix), func(t *testing.T) {
				got, err := s.List(ctx, tt.prefix)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				if !slices.Equal(got, tt.want) {
					t.Errorf("List(%q) = %v, want %v", tt.prefix, got, tt.want)
				}
			})
		}
	}
}

func TestStoreInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		for _, key := range []string{"", "/abs/path", "../escape", "cache/../../escape"} {
			t.Run(fmt.Sprintf("%s/%q", name, key), func(t *testing.T) {
				if err := s.Put(ctx, key, []byte("x"), ""); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Put() error = %v, want ErrInvalidKey", err)
				}
				if _, err := s.Get(ctx, key); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Get() error = %v, want ErrInvalidKey", err)
				}
			})
		}
	}
}

func TestStoreConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if err := s.Put(ctx, "cache/rotated/same.webp", []byte(strings.Repeat("x", i+1)), ""); err != nil {
						t.Errorf("Put() error = %v", err)
					}
				}(i)
			}
			wg.Wait()

			got, err := s.Get(ctx, "cache/rotated/same.webp")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) == 0 || strings.Trim(string(got), "x") != "" {
				t.Errorf("Get() = %q, want one complete write", got)
			}
		})
	}
}

func TestLocalListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := local.Put(ctx, "cache/a.webp", []byte("a"), ""); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(local.Root(), "cache", ".a.webp123"), []byte("tmp"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := local.List(ctx, "cache/")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"cache/a.webp"}) {
		t.Errorf("List() = %v, want [cache/a.webp]", got)
	}
}

func TestMemoryContentType(t *testing.T) {
	m := NewMemory()
	if err := m.Put(context.Background(), "k.webp", []byte("x"), "image/webp"); err != nil {
		t.Fatal(err)
	}
	if ct, ok := m.ContentType("k.webp"); !ok || ct != "image/webp" {
		t.Errorf("ContentType() = %q, %v", ct, ok)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"photos/originals", "2004/a.jpg"}, "photos/originals/2004/a.jpg"},
		{[]string{"/cache-image/600px/", "rotated", "a.jpg.webp"}, "cache-image/600px/rotated/a.jpg.webp"},
		{[]string{"", "a.jpg"}, "a.jpg"},
	}
	for _, tt := range tests {
		if got := Join(tt.parts...); got != tt.want {
			t.Errorf("Join(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
	}{
		{"nil", nil, false},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, true},
		{"not found", minio.ErrorResponse{Code: "NotFound", StatusCode: http.StatusNotFound}, true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false},
		{"other", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if errors.Is(got, ErrNotFound) != tt.wantNotFound {
				t.Errorf("translateError(%v) = %v, want not-found %v", tt.err, got, tt.wantNotFound)
			}
			if tt.err == nil && got != nil {
				t.Errorf("translateError(nil) = %v", got)
			}
		})
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{Endpoint: "localhost:9000"}); err == nil {
		t.Error("NewS3() error = nil, want error without bucket")
	}
}

func TestS3Open(t *testing.T) {
	tests := []struct {
		name       string
		headStatus int
		create     bool
		wantErr    bool
		wantPut    bool
	}{
		{"bucket exists", http.StatusOK, false, false, false},
		{"missing bucket", http.StatusNotFound, false, true, false},
		{"missing bucket created", http.StatusNotFound, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			var sawPut bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodHead:
					w.WriteHeader(tt.headStatus)
				case http.MethodPut:
					mu.Lock()
					sawPut = true
					mu.Unlock()
					w.WriteHeader(http.StatusOK)
				default:
					w.WriteHeader(http.StatusMethodNotAllowed)
				}
			}))
			defer srv.Close()

			s, err := NewS3(S3Config{
				Endpoint:     strings.TrimPrefix(srv.URL, "http://"),
				Region:       "us-east-1",
				Bucket:       "photos",
				AccessKey:    "test",
				SecretKey:    "testsecret",
				CreateBucket: tt.create,
			})
			if err != nil {
				t.Fatal(err)
			}

			err = s.Open(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			mu.Lock()
			defer mu.Unlock()
			if sawPut != tt.wantPut {
				t.Errorf("bucket creation request = %v, want %v", sawPut, tt.wantPut)
			}
		})
	}
}
