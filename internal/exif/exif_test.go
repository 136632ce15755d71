package exif

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestParseCaptureDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"2004:05:01 12:30:00", "2004-05-01", true},
		{"2004-05-01 12:30:00", "2004-05-01", true},
		{"2004/05/01 12:30:00", "2004-05-01", true},
		{"2004.05.01 12:30:00", "2004-05-01", true},
		{"2004:05:01", "2004-05-01", true},
		{"2004-05-01", "2004-05-01", true},
		{"2004:5:1 7:05:09", "2004-05-01", true},
		{"  2011:12:24 18:00:00  ", "2011-12-24", true},
		{"0000:00:00 00:00:00", "", false},
		{"2004:02:30 10:00:00", "", false},
		{"2019:06:01 10:00:00+02:00", "", false},
		{"yesterday", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseCaptureDate(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseCaptureDate(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFromTags(t *testing.T) {
	tests := []struct {
		name       string
		tags       Tags
		wantDate   string
		wantCamera string
	}{
		{
			name:       "original capture time wins",
			tags:       Tags{"DateTimeOriginal": "2004:05:01 10:00:00", "CreateDate": "2005:01:01 00:00:00", "Model": "Canon PowerShot A70"},
			wantDate:   "2004-05-01",
			wantCamera: "Canon PowerShot A70",
		},
		{
			name:     "create date fallback",
			tags:     Tags{"CreateDate": "2005:01:02 00:00:00", "ModifyDate": "2006:01:01 00:00:00"},
			wantDate: "2005-01-02",
		},
		{
			name:     "modify date fallback",
			tags:     Tags{"ModifyDate": "2006/03/04 00:00:00"},
			wantDate: "2006-03-04",
		},
		{
			name: "first present tag is final even if unparseable",
			tags: Tags{"DateTimeOriginal": "garbage", "CreateDate": "2005:01:02 00:00:00"},
		},
		{
			name:       "numeric model",
			tags:       Tags{"Model": float64(5)},
			wantCamera: "5",
		},
		{
			name: "empty",
			tags: Tags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromTags(tt.tags)

			gotDate := ""
			if m.Date != nil {
				gotDate = *m.Date
			}
			if gotDate != tt.wantDate {
				t.Errorf("Date = %q, want %q", gotDate, tt.wantDate)
			}

			gotCamera := ""
			if m.Camera != nil {
				gotCamera = *m.Camera
			}
			if gotCamera != tt.wantCamera {
				t.Errorf("Camera = %q, want %q", gotCamera, tt.wantCamera)
			}
		})
	}
}

func TestGPSFromTags(t *testing.T) {
	tests := []struct {
		name   string
		tags   Tags
		want   GPS
		wantOK bool
	}{
		{
			name:   "south west refs negate",
			tags:   Tags{"GPSLatitude": 22.9068, "GPSLongitude": 43.1729, "GPSLatitudeRef": "S", "GPSLongitudeRef": "W"},
			want:   GPS{Latitude: -22.9068, Longitude: -43.1729},
			wantOK: true,
		},
		{
			name:   "already signed values are not double negated",
			tags:   Tags{"GPSLatitude": -22.9068, "GPSLongitude": -43.1729, "GPSLatitudeRef": "S", "GPSLongitudeRef": "W"},
			want:   GPS{Latitude: -22.9068, Longitude: -43.1729},
			wantOK: true,
		},
		{
			name:   "north east",
			tags:   Tags{"GPSLatitude": 48.8584, "GPSLongitude": 2.2945, "GPSLatitudeRef": "N", "GPSLongitudeRef": "E"},
			want:   GPS{Latitude: 48.8584, Longitude: 2.2945},
			wantOK: true,
		},
		{
			name:   "long ref names",
			tags:   Tags{"GPSLatitude": "33.8688", "GPSLongitude": "151.2093", "GPSLatitudeRef": "South", "GPSLongitudeRef": "East"},
			want:   GPS{Latitude: -33.8688, Longitude: 151.2093},
			wantOK: true,
		},
		{
			name:   "missing longitude",
			tags:   Tags{"GPSLatitude": 10.0},
			wantOK: false,
		},
		{
			name:   "unparseable latitude",
			tags:   Tags{"GPSLatitude": "north-ish", "GPSLongitude": 1.0},
			wantOK: false,
		},
		{
			name:   "out of range",
			tags:   Tags{"GPSLatitude": 123.0, "GPSLongitude": 1.0},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GPSFromTags(tt.tags)
			if ok != tt.wantOK {
				t.Fatalf("GPSFromTags() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("GPSFromTags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type fakeReader struct {
	name  string
	tags  Tags
	err   error
	calls int
}

func (f *fakeReader) Name() string { return f.name }

func (f *fakeReader) ReadTags(_ context.Context, _ string) (Tags, error) {
	f.calls++
	return f.tags, f.err
}

func TestExtractorFallsThroughReaders(t *testing.T) {
	failing := &fakeReader{name: "exiftool", err: errors.New("exit status 1")}
	working := &fakeReader{name: "goexif", tags: Tags{"DateTimeOriginal": "2009:08:07 06:05:04", "Model": "iPhone 3GS"}}

	e := NewWithReaders(time.Second, failing, working)
	m := e.Extract(context.Background(), "/photos/a.jpg")

	if m.Date == nil || *m.Date != "2009-08-07" {
		t.Errorf("Date = %v, want 2009-08-07", m.Date)
	}
	if m.Camera == nil || *m.Camera != "iPhone 3GS" {
		t.Errorf("Camera = %v, want iPhone 3GS", m.Camera)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.calls, working.calls)
	}
}

func TestExtractorFailureYieldsEmptyResult(t *testing.T) {
	e := NewWithReaders(0,
		&fakeReader{name: "exiftool", err: errors.New("not installed")},
		&fakeReader{name: "goexif", err: ErrNoMetadata},
	)

	if m := e.Extract(context.Background(), "/photos/b.png"); !m.IsEmpty() {
		t.Errorf("Extract() = %+v, want empty", m)
	}
	if _, ok := e.GPS(context.Background(), "/photos/b.png"); ok {
		t.Error("GPS() ok = true, want false")
	}
	if _, err := e.ReadTags(context.Background(), "/photos/b.png"); !errors.Is(err, ErrNoMetadata) {
		t.Errorf("ReadTags() error = %v, want ErrNoMetadata in chain", err)
	}
}

func TestExifToolReader(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}

	dir := t.TempDir()
	payload, err := json.Marshal([]map[string]any{{
		"SourceFile":       "x.jpg",
		"DateTimeOriginal": "2015:07:14 09:30:00",
		"Model":            "NIKON D90",
		"GPSLatitude":      45.0,
		"GPSLongitude":     7.5,
		"GPSLatitudeRef":   "N",
		"GPSLongitudeRef":  "W",
	}})
	if err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "exiftool")
	content := "#!/bin/sh\ncat <<'JSON'\n" + string(payload) + "\nJSON\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	tags, err := ExifTool{Path: script}.ReadTags(context.Background(), filepath.Join(dir, "x.jpg"))
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}

	m := FromTags(tags)
	if m.Date == nil || *m.Date != "2015-07-14" {
		t.Errorf("Date = %v, want 2015-07-14", m.Date)
	}
	gps, ok := GPSFromTags(tags)
	if !ok || gps.Longitude != -7.5 || gps.Latitude != 45.0 {
		t.Errorf("GPS = %+v (ok=%v), want {45 -7.5}", gps, ok)
	}
}

func TestExifToolReaderMissingBinary(t *testing.T) {
	_, err := ExifTool{Path: filepath.Join(t.TempDir(), "does-not-exist")}.ReadTags(context.Background(), "a.jpg")
	if err == nil {
		t.Error("ReadTags() with missing binary should fail")
	}
}

func TestGoExifReaderWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (GoExif{}).ReadTags(context.Background(), path); err == nil {
		t.Error("ReadTags() on file without EXIF should fail")
	}
}
