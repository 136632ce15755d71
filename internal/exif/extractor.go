package exif

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"photo-index/internal/logging"
	"photo-index/internal/metrics"
)

// Config configures an Extractor.
type Config struct {
	// ExifToolPath is the exiftool binary; looked up on PATH when empty.
	ExifToolPath string
	// Timeout bounds each tag read. Zero disables the bound.
	Timeout time.Duration
}

// Extractor reads capture metadata through a chain of readers, falling
// through to the next reader when one fails.
type Extractor struct {
	readers []Reader
	timeout time.Duration
}

// New builds the default chain: exiftool when available, then goexif.
func New(cfg Config) *Extractor {
	var readers []Reader

	bin := cfg.ExifToolPath
	if bin == "" {
		bin = "exiftool"
	}
	if resolved, err := exec.LookPath(bin); err == nil {
		readers = append(readers, ExifTool{Path: resolved})
		logging.Debug("Metadata extraction using exiftool at %s", resolved)
	} else {
		logging.Warn("exiftool not found (%v); falling back to built-in EXIF decoder, HEIC metadata will be unavailable", err)
	}
	readers = append(readers, GoExif{})

	return NewWithReaders(cfg.Timeout, readers...)
}

// NewWithReaders builds an Extractor over an explicit reader chain.
func NewWithReaders(timeout time.Duration, readers ...Reader) *Extractor {
	return &Extractor{readers: readers, timeout: timeout}
}

// ReadTags returns the tags from the first reader that succeeds.
func (e *Extractor) ReadTags(ctx context.Context, path string) (Tags, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var errs []error
	for _, r := range e.readers {
		tags, err := r.ReadTags(ctx, path)
		if err == nil {
			metrics.ExifReadsTotal.WithLabelValues(r.Name(), "success").Inc()
			return tags, nil
		}
		metrics.ExifReadsTotal.WithLabelValues(r.Name(), "error").Inc()
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoMetadata
	}
	return nil, errors.Join(errs...)
}

// Extract returns capture date and camera model. Failures yield an empty
// Metadata; they are logged at debug level and never returned.
func (e *Extractor) Extract(ctx context.Context, path string) Metadata {
	tags, err := e.ReadTags(ctx, path)
	if err != nil {
		logging.Debug("No metadata for %s: %v", path, err)
		return Metadata{}
	}
	return FromTags(tags)
}

// GPS returns the signed coordinate of path, if it has one.
func (e *Extractor) GPS(ctx context.Context, path string) (GPS, bool) {
	tags, err := e.ReadTags(ctx, path)
	if err != nil {
		return GPS{}, false
	}
	return GPSFromTags(tags)
}
