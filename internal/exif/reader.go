package exif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"

	goexif "github.com/rwcarlsen/goexif/exif"

	"photo-index/internal/filesystem"
)

// ErrNoMetadata is returned when a file carries no readable tags.
var ErrNoMetadata = errors.New("no metadata found")

// Reader reads the raw tag map of a file.
type Reader interface {
	Name() string
	ReadTags(ctx context.Context, path string) (Tags, error)
}

// requestedTags limits exiftool output to what the index uses.
var requestedTags = []string{
	"-DateTimeOriginal", "-CreateDate", "-ModifyDate", "-Model",
	"-GPSLatitude", "-GPSLongitude", "-GPSLatitudeRef", "-GPSLongitudeRef",
}

// ExifTool runs the exiftool binary. It reads every container format
// exiftool knows, HEIC included.
type ExifTool struct {
	// Path of the binary; "exiftool" from PATH when empty.
	Path string
}

// Name implements Reader.
func (ExifTool) Name() string { return "exiftool" }

// ReadTags implements Reader using "exiftool -json -n".
func (e ExifTool) ReadTags(ctx context.Context, path string) (Tags, error) {
	bin := e.Path
	if bin == "" {
		bin = "exiftool"
	}

	args := append([]string{"-json", "-n"}, requestedTags...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.Output()
	// exiftool exits non-zero on minor warnings but still prints JSON
	if len(output) == 0 {
		if err == nil {
			err = ErrNoMetadata
		}
		return nil, fmt.Errorf("exiftool %s: %w", path, err)
	}

	var records []Tags
	if err := json.Unmarshal(output, &records); err != nil {
		return nil, fmt.Errorf("decode exiftool output for %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("exiftool %s: %w", path, ErrNoMetadata)
	}
	return records[0], nil
}

// GoExif decodes EXIF blocks in JPEG and TIFF files without external tools.
type GoExif struct{}

// Name implements Reader.
func (GoExif) Name() string { return "goexif" }

var goexifFields = []struct {
	key   string
	field goexif.FieldName
}{
	{"DateTimeOriginal", goexif.DateTimeOriginal},
	{"CreateDate", goexif.DateTimeDigitized},
	{"ModifyDate", goexif.DateTime},
	{"Model", goexif.Model},
}

// ReadTags implements Reader.
func (GoExif) ReadTags(ctx context.Context, path string) (Tags, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode exif %s: %w", path, err)
	}

	tags := Tags{}
	for _, f := range goexifFields {
		tag, err := x.Get(f.field)
		if err != nil {
			continue
		}
		if s, err := tag.StringVal(); err == nil {
			tags[f.key] = s
		}
	}

	if lat, lon, err := x.LatLong(); err == nil {
		tags["GPSLatitude"] = math.Abs(lat)
		tags["GPSLongitude"] = math.Abs(lon)
		tags["GPSLatitudeRef"] = "N"
		if lat < 0 {
			tags["GPSLatitudeRef"] = "S"
		}
		tags["GPSLongitudeRef"] = "E"
		if lon < 0 {
			tags["GPSLongitudeRef"] = "W"
		}
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("goexif %s: %w", path, ErrNoMetadata)
	}
	return tags, nil
}
