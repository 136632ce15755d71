package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"photo-index/internal/logging"
	"photo-index/internal/mediatypes"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// DisplayWidth is the width of every display rendition.
	DisplayWidth = 600

	// MaxImagePixels is the maximum total pixels (width * height) we'll decode
	// A 50MP image would be ~50,000,000 pixels, which uses ~200MB in RGBA
	MaxImagePixels = 50_000_000
)

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(data []byte) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// decodeImage decodes an original in its stored pixel orientation. HEIC/HEIF
// and anything the Go decoders reject go through libvips.
func decodeImage(data []byte, filename string) (image.Image, error) {
	ext := mediatypes.Ext(filename)
	if mediatypes.IsHEIF(ext) {
		return decodeWithVips(data)
	}

	if dims, err := GetImageDimensions(data); err == nil && dims.Width*dims.Height > MaxImagePixels {
		return nil, fmt.Errorf("image %s too large: %dx%d", filename, dims.Width, dims.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	logging.Debug("Standard decode failed for %s: %v, trying libvips", filename, err)
	img, vipsErr := decodeWithVips(data)
	if vipsErr != nil {
		return nil, fmt.Errorf("all image decode methods failed for %s: %w", filename, err)
	}
	return img, nil
}

// normalizeAngle maps any multiple of 90 into [0, 360).
func normalizeAngle(angle int) int {
	return ((angle % 360) + 360) % 360
}

// renderDisplay rotates img clockwise by angle, expanding the canvas, and
// scales it to DisplayWidth keeping the aspect ratio.
func renderDisplay(img image.Image, angle int) image.Image {
	// imaging rotates counter-clockwise.
	rotated := imaging.Rotate(img, float64(-normalizeAngle(angle)), color.Black)
	return imaging.Resize(rotated, DisplayWidth, 0, imaging.Lanczos)
}
