package media

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGetImageDimensions(t *testing.T) {
	dims, err := GetImageDimensions(encodePNG(t, 30, 20))
	if err != nil {
		t.Fatal(err)
	}
	if dims.Width != 30 || dims.Height != 20 {
		t.Errorf("GetImageDimensions() = %+v, want 30x20", dims)
	}

	if _, err := GetImageDimensions([]byte("not an image")); err == nil {
		t.Error("GetImageDimensions() error = nil for garbage input")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {90, 90}, {180, 180}, {270, 270}, {360, 0}, {-90, 270}, {450, 90},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); got != tt.want {
			t.Errorf("normalizeAngle(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRenderDisplaySizes(t *testing.T) {
	src := imaging.New(1200, 800, color.White)

	tests := []struct {
		angle int
		w, h  int
	}{
		{0, 600, 400},
		{90, 600, 900},
		{180, 600, 400},
		{270, 600, 900},
		{-90, 600, 900},
	}
	for _, tt := range tests {
		got := renderDisplay(src, tt.angle).Bounds()
		if got.Dx() != tt.w || got.Dy() != tt.h {
			t.Errorf("renderDisplay(angle=%d) = %dx%d, want %dx%d", tt.angle, got.Dx(), got.Dy(), tt.w, tt.h)
		}
	}
}

func TestRenderDisplayUpscalesSmallImages(t *testing.T) {
	got := renderDisplay(imaging.New(300, 200, color.White), 0).Bounds()
	if got.Dx() != DisplayWidth || got.Dy() != 400 {
		t.Errorf("renderDisplay() = %v, want 600x400", got.Size())
	}
}

func TestDecodeImage(t *testing.T) {
	img, err := decodeImage(encodePNG(t, 50, 40), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 40 {
		t.Errorf("decodeImage() size = %v", img.Bounds().Size())
	}
}
