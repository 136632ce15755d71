package media

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// NOTE: govips doesn't support stopping and restarting vips in the same process.
// Tests that need vips initialize it lazily; nothing here shuts it down.

func requireVips(t *testing.T) {
	t.Helper()
	if err := InitVips(); err != nil || !IsVipsAvailable() {
		t.Skipf("libvips not available: %v", err)
	}
}

func TestInitVipsIdempotency(t *testing.T) {
	requireVips(t)
	if err := InitVips(); err != nil {
		t.Errorf("Second InitVips() call failed: %v", err)
	}
	if !IsVipsAvailable() {
		t.Error("After successful InitVips, IsVipsAvailable should return true")
	}
}

func TestWebPEncoder(t *testing.T) {
	requireVips(t)

	src := imaging.New(600, 400, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	data, err := WebPEncoder{Quality: 80}.Encode(src)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatalf("Encode() did not produce a WEBP container")
	}

	// Round-trip through the registered x/image/webp decoder.
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if format != "webp" {
		t.Errorf("format = %q, want webp", format)
	}
	if img.Bounds().Dx() != 600 || img.Bounds().Dy() != 400 {
		t.Errorf("decoded size = %v, want 600x400", img.Bounds().Size())
	}
	if (WebPEncoder{}).ContentType() != "image/webp" {
		t.Errorf("ContentType() = %q", WebPEncoder{}.ContentType())
	}
}

func TestDecodeWithVips(t *testing.T) {
	requireVips(t)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(40, 20, color.White), imaging.JPEG); err != nil {
		t.Fatal(err)
	}
	img, err := decodeWithVips(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeWithVips() error = %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("size = %v, want 40x20", img.Bounds().Size())
	}
}
