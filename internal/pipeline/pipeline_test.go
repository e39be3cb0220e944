package pipeline

import (
	"errors"
	"image"
	"testing"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

func TestPrepare_FullPipeline(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}

	target := labelspec.Geometry{WidthPx: 200, HeightPx: 300, DPI: 300}
	out, err := Prepare(img, target, DefaultOptions())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if out.Width != 200 || out.Height != 300 {
		t.Errorf("Expected output at label dimensions 200x300, got %dx%d", out.Width, out.Height)
	}
	if out.Depth != Mono1 {
		t.Error("Expected 1-bit output")
	}
}

func TestPrepare_PropagatesDitherError(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	opts := DefaultOptions()
	opts.Dither.Algorithm = "unknown-xyz"

	_, err := Prepare(img, labelspec.Geometry{WidthPx: 20, HeightPx: 20, DPI: 300}, opts)
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestPrepare_PropagatesGeometryError(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	_, err := Prepare(img, labelspec.Geometry{WidthPx: 0, HeightPx: 20, DPI: 300}, DefaultOptions())
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}
}
