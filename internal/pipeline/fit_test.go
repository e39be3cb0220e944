package pipeline

import (
	"errors"
	"testing"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

func TestFit_OutputMatchesTargetExactly(t *testing.T) {
	targets := []labelspec.Geometry{
		{WidthPx: 694, HeightPx: 1200, DPI: 300},
		{WidthPx: 100, HeightPx: 100, DPI: 300},
		{WidthPx: 37, HeightPx: 11, DPI: 203},
		{WidthPx: 1, HeightPx: 1, DPI: 300},
	}
	sources := [][2]int{{40, 60}, {60, 40}, {50, 50}, {1, 100}}

	for _, target := range targets {
		for _, dims := range sources {
			buf := uniformGray(t, dims[0], dims[1], 90)

			out, err := Fit(buf, target)
			if err != nil {
				t.Fatalf("Fit %dx%d -> %dx%d failed: %v", dims[0], dims[1], target.WidthPx, target.HeightPx, err)
			}
			if out.Width != target.WidthPx || out.Height != target.HeightPx {
				t.Errorf("Fit %dx%d -> %dx%d: got %dx%d", dims[0], dims[1],
					target.WidthPx, target.HeightPx, out.Width, out.Height)
			}
		}
	}
}

func TestFit_AutoRotatesLandscapeToPortrait(t *testing.T) {
	// A landscape source with a black left half: after rotation onto a
	// portrait target the dark content must span the target's full width
	// on one end of the long axis instead of hugging one side.
	buf := uniformGray(t, 60, 30, 255)
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			buf.Set(x, y, 0)
		}
	}

	target := labelspec.Geometry{WidthPx: 30, HeightPx: 60, DPI: 300}
	out, err := Fit(buf, target)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	darkTop, darkBottom := 0, 0
	for x := 0; x < out.Width; x++ {
		if out.At(x, 5) < 128 {
			darkTop++
		}
		if out.At(x, out.Height-6) < 128 {
			darkBottom++
		}
	}
	if darkTop == darkBottom {
		t.Fatalf("Expected dark half on one end of the long axis, got %d vs %d dark columns", darkTop, darkBottom)
	}
	dark := darkTop
	if darkBottom > dark {
		dark = darkBottom
	}
	if dark < out.Width-2 {
		t.Errorf("Expected rotated content to span the target width, got %d of %d columns dark", dark, out.Width)
	}
}

func TestFit_SquareSourceNeverRotates(t *testing.T) {
	// Square source with a dark left half onto a portrait target: the dark
	// half must still be on the left.
	buf := uniformGray(t, 40, 40, 255)
	for y := 0; y < 40; y++ {
		for x := 0; x < 20; x++ {
			buf.Set(x, y, 0)
		}
	}

	out, err := Fit(buf, labelspec.Geometry{WidthPx: 40, HeightPx: 80, DPI: 300})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	midY := out.Height / 2
	if out.At(2, midY) >= 128 {
		t.Error("Expected dark half to remain on the left for a square source")
	}
	if out.At(out.Width-3, midY) < 128 {
		t.Error("Expected light half to remain on the right for a square source")
	}
}

func TestFit_PadsTwoOppositeEdgesWhite(t *testing.T) {
	// Aspect mismatch onto a square target: the scaled image fills the
	// long axis and leaves white margins on exactly the two short-axis
	// edges.
	buf := uniformGray(t, 40, 60, 0)

	out, err := Fit(buf, labelspec.Geometry{WidthPx: 100, HeightPx: 100, DPI: 300})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for y := 0; y < out.Height; y++ {
		if out.At(0, y) != 255 || out.At(out.Width-1, y) != 255 {
			t.Fatalf("Expected white padding columns at row %d", y)
		}
	}

	darkTop, darkBottom := false, false
	for x := 0; x < out.Width; x++ {
		if out.At(x, 0) < 128 {
			darkTop = true
		}
		if out.At(x, out.Height-1) < 128 {
			darkBottom = true
		}
	}
	if !darkTop || !darkBottom {
		t.Error("Expected content to reach both long-axis edges")
	}
}

func TestFit_InvalidGeometry(t *testing.T) {
	buf := uniformGray(t, 10, 10, 128)

	for _, target := range []labelspec.Geometry{
		{WidthPx: 0, HeightPx: 100},
		{WidthPx: 100, HeightPx: 0},
		{WidthPx: -5, HeightPx: -5},
	} {
		_, err := Fit(buf, target)
		if !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("Target %dx%d: expected ErrInvalidGeometry, got %v", target.WidthPx, target.HeightPx, err)
		}
	}
}

func TestFit_RejectsCorruptedBuffer(t *testing.T) {
	buf := uniformGray(t, 10, 10, 128)
	buf.Pix = buf.Pix[:50]

	_, err := Fit(buf, labelspec.Geometry{WidthPx: 20, HeightPx: 20, DPI: 300})
	if !errors.Is(err, ErrBufferSizeMismatch) {
		t.Errorf("Expected ErrBufferSizeMismatch, got %v", err)
	}
}
