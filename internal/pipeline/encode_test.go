package pipeline

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

func monoPattern(t *testing.T, w, h int) *PixelBuffer {
	t.Helper()
	buf, err := NewMono(w, h)
	if err != nil {
		t.Fatalf("NewMono failed: %v", err)
	}
	for i := range buf.Pix {
		if i%2 == 0 {
			buf.Pix[i] = 1
		}
	}
	return buf
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	buf := monoPattern(t, 10, 6)

	data, err := EncodePNG(buf)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decoding produced PNG failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 10x6 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	back, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	for i, v := range buf.Pix {
		want := uint8(0)
		if v == 1 {
			want = 255
		}
		if back.Pix[i] != want {
			t.Fatalf("Sample %d: expected %d after round trip, got %d", i, want, back.Pix[i])
		}
	}
}

func TestToSpoolPayload_RowPacking(t *testing.T) {
	// 9px wide so each row packs to two bytes with 7 bits of slack.
	buf, err := NewMono(9, 2)
	if err != nil {
		t.Fatalf("NewMono failed: %v", err)
	}
	for i := range buf.Pix {
		buf.Pix[i] = 1 // all white
	}
	buf.Set(0, 0, 0) // black top-left dot
	buf.Set(8, 1, 0) // black dot in the second byte of row 1

	label := &labelspec.Label{Code: "30256", WidthIn: 2.3125, HeightIn: 4, DPI: 300, Media: "w167h288"}
	payload, err := ToSpoolPayload(buf, label, nil)
	if err != nil {
		t.Fatalf("ToSpoolPayload failed: %v", err)
	}

	if payload.RowBytes != 2 {
		t.Fatalf("Expected 2 bytes per row, got %d", payload.RowBytes)
	}
	if len(payload.Raster) != 4 {
		t.Fatalf("Expected 4 raster bytes, got %d", len(payload.Raster))
	}

	// Set bit = black dot, MSB first.
	if payload.Raster[0] != 0x80 {
		t.Errorf("Expected row 0 byte 0 = 0x80, got 0x%02X", payload.Raster[0])
	}
	if payload.Raster[1] != 0x00 {
		t.Errorf("Expected row 0 byte 1 = 0x00, got 0x%02X", payload.Raster[1])
	}
	if payload.Raster[2] != 0x00 {
		t.Errorf("Expected row 1 byte 0 = 0x00, got 0x%02X", payload.Raster[2])
	}
	if payload.Raster[3] != 0x80 {
		t.Errorf("Expected row 1 byte 1 = 0x80, got 0x%02X", payload.Raster[3])
	}

	if payload.Media != "w167h288" {
		t.Errorf("Expected media carried through, got %q", payload.Media)
	}
	if payload.DPI != 300 {
		t.Errorf("Expected DPI 300, got %g", payload.DPI)
	}
	if len(payload.PNG) == 0 {
		t.Error("Expected PNG bytes in payload")
	}
}

func TestToSpoolPayload_OptionsPassThrough(t *testing.T) {
	buf := monoPattern(t, 8, 8)
	label := &labelspec.Label{
		Code: "30256", WidthIn: 2.3125, HeightIn: 4, DPI: 300,
		Options: []string{"scaling=100"},
	}

	payload, err := ToSpoolPayload(buf, label, []string{"Darkness=10"})
	if err != nil {
		t.Fatalf("ToSpoolPayload failed: %v", err)
	}

	if len(payload.Options) != 2 || payload.Options[0] != "scaling=100" || payload.Options[1] != "Darkness=10" {
		t.Errorf("Expected label defaults then job options, got %v", payload.Options)
	}
}

func TestToSpoolPayload_RejectsGrayBuffer(t *testing.T) {
	buf := uniformGray(t, 8, 8, 128)
	label := &labelspec.Label{Code: "30256", WidthIn: 2.3125, HeightIn: 4, DPI: 300}

	if _, err := ToSpoolPayload(buf, label, nil); err == nil {
		t.Error("Expected error for 8-bit buffer")
	}
}
