package source

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return b.Bytes()
}

func TestFromReader_DecodesPNG(t *testing.T) {
	data := encodeTestPNG(t, 12, 7)

	img, err := FromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FromReader failed: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
		t.Errorf("Expected 12x7, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFromReader_RejectsGarbage(t *testing.T) {
	if _, err := FromReader(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Expected error for undecodable data")
	}
}

func TestFromBase64(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(encodeTestPNG(t, 4, 4))

	img, err := FromBase64(data)
	if err != nil {
		t.Fatalf("FromBase64 failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("Expected 4px wide image, got %d", img.Bounds().Dx())
	}

	if _, err := FromBase64("%%%not base64%%%"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}

func TestText_RendersInk(t *testing.T) {
	img, err := Text([]string{"HELLO", "WORLD"}, TextOptions{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("Expected 200x100 canvas, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	dark := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("Expected rendered text to leave dark pixels")
	}
}

func TestText_RejectsEmptyInput(t *testing.T) {
	if _, err := Text(nil, TextOptions{Width: 100, Height: 100}); err == nil {
		t.Error("Expected error for no lines")
	}
	if _, err := Text([]string{"hi"}, TextOptions{Width: 0, Height: 100}); err == nil {
		t.Error("Expected error for zero-width canvas")
	}
}

func TestQR_RendersAtRequestedSize(t *testing.T) {
	img, err := QR("https://example.com/track/123", "M", 128)
	if err != nil {
		t.Fatalf("QR failed: %v", err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Errorf("Expected 128x128 qr image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestQR_RejectsBadInput(t *testing.T) {
	if _, err := QR("", "M", 128); err == nil {
		t.Error("Expected error for empty value")
	}
	if _, err := QR("x", "Z", 128); err == nil {
		t.Error("Expected error for unknown error-correction level")
	}
}

func TestBarcode_Formats(t *testing.T) {
	for _, format := range []string{"", "CODE128", "CODE39"} {
		img, err := Barcode("PKG-0042", format, 300, 80)
		if err != nil {
			t.Fatalf("Barcode %q failed: %v", format, err)
		}
		if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 80 {
			t.Errorf("Format %q: expected 300x80, got %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
		}
	}

	if _, err := Barcode("4006381333931", "EAN13", 300, 80); err != nil {
		t.Errorf("EAN13 failed: %v", err)
	}
}

func TestBarcode_RejectsBadInput(t *testing.T) {
	if _, err := Barcode("", "CODE128", 300, 80); err == nil {
		t.Error("Expected error for empty value")
	}
	if _, err := Barcode("x", "UPC-A", 300, 80); err == nil {
		t.Error("Expected error for unknown format")
	}
}
