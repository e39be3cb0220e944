package pipeline

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewGray_RejectsNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := NewGray(dims[0], dims[1]); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("NewGray(%d,%d): expected ErrInvalidGeometry, got %v", dims[0], dims[1], err)
		}
		if _, err := NewMono(dims[0], dims[1]); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("NewMono(%d,%d): expected ErrInvalidGeometry, got %v", dims[0], dims[1], err)
		}
	}
}

func TestCheck_LengthInvariant(t *testing.T) {
	buf, err := NewGray(4, 4)
	if err != nil {
		t.Fatalf("NewGray failed: %v", err)
	}
	if err := buf.Check(); err != nil {
		t.Errorf("Expected fresh buffer to pass Check, got %v", err)
	}

	buf.Pix = buf.Pix[:10]
	if err := buf.Check(); !errors.Is(err, ErrBufferSizeMismatch) {
		t.Errorf("Expected ErrBufferSizeMismatch, got %v", err)
	}
}

func TestFromImage_GrayscaleConversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	if buf.Width != 2 || buf.Height != 1 || buf.Depth != Gray8 {
		t.Fatalf("Expected 2x1 Gray8 buffer, got %dx%d depth %d", buf.Width, buf.Height, buf.Depth)
	}
	if buf.Pix[0] != 255 {
		t.Errorf("Expected white sample, got %d", buf.Pix[0])
	}
	if buf.Pix[1] != 0 {
		t.Errorf("Expected black sample, got %d", buf.Pix[1])
	}
}

func TestFromImage_NonZeroOriginBounds(t *testing.T) {
	base := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range base.Pix {
		base.Pix[i] = uint8(i)
	}
	sub := base.SubImage(image.Rect(5, 5, 10, 10))

	buf, err := FromImage(sub)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width != 5 || buf.Height != 5 {
		t.Errorf("Expected 5x5 buffer from subimage, got %dx%d", buf.Width, buf.Height)
	}
	if buf.Pix[0] != base.GrayAt(5, 5).Y {
		t.Errorf("Expected sample %d at origin, got %d", base.GrayAt(5, 5).Y, buf.Pix[0])
	}
}

func TestImage_MonoMapsToBlackAndWhite(t *testing.T) {
	buf, err := NewMono(2, 1)
	if err != nil {
		t.Fatalf("NewMono failed: %v", err)
	}
	buf.Pix[1] = 1

	img := buf.Image()
	if img.GrayAt(0, 0).Y != 0 {
		t.Errorf("Expected 0 sample to render black, got %d", img.GrayAt(0, 0).Y)
	}
	if img.GrayAt(1, 0).Y != 255 {
		t.Errorf("Expected 1 sample to render white, got %d", img.GrayAt(1, 0).Y)
	}
}
