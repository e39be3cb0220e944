// Package pipeline implements the image-processing core: grayscale pixel
// buffers, brightness/contrast enhancement, label fitting, dithering, and
// output encoding. Every stage consumes one buffer and produces a new one;
// nothing in this package holds state across jobs.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Errors surfaced by the core. These are configuration or programming
// errors; callers decide whether to prompt or abort, nothing is retried.
var (
	ErrInvalidGeometry      = errors.New("invalid target geometry")
	ErrUnsupportedAlgorithm = errors.New("unsupported dithering algorithm")
	ErrBufferSizeMismatch   = errors.New("buffer size mismatch")
)

// Depth is the sample depth of a PixelBuffer.
type Depth int

const (
	// Gray8 buffers hold 8-bit grayscale samples in [0,255].
	Gray8 Depth = iota
	// Mono1 buffers hold 1-bit samples in {0,1}; 1 is white.
	Mono1
)

// PixelBuffer is a rectangular grid of samples in row-major order.
// Invariant: len(Pix) == Width*Height.
type PixelBuffer struct {
	Width  int
	Height int
	Depth  Depth
	Pix    []uint8
}

// NewGray creates an 8-bit grayscale buffer of the given dimensions.
func NewGray(width, height int) (*PixelBuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Depth:  Gray8,
		Pix:    make([]uint8, width*height),
	}, nil
}

// NewMono creates a 1-bit buffer of the given dimensions.
func NewMono(width, height int) (*PixelBuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Depth:  Mono1,
		Pix:    make([]uint8, width*height),
	}, nil
}

// FromImage converts a decoded image to an 8-bit grayscale buffer using the
// standard luminance weights.
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	buf, err := NewGray(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			buf.Pix[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			i++
		}
	}
	return buf, nil
}

// At returns the sample at (x, y). The caller is responsible for bounds.
func (b *PixelBuffer) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

// Set stores the sample at (x, y).
func (b *PixelBuffer) Set(x, y int, v uint8) {
	b.Pix[y*b.Width+x] = v
}

// Check verifies the length invariant. Transforms call this on entry so a
// corrupted buffer fails loudly instead of producing garbage output.
func (b *PixelBuffer) Check() error {
	if b.Width < 1 || b.Height < 1 || len(b.Pix) != b.Width*b.Height {
		return fmt.Errorf("%w: %dx%d with %d samples", ErrBufferSizeMismatch, b.Width, b.Height, len(b.Pix))
	}
	return nil
}

// Image renders the buffer as a grayscale image. Mono1 samples map to pure
// black and white.
func (b *PixelBuffer) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	if b.Depth == Gray8 {
		copy(img.Pix, b.Pix)
		return img
	}
	for i, v := range b.Pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}
