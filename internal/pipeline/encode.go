package pipeline

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// SpoolPayload is the finished raster handed to the printing layer. The
// core never interprets Options; they ride through to the spool backend
// verbatim (e.g. "Darkness=10").
type SpoolPayload struct {
	// Raster is the packed 1-bpp image, RowBytes bytes per row, MSB first;
	// a set bit is a black dot.
	Raster   []byte
	RowBytes int

	Width  int
	Height int
	DPI    float64

	// PNG is the same bitmap as a lossless PNG, for spool backends that
	// submit files (CUPS) and for export.
	PNG []byte

	Media   string
	Options []string
}

// EncodePNG serializes a buffer as a lossless grayscale PNG.
func EncodePNG(buf *PixelBuffer) ([]byte, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	if err := png.Encode(&b, buf.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return b.Bytes(), nil
}

// ToSpoolPayload packs a 1-bit buffer into a print-ready payload for the
// given label. Extra options are appended after the label's defaults.
func ToSpoolPayload(buf *PixelBuffer, label *labelspec.Label, options []string) (*SpoolPayload, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}
	if buf.Depth != Mono1 {
		return nil, fmt.Errorf("spool payload requires a 1-bit buffer")
	}

	pngBytes, err := EncodePNG(buf)
	if err != nil {
		return nil, err
	}

	rowBytes := (buf.Width + 7) / 8
	raster := make([]byte, rowBytes*buf.Height)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			// Sample 1 is white; the wire wants set bits for black dots.
			if buf.At(x, y) == 0 {
				raster[y*rowBytes+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	payload := &SpoolPayload{
		Raster:   raster,
		RowBytes: rowBytes,
		Width:    buf.Width,
		Height:   buf.Height,
		DPI:      label.DPI,
		PNG:      pngBytes,
		Media:    label.Media,
		Options:  append(append([]string{}, label.Options...), options...),
	}
	return payload, nil
}
