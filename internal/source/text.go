package source

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// TextOptions controls text-label rendering.
type TextOptions struct {
	// FontPath is a TTF file to load; empty means the built-in bitmap
	// face (useful for small address labels, coarse on large stock).
	FontPath string
	// FontSize in points, used only with FontPath.
	FontSize float64
	// Width and Height of the rendered canvas in pixels.
	Width  int
	Height int
}

// Text renders lines of black text centered on a white canvas. The result
// goes through the same fit/dither pipeline as a photo, so the canvas only
// needs to roughly match the label's aspect ratio.
func Text(lines []string, opts TextOptions) (image.Image, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("text canvas requires positive dimensions, got %dx%d", opts.Width, opts.Height)
	}
	if len(lines) == 0 || strings.Join(lines, "") == "" {
		return nil, fmt.Errorf("no text to render")
	}

	ctx := gg.NewContext(opts.Width, opts.Height)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)

	if opts.FontPath != "" {
		size := opts.FontSize
		if size == 0 {
			size = float64(opts.Height) / float64(len(lines)+1)
		}
		if err := ctx.LoadFontFace(opts.FontPath, size); err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
	} else {
		ctx.SetFontFace(basicfont.Face7x13)
	}

	lineHeight := float64(opts.Height) / float64(len(lines)+1)
	for i, line := range lines {
		y := lineHeight * float64(i+1)
		ctx.DrawStringAnchored(line, float64(opts.Width)/2, y, 0.5, 0.5)
	}

	return ctx.Image(), nil
}
