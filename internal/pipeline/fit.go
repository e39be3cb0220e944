package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// Fit orients, scales, and pads a grayscale buffer to exactly the label's
// pixel dimensions:
//
//  1. If the source and target disagree on orientation (one landscape, one
//     portrait), the source is rotated 90 degrees counter-clockwise. A
//     square source is never rotated.
//  2. The image is scaled by min(tw/sw, th/sh) so it fits within the target
//     without cropping, using Lanczos resampling.
//  3. The result is centered on a white canvas of the target size; white
//     margins keep the padding from reading as ink after dithering.
func Fit(buf *PixelBuffer, target labelspec.Geometry) (*PixelBuffer, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}
	if target.WidthPx < 1 || target.HeightPx < 1 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidGeometry, target.WidthPx, target.HeightPx)
	}

	var src image.Image = buf.Image()

	srcW, srcH := buf.Width, buf.Height
	if srcW != srcH && landscape(srcW, srcH) != landscape(target.WidthPx, target.HeightPx) &&
		target.WidthPx != target.HeightPx {
		src = imaging.Rotate90(src)
		srcW, srcH = srcH, srcW
	}

	scale := float64(target.WidthPx) / float64(srcW)
	if s := float64(target.HeightPx) / float64(srcH); s < scale {
		scale = s
	}

	scaledW := int(float64(srcW)*scale + 0.5)
	scaledH := int(float64(srcH)*scale + 0.5)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledW > target.WidthPx {
		scaledW = target.WidthPx
	}
	if scaledH < 1 {
		scaledH = 1
	}
	if scaledH > target.HeightPx {
		scaledH = target.HeightPx
	}

	scaled := imaging.Resize(src, scaledW, scaledH, imaging.Lanczos)

	canvas := imaging.New(target.WidthPx, target.HeightPx, color.White)
	composed := imaging.PasteCenter(canvas, scaled)

	return FromImage(composed)
}

func landscape(w, h int) bool {
	return w > h
}
