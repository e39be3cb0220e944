package pipeline

import (
	"image"

	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// Options bundles the per-job processing parameters. Each job gets its own
// value; there is no process-wide configuration.
type Options struct {
	Settings Settings     `json:"settings"`
	Dither   DitherConfig `json:"dither"`
}

// DefaultOptions matches the original calibration for thermal stock: a
// slight lightening pass and Floyd-Steinberg dithering.
func DefaultOptions() Options {
	return Options{
		Settings: Settings{Brightness: 1.2, Contrast: 1.0},
		Dither:   DitherConfig{Algorithm: "floyd-steinberg"},
	}
}

// Prepare runs the full pipeline on a decoded image: grayscale conversion,
// enhancement, label fitting, and dithering. The result is a 1-bit buffer
// at exactly the label's pixel dimensions.
func Prepare(img image.Image, target labelspec.Geometry, opts Options) (*PixelBuffer, error) {
	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}

	buf, err = Enhance(buf, opts.Settings)
	if err != nil {
		return nil, err
	}

	buf, err = Fit(buf, target)
	if err != nil {
		return nil, err
	}

	return Dither(buf, opts.Dither)
}
