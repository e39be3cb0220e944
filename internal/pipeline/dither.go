package pipeline

import (
	"fmt"
	"strings"
)

// DitherConfig selects a dithering algorithm by tag plus the parameters of
// the Riemersma variant. Unknown tags and out-of-range parameters are
// errors; the engine never falls back to another algorithm.
type DitherConfig struct {
	Algorithm string `json:"algorithm"`

	// History is the Riemersma error-queue depth. Zero means the default
	// of 16; the UI exposes [2,32] but the engine accepts down to 1, where
	// the algorithm degenerates to thresholding with a one-step trailing
	// correction.
	History int `json:"history,omitempty"`

	// Ratio is the Riemersma geometric decay in (0,1); the most recent
	// error has weight 1, an error k steps old has weight Ratio^k. Zero
	// means the default of 0.125.
	Ratio float64 `json:"ratio,omitempty"`
}

const (
	defaultHistory = 16
	defaultRatio   = 0.125

	maxHistory = 32
)

// Algorithms lists every recognized algorithm tag, canonical names first.
var Algorithms = []string{
	"floyd-steinberg",
	"atkinson",
	"jarvis-judice-ninke",
	"stucki",
	"burkes",
	"sierra3",
	"sierra2",
	"sierra-2-4a",
	"bayer",
	"cluster",
	"yliluoma",
	"riemersma",
	"none",
}

// Dither reduces an 8-bit grayscale buffer to a 1-bit buffer of the same
// dimensions. Every quantization comparison uses >=, favoring white, so the
// same mid-gray input quantizes identically across algorithms.
func Dither(buf *PixelBuffer, config DitherConfig) (*PixelBuffer, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}
	if buf.Depth != Gray8 {
		return nil, fmt.Errorf("dither requires an 8-bit buffer")
	}

	tag := strings.ToLower(strings.TrimSpace(config.Algorithm))
	switch tag {
	case "none", "threshold":
		return ditherThreshold(buf)
	case "bayer":
		return ditherOrdered(buf, &bayerMatrix)
	case "cluster":
		return ditherOrdered(buf, &clusterMatrix)
	case "yliluoma":
		return ditherOrdered(buf, &yliluomaMatrix)
	case "riemersma":
		return ditherRiemersma(buf, config)
	default:
		if k, ok := kernels[tag]; ok {
			return ditherDiffusion(buf, k)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, config.Algorithm)
	}
}

// ditherThreshold is the stateless baseline: 1 iff the sample is at least
// mid-gray. It is idempotent on buffers that already hold only 0 and 255.
func ditherThreshold(buf *PixelBuffer) (*PixelBuffer, error) {
	out, err := NewMono(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	for i, v := range buf.Pix {
		if v >= 128 {
			out.Pix[i] = 1
		}
	}
	return out, nil
}
