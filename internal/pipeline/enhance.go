package pipeline

import "fmt"

// Settings holds the brightness and contrast factors for enhancement.
// 1.0 is the identity for both; a zero value is treated as 1.0 so that
// omitted JSON fields mean "leave alone". Factors themselves are not
// clamped, only the resulting samples are.
type Settings struct {
	Brightness float64 `json:"brightness,omitempty"`
	Contrast   float64 `json:"contrast,omitempty"`
}

func (s Settings) normalized() Settings {
	if s.Brightness == 0 {
		s.Brightness = 1.0
	}
	if s.Contrast == 0 {
		s.Contrast = 1.0
	}
	return s
}

// Enhance applies contrast and then brightness to a grayscale buffer and
// returns a new buffer. The order is fixed: contrast pivots each sample
// around mid-gray, brightness scales the result. The two do not commute for
// non-identity factors.
func Enhance(buf *PixelBuffer, settings Settings) (*PixelBuffer, error) {
	if err := buf.Check(); err != nil {
		return nil, err
	}
	if buf.Depth != Gray8 {
		return nil, fmt.Errorf("enhance requires an 8-bit buffer")
	}

	settings = settings.normalized()

	out, err := NewGray(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}

	for i, v := range buf.Pix {
		s := (float64(v)-128)*settings.Contrast + 128
		s = clampSample(s)
		s = clampSample(s * settings.Brightness)
		out.Pix[i] = uint8(s + 0.5)
	}
	return out, nil
}

func clampSample(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return s
}
