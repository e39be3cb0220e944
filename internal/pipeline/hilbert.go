package pipeline

import "fmt"

// Riemersma dithering walks the pixels along a Hilbert curve instead of
// raster order and corrects each sample by a decaying history of recent
// quantization errors. The curve keeps successive pixels spatially close,
// which avoids the directional worms of raster-order diffusion.

func ditherRiemersma(buf *PixelBuffer, config DitherConfig) (*PixelBuffer, error) {
	history := config.History
	if history == 0 {
		history = defaultHistory
	}
	ratio := config.Ratio
	if ratio == 0 {
		ratio = defaultRatio
	}

	if history < 1 || history > maxHistory {
		return nil, fmt.Errorf("%w: riemersma history %d outside [1,%d]",
			ErrUnsupportedAlgorithm, config.History, maxHistory)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("%w: riemersma ratio %g outside (0,1)",
			ErrUnsupportedAlgorithm, config.Ratio)
	}

	out, err := NewMono(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}

	// Weight w[k] applies to the error from k steps ago.
	weights := make([]float64, history)
	w := 1.0
	for k := range weights {
		weights[k] = w
		w *= ratio
	}

	// Ring buffer of recent errors; head is the most recent entry.
	errs := make([]float64, history)
	head := 0
	count := 0

	visit := func(x, y int) {
		carry := 0.0
		for k := 0; k < count; k++ {
			carry += weights[k] * errs[(head-k+history)%history]
		}

		value := float64(buf.At(x, y)) + carry
		var quantized float64
		if value >= 128 {
			out.Set(x, y, 1)
			quantized = 255
		}

		head = (head + 1) % history
		errs[head] = value - quantized
		if count < history {
			count++
		}
	}

	// Walk the Hilbert curve over the smallest power-of-two square covering
	// the buffer, skipping cells that fall outside it.
	side := 1
	for side < buf.Width || side < buf.Height {
		side <<= 1
	}
	for d := 0; d < side*side; d++ {
		x, y := hilbertPoint(side, d)
		if x < buf.Width && y < buf.Height {
			visit(x, y)
		}
	}
	return out, nil
}

// hilbertPoint converts a distance along the Hilbert curve of the given
// power-of-two side length into coordinates.
func hilbertPoint(side, d int) (x, y int) {
	t := d
	for s := 1; s < side; s <<= 1 {
		rx := 1 & (t / 2)
		ry := 1 & (t ^ rx)
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
		x += s * rx
		y += s * ry
		t /= 4
	}
	return x, y
}
