package pipeline

// tap is one neighbor offset in an error-diffusion kernel. Offsets only
// point right on the current row or anywhere on later rows, so every tap
// lands on a not-yet-visited pixel under raster order.
type tap struct {
	dx, dy int
	weight int
}

// kernel is a fixed error-diffusion kernel. Each pixel's quantization error
// is redistributed as error*weight/div per tap; taps falling outside the
// buffer are dropped, never wrapped.
type kernel struct {
	div  int
	taps []tap
}

var kernels = map[string]kernel{
	"floyd": floydSteinberg,
	"floyd-steinberg": floydSteinberg,
	"atkinson": {8, []tap{
		{1, 0, 1}, {2, 0, 1},
		{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
		{0, 2, 1},
	}},
	"jarvis-judice-ninke": {48, []tap{
		{1, 0, 7}, {2, 0, 5},
		{-2, 1, 3}, {-1, 1, 5}, {0, 1, 7}, {1, 1, 5}, {2, 1, 3},
		{-2, 2, 1}, {-1, 2, 3}, {0, 2, 5}, {1, 2, 3}, {2, 2, 1},
	}},
	"stucki": {42, []tap{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
		{-2, 2, 1}, {-1, 2, 2}, {0, 2, 4}, {1, 2, 2}, {2, 2, 1},
	}},
	"burkes": {32, []tap{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
	}},
	"sierra3": {32, []tap{
		{1, 0, 5}, {2, 0, 3},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 5}, {1, 1, 4}, {2, 1, 2},
		{-1, 2, 2}, {0, 2, 3}, {1, 2, 2},
	}},
	"sierra2": {16, []tap{
		{1, 0, 4}, {2, 0, 3},
		{-2, 1, 1}, {-1, 1, 2}, {0, 1, 3}, {1, 1, 2}, {2, 1, 1},
	}},
	"sierra-2-4a": sierraLite,
	"sierra-lite": sierraLite,
}

var floydSteinberg = kernel{16, []tap{
	{1, 0, 7},
	{-1, 1, 3}, {0, 1, 5}, {1, 1, 1},
}}

var sierraLite = kernel{4, []tap{
	{1, 0, 2},
	{-1, 1, 1}, {0, 1, 1},
}}

// ditherDiffusion runs raster-order error diffusion. Pending error is kept
// in an explicit per-pixel accumulator rather than written back into the
// source, so the input buffer is never aliased or mutated.
func ditherDiffusion(buf *PixelBuffer, k kernel) (*PixelBuffer, error) {
	out, err := NewMono(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}

	pending := make([]float64, len(buf.Pix))
	div := float64(k.div)

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := y*buf.Width + x
			value := float64(buf.Pix[i]) + pending[i]

			var quantized float64
			if value >= 128 {
				out.Pix[i] = 1
				quantized = 255
			}
			residual := value - quantized

			for _, t := range k.taps {
				nx, ny := x+t.dx, y+t.dy
				if nx < 0 || nx >= buf.Width || ny >= buf.Height {
					continue
				}
				pending[ny*buf.Width+nx] += residual * float64(t.weight) / div
			}
		}
	}
	return out, nil
}
