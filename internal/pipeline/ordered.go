package pipeline

// Ordered dithering compares each sample against a repeating 8x8 threshold
// matrix. Matrix cells hold ranks in [0,63]; a rank m becomes the threshold
// (m+1)*255/65 so that pure black stays all-black and pure white all-white.

type thresholdMatrix [8][8]uint8

// bayerMatrix is the standard recursive Bayer ordering.
var bayerMatrix = thresholdMatrix{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// clusterMatrix grows dots from tile centers: the classic 4x4 clustered-dot
// spiral expanded to 8x8 with a 2x2 phase offset between tiles.
var clusterMatrix = thresholdMatrix{
	{48, 20, 24, 52, 50, 22, 26, 54},
	{16, 0, 4, 28, 18, 2, 6, 30},
	{44, 12, 8, 32, 46, 14, 10, 34},
	{60, 40, 36, 56, 62, 42, 38, 58},
	{51, 23, 27, 55, 49, 21, 25, 53},
	{19, 3, 7, 31, 17, 1, 5, 29},
	{47, 15, 11, 35, 45, 13, 9, 33},
	{63, 43, 39, 59, 61, 41, 37, 57},
}

// yliluomaMatrix was generated offline with Yliluoma's ordered-matrix
// construction (8x8, single run, frozen here for determinism). It breaks up
// the axis-aligned crosshatch of plain Bayer at mid-tones; the regression
// test pins these exact values.
var yliluomaMatrix = thresholdMatrix{
	{21, 53, 29, 61, 23, 55, 31, 63},
	{37, 5, 45, 13, 39, 7, 47, 15},
	{25, 57, 17, 49, 27, 59, 19, 51},
	{41, 9, 33, 1, 43, 11, 35, 3},
	{22, 54, 30, 62, 20, 52, 28, 60},
	{38, 6, 46, 14, 36, 4, 44, 12},
	{26, 58, 18, 50, 24, 56, 16, 48},
	{42, 10, 34, 2, 40, 8, 32, 0},
}

func ditherOrdered(buf *PixelBuffer, m *thresholdMatrix) (*PixelBuffer, error) {
	out, err := NewMono(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}

	for y := 0; y < buf.Height; y++ {
		row := &m[y%8]
		for x := 0; x < buf.Width; x++ {
			threshold := (int(row[x%8]) + 1) * 255 / 65
			if int(buf.At(x, y)) >= threshold {
				out.Set(x, y, 1)
			}
		}
	}
	return out, nil
}
