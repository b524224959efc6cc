package shade

import "math"

// Bayer8 is the 8x8 ordered dither matrix, indexed [y][x]. Every value in [0, 64) appears once.
var Bayer8 = [8][8]uint8{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// BayerThreshold returns the dither threshold for the pixel containing world position (x, y).
// The cell is picked from the floored coordinates modulo 8, so negative positions tile seamlessly.
//
// Parameters:
//   - x, y: world-space position in pixels
//
// Returns:
//   - float32: the threshold, (cell + 0.5) / 64, always in (0, 1)
func BayerThreshold(x, y float32) float32 {
	cx := cell(x)
	cy := cell(y)
	return (float32(Bayer8[cy][cx]) + 0.5) / 64
}

// DitherDiscard reports whether a pixel dissolves under the given x-ray strength.
func DitherDiscard(strength, x, y float32) bool {
	return strength > BayerThreshold(x, y)
}

func cell(v float32) int {
	m := int(math.Floor(float64(v))) % 8
	if m < 0 {
		m += 8
	}
	return m
}
