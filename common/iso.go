package common

import "math"

// Isometric tile metrics in world pixels. A tile is a 56x27 diamond; the half sizes form the basis
// used to move between tile space and world (screen-aligned) space.
const (
	TileWidth      = 56
	TileWidthHalf  = 28
	TileHeight     = 27
	TileHeightHalf = 14
)

// IsoFromTile converts a tile coordinate into the world-space position of the tile's top corner.
//
// Parameters:
//   - x, y: tile coordinates (may be fractional)
//
// Returns:
//   - px, py: world-space position in pixels
func IsoFromTile(x, y float32) (px, py float32) {
	return x*TileWidthHalf - y*TileWidthHalf, x*TileHeightHalf + y*TileHeightHalf
}

// TileFromIso converts a world-space position back into (fractional) tile coordinates.
// It is the exact inverse of IsoFromTile and is also valid for world-space deltas.
//
// Parameters:
//   - px, py: world-space position or delta in pixels
//
// Returns:
//   - x, y: tile coordinates
func TileFromIso(px, py float32) (x, y float32) {
	a := px / TileWidthHalf
	b := py / TileHeightHalf
	return (a + b) / 2, (b - a) / 2
}

// RoundedIsoFromTile is IsoFromTile rounded to whole pixels, which keeps sprite placement and camera
// scrolling pixel-stable.
func RoundedIsoFromTile(x, y float32) (px, py float32) {
	px, py = IsoFromTile(x, y)
	return float32(math.Round(float64(px))), float32(math.Round(float64(py)))
}

// TileDistance returns the Euclidean distance in tile units between two world-space positions.
// Equal tile distances trace an ellipse on screen because of the isometric basis.
func TileDistance(ax, ay, bx, by float32) float32 {
	tx, ty := TileFromIso(ax-bx, ay-by)
	return float32(math.Sqrt(float64(tx*tx + ty*ty)))
}
