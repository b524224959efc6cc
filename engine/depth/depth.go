// Package depth computes the scalar depth keys that order isometric sprites and the player-relative
// threshold that decides which geometry the x-ray effect may dissolve.
//
// A depth key grows toward the viewer: tiles further down the screen diagonal (larger x+y) have larger
// keys and are drawn in front. Every key in the engine is normalized with the same Divisor so keys from
// different layers and the x-ray threshold always compare consistently.
package depth

import (
	"math"

	"github.com/Carmen-Shannon/oxy-iso/common"
)

const (
	// Divisor normalizes tile sums into depth-key space. A key stays renderable while
	// x + y + offset < Divisor, which holds for maps up to 256x256 tiles (largest sum 510 plus the
	// effect offset). Keys past 1 are rejected by the batcher, see InRange.
	Divisor float32 = 512

	// MinKey and MaxKey bound the keys the sprite pipeline can draw; ClipDepth maps them to 0 and 1.
	MinKey float32 = -1
	MaxKey float32 = 1

	// FloorZ is the depth key shared by every floor tile. It sits below all tile-derived keys.
	FloorZ float32 = -0.75

	// ThresholdOffset is added to the player's tile sum so that geometry on the player's own diagonal
	// is never treated as being in front of the player.
	ThresholdOffset float32 = 0.5

	// EntityBaseOffset is the sub-tile offset of the lowest entity layer on a tile.
	EntityBaseOffset float32 = 0.1

	// EntitySlotRange is the sub-tile range spanned by slot priorities in [0, 1].
	EntitySlotRange float32 = 0.1

	// EntityStackRange separates entities standing on the same tile.
	EntityStackRange float32 = 0.003

	// EntitiesPerTile is the number of stack positions EntityStackRange is divided into.
	EntitiesPerTile = 3

	// EffectOffset places effects one full tile diagonal ahead of their anchor tile.
	EffectOffset float32 = 1.0
)

// TileZ returns the depth key of a tile plus a sub-tile offset.
//
// Parameters:
//   - x, y: tile coordinates
//   - offset: additional tile-sum units (layers and sub-tile ordering)
//
// Returns:
//   - float32: the normalized depth key
func TileZ(x, y, offset float32) float32 {
	return (x + y + offset) / Divisor
}

// WallZ returns the depth key of a wall anchored on tile (x, y).
func WallZ(x, y float32) float32 {
	return TileZ(x, y, 0)
}

// EntityZ returns the depth key of a creature, player or item piece standing on tile (x, y).
// slotPriority orders the pieces of one entity (0 back, 1 front); stack orders entities that share a tile.
//
// Parameters:
//   - x, y: tile coordinates of the entity
//   - slotPriority: layering priority of the piece, clamped to [0, 1]
//   - stack: stack position of the entity on its tile, clamped to [0, EntitiesPerTile)
//
// Returns:
//   - float32: the normalized depth key
func EntityZ(x, y, slotPriority float32, stack int) float32 {
	slotPriority = common.Clamp(slotPriority, 0, 1)
	stack = min(max(stack, 0), EntitiesPerTile-1)
	offset := EntityBaseOffset + slotPriority*EntitySlotRange + float32(stack)/float32(EntitiesPerTile)*EntityStackRange
	return TileZ(x, y, offset)
}

// EffectZ returns the depth key of a spell or particle effect anchored on tile (x, y).
func EffectZ(x, y, offset float32) float32 {
	return TileZ(x, y, EffectOffset) + offset
}

// PlayerTile returns the whole tile the camera anchor stands on.
//
// Parameters:
//   - anchorX, anchorY: world-space anchor position (the local player's feet)
//
// Returns:
//   - x, y: the tile coordinates, floored to whole tiles
func PlayerTile(anchorX, anchorY float32) (x, y float32) {
	tx, ty := common.TileFromIso(anchorX, anchorY)
	return float32(math.Floor(float64(tx))), float32(math.Floor(float64(ty)))
}

// XRayThreshold returns the depth key just in front of the player. Geometry with a strictly greater key
// may be dissolved by the x-ray effect.
//
// Parameters:
//   - anchorX, anchorY: world-space anchor position
//
// Returns:
//   - float32: the threshold key
func XRayThreshold(anchorX, anchorY float32) float32 {
	x, y := PlayerTile(anchorX, anchorY)
	return TileZ(x, y, ThresholdOffset)
}

// InFront reports whether a depth key lies strictly in front of the player at the given anchor.
func InFront(z, anchorX, anchorY float32) bool {
	return z > XRayThreshold(anchorX, anchorY)
}

// InRange reports whether a depth key is finite and maps to a clip depth inside [0, 1]. The GPU clips
// quads with any other key away.
func InRange(z float32) bool {
	f := float64(z)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return z >= MinKey && z <= MaxKey
}

// ClipDepth maps a depth key in [-1, 1] to the [0, 1] clip depth written by the sprite pipeline.
// Larger keys produce larger clip depths; the pipeline compares with Greater against a 0 clear value.
func ClipDepth(z float32) float32 {
	return 0.5 + 0.5*z
}
