package batch

import (
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
)

// EntityKind classifies the entity a draw command was produced for. It only feeds diagnostics and
// statistics; ordering comes from the depth key.
type EntityKind int

const (
	EntityFloor EntityKind = iota
	EntityWall
	EntityCreature
	EntityPlayer
	EntityItem
	EntityEffect
)

// String returns the lower-case kind name used in diagnostics.
func (k EntityKind) String() string {
	switch k {
	case EntityFloor:
		return "floor"
	case EntityWall:
		return "wall"
	case EntityCreature:
		return "creature"
	case EntityPlayer:
		return "player"
	case EntityItem:
		return "item"
	case EntityEffect:
		return "effect"
	default:
		return "unknown"
	}
}

const (
	// NoPalette marks a command whose sprite must not be drawn. The shader discards every pixel.
	NoPalette = -1

	// NoDye marks a command without a dye overlay.
	NoDye = -1
)

// SpriteRect is a sprite's rectangle inside its material atlas, in atlas pixels.
type SpriteRect struct {
	X, Y int
	W, H int
}

// DrawCommand is one drawable produced by the entity layer for the current frame.
type DrawCommand struct {
	// Kind is the entity class, used for diagnostics.
	Kind EntityKind
	// Material selects the atlas and recolor tables.
	Material material.ID
	// Sprite is the atlas rectangle to draw.
	Sprite SpriteRect
	// X and Y are the world position of the sprite's top-left corner in pixels.
	X, Y float32
	// Depth is the depth key (see package depth).
	Depth float32
	// Scale multiplies the sprite's pixel size; 0 means 1.
	Scale float32
	// FlipX and FlipY mirror the sprite inside its quad.
	FlipX, FlipY bool
	// Palette is the palette row, or NoPalette.
	Palette int
	// Dye is the dye row, or NoDye.
	Dye int
	// Caps are the sprite's behavioral toggles.
	Caps Capabilities
	// Tint is added to the final color.
	Tint [3]float32
}

// NewDrawCommand builds a command with palette row 0, no dye and unit scale.
//
// Parameters:
//   - kind: the entity kind
//   - mat: the material id
//   - sprite: the atlas rectangle
//   - x, y: world position of the sprite's top-left corner
//   - depth: the depth key
//
// Returns:
//   - DrawCommand: the command
func NewDrawCommand(kind EntityKind, mat material.ID, sprite SpriteRect, x, y, depth float32) DrawCommand {
	return DrawCommand{
		Kind:     kind,
		Material: mat,
		Sprite:   sprite,
		X:        x,
		Y:        y,
		Depth:    depth,
		Scale:    1,
		Palette:  0,
		Dye:      NoDye,
	}
}
