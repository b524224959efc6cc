// Package shade is the CPU reference of the sprite compositing stage. Each step of the fragment
// shader is a pure function here, and Shade composes them in the same order, so the GPU output can be
// predicted and tested without a device.
package shade

import (
	"math"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
)

// Luminance weights used by the desaturation step.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Fragment is one covered pixel of a sprite quad.
type Fragment struct {
	// Local is the position inside the quad, (0, 0) top-left to (1, 1) bottom-right.
	Local [2]float32
	// SceneDepth is the value stored in the scene depth binding at this pixel. 0 is the far value.
	SceneDepth float32
}

// World returns the world-space position of a fragment of inst.
func World(inst batch.GPUSpriteInstance, local [2]float32) [2]float32 {
	return [2]float32{
		inst.Position[0] + local[0]*inst.SpriteSize[0],
		inst.Position[1] + local[1]*inst.SpriteSize[1],
	}
}

// AtlasUV returns the normalized atlas coordinate of a fragment of inst.
func AtlasUV(inst batch.GPUSpriteInstance, local [2]float32) [2]float32 {
	return [2]float32{
		common.Mix(inst.TexMin[0], inst.TexMax[0], local[0]),
		common.Mix(inst.TexMin[1], inst.TexMax[1], local[1]),
	}
}

// PaletteColor looks up the color of a palette index in the given palette row.
func PaletteColor(palette *Texture, index uint8, row float32) Color {
	return palette.At(int(index), int(row))
}

// BlendDye mixes the dye color over base by the dye's alpha. The base alpha is kept.
func BlendDye(base, dye Color) Color {
	return Color{
		common.Mix(base[0], dye[0], dye[3]),
		common.Mix(base[1], dye[1], dye[3]),
		common.Mix(base[2], dye[2], dye[3]),
		base[3],
	}
}

// TileDistance returns the distance in tiles between a world position and the camera anchor.
func TileDistance(world, anchor [2]float32) float32 {
	return common.TileDistance(world[0], world[1], anchor[0], anchor[1])
}

// XRayStrength returns how strongly a pixel is dissolved by the x-ray effect, in [0, 1].
//
// Parameters:
//   - world: the fragment's world position
//   - anchor: the camera anchor (the local player's feet)
//   - localY: the fragment's vertical position inside its quad, 0 at the top
//   - spriteHeight: the quad height in world pixels
//   - radius: the x-ray radius multiplier; <= 0 disables the effect
//   - p: shading parameters
//
// Returns:
//   - float32: the dissolve strength
func XRayStrength(world, anchor [2]float32, localY, spriteHeight, radius float32, p Params) float32 {
	if radius <= 0 {
		return 0
	}
	baseDist := (1 - localY) * float32(math.Abs(float64(spriteHeight)))
	baseFade := common.Smoothstep(p.BaseFadeStart, p.BaseFadeEnd, baseDist)

	dx := (world[0] - anchor[0]) / (radius * p.XRayEllipseX)
	dy := (world[1] - (anchor[1] - p.XRayLift)) / (radius * p.XRayEllipseY)
	e := float32(math.Sqrt(float64(dx*dx + dy*dy)))

	return (1 - common.Smoothstep(p.XRayFalloffStart, 1, e)) * baseFade
}

// Desaturate blends a color toward dimmed gray as its tile distance moves through the desaturation band.
func Desaturate(c Color, dist float32, p Params) Color {
	f := common.Smoothstep(p.DesaturateInner, p.DesaturateOuter, dist)
	gray := (LumaR*c[0] + LumaG*c[1] + LumaB*c[2]) * p.DesaturateDim
	return Color{
		common.Mix(c[0], gray, f),
		common.Mix(c[1], gray, f),
		common.Mix(c[2], gray, f),
		c[3],
	}
}

// ApplyTint adds the camera and instance tints, plus the hover boost when requested, and clamps the
// result to [0, 1].
func ApplyTint(c Color, cameraTint, instanceTint [3]float32, hover bool, p Params) Color {
	var boost float32
	if hover {
		boost = p.HoverBoost
	}
	out := c
	for i := range 3 {
		out[i] = common.Clamp(c[i]+cameraTint[i]+instanceTint[i]+boost, 0, 1)
	}
	return out
}

// Shade runs the fragment stage for one pixel of inst.
//
// Parameters:
//   - inst: the sprite instance
//   - cam: the frame's camera uniform
//   - frag: the covered pixel
//   - tex: the instance material's textures
//   - p: shading parameters
//
// Returns:
//   - Color: the output color, meaningful only when discarded is false
//   - bool: true when the pixel is discarded
func Shade(inst batch.GPUSpriteInstance, cam camera.GPUCameraUniform, frag Fragment, tex Textures, p Params) (Color, bool) {
	if inst.PaletteOffset < 0 {
		return Color{}, true
	}

	uv := AtlasUV(inst, frag.Local)
	index := tex.Atlas.SampleIndex(uv[0], uv[1])
	if index == 0 {
		return Color{}, true
	}

	c := PaletteColor(tex.Palette, index, inst.PaletteOffset)
	if inst.DyeOffset >= 0 && tex.Dye != nil {
		c = BlendDye(c, tex.Dye.At(int(index), int(inst.DyeOffset)))
	}

	world := World(inst, frag.Local)
	anchor := cam.Position
	dist := TileDistance(world, anchor)

	caps := inst.Capabilities()
	if caps.XRay && cam.XRayRadius > 0 && depth.InFront(inst.Position[2], anchor[0], anchor[1]) {
		strength := XRayStrength(world, anchor, frag.Local[1], inst.SpriteSize[1], cam.XRayRadius, p)
		if DitherDiscard(strength, world[0], world[1]) {
			return Color{}, true
		}
	}

	c = Desaturate(c, dist, p)
	c = ApplyTint(c, cam.Tint, inst.Tint, caps.Hover, p)

	if depth.ClipDepth(inst.Position[2]) <= frag.SceneDepth {
		return Color{}, true
	}
	return c, false
}
