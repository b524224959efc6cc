package shade

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-iso/common"
)

// Color is a linear RGBA color with channels in [0, 1].
type Color [4]float32

// Texture is a CPU-side view of staged texture data with nearest, clamp-to-edge addressing,
// matching how the sprite pipeline samples its atlas, palette and dye textures.
type Texture struct {
	data common.TextureStagingData
	bpp  int
}

// NewTexture wraps staged pixels for CPU sampling.
//
// Parameters:
//   - data: the staging data; its pixel buffer must match its size and format
//
// Returns:
//   - *Texture: the sampling view
//   - error: error if the staging data is inconsistent
func NewTexture(data common.TextureStagingData) (*Texture, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid texture: %w", err)
	}
	return &Texture{data: data, bpp: int(data.BytesPerPixel())}, nil
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() (width, height int) {
	return int(t.data.Width), int(t.data.Height)
}

func (t *Texture) texel(x, y int) []byte {
	w, h := t.Size()
	x = min(max(x, 0), w-1)
	y = min(max(y, 0), h-1)
	off := (y*w + x) * t.bpp
	return t.data.Pixels[off : off+t.bpp]
}

// Index returns the first channel of the texel at (x, y) as a raw byte, which for a color-indexed
// atlas is the palette index.
func (t *Texture) Index(x, y int) uint8 {
	return t.texel(x, y)[0]
}

// At returns the normalized color of the texel at (x, y). Single-channel textures read as (r, 0, 0, 1).
func (t *Texture) At(x, y int) Color {
	px := t.texel(x, y)
	if t.bpp == 1 {
		return Color{float32(px[0]) / 255, 0, 0, 1}
	}
	return Color{float32(px[0]) / 255, float32(px[1]) / 255, float32(px[2]) / 255, float32(px[3]) / 255}
}

// SampleIndex returns the palette index stored in the atlas texel covering normalized uv.
func (t *Texture) SampleIndex(u, v float32) uint8 {
	w, h := t.Size()
	return t.Index(nearest(u, w), nearest(v, h))
}

func nearest(u float32, size int) int {
	return min(max(int(u*float32(size)), 0), size-1)
}

// Textures groups the per-material textures read by the fragment stage. Dye may be nil.
type Textures struct {
	Atlas   *Texture
	Palette *Texture
	Dye     *Texture
}
