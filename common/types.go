// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
)

// TextureStagingData holds pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the raw pixel data, tightly packed rows of Width * BytesPerPixel bytes.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the GPU texture format. Zero means RGBA8Unorm.
	Format wgpu.TextureFormat
}

// BytesPerPixel returns the texel size implied by the staging format.
//
// Returns:
//   - uint32: 1 for R8Unorm, 4 for the RGBA/BGRA 8-bit formats
func (t TextureStagingData) BytesPerPixel() uint32 {
	switch t.Format {
	case wgpu.TextureFormatR8Unorm, wgpu.TextureFormatR8Uint:
		return 1
	default:
		return 4
	}
}

// Validate reports whether the pixel buffer matches the declared dimensions.
func (t TextureStagingData) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return fmt.Errorf("texture has zero size %dx%d", t.Width, t.Height)
	}
	want := int(t.Width * t.Height * t.BytesPerPixel())
	if len(t.Pixels) != want {
		return fmt.Errorf("texture %dx%d expects %d bytes, got %d", t.Width, t.Height, want, len(t.Pixels))
	}
	return nil
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to the renderer's defaults (clamp-to-edge, nearest filtering).
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	MaxAnisotropy                            uint16
}

// ImportedTexture represents an image either held in memory or referenced on disk.
// Sprite atlases are color-indexed (one byte per pixel); palettes and dyes are RGBA lookup tables.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "atlas", "palette").
	Name string

	// Path is the file path used when Data is empty.
	Path string

	// Data contains raw encoded image bytes (PNG or BMP).
	Data []byte

	// Width is the texture width in pixels (populated after decoding).
	Width int

	// Height is the texture height in pixels (populated after decoding).
	Height int
}

// Decode decodes the texture to RGBA8 staging data.
// Supports PNG and BMP formats.
//
// Returns:
//   - TextureStagingData: RGBA pixels ready for upload
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	img, err := t.image()
	if err != nil {
		return TextureStagingData{}, err
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
		Format: wgpu.TextureFormatRGBA8Unorm,
	}, nil
}

// DecodeIndexed decodes a color-indexed image into one byte per pixel, where each byte is the palette
// index stored in the source. Paletted images keep their indices; grayscale images use the gray level.
//
// Returns:
//   - TextureStagingData: R8 pixels holding color indices
//   - error: error if decoding fails or the image is not indexed
func (t *ImportedTexture) DecodeIndexed() (TextureStagingData, error) {
	img, err := t.image()
	if err != nil {
		return TextureStagingData{}, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h)

	switch src := img.(type) {
	case *image.Paletted:
		for y := range h {
			row := src.Pix[(y)*src.Stride : (y)*src.Stride+w]
			copy(pixels[y*w:], row)
		}
	case *image.Gray:
		for y := range h {
			row := src.Pix[(y)*src.Stride : (y)*src.Stride+w]
			copy(pixels[y*w:], row)
		}
	default:
		return TextureStagingData{}, fmt.Errorf("texture %q is %T, not a color-indexed image", t.Name, img)
	}

	t.Width = w
	t.Height = h
	return TextureStagingData{
		Pixels: pixels,
		Width:  uint32(w),
		Height: uint32(h),
		Format: wgpu.TextureFormatR8Unorm,
	}, nil
}

func (t *ImportedTexture) image() (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	var r io.Reader
	if len(t.Data) > 0 {
		r = bytes.NewReader(t.Data)
	} else if t.Path != "" {
		file, err := os.Open(t.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, err)
		}
		defer file.Close()
		r = file
	} else {
		return nil, fmt.Errorf("texture has neither data nor path")
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}
	return img, nil
}
