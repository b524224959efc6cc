package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/bmp"
)

func testPaletted() *image.Paletted {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 0},
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
	img.Pix = []byte{0, 1, 2, 3, 2, 1}
	return img
}

func TestDecodeIndexedPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testPaletted()); err != nil {
		t.Fatal(err)
	}
	tex := &ImportedTexture{Name: "atlas", Data: buf.Bytes()}
	staging, err := tex.DecodeIndexed()
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if staging.Format != wgpu.TextureFormatR8Unorm {
		t.Errorf("Format = %v, want R8Unorm", staging.Format)
	}
	if !bytes.Equal(staging.Pixels, []byte{0, 1, 2, 3, 2, 1}) {
		t.Errorf("Pixels = %v", staging.Pixels)
	}
	if err := staging.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if tex.Width != 3 || tex.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", tex.Width, tex.Height)
	}
}

func TestDecodeIndexedBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testPaletted()); err != nil {
		t.Fatal(err)
	}
	staging, err := (&ImportedTexture{Name: "atlas", Data: buf.Bytes()}).DecodeIndexed()
	if err != nil {
		t.Fatalf("DecodeIndexed: %v", err)
	}
	if !bytes.Equal(staging.Pixels, []byte{0, 1, 2, 3, 2, 1}) {
		t.Errorf("Pixels = %v", staging.Pixels)
	}
}

func TestDecodeRGBA(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testPaletted()); err != nil {
		t.Fatal(err)
	}
	staging, err := (&ImportedTexture{Name: "palette", Data: buf.Bytes()}).Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := staging.Pixels[4:8]; !bytes.Equal(got, []byte{255, 0, 0, 255}) {
		t.Errorf("texel 1 = %v, want red", got)
	}
	if staging.BytesPerPixel() != 4 {
		t.Errorf("BytesPerPixel = %d, want 4", staging.BytesPerPixel())
	}
}

func TestDecodeIndexedRejectsTrueColor(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	if _, err := (&ImportedTexture{Name: "rgba", Data: buf.Bytes()}).DecodeIndexed(); err == nil {
		t.Error("expected an error for a true-color image")
	}
}

func TestDecodeWithoutSource(t *testing.T) {
	if _, err := (&ImportedTexture{}).Decode(); err == nil {
		t.Error("expected an error for a texture with neither data nor path")
	}
}

func TestStagingValidate(t *testing.T) {
	s := TextureStagingData{Pixels: make([]byte, 5), Width: 2, Height: 2, Format: wgpu.TextureFormatR8Unorm}
	if err := s.Validate(); err == nil {
		t.Error("expected size mismatch error")
	}
}
