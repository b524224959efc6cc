package batch

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUSpriteInstanceSource is the canonical WGSL definition of the VertexInput and InstanceInput structs.
// Matches SpriteVertex and GPUSpriteInstance layouts exactly.
//
//go:embed assets/sprite_instance.wgsl
var GPUSpriteInstanceSource string

const (
	// InstanceStride is the byte size of one encoded GPUSpriteInstance.
	InstanceStride = 60

	// VertexStride is the byte size of one encoded SpriteVertex.
	VertexStride = 16

	// QuadVertexCount is the number of vertices drawn per sprite instance.
	QuadVertexCount = 6
)

// GPUSpriteInstance is the per-instance vertex record consumed by the sprite pipeline (step mode instance).
// Matches the WGSL InstanceInput struct layout exactly (see GPUSpriteInstanceSource).
// Size: 60 bytes, densely packed.
type GPUSpriteInstance struct {
	Position      [3]float32 // offset  0 @location(5): world x, y and depth key z
	TexMin        [2]float32 // offset 12 @location(6): normalized atlas rect min
	TexMax        [2]float32 // offset 20 @location(7): normalized atlas rect max
	SpriteSize    [2]float32 // offset 28 @location(8): quad size in world pixels
	PaletteOffset float32    // offset 36 @location(9): palette row, negative = discard
	DyeOffset     float32    // offset 40 @location(10): dye row, negative = no dye
	Flags         uint32     // offset 44 @location(11): capability bits
	Tint          [3]float32 // offset 48 @location(12): additive RGB tint
}

// Size returns the size of the GPUSpriteInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (60)
func (g *GPUSpriteInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the instance into a new byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the 60-byte encoded record
func (g *GPUSpriteInstance) Marshal() []byte {
	buf := make([]byte, InstanceStride)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo encodes the instance into buf, which must hold at least InstanceStride bytes.
func (g *GPUSpriteInstance) MarshalTo(buf []byte) {
	_ = buf[InstanceStride-1]
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putF32(0, g.Position[0])
	putF32(4, g.Position[1])
	putF32(8, g.Position[2])
	putF32(12, g.TexMin[0])
	putF32(16, g.TexMin[1])
	putF32(20, g.TexMax[0])
	putF32(24, g.TexMax[1])
	putF32(28, g.SpriteSize[0])
	putF32(32, g.SpriteSize[1])
	putF32(36, g.PaletteOffset)
	putF32(40, g.DyeOffset)
	binary.LittleEndian.PutUint32(buf[44:], g.Flags)
	putF32(48, g.Tint[0])
	putF32(52, g.Tint[1])
	putF32(56, g.Tint[2])
}

// Capabilities decodes the instance's flag bits.
func (g *GPUSpriteInstance) Capabilities() Capabilities {
	return CapabilitiesFromFlags(g.Flags)
}

// SpriteVertex is the static per-vertex record of the shared unit quad (step mode vertex).
// Matches the WGSL VertexInput struct layout exactly. Size: 16 bytes.
type SpriteVertex struct {
	Position  [2]float32 // offset 0 @location(0): unit quad corner
	TexCoords [2]float32 // offset 8 @location(1): 0..1 interpolation factor
}

// QuadVertices returns the six vertices of the unit quad as two counter-clockwise triangles.
//
// Returns:
//   - []SpriteVertex: the quad vertices
func QuadVertices() []SpriteVertex {
	return []SpriteVertex{
		{Position: [2]float32{0, 0}, TexCoords: [2]float32{0, 0}},
		{Position: [2]float32{1, 0}, TexCoords: [2]float32{1, 0}},
		{Position: [2]float32{0, 1}, TexCoords: [2]float32{0, 1}},
		{Position: [2]float32{1, 0}, TexCoords: [2]float32{1, 0}},
		{Position: [2]float32{1, 1}, TexCoords: [2]float32{1, 1}},
		{Position: [2]float32{0, 1}, TexCoords: [2]float32{0, 1}},
	}
}

// MarshalVertices encodes vertices for upload into a vertex buffer.
//
// Parameters:
//   - vertices: the vertices to encode
//
// Returns:
//   - []byte: VertexStride bytes per vertex
func MarshalVertices(vertices []SpriteVertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		off := i * VertexStride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.TexCoords[0]))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(v.TexCoords[1]))
	}
	return buf
}

// VertexLayout returns the vertex buffer layout of SpriteVertex (buffer slot 0).
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}
}

// InstanceLayout returns the vertex buffer layout of GPUSpriteInstance (buffer slot 1).
func InstanceLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 7},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 28, ShaderLocation: 8},
			{Format: wgpu.VertexFormatFloat32, Offset: 36, ShaderLocation: 9},
			{Format: wgpu.VertexFormatFloat32, Offset: 40, ShaderLocation: 10},
			{Format: wgpu.VertexFormatUint32, Offset: 44, ShaderLocation: 11},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 48, ShaderLocation: 12},
		},
	}
}
