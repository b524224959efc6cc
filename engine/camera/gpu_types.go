package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (96 bytes, uniform aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the size of the camera uniform buffer in bytes.
const GPUCameraUniformSize = 96

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Fields are densely packed in declaration order; the trailing padding only rounds the struct up to
// the 16-byte alignment WGSL requires of a uniform struct holding a mat4x4.
// Size: 96 bytes.
type GPUCameraUniform struct {
	ViewProjection [16]float32 // offset  0: world to clip transform, row-major
	Position       [2]float32  // offset 64: camera anchor in world pixels (the local player)
	XRayRadius     float32     // offset 72: x-ray radius multiplier, 0 disables the effect
	Tint           [3]float32  // offset 76: additive RGB tint applied to every sprite
	_pad           [2]float32  // offset 88: padding to 96 bytes
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProjection[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.XRayRadius))
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[76+i*4:], math.Float32bits(g.Tint[i]))
	}
	return buf
}
