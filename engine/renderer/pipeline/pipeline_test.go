package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
	"github.com/cogentcore/webgpu/wgpu"
)

func newTestPipeline(t *testing.T, opts ...PipelineBuilderOption) Pipeline {
	t.Helper()
	s, err := shader.NewSpriteShader("sprite", shade.DefaultParams())
	if err != nil {
		t.Fatalf("NewSpriteShader: %v", err)
	}
	return NewPipeline("sprite", s, opts...)
}

func TestPipelineDefaults(t *testing.T) {
	p := newTestPipeline(t)
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("depth test and write should default on")
	}
	if p.DepthCompare() != wgpu.CompareFunctionGreater {
		t.Errorf("depth compare = %v, want Greater", p.DepthCompare())
	}
	if p.BlendEnabled() {
		t.Error("blending should default off")
	}
	if p.CullMode() != wgpu.CullModeNone || p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Error("unexpected primitive state defaults")
	}
	if p.RenderPipeline() != nil || p.BindGroupLayout(0) != nil {
		t.Error("GPU objects present before registration")
	}
}

func TestPipelineDescriptor(t *testing.T) {
	p := newTestPipeline(t)
	d := p.Descriptor(nil, nil, wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatDepth32Float)

	if d.Vertex.EntryPoint != "vs_main" || d.Fragment.EntryPoint != "fs_main" {
		t.Errorf("entry points %q/%q", d.Vertex.EntryPoint, d.Fragment.EntryPoint)
	}
	if len(d.Vertex.Buffers) != 2 || d.Vertex.Buffers[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("vertex buffers = %+v", d.Vertex.Buffers)
	}
	if len(d.Fragment.Targets) != 1 || d.Fragment.Targets[0].Format != wgpu.TextureFormatBGRA8Unorm {
		t.Fatalf("color targets = %+v", d.Fragment.Targets)
	}
	if d.Fragment.Targets[0].Blend != nil {
		t.Error("blend state set while blending is disabled")
	}
	if d.DepthStencil.Format != wgpu.TextureFormatDepth32Float || d.DepthStencil.DepthCompare != wgpu.CompareFunctionGreater {
		t.Errorf("depth state = %+v", d.DepthStencil)
	}
}

func TestPipelineDescriptorOptions(t *testing.T) {
	p := newTestPipeline(t,
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeBack),
	)
	d := p.Descriptor(nil, nil, wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatDepth24Plus)

	if d.DepthStencil.DepthCompare != wgpu.CompareFunctionAlways {
		t.Errorf("disabled depth test compare = %v, want Always", d.DepthStencil.DepthCompare)
	}
	if d.DepthStencil.DepthWriteEnabled {
		t.Error("depth write should be disabled")
	}
	if d.Fragment.Targets[0].Blend == nil {
		t.Error("blend state missing while blending is enabled")
	}
	if d.Primitive.CullMode != wgpu.CullModeBack {
		t.Errorf("cull mode = %v", d.Primitive.CullMode)
	}
}
