package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultFramesInFlight is the number of ring slots used when no option overrides it.
const DefaultFramesInFlight = 3

// Errors returned by the renderer. Device errors are wrapped around these or returned wrapped as-is.
var (
	ErrNoFrame             = errors.New("no frame in progress")
	ErrFrameInProgress     = errors.New("frame already in progress")
	ErrNoPipeline          = errors.New("no render pipeline registered")
	ErrPipelineNotFound    = errors.New("render pipeline not found")
	ErrInstanceRange       = errors.New("instance range outside the uploaded frame")
	ErrSceneDepthAliasing  = errors.New("scene depth view is the frame's depth attachment")
	ErrInvalidRenderTarget = errors.New("invalid render target")
	ErrInvalidHostContext  = errors.New("invalid host context")
)

// HostContext is the GPU state the host owns and lends to the renderer. The renderer never creates an
// instance, adapter, device or surface, and never releases the objects handed to it here.
type HostContext struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	// ColorFormat is the format of the color views passed in RenderTarget.
	ColorFormat wgpu.TextureFormat
	// DepthFormat is the depth attachment format. Zero means Depth32Float.
	DepthFormat wgpu.TextureFormat
}

// RenderTarget describes where one frame is drawn.
type RenderTarget struct {
	// ColorView is the host color attachment, usually the current surface texture view.
	ColorView *wgpu.TextureView
	// DepthView is an optional host depth attachment. When nil the renderer uses its own depth texture
	// sized Width x Height and cleared to 0 each frame.
	DepthView *wgpu.TextureView
	// SceneDepthView is an optional depth texture the fragment stage reads to reject sprites hidden
	// behind host geometry. When nil a 1x1 texture cleared to 0 is bound, which rejects nothing.
	// It must view a different texture than DepthView.
	SceneDepthView *wgpu.TextureView

	// DepthTexture and SceneDepthTexture are the textures behind DepthView and SceneDepthView. They are
	// required when both views are set, since two views of one texture cannot be told apart from the
	// views alone.
	DepthTexture      *wgpu.Texture
	SceneDepthTexture *wgpu.Texture

	Width, Height uint32

	// ClearColor is used when LoadColor is false.
	ClearColor wgpu.Color
	// LoadColor keeps the existing color contents instead of clearing them.
	LoadColor bool
}

// Validate reports whether the target can be drawn to.
func (t RenderTarget) Validate() error {
	if t.ColorView == nil {
		return errors.Join(ErrInvalidRenderTarget, errors.New("color view is nil"))
	}
	if t.Width == 0 || t.Height == 0 {
		return errors.Join(ErrInvalidRenderTarget, errors.New("target has zero size"))
	}
	if t.SceneDepthView == nil || t.DepthView == nil {
		return nil
	}
	if t.SceneDepthView == t.DepthView {
		return ErrSceneDepthAliasing
	}
	if t.DepthTexture == nil || t.SceneDepthTexture == nil {
		return errors.Join(ErrInvalidRenderTarget, errors.New("depth and scene depth textures are required when both views are set"))
	}
	if t.DepthTexture == t.SceneDepthTexture {
		return ErrSceneDepthAliasing
	}
	return nil
}

// RendererBackend is the GPU API the renderer drives. The renderer keeps the pipeline cache and the
// frame ring; the backend owns every device call.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuRendererBackend is the set of device operations the renderer needs from a WebGPU backend.
type wgpuRendererBackend interface {
	RegisterRenderPipeline(p pipeline.Pipeline) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)
	ReleaseBuffer(buf *wgpu.Buffer)
	SceneDepthPlaceholder() (*wgpu.TextureView, error)

	BeginFrame(target RenderTarget) error
	DrawCall(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexBuffers []*wgpu.Buffer, vertexCount, firstInstance, instanceCount uint32)
	EndFrame() error
	AbortFrame()

	Release()
}
