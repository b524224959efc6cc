package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *log.Logger

	pipelineCache map[string]pipeline.Pipeline

	host           HostContext
	backend        RendererBackend
	framesInFlight int

	// Frame resources, created when the first pipeline is registered.
	ring                 *frameRing
	quad                 *wgpu.Buffer
	quadVertexCount      uint32
	sceneDepth           bind_group_provider.BindGroupProvider
	sceneDepthDescriptor wgpu.BindGroupLayoutDescriptor
	sceneDepthView       *wgpu.TextureView
	sceneDepthBound      bool

	frameOpen      bool
	frameSlot      int
	frameInstances int
}

// Renderer is the GPU layer of the engine. It caches sprite pipelines, uploads material textures and
// encodes one render pass per frame onto a view the host owns.
//
// Per-frame memory (the instance buffer and the camera uniform) comes from a ring of FramesInFlight
// slots. Each frame writes the next slot, so data a previous frame submitted is never overwritten while
// the GPU may still read it. A slot too small for a frame is replaced by a larger buffer.
// Frames are submitted without waiting for the GPU.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for one or more pipelines and caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped. The first registration also creates the
	// frame ring, the shared quad and the scene depth binding from the pipeline's shader layout.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Textures and samplers must be initialized via InitTextureView
	// and InitSampler before calling this method.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture from staging data in the staging format and stores it on the
	// provider at the given binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data, dimensions and format for the texture
	//
	// Returns:
	//   - error: an error if the staging data is invalid or texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler and stores it on the provider at the given binding.
	// Zero fields default to clamp-to-edge addressing and nearest filtering.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// InitMaterial uploads a material's atlas, palette and dye and attaches the resulting group 0 bind
	// group to the material. The material's pipeline must already be registered. Any provider the
	// material held before is released.
	//
	// Parameters:
	//   - m: the material to upload
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or an upload fails
	InitMaterial(m material.Material) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame takes the next ring slot, uploads the camera uniform and the encoded instances into it
	// and begins the frame's render pass on the target.
	//
	// Parameters:
	//   - target: the host color view and optional depth views
	//   - uniform: the frame's camera uniform
	//   - instances: encoded instance records, batch.InstanceStride bytes each
	//
	// Returns:
	//   - error: an error if a frame is already open, no pipeline is registered or a device call fails
	BeginFrame(target RenderTarget, uniform camera.GPUCameraUniform, instances []byte) error

	// Draw encodes one instanced draw of the sprite quad for a contiguous instance range of the current
	// frame, with the material's textures bound at group 0.
	//
	// Parameters:
	//   - pipelineKey: the cached pipeline to draw with
	//   - materialProvider: the material's group 0 provider
	//   - first: index of the first instance in the frame's upload
	//   - count: number of instances to draw
	//
	// Returns:
	//   - error: ErrNoFrame outside BeginFrame/EndFrame, or an error for an unknown pipeline or bad range
	Draw(pipelineKey string, materialProvider bind_group_provider.BindGroupProvider, first, count uint32) error

	// EndFrame ends the render pass and submits it. It does not wait for the GPU.
	//
	// Returns:
	//   - error: ErrNoFrame if no frame is open, or the wrapped submission error
	EndFrame() error

	// AbortFrame drops the current frame without submitting it. It is a no-op when no frame is open.
	AbortFrame()

	// FramesInFlight returns the number of ring slots.
	FramesInFlight() int

	// Growths returns how many times a ring slot's instance buffer has been replaced by a larger one.
	Growths() int

	// Release frees every GPU object the renderer created, including cached pipelines. Objects in the
	// HostContext are left to the host.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on a device the host owns.
//
// Parameters:
//   - host: the device, queue and target formats lent by the host
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer
//   - error: ErrInvalidHostContext if the host context is incomplete
func NewRenderer(host HostContext, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		logger:         log.Default(),
		pipelineCache:  make(map[string]pipeline.Pipeline),
		host:           host,
		framesInFlight: DefaultFramesInFlight,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		b, err := newWGPURendererBackend(host)
		if err != nil {
			return nil, err
		}
		r.backend = b
	}
	r.ring = newFrameRing(r.framesInFlight)
	r.framesInFlight = len(r.ring.slots)
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p

		if r.quadVertexCount == 0 {
			if err := r.initFrameResources(p); err != nil {
				return fmt.Errorf("failed to create frame resources: %w", err)
			}
		}
	}
	return nil
}

// initFrameResources creates the shared quad, one camera bind group per ring slot and the scene depth
// provider. Pipelines share one shader layout, so the first registered pipeline describes them all.
func (r *renderer) initFrameResources(p pipeline.Pipeline) error {
	vertices := batch.QuadVertices()
	data := batch.MarshalVertices(vertices)
	quad, err := r.backend.CreateBuffer("Sprite Quad Vertex Buffer", uint64(len(data)), wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.backend.WriteBuffer(quad, 0, data)

	cameraDescriptor := p.Shader().BindGroupLayoutDescriptor(shader.GroupCamera)
	for i := range r.ring.slots {
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Camera Slot %d", i), shader.GroupCamera)
		if err := r.backend.InitBindGroup(provider, cameraDescriptor, nil, nil); err != nil {
			provider.Release()
			r.ring.release(r.backend.ReleaseBuffer)
			r.backend.ReleaseBuffer(quad)
			return fmt.Errorf("camera bind group for slot %d: %w", i, err)
		}
		r.ring.slots[i].camera = provider
	}

	r.quad = quad
	r.quadVertexCount = uint32(len(vertices))
	r.sceneDepth = bind_group_provider.NewBindGroupProvider("Scene Depth", shader.GroupSceneDepth)
	r.sceneDepthDescriptor = p.Shader().BindGroupLayoutDescriptor(shader.GroupSceneDepth)
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	if err := stagingData.Validate(); err != nil {
		return fmt.Errorf("binding %d of %q: %w", bindingKey, provider.Label(), err)
	}
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

// emptyDye stands in for materials without a dye table. Draw commands for such materials carry no dye
// row, so it is never sampled.
var emptyDye = common.TextureStagingData{
	Pixels: make([]byte, 4),
	Width:  1,
	Height: 1,
	Format: wgpu.TextureFormatRGBA8Unorm,
}

func (r *renderer) InitMaterial(m material.Material) error {
	r.mu.Lock()
	p, ok := r.pipelineCache[m.PipelineKey()]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("material %d: %w: %q", m.ID(), ErrPipelineNotFound, m.PipelineKey())
	}

	provider := bind_group_provider.NewBindGroupProvider(
		fmt.Sprintf("Material %d %s", m.ID(), m.Name()),
		shader.GroupMaterial,
		bind_group_provider.WithSharedLayout(p.BindGroupLayout(shader.GroupMaterial)),
	)

	dye := m.Dye()
	if len(dye.Pixels) == 0 {
		dye = emptyDye
	}
	textures := []struct {
		name    string
		binding int
		data    common.TextureStagingData
	}{
		{"atlas", shader.BindingAtlas, m.Atlas()},
		{"palette", shader.BindingPalette, m.Palette()},
		{"dye", shader.BindingDye, dye},
	}
	for _, t := range textures {
		if err := r.InitTextureView(provider, t.binding, t.data); err != nil {
			provider.Release()
			return fmt.Errorf("material %d %s: %w", m.ID(), t.name, err)
		}
	}
	for _, binding := range []int{shader.BindingAtlasSampler, shader.BindingPaletteSampler} {
		if err := r.backend.InitSampler(provider, binding, common.SamplerStagingData{}); err != nil {
			provider.Release()
			return fmt.Errorf("material %d sampler %d: %w", m.ID(), binding, err)
		}
	}
	if err := r.backend.InitBindGroup(provider, p.Shader().BindGroupLayoutDescriptor(shader.GroupMaterial), nil, nil); err != nil {
		provider.Release()
		return fmt.Errorf("material %d bind group: %w", m.ID(), err)
	}

	if old := m.BindGroupProvider(); old != nil {
		old.Release()
	}
	m.SetBindGroupProvider(provider)
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame(target RenderTarget, uniform camera.GPUCameraUniform, instances []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameOpen {
		return ErrFrameInProgress
	}
	if r.quadVertexCount == 0 {
		return ErrNoPipeline
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if len(instances)%batch.InstanceStride != 0 {
		return fmt.Errorf("instance data of %d bytes is not a multiple of %d", len(instances), batch.InstanceStride)
	}
	n := len(instances) / batch.InstanceStride

	if err := r.bindSceneDepth(target.SceneDepthView); err != nil {
		return fmt.Errorf("failed to bind scene depth: %w", err)
	}

	slot := r.ring.advance()
	alloc := func(size uint64) (*wgpu.Buffer, error) {
		return r.backend.CreateBuffer(fmt.Sprintf("Instance Slot %d", slot), size, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
	}
	before := r.ring.growths
	if err := r.ring.ensureInstances(slot, n, alloc, r.backend.ReleaseBuffer); err != nil {
		return fmt.Errorf("failed to allocate instance buffer for slot %d: %w", slot, err)
	}
	s := &r.ring.slots[slot]
	if r.ring.growths != before {
		r.logger.Printf("[Renderer] slot %d instance buffer grown to %d instances", slot, s.capacity)
	}

	if n > 0 {
		r.backend.WriteBuffer(s.instances, 0, instances)
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		bind_group_provider.UniformWrite(s.camera, shader.BindingCamera, uniform.Marshal()),
	})

	if err := r.backend.BeginFrame(target); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	r.frameOpen = true
	r.frameSlot = slot
	r.frameInstances = n
	return nil
}

// bindSceneDepth points group 2 at the host's scene depth view, or at the placeholder when there is none.
// The bind group is only rebuilt when the view changes.
func (r *renderer) bindSceneDepth(view *wgpu.TextureView) error {
	if view == nil {
		placeholder, err := r.backend.SceneDepthPlaceholder()
		if err != nil {
			return err
		}
		view = placeholder
	}
	if r.sceneDepthBound && view == r.sceneDepthView {
		return nil
	}
	r.sceneDepth.SetTexture(shader.BindingSceneDepth, nil, view)
	if err := r.backend.InitBindGroup(r.sceneDepth, r.sceneDepthDescriptor, nil, nil); err != nil {
		r.sceneDepthBound = false
		return err
	}
	r.sceneDepthView = view
	r.sceneDepthBound = true
	return nil
}

func (r *renderer) Draw(pipelineKey string, materialProvider bind_group_provider.BindGroupProvider, first, count uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameOpen {
		return ErrNoFrame
	}
	p, exists := r.pipelineCache[pipelineKey]
	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	if materialProvider == nil {
		return fmt.Errorf("pipeline %q: material has no bind group", pipelineKey)
	}
	if count == 0 {
		return nil
	}
	if int(first)+int(count) > r.frameInstances {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrInstanceRange, first, first+count, r.frameInstances)
	}

	s := &r.ring.slots[r.frameSlot]
	r.backend.DrawCall(
		p,
		[]bind_group_provider.BindGroupProvider{materialProvider, s.camera, r.sceneDepth},
		[]*wgpu.Buffer{r.quad, s.instances},
		r.quadVertexCount,
		first,
		count,
	)
	return nil
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameOpen {
		return ErrNoFrame
	}
	r.frameOpen = false
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	return nil
}

func (r *renderer) AbortFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frameOpen {
		return
	}
	r.frameOpen = false
	r.backend.AbortFrame()
}

func (r *renderer) FramesInFlight() int {
	return r.framesInFlight
}

func (r *renderer) Growths() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ring.growths
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameOpen {
		r.backend.AbortFrame()
		r.frameOpen = false
	}
	r.ring.release(r.backend.ReleaseBuffer)
	if r.quad != nil {
		r.backend.ReleaseBuffer(r.quad)
		r.quad = nil
	}
	r.quadVertexCount = 0
	if r.sceneDepth != nil {
		r.sceneDepth.Release()
		r.sceneDepth = nil
	}
	r.sceneDepthBound = false
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
