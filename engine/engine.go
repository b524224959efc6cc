// Package engine is the entry point of the isometric sprite compositor. A host submits a snapshot of draw
// commands and a camera state each frame and calls Render with a view it owns; the engine batches the
// commands by material, uploads them with the frame's camera uniform and issues one instanced draw per
// material group.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/profiler"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
)

// ErrMaterialNotReady is returned when a batched group references a material without uploaded textures.
var ErrMaterialNotReady = errors.New("material has no GPU resources")

// Renderer is the part of renderer.Renderer the engine drives.
type Renderer interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitMaterial(m material.Material) error
	BeginFrame(target renderer.RenderTarget, uniform camera.GPUCameraUniform, instances []byte) error
	Draw(pipelineKey string, materialProvider bind_group_provider.BindGroupProvider, first, count uint32) error
	EndFrame() error
	AbortFrame()
	Growths() int
	Release()
}

var _ Renderer = renderer.Renderer(nil)

// FrameStats describes the most recent call to Render.
type FrameStats struct {
	// Frame counts Render calls, including failed ones.
	Frame uint64
	// Batch holds the batcher's counters for the frame.
	Batch batch.Stats
	// DrawCalls is the number of instanced draws issued, one per material group.
	DrawCalls int
	// Growths is the total number of instance buffer reallocations so far.
	Growths int
	// Err is the error the frame failed with, nil for a submitted frame.
	Err error
}

// engine implements the Engine interface.
type engine struct {
	mu     *sync.Mutex
	logger *log.Logger

	renderer        Renderer
	rendererOptions []renderer.RendererBuilderOption
	pipelineOptions []pipeline.PipelineBuilderOption
	shadeParams     shade.Params

	materials      material.Registry
	batcher        batch.Batcher
	batcherOptions []batch.BatcherBuilderOption
	camera         camera.Camera
	cameraOptions  []camera.CameraBuilderOption

	commands []batch.DrawCommand

	culling    bool
	cullMargin float32

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	frame uint64
	stats FrameStats
}

// Engine is the collaborator-facing surface of the compositor.
// Hosts call SubmitDrawCommands and SetCamera as often as they like and Render once per frame.
type Engine interface {
	// SubmitDrawCommands replaces the draw command snapshot used by the next Render. The slice is copied,
	// so the caller may reuse it immediately.
	//
	// Parameters:
	//   - commands: every sprite to draw this frame
	SubmitDrawCommands(commands []batch.DrawCommand)

	// SetCamera applies a host camera state. Zero zoom or viewport keep their current values.
	//
	// Parameters:
	//   - s: the camera state
	SetCamera(s camera.State)

	// Camera returns the engine's camera for finer control (tile positioning, x-ray easing).
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Update advances time-based camera effects such as the x-ray radius easing.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// RegisterMaterial uploads a material's textures and makes it available to draw commands.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - error: material.ErrDuplicateMaterial for a reused id, or the upload error
	RegisterMaterial(m material.Material) error

	// Material returns a registered material.
	//
	// Parameters:
	//   - id: the material id
	//
	// Returns:
	//   - material.Material: the material
	//   - bool: false if no material is registered under id
	Material(id material.ID) (material.Material, bool)

	// Render draws the latest snapshot onto the target and submits it without waiting for the GPU.
	// A failed frame is dropped and the engine stays usable.
	//
	// Parameters:
	//   - target: the host's views for this frame
	//
	// Returns:
	//   - error: the wrapped renderer error, if any
	Render(target renderer.RenderTarget) error

	// Stats returns the counters of the most recent Render.
	//
	// Returns:
	//   - FrameStats: the stats
	Stats() FrameStats

	// Release frees the engine's GPU resources. The engine must not be used afterwards.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates an Engine on a device the host owns, compiles the sprite pipeline and registers it.
//
// Parameters:
//   - host: the host's device, queue and formats; ignored when WithRenderer supplies a renderer
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the shader, renderer or pipeline cannot be created
func NewEngine(host renderer.HostContext, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:          &sync.Mutex{},
		logger:      log.Default(),
		shadeParams: shade.DefaultParams(),
		materials:   material.NewRegistry(),
	}
	for _, opt := range options {
		opt(e)
	}

	s, err := shader.NewSpriteShader(material.DefaultPipelineKey, e.shadeParams)
	if err != nil {
		return nil, fmt.Errorf("failed to build sprite shader: %w", err)
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(host, append([]renderer.RendererBuilderOption{renderer.WithLogger(e.logger)}, e.rendererOptions...)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		e.renderer = r
	}
	if err := e.renderer.RegisterPipelines(pipeline.NewPipeline(material.DefaultPipelineKey, s, e.pipelineOptions...)); err != nil {
		e.renderer.Release()
		return nil, fmt.Errorf("failed to register sprite pipeline: %w", err)
	}

	e.camera = camera.NewCamera(e.cameraOptions...)
	e.batcher = batch.NewBatcher(e.materials, append([]batch.BatcherBuilderOption{batch.WithLogger(e.logger)}, e.batcherOptions...)...)
	if e.profilingEnabled {
		e.profiler = profiler.NewProfiler(e.profileInterval)
		e.profiler.SetLogger(e.logger)
	}
	return e, nil
}

func (e *engine) SubmitDrawCommands(commands []batch.DrawCommand) {
	snapshot := make([]batch.DrawCommand, len(commands))
	copy(snapshot, commands)

	e.mu.Lock()
	e.commands = snapshot
	e.mu.Unlock()
}

func (e *engine) SetCamera(s camera.State) {
	e.camera.Apply(s)
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Update(deltaTime float32) {
	e.camera.Update(deltaTime)
}

func (e *engine) RegisterMaterial(m material.Material) error {
	if _, exists := e.materials.Lookup(m.ID()); exists {
		return fmt.Errorf("material %d: %w", m.ID(), material.ErrDuplicateMaterial)
	}
	if err := e.renderer.InitMaterial(m); err != nil {
		return fmt.Errorf("failed to upload material %d: %w", m.ID(), err)
	}
	if err := e.materials.Register(m); err != nil {
		if p := m.BindGroupProvider(); p != nil {
			p.Release()
			m.SetBindGroupProvider(nil)
		}
		return err
	}
	return nil
}

func (e *engine) Material(id material.ID) (material.Material, bool) {
	return e.materials.Lookup(id)
}

func (e *engine) Render(target renderer.RenderTarget) error {
	e.mu.Lock()
	commands := e.commands
	e.frame++
	frame := e.frame
	e.mu.Unlock()

	// The render target decides the projection size.
	if target.Width > 0 && target.Height > 0 {
		e.camera.SetViewport(float32(target.Width), float32(target.Height))
	}
	uniform := e.camera.Uniform()

	view := batch.View{AnchorX: uniform.Position[0], AnchorY: uniform.Position[1]}
	if e.culling {
		view.Cull = e.camera.VisibleRect().Expand(e.cullMargin)
	}
	built := e.batcher.Build(commands, view)
	stats := FrameStats{Frame: frame, Batch: e.batcher.Stats()}

	err := e.draw(target, uniform, built)
	if err != nil {
		stats.Err = err
	} else {
		stats.DrawCalls = len(built.Groups)
	}
	stats.Growths = e.renderer.Growths()

	e.mu.Lock()
	e.stats = stats
	if e.profiler != nil {
		e.profiler.Record(profiler.FrameSample{
			Commands:  stats.Batch.Commands,
			Instances: stats.Batch.Instances,
			DrawCalls: stats.DrawCalls,
			Dropped:   stats.Batch.DroppedTotal(),
			Culled:    stats.Batch.Culled,
			Failed:    err != nil,
		})
		e.profiler.Tick()
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Printf("[Engine] frame %d dropped: %v", frame, err)
	}
	return err
}

// draw encodes and submits one frame. Any failure after BeginFrame abandons the frame.
func (e *engine) draw(target renderer.RenderTarget, uniform camera.GPUCameraUniform, built *batch.Frame) error {
	if err := e.renderer.BeginFrame(target, uniform, built.Bytes()); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	for _, g := range built.Groups {
		m, ok := e.materials.Lookup(g.Material)
		if !ok || m.BindGroupProvider() == nil {
			e.renderer.AbortFrame()
			return fmt.Errorf("material %d: %w", g.Material, ErrMaterialNotReady)
		}
		if err := e.renderer.Draw(m.PipelineKey(), m.BindGroupProvider(), g.First, g.Count); err != nil {
			e.renderer.AbortFrame()
			return fmt.Errorf("failed to draw material %d: %w", g.Material, err)
		}
	}
	if err := e.renderer.EndFrame(); err != nil {
		return err
	}
	return nil
}

func (e *engine) Stats() FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *engine) Release() {
	e.materials.Release()
	e.renderer.Release()
}
