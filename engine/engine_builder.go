package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, frame stats are aggregated and logged
//   - interval: how often stats are logged (default 1 second)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		e.profileInterval = interval
	}
}

// WithRenderer supplies the renderer instead of creating one from the HostContext.
//
// Parameters:
//   - r: the renderer to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions passes options to the renderer the engine creates.
//
// Parameters:
//   - options: renderer options such as renderer.WithFramesInFlight
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithPipelineOptions passes options to the sprite pipeline, for hosts whose depth convention differs.
//
// Parameters:
//   - options: pipeline options such as pipeline.WithDepthCompare
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipelineOptions(options ...pipeline.PipelineBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.pipelineOptions = append(e.pipelineOptions, options...)
	}
}

// WithShadeParams sets the shading constants baked into the sprite shader.
//
// Parameters:
//   - p: desaturation, x-ray and hover constants
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShadeParams(p shade.Params) EngineBuilderOption {
	return func(e *engine) {
		e.shadeParams = p
	}
}

// WithBatcherOptions passes options to the batcher.
//
// Parameters:
//   - options: batcher options such as batch.WithMaxInstances
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBatcherOptions(options ...batch.BatcherBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.batcherOptions = append(e.batcherOptions, options...)
	}
}

// WithCameraOptions passes options to the camera.
//
// Parameters:
//   - options: camera options such as camera.WithXRayRadius
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraOptions(options ...camera.CameraBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.cameraOptions = append(e.cameraOptions, options...)
	}
}

// WithCulling drops instances whose quads fall outside the visible world rectangle grown by margin pixels.
//
// Parameters:
//   - margin: extra world pixels kept around the view
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCulling(margin float32) EngineBuilderOption {
	return func(e *engine) {
		e.culling = true
		e.cullMargin = margin
	}
}

// WithLogger sets the logger shared by the engine, batcher, renderer and profiler.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}
