// Package config loads the compositor's tunables from a YAML file and turns them into engine options.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-iso/engine"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Config holds every configurable value of the compositor and the demo host.
type Config struct {
	Batch     BatchConfig     `yaml:"batch"`
	Camera    CameraConfig    `yaml:"camera"`
	Shading   shade.Params    `yaml:"shading"`
	Profiling ProfilingConfig `yaml:"profiling"`
	Window    WindowConfig    `yaml:"window"`
}

type BatchConfig struct {
	MaxInstances   int     `yaml:"max_instances"` // 0 = unbounded
	FramesInFlight int     `yaml:"frames_in_flight"`
	EncodeWorkers  int     `yaml:"encode_workers"` // 0 = encode on the calling goroutine
	EncodeChunk    int     `yaml:"encode_chunk"`
	MaxDiagnostics int     `yaml:"max_diagnostics"`
	Culling        bool    `yaml:"culling"`
	CullMargin     float32 `yaml:"cull_margin"`
}

type CameraConfig struct {
	XRay            XRaySize `yaml:"xray"`
	XRayFadeSeconds float32  `yaml:"xray_fade_seconds"`
	Tint            string   `yaml:"tint"` // #rrggbb, added to every pixel
	Magnification   float32  `yaml:"magnification"`
}

type ProfilingConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type WindowConfig struct {
	Title      string  `yaml:"title"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	VSync      bool    `yaml:"vsync"`
	FrameLimit float64 `yaml:"frame_limit"` // 0 = uncapped
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Batch: BatchConfig{
			FramesInFlight: renderer.DefaultFramesInFlight,
			EncodeChunk:    4096,
			MaxDiagnostics: 8,
			Culling:        true,
			CullMargin:     64,
		},
		Camera: CameraConfig{
			XRay:            XRayMedium,
			XRayFadeSeconds: 0.25,
			Tint:            "#000000",
			Magnification:   1,
		},
		Shading: shade.DefaultParams(),
		Profiling: ProfilingConfig{
			Interval: time.Second,
		},
		Window: WindowConfig{
			Title:  "isoview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
	}
}

// LoadConfig reads a YAML file over the defaults, so a file only needs the keys it changes.
//
// Parameters:
//   - filename: path to the YAML file
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: error if the file cannot be read, parsed or fails validation
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoadConfig loads the configuration and panics on error.
func MustLoadConfig(filename string) *Config {
	c, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return c
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Batch.MaxInstances < 0 {
		errs = append(errs, fmt.Errorf("batch.max_instances %d is negative", c.Batch.MaxInstances))
	}
	if c.Batch.FramesInFlight < 1 {
		errs = append(errs, fmt.Errorf("batch.frames_in_flight %d must be at least 1", c.Batch.FramesInFlight))
	}
	if c.Batch.EncodeWorkers < 0 {
		errs = append(errs, fmt.Errorf("batch.encode_workers %d is negative", c.Batch.EncodeWorkers))
	}
	if c.Batch.CullMargin < 0 {
		errs = append(errs, fmt.Errorf("batch.cull_margin %v is negative", c.Batch.CullMargin))
	}
	if c.Camera.XRayFadeSeconds < 0 {
		errs = append(errs, fmt.Errorf("camera.xray_fade_seconds %v is negative", c.Camera.XRayFadeSeconds))
	}
	if c.Camera.Magnification <= 0 {
		errs = append(errs, fmt.Errorf("camera.magnification %v must be positive", c.Camera.Magnification))
	}
	if _, err := c.Camera.TintColor(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Shading.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("shading: %w", err))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// TintColor parses the camera tint. An empty string means no tint.
func (c CameraConfig) TintColor() ([3]float32, error) {
	if c.Tint == "" {
		return [3]float32{}, nil
	}
	col, err := colorful.Hex(c.Tint)
	if err != nil {
		return [3]float32{}, fmt.Errorf("camera.tint %q: %w", c.Tint, err)
	}
	return [3]float32{float32(col.R), float32(col.G), float32(col.B)}, nil
}

// EngineOptions turns the configuration into engine builder options.
//
// Returns:
//   - []engine.EngineBuilderOption: options for engine.NewEngine
func (c *Config) EngineOptions() []engine.EngineBuilderOption {
	tint, _ := c.Camera.TintColor()
	zoom := 1 / max(c.Camera.Magnification, 0.01)

	opts := []engine.EngineBuilderOption{
		engine.WithShadeParams(c.Shading),
		engine.WithRendererOptions(renderer.WithFramesInFlight(c.Batch.FramesInFlight)),
		engine.WithBatcherOptions(
			batch.WithMaxInstances(c.Batch.MaxInstances),
			batch.WithEncodeWorkers(c.Batch.EncodeWorkers),
			batch.WithEncodeChunk(c.Batch.EncodeChunk),
			batch.WithMaxDiagnostics(c.Batch.MaxDiagnostics),
		),
		engine.WithCameraOptions(
			camera.WithXRayRadius(c.Camera.XRay.Radius()),
			camera.WithTint(tint),
			camera.WithZoom(zoom),
		),
		engine.WithProfiling(c.Profiling.Enabled, c.Profiling.Interval),
	}
	if c.Batch.Culling {
		opts = append(opts, engine.WithCulling(c.Batch.CullMargin))
	}
	return opts
}
