package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// State is a complete camera description handed over by the host once per frame.
type State struct {
	// Anchor is the world position the view centers on, usually the local player's feet.
	Anchor [2]float32
	// Zoom scales world pixels to screen pixels; 0 keeps the current zoom.
	Zoom float32
	// Viewport is the size of the color target in pixels; zero keeps the current viewport.
	Viewport [2]float32
	// XRayRadius is the x-ray radius multiplier; negative values disable the effect.
	XRayRadius float32
	// Tint is the global additive tint.
	Tint [3]float32
}

type cameraImpl struct {
	mu *sync.Mutex

	position   [2]float32
	zoom       float32
	viewport   [2]float32
	xrayRadius float32
	tint       [3]float32

	xrayTween *gween.Tween
	xrayEase  ease.TweenFunc

	lastUniform GPUCameraUniform
}

// Camera is the frame uniform provider: an orthographic isometric camera that turns the anchor, zoom,
// viewport and effect state into the per-frame CameraUniform.
type Camera interface {
	// Position returns the world-space anchor.
	//
	// Returns:
	//   - x, y: anchor position in world pixels
	Position() (x, y float32)

	// SetPosition moves the anchor to a world-space position.
	//
	// Parameters:
	//   - x, y: anchor position in world pixels
	SetPosition(x, y float32)

	// SetTilePosition moves the anchor to a tile, rounded to whole world pixels.
	//
	// Parameters:
	//   - x, y: tile coordinates
	SetTilePosition(x, y float32)

	// Zoom returns the world to screen scale.
	Zoom() float32

	// SetZoom sets the world to screen scale. Non-positive values are ignored.
	SetZoom(zoom float32)

	// SetMagnification sets the zoom from a magnification level, zoom = 1 / max(m, 0.01).
	SetMagnification(m float32)

	// Viewport returns the color target size in pixels.
	Viewport() (width, height float32)

	// SetViewport sets the color target size in pixels.
	SetViewport(width, height float32)

	// XRayRadius returns the current x-ray radius multiplier.
	XRayRadius() float32

	// SetXRayRadius sets the x-ray radius immediately, cancelling any running animation.
	// Negative values are clamped to 0, which disables the effect.
	SetXRayRadius(radius float32)

	// AnimateXRayRadius eases the x-ray radius toward target over the given duration. Update advances it.
	//
	// Parameters:
	//   - target: the final radius, clamped to >= 0
	//   - seconds: the animation duration; <= 0 applies target immediately
	AnimateXRayRadius(target, seconds float32)

	// Tint returns the global additive tint.
	Tint() [3]float32

	// SetTint sets the global additive tint.
	SetTint(tint [3]float32)

	// Apply copies a host-provided State into the camera.
	//
	// Parameters:
	//   - s: the state; zero Zoom and Viewport keep the current values
	Apply(s State)

	// State returns the camera's current state.
	State() State

	// Update advances the x-ray animation.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// ViewProjection computes the world to clip transform.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view-projection matrix
	ViewProjection() mgl32.Mat4

	// VisibleRect returns the world-space rectangle covered by the viewport.
	VisibleRect() common.Rect

	// Uniform builds this frame's CameraUniform and records it as the last uniform.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready for Marshal
	Uniform() GPUCameraUniform

	// LastUniform returns the uniform produced by the most recent Uniform call.
	LastUniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the provided options.
// The camera defaults to zoom 1, an 800x600 viewport and x-ray radius 1.
//
// Parameters:
//   - options: functional options for camera configuration
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		zoom:       1,
		viewport:   [2]float32{800, 600},
		xrayRadius: 1,
		xrayEase:   ease.OutQuad,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1]
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [2]float32{x, y}
}

func (c *cameraImpl) SetTilePosition(x, y float32) {
	px, py := common.RoundedIsoFromTile(x, y)
	c.SetPosition(px, py)
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
}

func (c *cameraImpl) SetMagnification(m float32) {
	c.SetZoom(1 / max(m, 0.01))
}

func (c *cameraImpl) Viewport() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport[0], c.viewport[1]
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = [2]float32{width, height}
}

func (c *cameraImpl) XRayRadius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.xrayRadius
}

func (c *cameraImpl) SetXRayRadius(radius float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.xrayTween = nil
	c.xrayRadius = max(radius, 0)
}

func (c *cameraImpl) AnimateXRayRadius(target, seconds float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target = max(target, 0)
	if seconds <= 0 || target == c.xrayRadius {
		c.xrayTween = nil
		c.xrayRadius = target
		return
	}
	c.xrayTween = gween.New(c.xrayRadius, target, seconds, c.xrayEase)
}

func (c *cameraImpl) Tint() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tint
}

func (c *cameraImpl) SetTint(tint [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tint = tint
}

func (c *cameraImpl) Apply(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = s.Anchor
	if s.Zoom > 0 {
		c.zoom = s.Zoom
	}
	if s.Viewport[0] > 0 && s.Viewport[1] > 0 {
		c.viewport = s.Viewport
	}
	c.xrayTween = nil
	c.xrayRadius = max(s.XRayRadius, 0)
	c.tint = s.Tint
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Anchor:     c.position,
		Zoom:       c.zoom,
		Viewport:   c.viewport,
		XRayRadius: c.xrayRadius,
		Tint:       c.tint,
	}
}

func (c *cameraImpl) Update(deltaTime float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.xrayTween == nil {
		return
	}
	radius, done := c.xrayTween.Update(deltaTime)
	c.xrayRadius = max(radius, 0)
	if done {
		c.xrayTween = nil
	}
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection()
}

// viewProjection builds depthRemap * ortho * center * zoom * -anchor. Callers hold c.mu.
//
// The orthographic projection maps world y downward (top row at y = 0). The depth remap turns the
// GL style [-1, 1] clip depth into WebGPU's [0, 1] so that clip depth = 0.5 + 0.5 * depth key.
func (c *cameraImpl) viewProjection() mgl32.Mat4 {
	w, h := c.viewport[0], c.viewport[1]
	proj := mgl32.Ortho(0, w, h, 0, -1, 1)
	depthRemap := mgl32.Translate3D(0, 0, 0.5).Mul4(mgl32.Scale3D(1, 1, -0.5))
	center := mgl32.Translate3D(floor32(w/2), floor32(h/2), 0)
	scale := mgl32.Scale3D(c.zoom, c.zoom, 1)
	view := mgl32.Translate3D(-c.position[0], -c.position[1], 0)
	return depthRemap.Mul4(proj).Mul4(center).Mul4(scale).Mul4(view)
}

func (c *cameraImpl) VisibleRect() common.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := c.viewport[0], c.viewport[1]
	left := c.position[0] - floor32(w/2)/c.zoom
	top := c.position[1] - floor32(h/2)/c.zoom
	return common.RectFromSize(left, top, w/c.zoom, h/c.zoom)
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := GPUCameraUniform{
		// Transposing the column-major matrix yields its row-major element order.
		ViewProjection: [16]float32(c.viewProjection().Transpose()),
		Position:       c.position,
		XRayRadius:     max(c.xrayRadius, 0),
		Tint:           c.tint,
	}
	c.lastUniform = u
	return u
}

func (c *cameraImpl) LastUniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUniform
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}
