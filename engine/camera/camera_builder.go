package camera

import "github.com/tanema/gween/ease"

// CameraBuilderOption is a functional option used to configure a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial world-space anchor.
//
// Parameters:
//   - x, y: anchor position in world pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the anchor
func WithPosition(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [2]float32{x, y}
	}
}

// WithZoom sets the initial zoom. Non-positive values are ignored.
//
// Parameters:
//   - zoom: world to screen scale
//
// Returns:
//   - CameraBuilderOption: a function that sets the zoom
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithViewport sets the color target size in pixels.
//
// Parameters:
//   - width, height: viewport size
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = [2]float32{width, height}
	}
}

// WithXRayRadius sets the initial x-ray radius, clamped to >= 0.
//
// Parameters:
//   - radius: the x-ray radius multiplier
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius
func WithXRayRadius(radius float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.xrayRadius = max(radius, 0)
	}
}

// WithTint sets the initial global tint.
//
// Parameters:
//   - tint: additive RGB tint
//
// Returns:
//   - CameraBuilderOption: a function that sets the tint
func WithTint(tint [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.tint = tint
	}
}

// WithXRayEasing sets the easing curve used by AnimateXRayRadius.
//
// Parameters:
//   - fn: the easing function
//
// Returns:
//   - CameraBuilderOption: a function that sets the easing
func WithXRayEasing(fn ease.TweenFunc) CameraBuilderOption {
	return func(c *cameraImpl) {
		if fn != nil {
			c.xrayEase = fn
		}
	}
}
