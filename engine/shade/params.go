package shade

import (
	"errors"
	"fmt"
)

// Params holds the tunable constants of the compositing stage. The same values are baked into the
// sprite shader source, so the CPU reference and the GPU produce identical results.
type Params struct {
	// DesaturateInner is the tile distance from the anchor where desaturation starts.
	DesaturateInner float32 `yaml:"desaturate_inner"`
	// DesaturateOuter is the tile distance where desaturation reaches full strength.
	DesaturateOuter float32 `yaml:"desaturate_outer"`
	// DesaturateDim scales the luminance of fully desaturated pixels.
	DesaturateDim float32 `yaml:"desaturate_dim"`

	// XRayEllipseX and XRayEllipseY are the x-ray ellipse half-axes in world pixels at radius 1.
	XRayEllipseX float32 `yaml:"xray_ellipse_x"`
	XRayEllipseY float32 `yaml:"xray_ellipse_y"`
	// XRayLift raises the ellipse center above the anchor so it covers the player's body.
	XRayLift float32 `yaml:"xray_lift"`
	// XRayFalloffStart is the normalized ellipse distance where the dissolve starts fading out.
	XRayFalloffStart float32 `yaml:"xray_falloff_start"`

	// BaseFadeStart and BaseFadeEnd bound the band, in pixels above a sprite's base, over which
	// the x-ray effect fades in.
	BaseFadeStart float32 `yaml:"base_fade_start"`
	BaseFadeEnd   float32 `yaml:"base_fade_end"`

	// HoverBoost is added to every channel of hovered sprites.
	HoverBoost float32 `yaml:"hover_boost"`
}

// DefaultParams returns the stock shading constants.
func DefaultParams() Params {
	return Params{
		DesaturateInner:  10,
		DesaturateOuter:  16,
		DesaturateDim:    0.55,
		XRayEllipseX:     84,
		XRayEllipseY:     112,
		XRayLift:         48,
		XRayFalloffStart: 0.6,
		BaseFadeStart:    10,
		BaseFadeEnd:      30,
		HoverBoost:       0.15,
	}
}

// Validate reports parameters the shader cannot work with. Both smoothstep bands need a strictly
// increasing pair of edges: WGSL leaves smoothstep undefined for equal edges.
func (p Params) Validate() error {
	var errs []error
	if p.DesaturateInner < 0 || p.DesaturateOuter <= p.DesaturateInner {
		errs = append(errs, fmt.Errorf("desaturation band [%v, %v] is invalid", p.DesaturateInner, p.DesaturateOuter))
	}
	if p.DesaturateDim < 0 || p.DesaturateDim > 1 {
		errs = append(errs, fmt.Errorf("desaturation dim %v outside [0, 1]", p.DesaturateDim))
	}
	if p.XRayEllipseX <= 0 || p.XRayEllipseY <= 0 {
		errs = append(errs, fmt.Errorf("x-ray ellipse %vx%v must be positive", p.XRayEllipseX, p.XRayEllipseY))
	}
	if p.XRayFalloffStart < 0 || p.XRayFalloffStart >= 1 {
		errs = append(errs, fmt.Errorf("x-ray falloff start %v outside [0, 1)", p.XRayFalloffStart))
	}
	if p.BaseFadeStart < 0 || p.BaseFadeEnd <= p.BaseFadeStart {
		errs = append(errs, fmt.Errorf("base fade band [%v, %v] is invalid", p.BaseFadeStart, p.BaseFadeEnd))
	}
	if p.HoverBoost < 0 {
		errs = append(errs, fmt.Errorf("hover boost %v is negative", p.HoverBoost))
	}
	return errors.Join(errs...)
}
