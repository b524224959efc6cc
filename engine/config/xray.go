package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// XRaySize is the user-facing x-ray preset. Each preset maps to a radius multiplier for the camera.
type XRaySize int

const (
	XRayOff XRaySize = iota
	XRaySmall
	XRayMedium
	XRayLarge
)

// Radius returns the x-ray radius multiplier of the preset.
func (s XRaySize) Radius() float32 {
	switch s {
	case XRayOff:
		return 0
	case XRaySmall:
		return 1
	case XRayLarge:
		return 2
	default:
		return 1.5
	}
}

// String returns the preset name used in config files.
func (s XRaySize) String() string {
	switch s {
	case XRayOff:
		return "off"
	case XRaySmall:
		return "small"
	case XRayMedium:
		return "medium"
	case XRayLarge:
		return "large"
	default:
		return fmt.Sprintf("XRaySize(%d)", int(s))
	}
}

// ParseXRaySize accepts a preset name (case-insensitive) or its number 0-3.
func ParseXRaySize(v string) (XRaySize, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "off":
		return XRayOff, nil
	case "small":
		return XRaySmall, nil
	case "medium":
		return XRayMedium, nil
	case "large":
		return XRayLarge, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < int(XRayOff) || n > int(XRayLarge) {
		return XRayMedium, fmt.Errorf("unknown x-ray size %q", v)
	}
	return XRaySize(n), nil
}

// UnmarshalYAML decodes a preset from a scalar node.
func (s *XRaySize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: x-ray size must be a scalar", value.Line)
	}
	parsed, err := ParseXRaySize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes the preset by name.
func (s XRaySize) MarshalYAML() (any, error) {
	return s.String(), nil
}
