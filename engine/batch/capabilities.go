package batch

// Capability bits carried in GPUSpriteInstance.Flags. The WGSL side declares the same constants.
const (
	// FlagXRay marks geometry evaluated in the local player's x-ray reference frame.
	FlagXRay uint32 = 1 << 0

	// FlagHover marks a sprite under the targeting cursor.
	FlagHover uint32 = 1 << 1
)

// Capabilities is the named form of an instance's behavioral toggles.
type Capabilities struct {
	// XRay lets the sprite dissolve when it stands in front of the local player.
	XRay bool
	// Hover brightens the sprite as a targeting highlight.
	Hover bool
}

// Flags encodes the capabilities into instance flag bits.
func (c Capabilities) Flags() uint32 {
	var f uint32
	if c.XRay {
		f |= FlagXRay
	}
	if c.Hover {
		f |= FlagHover
	}
	return f
}

// CapabilitiesFromFlags decodes instance flag bits. Unknown bits are ignored.
func CapabilitiesFromFlags(f uint32) Capabilities {
	return Capabilities{
		XRay:  f&FlagXRay != 0,
		Hover: f&FlagHover != 0,
	}
}
