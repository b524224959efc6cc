package material

import (
	"github.com/Carmen-Shannon/oxy-iso/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithAtlas sets the color-indexed atlas. The atlas size is taken from the staging data.
//
// Parameters:
//   - atlas: R8 staging data, one color index per pixel
//
// Returns:
//   - MaterialBuilderOption: a function that applies the atlas to a material
func WithAtlas(atlas common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.atlas = atlas
	}
}

// WithAtlasSize sets the atlas dimensions without staging pixels, for materials whose atlas is
// uploaded elsewhere.
//
// Parameters:
//   - width, height: atlas size in pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the atlas size to a material
func WithAtlasSize(width, height uint32) MaterialBuilderOption {
	return func(m *material) {
		m.atlasWidth = width
		m.atlasHeight = height
	}
}

// WithPalette sets the palette table. Its height is the number of palette rows.
//
// Parameters:
//   - palette: RGBA staging data, 256 columns by N rows
//
// Returns:
//   - MaterialBuilderOption: a function that applies the palette to a material
func WithPalette(palette common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.palette = palette
	}
}

// WithDye sets the optional dye table. Its height is the number of dye rows.
//
// Parameters:
//   - dye: RGBA staging data, 256 columns by N rows
//
// Returns:
//   - MaterialBuilderOption: a function that applies the dye to a material
func WithDye(dye common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.dye = dye
	}
}

// WithPipelineKey overrides the render pipeline the material draws with.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}
