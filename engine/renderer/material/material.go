package material

import (
	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
)

// ID identifies a material. Draw commands reference materials by ID; every material is one draw group.
type ID uint32

// material is the implementation of the Material interface.
type material struct {
	id          ID
	name        string
	atlas       common.TextureStagingData
	palette     common.TextureStagingData
	dye         common.TextureStagingData
	atlasWidth  uint32
	atlasHeight uint32
	pipelineKey string

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material describes one sprite sheet and its recoloring tables: a color-indexed atlas, a palette
// texture (one row per recolor variant, one column per color index) and an optional dye texture with the
// same shape. The texture bind group (group 0) holding the uploaded copies is attached after GPU init.
type Material interface {
	// ID retrieves the material identifier referenced by draw commands.
	//
	// Returns:
	//   - ID: the material id
	ID() ID

	// Name retrieves the human readable material name used in labels and diagnostics.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// AtlasSize retrieves the atlas dimensions in pixels. Sprite rectangles must lie inside them.
	//
	// Returns:
	//   - width, height: atlas size in pixels
	AtlasSize() (width, height uint32)

	// PaletteRows retrieves the number of palette rows available to draw commands.
	//
	// Returns:
	//   - int: the palette row count
	PaletteRows() int

	// DyeRows retrieves the number of dye rows, 0 when the material has no dye table.
	//
	// Returns:
	//   - int: the dye row count
	DyeRows() int

	// Atlas retrieves the staged atlas pixels (one color index per byte).
	Atlas() common.TextureStagingData

	// Palette retrieves the staged palette table.
	Palette() common.TextureStagingData

	// Dye retrieves the staged dye table. Pixels are nil when the material has no dye.
	Dye() common.TextureStagingData

	// PipelineKey retrieves the key of the render pipeline used to draw this material.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the texture bind group provider, or nil before GPU init.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider for group 0
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the texture bind group provider for this material.
	//
	// Parameters:
	//   - provider: the provider holding the uploaded atlas, palette and dye
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material with the given id configured with the provided options.
//
// Parameters:
//   - id: the material identifier
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(id ID, options ...MaterialBuilderOption) Material {
	m := &material{
		id:          id,
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.atlasWidth == 0 && m.atlasHeight == 0 {
		m.atlasWidth, m.atlasHeight = m.atlas.Width, m.atlas.Height
	}
	return m
}

// DefaultPipelineKey is the pipeline every material draws with unless overridden.
const DefaultPipelineKey = "sprite"

func (m *material) ID() ID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) AtlasSize() (uint32, uint32) {
	return m.atlasWidth, m.atlasHeight
}

func (m *material) PaletteRows() int {
	return int(m.palette.Height)
}

func (m *material) DyeRows() int {
	if len(m.dye.Pixels) == 0 {
		return 0
	}
	return int(m.dye.Height)
}

func (m *material) Atlas() common.TextureStagingData {
	return m.atlas
}

func (m *material) Palette() common.TextureStagingData {
	return m.palette
}

func (m *material) Dye() common.TextureStagingData {
	return m.dye
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
