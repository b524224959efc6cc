package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices of the sprite shader.
const (
	// GroupMaterial holds the per-material atlas, palette and dye textures with their samplers.
	GroupMaterial = 0
	// GroupCamera holds the per-frame CameraUniform.
	GroupCamera = 1
	// GroupSceneDepth holds the read-only scene depth texture.
	GroupSceneDepth = 2
)

// Bindings inside GroupMaterial.
const (
	BindingAtlas          = 0
	BindingAtlasSampler   = 1
	BindingPalette        = 2
	BindingPaletteSampler = 3
	BindingDye            = 4
)

// Bindings inside GroupCamera and GroupSceneDepth.
const (
	BindingCamera     = 0
	BindingSceneDepth = 0
)

// Vertex buffer slots of the sprite pipeline.
const (
	VertexSlotQuad     = 0
	VertexSlotInstance = 1
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	params                     shade.Params
	vertexEntryPoint           string
	fragmentEntryPoint         string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a rendered sprite shader together with the layout metadata reflected from its source:
// entry points, bind group layout descriptors and vertex buffer layouts in slot order.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the rendered WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Params returns the shading parameters baked into the source.
	//
	// Returns:
	//   - shade.Params: the parameters used to render the source
	Params() shade.Params

	// VertexEntryPoint returns the name of the @vertex function.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor of a group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all reflected bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the WGSL variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexLayouts returns the vertex buffer layouts in slot order: the shared quad, then the instances.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, indexed by VertexSlotQuad and VertexSlotInstance
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the shader module descriptor built from the rendered source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewSpriteShader renders the sprite shader with the given parameters and reflects its layouts.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label and pipeline key
//   - params: shading parameters baked into the source
//
// Returns:
//   - Shader: the rendered shader
//   - error: error if the parameters are invalid or the source lacks an expected declaration
func NewSpriteShader(key string, params shade.Params) (Shader, error) {
	source, err := RenderSpriteSource(params)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:    key,
		source: source,
		params: params,
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		},
	}

	s.vertexEntryPoint, s.fragmentEntryPoint = parseEntryPoints(source)
	if s.vertexEntryPoint == "" || s.fragmentEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: missing vertex or fragment entry point", key)
	}

	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(source, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	for _, g := range []int{GroupMaterial, GroupCamera, GroupSceneDepth} {
		if len(s.bindGroupLayoutDescriptors[g].Entries) == 0 {
			return nil, fmt.Errorf("shader %s: bind group %d is not declared", key, g)
		}
	}

	layouts := parseVertexLayouts(source)
	quad, okQuad := layouts["VertexInput"]
	instance, okInstance := layouts["InstanceInput"]
	if !okQuad || !okInstance {
		return nil, fmt.Errorf("shader %s: missing VertexInput or InstanceInput struct", key)
	}
	instance.StepMode = wgpu.VertexStepModeInstance
	s.vertexLayouts = []wgpu.VertexBufferLayout{VertexSlotQuad: quad, VertexSlotInstance: instance}

	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Params() shade.Params {
	return s.params
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
