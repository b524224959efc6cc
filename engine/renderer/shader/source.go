package shader

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
)

//go:embed assets/sprite.wgsl
var spriteTemplateSource string

var spriteTemplate = template.Must(template.New("sprite.wgsl").Funcs(template.FuncMap{
	"f32": wgslFloat,
}).Parse(spriteTemplateSource))

// spriteTemplateData is everything the sprite shader template interpolates.
type spriteTemplateData struct {
	CameraStruct    string
	InstanceStructs string
	Params          shade.Params
	Bayer           [8][8]uint8

	TileWidthHalf   float32
	TileHeightHalf  float32
	DepthDivisor    float32
	ThresholdOffset float32
	LumaR           float32
	LumaG           float32
	LumaB           float32
}

// RenderSpriteSource renders the sprite shader WGSL with the given shading parameters baked in as constants.
//
// Parameters:
//   - params: the shading parameters, validated before rendering
//
// Returns:
//   - string: the WGSL source
//   - error: error if the parameters are invalid or the template fails
func RenderSpriteSource(params shade.Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", fmt.Errorf("invalid shading parameters: %w", err)
	}
	data := spriteTemplateData{
		CameraStruct:    camera.GPUCameraUniformSource,
		InstanceStructs: batch.GPUSpriteInstanceSource,
		Params:          params,
		Bayer:           shade.Bayer8,
		TileWidthHalf:   common.TileWidthHalf,
		TileHeightHalf:  common.TileHeightHalf,
		DepthDivisor:    depth.Divisor,
		ThresholdOffset: depth.ThresholdOffset,
		LumaR:           shade.LumaR,
		LumaG:           shade.LumaG,
		LumaB:           shade.LumaB,
	}
	var sb strings.Builder
	if err := spriteTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render sprite shader: %w", err)
	}
	return sb.String(), nil
}

// wgslFloat formats v as a WGSL abstract float literal, which always carries a decimal point.
func wgslFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
