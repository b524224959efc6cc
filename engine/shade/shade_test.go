package shade

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
	"github.com/cogentcore/webgpu/wgpu"
)

func approxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func colorApprox(a, b Color, eps float32) bool {
	for i := range 4 {
		if !approxEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// testTextures builds a 4x4 atlas filled with index 5 (except texel (0,0) which is transparent),
// a two-row palette and a one-row dye table.
func testTextures(t *testing.T) Textures {
	t.Helper()

	atlasPix := make([]byte, 16)
	for i := range atlasPix {
		atlasPix[i] = 5
	}
	atlasPix[0] = 0
	atlas, err := NewTexture(common.TextureStagingData{Pixels: atlasPix, Width: 4, Height: 4, Format: wgpu.TextureFormatR8Unorm})
	if err != nil {
		t.Fatalf("atlas: %v", err)
	}

	palPix := make([]byte, 256*2*4)
	copy(palPix[5*4:], []byte{51, 102, 153, 255})
	copy(palPix[(256+5)*4:], []byte{255, 0, 0, 255})
	palette, err := NewTexture(common.TextureStagingData{Pixels: palPix, Width: 256, Height: 2, Format: wgpu.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("palette: %v", err)
	}

	dyePix := make([]byte, 256*4)
	copy(dyePix[5*4:], []byte{0, 255, 0, 128})
	dye, err := NewTexture(common.TextureStagingData{Pixels: dyePix, Width: 256, Height: 1, Format: wgpu.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("dye: %v", err)
	}
	return Textures{Atlas: atlas, Palette: palette, Dye: dye}
}

func spriteAt(x, y, w, h, z float32) batch.GPUSpriteInstance {
	return batch.GPUSpriteInstance{
		Position:      [3]float32{x, y, z},
		TexMin:        [2]float32{0, 0},
		TexMax:        [2]float32{1, 1},
		SpriteSize:    [2]float32{w, h},
		PaletteOffset: 0,
		DyeOffset:     -1,
	}
}

func TestShadeDiscardsWithoutPalette(t *testing.T) {
	tex := testTextures(t)
	inst := spriteAt(0, 0, 32, 32, 0.1)
	inst.PaletteOffset = -1
	inst.Tint = [3]float32{1, 1, 1}
	cam := camera.GPUCameraUniform{XRayRadius: 1}

	for y := range 8 {
		for x := range 8 {
			local := [2]float32{(float32(x) + 0.5) / 8, (float32(y) + 0.5) / 8}
			if _, discarded := Shade(inst, cam, Fragment{Local: local}, tex, DefaultParams()); !discarded {
				t.Fatalf("pixel %v survived a negative palette offset", local)
			}
		}
	}
}

func TestShadeDiscardsTransparentIndex(t *testing.T) {
	tex := testTextures(t)
	inst := spriteAt(0, 0, 32, 32, 0.1)
	cam := camera.GPUCameraUniform{}

	if _, discarded := Shade(inst, cam, Fragment{Local: [2]float32{0.1, 0.1}}, tex, DefaultParams()); !discarded {
		t.Error("index 0 texel was not discarded")
	}
	if _, discarded := Shade(inst, cam, Fragment{Local: [2]float32{0.6, 0.6}}, tex, DefaultParams()); discarded {
		t.Error("opaque texel was discarded")
	}
}

func TestShadePaletteAndDye(t *testing.T) {
	tex := testTextures(t)
	cam := camera.GPUCameraUniform{}
	frag := Fragment{Local: [2]float32{0.6, 0.6}}

	tests := []struct {
		name    string
		palette float32
		dye     float32
		want    Color
	}{
		{"row 0", 0, -1, Color{0.2, 0.4, 0.6, 1}},
		{"row 1", 1, -1, Color{1, 0, 0, 1}},
		{"dyed", 0, 0, Color{0.2 * (1 - 128.0/255), 0.4*(1-128.0/255) + 128.0/255, 0.6 * (1 - 128.0/255), 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := spriteAt(0, 0, 32, 32, 0.1)
			inst.PaletteOffset = tt.palette
			inst.DyeOffset = tt.dye
			got, discarded := Shade(inst, cam, frag, tex, DefaultParams())
			if discarded {
				t.Fatal("pixel discarded")
			}
			if !colorApprox(got, tt.want, 1e-5) {
				t.Errorf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendDyeKeepsBaseAlpha(t *testing.T) {
	got := BlendDye(Color{1, 1, 1, 0.5}, Color{0, 0, 0, 1})
	if got != (Color{0, 0, 0, 0.5}) {
		t.Errorf("BlendDye = %v", got)
	}
	got = BlendDye(Color{0.3, 0.3, 0.3, 1}, Color{1, 0, 0, 0})
	if got != (Color{0.3, 0.3, 0.3, 1}) {
		t.Errorf("transparent dye changed the color: %v", got)
	}
}

func TestTileDistanceIsIsometric(t *testing.T) {
	anchor := [2]float32{100, 100}
	east := [2]float32{100 + common.TileWidthHalf, 100 + common.TileHeightHalf}
	if d := TileDistance(east, anchor); !approxEqual(d, 1, 1e-5) {
		t.Errorf("one tile east = %v tiles, want 1", d)
	}
	if d := TileDistance(anchor, anchor); d != 0 {
		t.Errorf("distance to self = %v", d)
	}
}

func TestDesaturate(t *testing.T) {
	p := DefaultParams()
	c := Color{0.8, 0.2, 0.1, 1}
	gray := (LumaR*0.8 + LumaG*0.2 + LumaB*0.1) * p.DesaturateDim

	if got := Desaturate(c, p.DesaturateInner, p); got != c {
		t.Errorf("inside inner radius color changed: %v", got)
	}

	far := Desaturate(c, p.DesaturateOuter, p)
	farther := Desaturate(c, p.DesaturateOuter*4, p)
	want := Color{gray, gray, gray, 1}
	if !colorApprox(far, want, 1e-6) || far != farther {
		t.Errorf("beyond outer radius got %v and %v, want constant %v", far, farther, want)
	}

	prev := c[0]
	for d := p.DesaturateInner; d <= p.DesaturateOuter; d += 0.5 {
		r := Desaturate(c, d, p)[0]
		if r > prev+1e-6 {
			t.Fatalf("red channel rose from %v to %v at distance %v", prev, r, d)
		}
		prev = r
	}
}

func TestBayer8IsPermutation(t *testing.T) {
	var seen [64]bool
	for y := range 8 {
		for x := range 8 {
			v := Bayer8[y][x]
			if v >= 64 || seen[v] {
				t.Fatalf("value %d at (%d,%d) repeated or out of range", v, x, y)
			}
			seen[v] = true
		}
	}
}

func TestBayerThreshold(t *testing.T) {
	tests := []struct {
		name string
		x, y float32
		want float32
	}{
		{"origin", 0, 0, 0.5 / 64},
		{"fractional", 0.9, 0.9, 0.5 / 64},
		{"cell (1,0)", 1, 0, 32.5 / 64},
		{"wraps at 8", 8, 8, 0.5 / 64},
		{"negative wraps", -1, 0, 42.5 / 64},
		{"negative fraction", -0.5, -0.5, 21.5 / 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BayerThreshold(tt.x, tt.y); !approxEqual(got, tt.want, 1e-7) {
				t.Errorf("BayerThreshold(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestDitherDiscardExtremes(t *testing.T) {
	for y := -8; y < 16; y++ {
		for x := -8; x < 16; x++ {
			if DitherDiscard(0, float32(x), float32(y)) {
				t.Fatalf("strength 0 discarded (%d,%d)", x, y)
			}
			if !DitherDiscard(1, float32(x), float32(y)) {
				t.Fatalf("strength 1 kept (%d,%d)", x, y)
			}
		}
	}

	// At strength 0.5 exactly half the cells dissolve.
	count := 0
	for y := range 8 {
		for x := range 8 {
			if DitherDiscard(0.5, float32(x), float32(y)) {
				count++
			}
		}
	}
	if count != 32 {
		t.Errorf("strength 0.5 dissolved %d of 64 cells, want 32", count)
	}
}

func TestXRayStrength(t *testing.T) {
	p := DefaultParams()
	anchor := [2]float32{0, 0}
	center := [2]float32{0, -p.XRayLift}

	if s := XRayStrength(center, anchor, 0, 200, 0, p); s != 0 {
		t.Errorf("radius 0 strength = %v", s)
	}
	if s := XRayStrength(center, anchor, 0, 200, 1, p); !approxEqual(s, 1, 1e-6) {
		t.Errorf("ellipse center strength = %v, want 1", s)
	}
	if s := XRayStrength(center, anchor, 1, 200, 1, p); s != 0 {
		t.Errorf("strength at the sprite base = %v, want 0", s)
	}
	outside := [2]float32{p.XRayEllipseX * 1.01, -p.XRayLift}
	if s := XRayStrength(outside, anchor, 0, 200, 1, p); s != 0 {
		t.Errorf("strength outside the ellipse = %v, want 0", s)
	}
	if s := XRayStrength(outside, anchor, 0, 200, 2, p); s == 0 {
		t.Error("doubling the radius did not reach a point just outside the unit ellipse")
	}
}

// xrayWall is a 100x150 wall on tile (1, 1), which is in front of a player anchored at the origin.
func xrayWall(flagged bool) batch.GPUSpriteInstance {
	inst := spriteAt(-50, -150, 100, 150, depth.WallZ(1, 1))
	if flagged {
		inst.Flags = batch.FlagXRay
	}
	return inst
}

func TestShadeXRay(t *testing.T) {
	tex := testTextures(t)
	p := DefaultParams()
	// World (0, -48): the ellipse center, 48 px above the wall's base.
	center := Fragment{Local: [2]float32{0.5, 0.68}}
	base := Fragment{Local: [2]float32{0.5, 0.999}}

	tests := []struct {
		name      string
		inst      batch.GPUSpriteInstance
		radius    float32
		frag      Fragment
		discarded bool
	}{
		{"flagged wall dissolves at center", xrayWall(true), 1, center, true},
		{"unflagged wall stays opaque", xrayWall(false), 1, center, false},
		{"radius 0 disables", xrayWall(true), 0, center, false},
		{"base of the wall stays", xrayWall(true), 1, base, false},
		{"wall behind the player stays", func() batch.GPUSpriteInstance {
			w := xrayWall(true)
			w.Position[2] = depth.WallZ(-1, -1)
			return w
		}(), 1, center, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := camera.GPUCameraUniform{XRayRadius: tt.radius}
			_, discarded := Shade(tt.inst, cam, tt.frag, tex, p)
			if discarded != tt.discarded {
				t.Errorf("discarded = %v, want %v", discarded, tt.discarded)
			}
		})
	}
}

func TestShadeUnflaggedWallFullyOpaque(t *testing.T) {
	tex := testTextures(t)
	cam := camera.GPUCameraUniform{XRayRadius: 1}
	inst := xrayWall(false)
	for y := range 30 {
		for x := range 20 {
			local := [2]float32{0.3 + float32(x)*0.03, 0.05 + float32(y)*0.03}
			if _, discarded := Shade(inst, cam, Fragment{Local: local}, tex, DefaultParams()); discarded {
				t.Fatalf("unflagged wall pixel %v was discarded", local)
			}
		}
	}
}

func TestShadeDitherIsDeterministic(t *testing.T) {
	tex := testTextures(t)
	cam := camera.GPUCameraUniform{XRayRadius: 1}
	inst := xrayWall(true)
	p := DefaultParams()

	var first []bool
	for pass := range 2 {
		var got []bool
		for y := range 40 {
			for x := range 40 {
				local := [2]float32{0.3 + float32(x)*0.01, 0.2 + float32(y)*0.015}
				_, discarded := Shade(inst, cam, Fragment{Local: local}, tex, p)
				got = append(got, discarded)
			}
		}
		if pass == 0 {
			first = got
			continue
		}
		for i := range got {
			if got[i] != first[i] {
				t.Fatalf("pixel %d differs between identical passes", i)
			}
		}
	}
}

func TestShadeTintAndHover(t *testing.T) {
	tex := testTextures(t)
	p := DefaultParams()
	frag := Fragment{Local: [2]float32{0.6, 0.6}}

	inst := spriteAt(0, 0, 10, 10, 0.1)
	inst.Tint = [3]float32{0.1, 0, 0}
	cam := camera.GPUCameraUniform{Tint: [3]float32{0, 0.1, 0}}

	got, _ := Shade(inst, cam, frag, tex, p)
	if !colorApprox(got, Color{0.3, 0.5, 0.6, 1}, 1e-5) {
		t.Errorf("tinted color = %v", got)
	}

	inst.Flags = batch.FlagHover
	got, _ = Shade(inst, cam, frag, tex, p)
	if !colorApprox(got, Color{0.3 + p.HoverBoost, 0.5 + p.HoverBoost, 0.6 + p.HoverBoost, 1}, 1e-5) {
		t.Errorf("hovered color = %v", got)
	}

	inst.Tint = [3]float32{2, 2, 2}
	got, _ = Shade(inst, cam, frag, tex, p)
	if got != (Color{1, 1, 1, 1}) {
		t.Errorf("over-tinted color = %v, want clamped white", got)
	}
}

func TestShadeSceneDepth(t *testing.T) {
	tex := testTextures(t)
	inst := spriteAt(0, 0, 10, 10, 0.1)
	cam := camera.GPUCameraUniform{}
	local := [2]float32{0.6, 0.6}

	if _, discarded := Shade(inst, cam, Fragment{Local: local, SceneDepth: 0}, tex, DefaultParams()); discarded {
		t.Error("cleared scene depth discarded the pixel")
	}
	if _, discarded := Shade(inst, cam, Fragment{Local: local, SceneDepth: 0.9}, tex, DefaultParams()); !discarded {
		t.Error("nearer scene depth did not discard the pixel")
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"inverted band", func(p *Params) { p.DesaturateOuter = p.DesaturateInner - 1 }},
		{"dim above one", func(p *Params) { p.DesaturateDim = 1.5 }},
		{"zero ellipse", func(p *Params) { p.XRayEllipseY = 0 }},
		{"falloff one", func(p *Params) { p.XRayFalloffStart = 1 }},
		{"inverted base fade", func(p *Params) { p.BaseFadeEnd = 5 }},
		{"empty desaturation band", func(p *Params) { p.DesaturateOuter = p.DesaturateInner }},
		{"empty base fade band", func(p *Params) { p.BaseFadeEnd = p.BaseFadeStart }},
		{"negative hover", func(p *Params) { p.HoverBoost = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewTextureRejectsShortBuffer(t *testing.T) {
	_, err := NewTexture(common.TextureStagingData{Pixels: make([]byte, 3), Width: 2, Height: 2, Format: wgpu.TextureFormatR8Unorm})
	if err == nil {
		t.Error("expected an error for a short pixel buffer")
	}
}
