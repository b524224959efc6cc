package batch

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
)

const (
	matWalls material.ID = 1
	matChars material.ID = 2
)

func testRegistry(t *testing.T) material.Registry {
	t.Helper()
	r := material.NewRegistry()
	walls := material.NewMaterial(matWalls,
		material.WithName("walls"),
		material.WithAtlasSize(256, 128),
		material.WithPalette(common.TextureStagingData{Pixels: make([]byte, 256*4*4), Width: 256, Height: 4}),
	)
	chars := material.NewMaterial(matChars,
		material.WithName("chars"),
		material.WithAtlasSize(512, 512),
		material.WithPalette(common.TextureStagingData{Pixels: make([]byte, 256*4*2), Width: 256, Height: 2}),
		material.WithDye(common.TextureStagingData{Pixels: make([]byte, 256*4*8), Width: 256, Height: 8}),
	)
	for _, m := range []material.Material{walls, chars} {
		if err := r.Register(m); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func quietBatcher(t *testing.T, opts ...BatcherBuilderOption) (Batcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]BatcherBuilderOption{WithLogger(log.New(&buf, "", 0))}, opts...)
	return NewBatcher(testRegistry(t), opts...), &buf
}

func wall(x, y, z float32) DrawCommand {
	return NewDrawCommand(EntityWall, matWalls, SpriteRect{X: 0, Y: 0, W: 28, H: 100}, x, y, z)
}

func TestBuildPreservesSubmissionOrderWithinGroup(t *testing.T) {
	b, _ := quietBatcher(t)
	frame := b.Build([]DrawCommand{wall(0, 0, 0.10), wall(10, 0, 0.05)}, View{})

	if len(frame.Groups) != 1 || frame.Groups[0].Count != 2 {
		t.Fatalf("Groups = %+v, want one group of 2", frame.Groups)
	}
	if frame.Instances[0].Position[2] != 0.10 || frame.Instances[1].Position[2] != 0.05 {
		t.Errorf("instance depths = %v, %v, want submission order 0.10, 0.05",
			frame.Instances[0].Position[2], frame.Instances[1].Position[2])
	}
}

func TestBuildGroupsByFirstSeenMaterial(t *testing.T) {
	b, _ := quietBatcher(t)
	char := func(x float32) DrawCommand {
		return NewDrawCommand(EntityPlayer, matChars, SpriteRect{W: 32, H: 64}, x, 0, 0.2)
	}
	frame := b.Build([]DrawCommand{char(1), wall(2, 0, 0), char(3), wall(4, 0, 0), char(5)}, View{})

	want := []Group{
		{Material: matChars, First: 0, Count: 3},
		{Material: matWalls, First: 3, Count: 2},
	}
	if len(frame.Groups) != len(want) {
		t.Fatalf("Groups = %+v, want %+v", frame.Groups, want)
	}
	for i := range want {
		if frame.Groups[i] != want[i] {
			t.Errorf("Groups[%d] = %+v, want %+v", i, frame.Groups[i], want[i])
		}
	}
	xs := []float32{}
	for _, inst := range frame.GroupInstances(frame.Groups[0]) {
		xs = append(xs, inst.Position[0])
	}
	if xs[0] != 1 || xs[1] != 3 || xs[2] != 5 {
		t.Errorf("chars group x order = %v, want [1 3 5]", xs)
	}
	if got := len(frame.Bytes()); got != 5*InstanceStride {
		t.Errorf("encoded size = %d, want %d", got, 5*InstanceStride)
	}
}

func TestBuildDropsInvalidCommandsWithoutAborting(t *testing.T) {
	b, logs := quietBatcher(t)

	unknown := wall(0, 0, 0)
	unknown.Material = 99
	outside := wall(0, 0, 0)
	outside.Sprite = SpriteRect{X: 240, Y: 0, W: 28, H: 10}
	empty := wall(0, 0, 0)
	empty.Sprite = SpriteRect{W: 0, H: 10}
	badPalette := wall(0, 0, 0)
	badPalette.Palette = 4

	frame := b.Build([]DrawCommand{unknown, wall(1, 1, 0.1), outside, empty, badPalette}, View{})
	if frame.Len() != 1 || frame.Instances[0].Position[0] != 1 {
		t.Fatalf("frame = %+v, want only the valid wall", frame.Instances)
	}

	stats := b.Stats()
	if stats.Dropped[DropUnknownMaterial] != 1 || stats.Dropped[DropAtlasBounds] != 2 || stats.Dropped[DropPaletteRow] != 1 {
		t.Errorf("Dropped = %v", stats.Dropped)
	}
	if stats.DroppedTotal() != 4 || stats.Commands != 5 || stats.Instances != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	for _, want := range []string{ErrUnknownMaterial.Error(), ErrAtlasBounds.Error(), ErrPaletteRow.Error()} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("diagnostics missing %q:\n%s", want, logs.String())
		}
	}
}

func TestBuildDropsUnrenderableDepthKeys(t *testing.T) {
	tests := []struct {
		name string
		z    float32
		keep bool
	}{
		{"far edge", depth.MinKey, true},
		{"near edge", depth.MaxKey, true},
		{"floor", depth.FloorZ, true},
		{"largest tile of a 256 map", depth.EffectZ(255, 255, 0), true},
		{"tile past the divisor", depth.WallZ(300, 300), false},
		{"above one", 1.5, false},
		{"below minus one", -1.01, false},
		{"nan", float32(math.NaN()), false},
		{"infinite", float32(math.Inf(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, logs := quietBatcher(t)
			frame := b.Build([]DrawCommand{wall(0, 0, tt.z)}, View{})

			if got := frame.Len() == 1; got != tt.keep {
				t.Fatalf("kept = %v, want %v (key %v)", got, tt.keep, tt.z)
			}
			if tt.keep {
				return
			}
			if n := b.Stats().Dropped[DropDepthRange]; n != 1 {
				t.Errorf("Dropped[DropDepthRange] = %d, want 1", n)
			}
			if !strings.Contains(logs.String(), ErrDepthRange.Error()) {
				t.Errorf("diagnostics missing %q:\n%s", ErrDepthRange.Error(), logs.String())
			}
		})
	}
}

func TestBuildClearsOutOfRangeDye(t *testing.T) {
	b, logs := quietBatcher(t)
	valid := NewDrawCommand(EntityPlayer, matChars, SpriteRect{W: 32, H: 64}, 0, 0, 0.2)
	valid.Dye = 7
	tooHigh := valid
	tooHigh.Dye = 8
	noDyeTable := wall(0, 0, 0)
	noDyeTable.Dye = 0

	frame := b.Build([]DrawCommand{valid, tooHigh, noDyeTable}, View{})
	if frame.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (dye problems never drop a command)", frame.Len())
	}
	got := []float32{frame.Instances[0].DyeOffset, frame.Instances[1].DyeOffset, frame.Instances[2].DyeOffset}
	if got[0] != 7 || got[1] != -1 || got[2] != -1 {
		t.Errorf("DyeOffsets = %v, want [7 -1 -1]", got)
	}
	if b.Stats().DyeCleared != 2 {
		t.Errorf("DyeCleared = %d, want 2", b.Stats().DyeCleared)
	}
	if !strings.Contains(logs.String(), ErrDyeRow.Error()) {
		t.Errorf("expected a dye diagnostic, got:\n%s", logs.String())
	}
}

func TestBuildKeepsNoPaletteSentinel(t *testing.T) {
	b, _ := quietBatcher(t)
	cmd := wall(0, 0, 0)
	cmd.Palette = NoPalette
	frame := b.Build([]DrawCommand{cmd}, View{})
	if frame.Len() != 1 || frame.Instances[0].PaletteOffset != -1 {
		t.Errorf("instances = %+v, want one instance with palette offset -1", frame.Instances)
	}
}

func TestBuildInstanceFields(t *testing.T) {
	b, _ := quietBatcher(t)
	cmd := NewDrawCommand(EntityPlayer, matChars, SpriteRect{X: 64, Y: 128, W: 32, H: 64}, 10, 20, 0.3)
	cmd.Scale = 2
	cmd.FlipX = true
	cmd.Palette = 1
	cmd.Caps = Capabilities{Hover: true}
	cmd.Tint = [3]float32{0.1, 0, 0}

	inst := b.Build([]DrawCommand{cmd}, View{}).Instances[0]
	if inst.Position != [3]float32{10, 20, 0.3} {
		t.Errorf("Position = %v", inst.Position)
	}
	if inst.TexMin != [2]float32{96.0 / 512, 128.0 / 512} || inst.TexMax != [2]float32{64.0 / 512, 192.0 / 512} {
		t.Errorf("flipped tex rect = %v..%v", inst.TexMin, inst.TexMax)
	}
	if inst.SpriteSize != [2]float32{64, 128} {
		t.Errorf("SpriteSize = %v, want [64 128]", inst.SpriteSize)
	}
	if inst.PaletteOffset != 1 || inst.DyeOffset != -1 {
		t.Errorf("palette/dye = %v/%v, want 1/-1", inst.PaletteOffset, inst.DyeOffset)
	}
	if inst.Flags != FlagHover || inst.Tint[0] != 0.1 {
		t.Errorf("flags/tint = %v/%v", inst.Flags, inst.Tint)
	}
}

func TestBuildCulling(t *testing.T) {
	b, _ := quietBatcher(t)
	view := View{Cull: common.RectFromSize(0, 0, 100, 100)}
	frame := b.Build([]DrawCommand{wall(50, 50, 0), wall(500, 500, 0), wall(-20, -90, 0)}, view)
	if frame.Len() != 2 || b.Stats().Culled != 1 {
		t.Errorf("Len = %d, Culled = %d, want 2 and 1", frame.Len(), b.Stats().Culled)
	}
}

func TestBuildCapacityDropsFarthest(t *testing.T) {
	b, logs := quietBatcher(t, WithMaxInstances(2))
	near := wall(0, 0, 0.1)
	far := wall(2000, 0, 0.2)
	mid := wall(100, 0, 0.3)
	frame := b.Build([]DrawCommand{far, near, mid}, View{AnchorX: 0, AnchorY: 0})

	if frame.Len() != 2 {
		t.Fatalf("Len = %d, want 2", frame.Len())
	}
	if frame.Instances[0].Position[2] != 0.1 || frame.Instances[1].Position[2] != 0.3 {
		t.Errorf("kept depths = %v, %v, want near then mid in submission order",
			frame.Instances[0].Position[2], frame.Instances[1].Position[2])
	}
	if b.Stats().Dropped[DropCapacity] != 1 {
		t.Errorf("capacity drops = %d, want 1", b.Stats().Dropped[DropCapacity])
	}
	if !strings.Contains(logs.String(), "capacity") {
		t.Errorf("expected a capacity diagnostic, got:\n%s", logs.String())
	}
}

func TestBuildParallelEncodingMatchesInline(t *testing.T) {
	cmds := make([]DrawCommand, 37)
	for i := range cmds {
		cmds[i] = wall(float32(i), float32(i*2), float32(i)/100)
	}
	inline, _ := quietBatcher(t)
	parallel, _ := quietBatcher(t, WithEncodeWorkers(3), WithEncodeChunk(4))

	want := inline.Build(cmds, View{}).Bytes()
	got := parallel.Build(cmds, View{}).Bytes()
	if !bytes.Equal(got, want) {
		t.Error("parallel encoding differs from inline encoding")
	}
}

func TestBuildReturnsFreshFrames(t *testing.T) {
	b, _ := quietBatcher(t)
	first := b.Build([]DrawCommand{wall(1, 0, 0)}, View{})
	firstBytes := append([]byte(nil), first.Bytes()...)
	_ = b.Build([]DrawCommand{wall(2, 0, 0), wall(3, 0, 0)}, View{})

	if first.Len() != 1 || !bytes.Equal(first.Bytes(), firstBytes) {
		t.Error("a later Build must not modify an earlier frame")
	}
}

func TestDiagnosticsAreRateLimited(t *testing.T) {
	b, logs := quietBatcher(t, WithMaxDiagnostics(3))
	cmds := make([]DrawCommand, 10)
	for i := range cmds {
		cmds[i] = wall(0, 0, 0)
		cmds[i].Material = 42
	}
	b.Build(cmds, View{})

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d log lines, want 3 diagnostics and a summary:\n%s", len(lines), logs.String())
	}
	if !strings.Contains(lines[3], "7 more") {
		t.Errorf("summary = %q, want 7 suppressed", lines[3])
	}
}

func TestDropReasonOfWrappedErrors(t *testing.T) {
	if dropReasonOf(errors.Join(ErrPaletteRow)) != DropPaletteRow {
		t.Error("wrapped palette errors must map to DropPaletteRow")
	}
	if dropReasonOf(errors.Join(ErrDepthRange)) != DropDepthRange {
		t.Error("wrapped depth errors must map to DropDepthRange")
	}
}
