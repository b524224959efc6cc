package engine

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/camera"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-iso/engine/shade"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeDraw struct {
	key          string
	label        string
	first, count uint32
}

// fakeRenderer records the engine's calls in order.
type fakeRenderer struct {
	pipelines []string
	materials []material.ID
	uniform   camera.GPUCameraUniform
	instances []byte
	draws     []fakeDraw
	begun     int
	ended     int
	aborted   int
	released  bool

	failBegin error
	failDraw  error
	failInit  error
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.pipelines = append(f.pipelines, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) InitMaterial(m material.Material) error {
	if f.failInit != nil {
		return f.failInit
	}
	f.materials = append(f.materials, m.ID())
	m.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider(m.Name(), shader.GroupMaterial))
	return nil
}

func (f *fakeRenderer) BeginFrame(_ renderer.RenderTarget, uniform camera.GPUCameraUniform, instances []byte) error {
	if f.failBegin != nil {
		return f.failBegin
	}
	f.begun++
	f.uniform = uniform
	f.instances = instances
	return nil
}

func (f *fakeRenderer) Draw(key string, p bind_group_provider.BindGroupProvider, first, count uint32) error {
	if f.failDraw != nil {
		return f.failDraw
	}
	f.draws = append(f.draws, fakeDraw{key: key, label: p.Label(), first: first, count: count})
	return nil
}

func (f *fakeRenderer) EndFrame() error {
	f.ended++
	return nil
}

func (f *fakeRenderer) AbortFrame() { f.aborted++ }

func (f *fakeRenderer) Growths() int { return 0 }

func (f *fakeRenderer) Release() { f.released = true }

const (
	matFloor material.ID = 1
	matChars material.ID = 2
)

func testMaterial(id material.ID, name string) material.Material {
	return material.NewMaterial(id,
		material.WithName(name),
		material.WithAtlas(common.TextureStagingData{Pixels: make([]byte, 128*128), Width: 128, Height: 128, Format: wgpu.TextureFormatR8Unorm}),
		material.WithPalette(common.TextureStagingData{Pixels: make([]byte, 256*4*2), Width: 256, Height: 2, Format: wgpu.TextureFormatRGBA8Unorm}),
	)
}

func newTestEngine(t *testing.T, opts ...EngineBuilderOption) (Engine, *fakeRenderer) {
	t.Helper()
	fr := &fakeRenderer{}
	opts = append([]EngineBuilderOption{WithRenderer(fr), WithLogger(log.New(&bytes.Buffer{}, "", 0))}, opts...)
	e, err := NewEngine(renderer.HostContext{}, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, m := range []material.Material{testMaterial(matFloor, "floor"), testMaterial(matChars, "chars")} {
		if err := e.RegisterMaterial(m); err != nil {
			t.Fatalf("RegisterMaterial: %v", err)
		}
	}
	return e, fr
}

func target() renderer.RenderTarget {
	return renderer.RenderTarget{ColorView: &wgpu.TextureView{}, Width: 640, Height: 480}
}

func cmd(kind batch.EntityKind, mat material.ID, depth float32) batch.DrawCommand {
	return batch.NewDrawCommand(kind, mat, batch.SpriteRect{W: 32, H: 32}, 0, 0, depth)
}

func TestNewEngineRegistersSpritePipeline(t *testing.T) {
	_, fr := newTestEngine(t)
	if len(fr.pipelines) != 1 || fr.pipelines[0] != material.DefaultPipelineKey {
		t.Errorf("pipelines = %v", fr.pipelines)
	}
}

func TestNewEngineRejectsInvalidShadeParams(t *testing.T) {
	p := shade.DefaultParams()
	p.DesaturateOuter = p.DesaturateInner - 1
	if _, err := NewEngine(renderer.HostContext{}, WithRenderer(&fakeRenderer{}), WithShadeParams(p)); err == nil {
		t.Fatal("expected an error for inverted desaturation radii")
	}
}

func TestRenderIssuesOneDrawPerMaterialGroup(t *testing.T) {
	e, fr := newTestEngine(t)
	e.SubmitDrawCommands([]batch.DrawCommand{
		cmd(batch.EntityFloor, matFloor, 0.1),
		cmd(batch.EntityPlayer, matChars, 0.5),
		cmd(batch.EntityFloor, matFloor, 0.2),
	})

	if err := e.Render(target()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []fakeDraw{
		{key: material.DefaultPipelineKey, label: "floor", first: 0, count: 2},
		{key: material.DefaultPipelineKey, label: "chars", first: 2, count: 1},
	}
	if len(fr.draws) != len(want) {
		t.Fatalf("draws = %+v", fr.draws)
	}
	for i := range want {
		if fr.draws[i] != want[i] {
			t.Errorf("draw %d = %+v, want %+v", i, fr.draws[i], want[i])
		}
	}
	if len(fr.instances) != 3*batch.InstanceStride {
		t.Errorf("uploaded %d bytes", len(fr.instances))
	}
	if fr.begun != 1 || fr.ended != 1 {
		t.Errorf("begun=%d ended=%d", fr.begun, fr.ended)
	}

	s := e.Stats()
	if s.Frame != 1 || s.DrawCalls != 2 || s.Batch.Instances != 3 || s.Err != nil {
		t.Errorf("stats = %+v", s)
	}
}

func TestSubmitDrawCommandsCopiesSnapshot(t *testing.T) {
	e, fr := newTestEngine(t)
	cmds := []batch.DrawCommand{cmd(batch.EntityWall, matFloor, 0.3)}
	e.SubmitDrawCommands(cmds)
	cmds[0].Material = 99

	if err := e.Render(target()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fr.draws) != 1 || fr.draws[0].label != "floor" {
		t.Errorf("draws = %+v, caller mutation leaked into the snapshot", fr.draws)
	}
}

func TestSetCameraFeedsUniform(t *testing.T) {
	e, fr := newTestEngine(t)
	e.SetCamera(camera.State{Anchor: [2]float32{120, 64}, Zoom: 2, XRayRadius: 1.5, Tint: [3]float32{0.1, 0, 0}})

	if err := e.Render(target()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	u := fr.uniform
	if u.Position != [2]float32{120, 64} || u.XRayRadius != 1.5 || u.Tint[0] != 0.1 {
		t.Errorf("uniform = %+v", u)
	}
	if w, h := e.Camera().Viewport(); w != 640 || h != 480 {
		t.Errorf("viewport = %vx%v, want the target size", w, h)
	}
}

func TestRenderFailureDropsFrame(t *testing.T) {
	e, fr := newTestEngine(t)
	e.SubmitDrawCommands([]batch.DrawCommand{cmd(batch.EntityFloor, matFloor, 0.1)})

	fr.failDraw = errors.New("lost")
	err := e.Render(target())
	if err == nil || !errors.Is(err, fr.failDraw) {
		t.Fatalf("Render err = %v", err)
	}
	if fr.aborted != 1 || fr.ended != 0 {
		t.Errorf("aborted=%d ended=%d", fr.aborted, fr.ended)
	}
	if e.Stats().Err == nil {
		t.Error("stats did not record the failure")
	}

	fr.failDraw = nil
	if err := e.Render(target()); err != nil {
		t.Fatalf("Render after failure: %v", err)
	}
	if e.Stats().Frame != 2 {
		t.Errorf("frame = %d", e.Stats().Frame)
	}
}

func TestRenderBeginFailure(t *testing.T) {
	e, fr := newTestEngine(t)
	fr.failBegin = renderer.ErrNoPipeline
	if err := e.Render(target()); !errors.Is(err, renderer.ErrNoPipeline) {
		t.Fatalf("err = %v", err)
	}
	if fr.aborted != 0 {
		t.Error("aborted a frame that never began")
	}
}

func TestRegisterMaterialDuplicate(t *testing.T) {
	e, fr := newTestEngine(t)
	if err := e.RegisterMaterial(testMaterial(matFloor, "again")); !errors.Is(err, material.ErrDuplicateMaterial) {
		t.Fatalf("err = %v", err)
	}
	if len(fr.materials) != 2 {
		t.Errorf("duplicate was uploaded: %v", fr.materials)
	}
	if _, ok := e.Material(matChars); !ok {
		t.Error("registered material not found")
	}
}

func TestRegisterMaterialUploadFailure(t *testing.T) {
	e, fr := newTestEngine(t)
	fr.failInit = errors.New("oom")
	if err := e.RegisterMaterial(testMaterial(7, "broken")); !errors.Is(err, fr.failInit) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := e.Material(7); ok {
		t.Error("failed material was registered")
	}
}

func TestUnknownMaterialIsDroppedNotFatal(t *testing.T) {
	e, fr := newTestEngine(t)
	e.SubmitDrawCommands([]batch.DrawCommand{
		cmd(batch.EntityItem, 42, 0.1),
		cmd(batch.EntityFloor, matFloor, 0.1),
	})
	if err := e.Render(target()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fr.draws) != 1 {
		t.Errorf("draws = %+v", fr.draws)
	}
	if got := e.Stats().Batch.Dropped[batch.DropUnknownMaterial]; got != 1 {
		t.Errorf("unknown material drops = %d", got)
	}
}

func TestRelease(t *testing.T) {
	e, fr := newTestEngine(t)
	e.Release()
	if !fr.released {
		t.Error("renderer not released")
	}
	if _, ok := e.Material(matFloor); ok {
		t.Error("materials survived Release")
	}
}
