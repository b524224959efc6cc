// Command isoview is a small windowed host for the sprite compositor. It owns the window, device and
// surface, feeds the engine a generated tile map every frame and maps keys onto the camera effects.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine"
	"github.com/Carmen-Shannon/oxy-iso/engine/config"
	"github.com/Carmen-Shannon/oxy-iso/engine/host"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-iso/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

const demoMaterial material.ID = 1

var dyeHues = []float64{0, 120, 280}

func main() {
	configPath := flag.String("config", "cmd/isoview/isoview.yaml", "path to the YAML config")
	mapSize := flag.Int("size", 24, "map size in tiles")
	dusk := flag.Bool("dusk", false, "use the dusk palette row")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("[Isoview] %v", err)
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		log.Fatalf("[Isoview] %v", err)
	}
	defer win.Close()

	h, err := host.NewHost(win.SurfaceDescriptor(), win.Width(), win.Height(), host.WithVSync(cfg.Window.VSync))
	if err != nil {
		log.Fatalf("[Isoview] %v", err)
	}
	defer h.Release()

	eng, err := engine.NewEngine(h.Context(), cfg.EngineOptions()...)
	if err != nil {
		log.Fatalf("[Isoview] %v", err)
	}
	defer eng.Release()

	mat := material.NewMaterial(demoMaterial,
		material.WithName("isoview"),
		material.WithAtlas(buildAtlas()),
		material.WithPalette(buildPalette()),
		material.WithDye(buildDye(dyeHues...)),
	)
	if err := eng.RegisterMaterial(mat); err != nil {
		log.Fatalf("[Isoview] %v", err)
	}

	w := newWorld(*mapSize, demoMaterial)
	if *dusk {
		w.mood = rowDusk
	}

	d := &demo{
		cfg:   cfg,
		eng:   eng,
		host:  h,
		world: w,
		xray:  cfg.Camera.XRay,
		last:  time.Now(),
	}
	d.bind(win)

	log.Println("[Isoview] arrows/WASD move, X cycles x-ray, 0-3 pick x-ray, H hover, space dye, -/= zoom, P stats")
	win.ProcessMessages()
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Isoview] %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}

// demo holds the per-run state the window callbacks share. All callbacks run on the main goroutine.
type demo struct {
	cfg   *config.Config
	eng   engine.Engine
	host  host.Host
	world *world

	xray      config.XRaySize
	hover     bool
	cursor    [2]float32
	dyeIndex  int
	last      time.Time
	lastFrame time.Time
}

func (d *demo) bind(win window.Window) {
	win.SetResizeCallback(d.host.Resize)
	win.SetKeyDownCallback(d.keyDown)
	win.SetMouseMoveCallback(func(x, y float32) {
		d.cursor = [2]float32{x, y}
	})
	win.SetScrollCallback(func(delta float32) {
		d.zoomBy(1 + 0.1*delta)
	})
	win.SetUpdateCallback(d.frame)
}

func (d *demo) keyDown(key uint32) {
	cam := d.eng.Camera()
	switch key {
	case common.KeyUp, common.KeyW:
		d.world.move(0, -1)
	case common.KeyDown, common.KeyS:
		d.world.move(0, 1)
	case common.KeyLeft, common.KeyA:
		d.world.move(-1, 0)
	case common.KeyRight, common.KeyD:
		d.world.move(1, 0)
	case common.KeyX:
		d.setXRay((d.xray + 1) % (config.XRayLarge + 1))
	case common.Key0, common.Key1, common.Key2, common.Key3:
		d.setXRay(config.XRaySize(key - common.Key0))
	case common.KeyH:
		d.hover = !d.hover
	case common.KeySpace:
		d.dyeIndex = (d.dyeIndex + 1) % (len(dyeHues) + 1)
		d.world.dye = d.dyeIndex - 1 // 0 maps to batch.NoDye
	case common.KeyMinus:
		d.zoomBy(0.5)
	case common.KeyEqual:
		d.zoomBy(2)
	case common.KeyP:
		s := d.eng.Stats()
		log.Printf("[Isoview] frame %d: %d instances, %d draws, %d dropped, %d growths, zoom %.2f",
			s.Frame, s.Batch.Instances, s.DrawCalls, s.Batch.DroppedTotal(), s.Growths, cam.Zoom())
	}
}

func (d *demo) setXRay(s config.XRaySize) {
	d.xray = s
	d.eng.Camera().AnimateXRayRadius(s.Radius(), d.cfg.Camera.XRayFadeSeconds)
	log.Printf("[Isoview] x-ray %s", s)
}

func (d *demo) zoomBy(f float32) {
	cam := d.eng.Camera()
	cam.SetZoom(common.Clamp(cam.Zoom()*f, 0.25, 8))
}

// frame runs once per message loop iteration. It honors the configured frame limit by skipping
// iterations that come too early.
func (d *demo) frame() {
	now := time.Now()
	if limit := d.cfg.Window.FrameLimit; limit > 0 {
		if now.Sub(d.lastFrame) < time.Duration(float64(time.Second)/limit) {
			return
		}
	}
	d.lastFrame = now
	dt := float32(now.Sub(d.last).Seconds())
	d.last = now

	cam := d.eng.Camera()
	cam.SetPosition(d.world.anchor())
	d.eng.Update(dt)

	if d.hover {
		rect := cam.VisibleRect()
		vw, vh := cam.Viewport()
		if vw > 0 && vh > 0 {
			d.world.setCursor(rect.MinX+d.cursor[0]*rect.Width()/vw, rect.MinY+d.cursor[1]*rect.Height()/vh)
		}
	} else {
		d.world.hasCur = false
	}
	d.eng.SubmitDrawCommands(d.world.commands())

	target, err := d.host.AcquireFrame(wgpu.Color{R: 0.05, G: 0.05, B: 0.08, A: 1})
	if err != nil {
		log.Printf("[Isoview] skipping frame: %v", err)
		return
	}
	if err := d.eng.Render(target); err != nil {
		d.host.DiscardFrame()
		return
	}
	if err := d.host.Present(); err != nil {
		log.Printf("[Isoview] present: %v", err)
	}
}
