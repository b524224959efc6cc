package batch

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
)

// MaterialLookup resolves material ids referenced by draw commands.
type MaterialLookup interface {
	Lookup(id material.ID) (material.Material, bool)
}

// View carries the camera state the batcher needs: the anchor used to rank instances when capacity is
// bounded, and an optional world-space cull rectangle. An empty Cull disables culling.
type View struct {
	AnchorX, AnchorY float32
	Cull             common.Rect
}

// batcher is the implementation of the Batcher interface.
type batcher struct {
	mu        *sync.Mutex
	materials MaterialLookup
	logger    *log.Logger

	maxInstances   int
	maxDiagnostics int
	encodeWorkers  int
	encodeChunk    int
	pool           worker.DynamicWorkerPool

	stats Stats
}

// Batcher converts a frame's draw commands into instance records grouped by material.
type Batcher interface {
	// Build converts commands into a fresh Frame. Invalid commands are dropped with a diagnostic and never
	// abort the frame. Instances keep submission order inside their material group and groups appear in
	// the order their material was first submitted.
	//
	// Parameters:
	//   - commands: the frame's draw commands, read but never retained
	//   - view: camera anchor and optional cull rectangle
	//
	// Returns:
	//   - *Frame: the grouped and encoded instances
	Build(commands []DrawCommand, view View) *Frame

	// Stats returns the counters of the most recent Build.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats
}

var _ Batcher = &batcher{}

// NewBatcher creates a Batcher resolving materials through the given lookup.
//
// Parameters:
//   - materials: the material lookup, usually a material.Registry
//   - options: functional options for capacity, encoding and diagnostics
//
// Returns:
//   - Batcher: the new batcher
func NewBatcher(materials MaterialLookup, options ...BatcherBuilderOption) Batcher {
	b := &batcher{
		mu:             &sync.Mutex{},
		materials:      materials,
		logger:         log.Default(),
		maxDiagnostics: 8,
		encodeChunk:    4096,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.encodeWorkers > 0 {
		b.pool = worker.NewDynamicWorkerPool(b.encodeWorkers, 256, 1*time.Second)
	}
	return b
}

// candidate is an accepted instance waiting to be grouped.
type candidate struct {
	inst     GPUSpriteInstance
	material material.ID
}

func (b *batcher) Build(commands []DrawCommand, view View) *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{Commands: len(commands)}
	diag := diagnostics{logger: b.logger, limit: b.maxDiagnostics}
	cull := !view.Cull.Empty()

	accepted := make([]candidate, 0, len(commands))
	for i := range commands {
		cmd := &commands[i]

		inst, dyeCleared, err := b.convert(cmd)
		if err != nil {
			stats.Dropped[dropReasonOf(err)]++
			diag.report(i, cmd, err)
			continue
		}
		if dyeCleared {
			stats.DyeCleared++
			diag.report(i, cmd, ErrDyeRow)
		}
		if cull {
			quad := common.RectFromSize(inst.Position[0], inst.Position[1], inst.SpriteSize[0], inst.SpriteSize[1])
			if !view.Cull.Intersects(quad) {
				stats.Culled++
				continue
			}
		}
		accepted = append(accepted, candidate{inst: inst, material: cmd.Material})
	}

	if b.maxInstances > 0 && len(accepted) > b.maxInstances {
		evicted := len(accepted) - b.maxInstances
		accepted = keepNearest(accepted, b.maxInstances, view)
		stats.Dropped[DropCapacity] += evicted
		b.logger.Printf("[Batcher] instance capacity %d exceeded, dropped %d farthest instances", b.maxInstances, evicted)
	}

	frame := groupByMaterial(accepted)
	frame.data = b.encode(frame.Instances)

	stats.Instances = len(frame.Instances)
	stats.Groups = len(frame.Groups)
	diag.flush()
	b.stats = stats
	return frame
}

func (b *batcher) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// convert validates a command against its material and builds its instance record.
// dyeCleared is true when an out-of-range dye row was replaced by NoDye.
func (b *batcher) convert(cmd *DrawCommand) (inst GPUSpriteInstance, dyeCleared bool, err error) {
	mat, ok := b.materials.Lookup(cmd.Material)
	if !ok {
		return inst, false, ErrUnknownMaterial
	}

	aw, ah := mat.AtlasSize()
	s := cmd.Sprite
	if s.W <= 0 || s.H <= 0 || s.X < 0 || s.Y < 0 || s.X+s.W > int(aw) || s.Y+s.H > int(ah) {
		return inst, false, fmt.Errorf("%w: rect %+v, atlas %dx%d", ErrAtlasBounds, s, aw, ah)
	}
	if cmd.Palette >= mat.PaletteRows() {
		return inst, false, fmt.Errorf("%w: row %d of %d", ErrPaletteRow, cmd.Palette, mat.PaletteRows())
	}
	if !depth.InRange(cmd.Depth) {
		return inst, false, fmt.Errorf("%w: key %v not in [%v, %v]", ErrDepthRange, cmd.Depth, depth.MinKey, depth.MaxKey)
	}

	dye := cmd.Dye
	if dye >= mat.DyeRows() {
		dye = NoDye
		dyeCleared = true
	}

	texMin := [2]float32{float32(s.X) / float32(aw), float32(s.Y) / float32(ah)}
	texMax := [2]float32{float32(s.X+s.W) / float32(aw), float32(s.Y+s.H) / float32(ah)}
	if cmd.FlipX {
		texMin[0], texMax[0] = texMax[0], texMin[0]
	}
	if cmd.FlipY {
		texMin[1], texMax[1] = texMax[1], texMin[1]
	}

	scale := cmd.Scale
	if scale <= 0 {
		scale = 1
	}

	return GPUSpriteInstance{
		Position:      [3]float32{cmd.X, cmd.Y, cmd.Depth},
		TexMin:        texMin,
		TexMax:        texMax,
		SpriteSize:    [2]float32{float32(s.W) * scale, float32(s.H) * scale},
		PaletteOffset: rowOffset(cmd.Palette),
		DyeOffset:     rowOffset(dye),
		Flags:         cmd.Caps.Flags(),
		Tint:          cmd.Tint,
	}, dyeCleared, nil
}

// rowOffset maps a table row to the instance field, collapsing every negative row to the -1 sentinel.
func rowOffset(row int) float32 {
	if row < 0 {
		return -1
	}
	return float32(row)
}

func dropReasonOf(err error) DropReason {
	switch {
	case errors.Is(err, ErrUnknownMaterial):
		return DropUnknownMaterial
	case errors.Is(err, ErrPaletteRow):
		return DropPaletteRow
	case errors.Is(err, ErrDepthRange):
		return DropDepthRange
	default:
		return DropAtlasBounds
	}
}

// keepNearest keeps the n candidates whose quad centers are nearest the view anchor in tile distance,
// preserving submission order among the survivors. Ties keep the earlier submission.
func keepNearest(c []candidate, n int, view View) []candidate {
	dist := make([]float32, len(c))
	idx := make([]int, len(c))
	for i := range c {
		cx := c[i].inst.Position[0] + c[i].inst.SpriteSize[0]/2
		cy := c[i].inst.Position[1] + c[i].inst.SpriteSize[1]/2
		dist[i] = common.TileDistance(cx, cy, view.AnchorX, view.AnchorY)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] < dist[idx[b]] })

	keep := make([]bool, len(c))
	for _, i := range idx[:n] {
		keep[i] = true
	}
	out := make([]candidate, 0, n)
	for i := range c {
		if keep[i] {
			out = append(out, c[i])
		}
	}
	return out
}

// groupByMaterial lays instances out contiguously per material, groups in first-seen order.
func groupByMaterial(c []candidate) *Frame {
	var order []material.ID
	buckets := make(map[material.ID][]GPUSpriteInstance)
	for i := range c {
		id := c[i].material
		if _, ok := buckets[id]; !ok {
			order = append(order, id)
		}
		buckets[id] = append(buckets[id], c[i].inst)
	}

	frame := &Frame{
		Instances: make([]GPUSpriteInstance, 0, len(c)),
		Groups:    make([]Group, 0, len(order)),
	}
	for _, id := range order {
		bucket := buckets[id]
		frame.Groups = append(frame.Groups, Group{
			Material: id,
			First:    uint32(len(frame.Instances)),
			Count:    uint32(len(bucket)),
		})
		frame.Instances = append(frame.Instances, bucket...)
	}
	return frame
}

// encode serializes instances. Large frames are split into chunks encoded on the worker pool; the call
// returns only after every chunk is written.
func (b *batcher) encode(instances []GPUSpriteInstance) []byte {
	data := make([]byte, len(instances)*InstanceStride)
	if b.pool == nil || len(instances) < 2*b.encodeChunk {
		encodeRange(data, instances, 0, len(instances))
		return data
	}

	// Workers are reused across frames; the WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(instances); start += b.encodeChunk {
		end := min(start+b.encodeChunk, len(instances))
		wg.Add(1)
		s, e := start, end
		b.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				encodeRange(data, instances, s, e)
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return data
}

func encodeRange(data []byte, instances []GPUSpriteInstance, start, end int) {
	for i := start; i < end; i++ {
		instances[i].MarshalTo(data[i*InstanceStride:])
	}
}

// diagnostics logs the first few problems of a frame and counts the rest.
type diagnostics struct {
	logger     *log.Logger
	limit      int
	reported   int
	suppressed int
}

func (d *diagnostics) report(index int, cmd *DrawCommand, err error) {
	if d.reported >= d.limit {
		d.suppressed++
		return
	}
	d.reported++
	d.logger.Printf("[Batcher] command %d (%s, material %d): %v", index, cmd.Kind, cmd.Material, err)
}

func (d *diagnostics) flush() {
	if d.suppressed > 0 {
		d.logger.Printf("[Batcher] %d more diagnostics suppressed this frame", d.suppressed)
	}
}
