package main

import (
	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/depth"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
)

// world is the demo's tile map and the local player standing on it.
type world struct {
	size   int
	walls  map[[2]int]bool
	player [2]int
	cursor [2]int
	hasCur bool
	mood   int
	dye    int
	matID  material.ID
}

// newWorld builds a square room with a ring of pillars and a short wall the player can walk behind.
func newWorld(size int, mat material.ID) *world {
	w := &world{
		size:   size,
		walls:  make(map[[2]int]bool),
		player: [2]int{size / 2, size / 2},
		dye:    batch.NoDye,
		matID:  mat,
	}
	for i := 0; i < size; i++ {
		w.walls[[2]int{i, 0}] = true
		w.walls[[2]int{0, i}] = true
		w.walls[[2]int{i, size - 1}] = true
		w.walls[[2]int{size - 1, i}] = true
	}
	for i := 3; i < size-3; i += 4 {
		w.walls[[2]int{i, 3}] = true
		w.walls[[2]int{3, i}] = true
	}
	for i := size/2 - 2; i <= size/2+2; i++ {
		w.walls[[2]int{i, size/2 + 2}] = true
	}
	return w
}

// move steps the player by one tile unless a wall or the map edge is in the way.
func (w *world) move(dx, dy int) bool {
	next := [2]int{w.player[0] + dx, w.player[1] + dy}
	if next[0] < 0 || next[1] < 0 || next[0] >= w.size || next[1] >= w.size || w.walls[next] {
		return false
	}
	w.player = next
	return true
}

// anchor returns the world position of the player's feet, which the camera follows.
func (w *world) anchor() (x, y float32) {
	px, py := common.RoundedIsoFromTile(float32(w.player[0]), float32(w.player[1]))
	return px, py + common.TileHeightHalf
}

// setCursor places the tile cursor at a world position. Positions off the map hide it.
func (w *world) setCursor(wx, wy float32) {
	tx, ty := common.TileFromIso(wx, wy)
	x, y := int(floor(tx)), int(floor(ty))
	w.hasCur = x >= 0 && y >= 0 && x < w.size && y < w.size
	w.cursor = [2]int{x, y}
}

// commands produces the frame's draw commands in map order. Order does not matter to the engine; the
// depth keys do the sorting.
func (w *world) commands() []batch.DrawCommand {
	cmds := make([]batch.DrawCommand, 0, w.size*w.size+len(w.walls)+2)
	for y := 0; y < w.size; y++ {
		for x := 0; x < w.size; x++ {
			fx, fy := float32(x), float32(y)
			px, py := common.RoundedIsoFromTile(fx, fy)
			floorCmd := batch.NewDrawCommand(batch.EntityFloor, w.matID, spriteFloor,
				px-common.TileWidthHalf, py, depth.FloorZ)
			floorCmd.Palette = w.mood
			cmds = append(cmds, floorCmd)

			if !w.walls[[2]int{x, y}] {
				continue
			}
			wall := batch.NewDrawCommand(batch.EntityWall, w.matID, spriteWall,
				px-common.TileWidthHalf, py+float32(spriteFloor.H)-float32(spriteWall.H), depth.WallZ(fx, fy))
			wall.Palette = w.mood
			wall.Caps.XRay = true
			wall.Caps.Hover = w.hasCur && w.cursor == [2]int{x, y}
			cmds = append(cmds, wall)
		}
	}

	fx, fy := float32(w.player[0]), float32(w.player[1])
	ax, ay := w.anchor()
	player := batch.NewDrawCommand(batch.EntityPlayer, w.matID, spritePlayer,
		ax-float32(spritePlayer.W)/2, ay-float32(spritePlayer.H), depth.EntityZ(fx, fy, 1, 0))
	player.Palette = w.mood
	player.Dye = w.dye
	player.Caps.Hover = w.hasCur && w.cursor == w.player
	cmds = append(cmds, player)

	if w.hasCur {
		cx, cy := float32(w.cursor[0]), float32(w.cursor[1])
		px, py := common.RoundedIsoFromTile(cx, cy)
		cur := batch.NewDrawCommand(batch.EntityEffect, w.matID, spriteCursor,
			px-common.TileWidthHalf, py, depth.FloorZ+cursorLift)
		cmds = append(cmds, cur)
	}
	return cmds
}

// cursorLift keeps the cursor above the floor it outlines and below everything standing on it.
const cursorLift = 0.01

func floor(v float32) float32 {
	i := float32(int(v))
	if i > v {
		i--
	}
	return i
}
