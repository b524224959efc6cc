package main

import (
	"github.com/Carmen-Shannon/oxy-iso/common"
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lucasb-eyer/go-colorful"
)

// The demo generates its one material procedurally so it runs without asset files.
const (
	atlasWidth  = 128
	atlasHeight = 104
	paletteSize = 256
)

// Color indices written into the atlas. Index 0 is transparent.
const (
	idxFloor     = 1 // 1..4, four floor shades
	idxWallLeft  = 20
	idxWallRight = 21
	idxWallTop   = 22
	idxBody      = 40
	idxHead      = 41
	idxCursor    = 60
)

// Palette rows of the demo material.
const (
	rowDay = iota
	rowDusk
	paletteRows
)

var (
	spriteFloor  = batch.SpriteRect{X: 0, Y: 0, W: common.TileWidth, H: common.TileHeight + 1}
	spriteWall   = batch.SpriteRect{X: 56, Y: 0, W: common.TileWidth, H: 80}
	spritePlayer = batch.SpriteRect{X: 0, Y: 32, W: 20, H: 40}
	spriteCursor = batch.SpriteRect{X: 0, Y: 72, W: common.TileWidth, H: common.TileHeight + 1}
)

// buildAtlas rasterizes the floor diamond, wall block, player and tile cursor into an indexed atlas.
func buildAtlas() common.TextureStagingData {
	pix := make([]byte, atlasWidth*atlasHeight)
	set := func(x, y int, idx byte) {
		if x >= 0 && x < atlasWidth && y >= 0 && y < atlasHeight {
			pix[y*atlasWidth+x] = idx
		}
	}

	// Floor: a diamond shaded in bands so scrolling is visible.
	for y := 0; y < spriteFloor.H; y++ {
		for x := 0; x < spriteFloor.W; x++ {
			if inDiamond(x, y, spriteFloor.W, spriteFloor.H) {
				set(spriteFloor.X+x, spriteFloor.Y+y, byte(idxFloor+((x/7+y/4)%4)))
			}
		}
	}

	// Wall: a diamond cap over two shaded faces.
	capH := spriteFloor.H
	for y := 0; y < spriteWall.H; y++ {
		for x := 0; x < spriteWall.W; x++ {
			switch {
			case y < capH && inDiamond(x, y, spriteWall.W, capH):
				set(spriteWall.X+x, spriteWall.Y+y, idxWallTop)
			case y >= capH/2 && y < spriteWall.H-capH/2:
				idx := byte(idxWallLeft)
				if x >= spriteWall.W/2 {
					idx = idxWallRight
				}
				set(spriteWall.X+x, spriteWall.Y+y, idx)
			case y >= spriteWall.H-capH/2 && inDiamond(x, y-(spriteWall.H-capH), spriteWall.W, capH):
				idx := byte(idxWallLeft)
				if x >= spriteWall.W/2 {
					idx = idxWallRight
				}
				set(spriteWall.X+x, spriteWall.Y+y, idx)
			}
		}
	}

	// Player: a round head over an elliptical body.
	for y := 0; y < spritePlayer.H; y++ {
		for x := 0; x < spritePlayer.W; x++ {
			dx := float32(x) - 9.5
			hy := float32(y) - 6
			by := float32(y) - 26
			switch {
			case dx*dx+hy*hy <= 36:
				set(spritePlayer.X+x, spritePlayer.Y+y, idxHead)
			case dx*dx/81+by*by/169 <= 1:
				set(spritePlayer.X+x, spritePlayer.Y+y, idxBody)
			}
		}
	}

	// Cursor: the outline of a tile diamond.
	for y := 0; y < spriteCursor.H; y++ {
		for x := 0; x < spriteCursor.W; x++ {
			if inDiamond(x, y, spriteCursor.W, spriteCursor.H) && !inDiamond(x-2, y-1, spriteCursor.W-4, spriteCursor.H-2) {
				set(spriteCursor.X+x, spriteCursor.Y+y, idxCursor)
			}
		}
	}

	return common.TextureStagingData{
		Pixels: pix,
		Width:  atlasWidth,
		Height: atlasHeight,
		Format: wgpu.TextureFormatR8Unorm,
	}
}

// inDiamond reports whether pixel (x, y) lies inside the diamond inscribed in a w x h box.
func inDiamond(x, y, w, h int) bool {
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	cx := float32(w-1) / 2
	cy := float32(h-1) / 2
	dx := abs32(float32(x)-cx) / (float32(w) / 2)
	dy := abs32(float32(y)-cy) / (float32(h) / 2)
	return dx+dy <= 1
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// buildPalette builds one RGBA row per lighting mood. Rows share hues and differ in value and warmth.
func buildPalette() common.TextureStagingData {
	pix := make([]byte, paletteSize*paletteRows*4)
	put := func(row, idx int, c colorful.Color) {
		r, g, b := c.Clamped().RGB255()
		o := (row*paletteSize + idx) * 4
		pix[o], pix[o+1], pix[o+2], pix[o+3] = r, g, b, 255
	}

	moods := []struct {
		hueShift, value float64
	}{
		rowDay:  {0, 1},
		rowDusk: {-25, 0.6},
	}
	for row, m := range moods {
		for i := range 4 {
			put(row, idxFloor+i, colorful.Hsv(105+m.hueShift+float64(i)*6, 0.45, (0.45+0.06*float64(i))*m.value))
		}
		put(row, idxWallLeft, colorful.Hsv(30+m.hueShift, 0.25, 0.55*m.value))
		put(row, idxWallRight, colorful.Hsv(30+m.hueShift, 0.25, 0.40*m.value))
		put(row, idxWallTop, colorful.Hsv(30+m.hueShift, 0.15, 0.75*m.value))
		put(row, idxBody, colorful.Hsv(215+m.hueShift, 0.65, 0.8*m.value))
		put(row, idxHead, colorful.Hsv(28, 0.35, 0.95*m.value))
		put(row, idxCursor, colorful.Hsv(55, 0.9, 1))
	}

	return common.TextureStagingData{
		Pixels: pix,
		Width:  paletteSize,
		Height: paletteRows,
		Format: wgpu.TextureFormatRGBA8Unorm,
	}
}

// buildDye builds dye rows that recolor the player's body. Alpha is the blend weight.
func buildDye(hues ...float64) common.TextureStagingData {
	pix := make([]byte, paletteSize*len(hues)*4)
	for row, h := range hues {
		r, g, b := colorful.Hsv(h, 0.8, 0.85).Clamped().RGB255()
		o := (row*paletteSize + idxBody) * 4
		pix[o], pix[o+1], pix[o+2], pix[o+3] = r, g, b, 200
	}
	return common.TextureStagingData{
		Pixels: pix,
		Width:  paletteSize,
		Height: uint32(len(hues)),
		Format: wgpu.TextureFormatRGBA8Unorm,
	}
}
