package depth

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-iso/common"
)

func TestTileZMonotonicWithDrawOrder(t *testing.T) {
	// Painter's order for an isometric grid walks rows of increasing x+y.
	type tile struct{ x, y float32 }
	var order []tile
	for sum := 0; sum <= 20; sum++ {
		for x := 0; x <= sum; x++ {
			order = append(order, tile{float32(x), float32(sum - x)})
		}
	}
	for i := 1; i < len(order); i++ {
		a, b := order[i-1], order[i]
		za, zb := WallZ(a.x, a.y), WallZ(b.x, b.y)
		if a.x+a.y < b.x+b.y && za >= zb {
			t.Fatalf("WallZ(%v) = %v not behind WallZ(%v) = %v", a, za, b, zb)
		}
		if a.x+a.y == b.x+b.y && za != zb {
			t.Fatalf("tiles on one diagonal must share a key: %v vs %v", za, zb)
		}
	}
}

func TestFloorBehindEverything(t *testing.T) {
	if FloorZ >= WallZ(0, 0) {
		t.Errorf("FloorZ = %v, want below WallZ(0,0) = %v", FloorZ, WallZ(0, 0))
	}
	if ClipDepth(FloorZ) <= 0 {
		t.Errorf("ClipDepth(FloorZ) = %v must pass a Greater test against the 0 clear value", ClipDepth(FloorZ))
	}
}

func TestEntityZOrdering(t *testing.T) {
	wall := WallZ(4, 4)
	back := EntityZ(4, 4, 0, 0)
	front := EntityZ(4, 4, 1, 0)
	stacked := EntityZ(4, 4, 0, 2)
	next := WallZ(5, 4)

	if !(wall < back && back < front && front < next) {
		t.Errorf("want wall < back < front < next tile, got %v %v %v %v", wall, back, front, next)
	}
	if !(back < stacked && stacked < front) {
		t.Errorf("stack offset should stay inside one slot step: back=%v stacked=%v front=%v", back, stacked, front)
	}
	if got := EntityZ(4, 4, 5, 99); got != EntityZ(4, 4, 1, EntitiesPerTile-1) {
		t.Errorf("out of range priority/stack should clamp, got %v", got)
	}
}

func TestPlayerTileAndThreshold(t *testing.T) {
	px, py := common.IsoFromTile(10.4, 7.2)
	x, y := PlayerTile(px, py)
	if x != 10 || y != 7 {
		t.Fatalf("PlayerTile = (%v, %v), want (10, 7)", x, y)
	}

	threshold := XRayThreshold(px, py)
	if want := (10 + 7 + ThresholdOffset) / Divisor; threshold != want {
		t.Errorf("XRayThreshold = %v, want %v", threshold, want)
	}

	// Geometry on the player's own diagonal is not in front, the next diagonal is.
	if InFront(WallZ(10, 7), px, py) {
		t.Error("a wall on the player's tile must not be in front of the player")
	}
	if InFront(EntityZ(10, 7, 1, 2), px, py) {
		t.Error("the player's own pieces must not be in front of the player")
	}
	if !InFront(WallZ(11, 7), px, py) {
		t.Error("a wall one diagonal further down must be in front of the player")
	}
	if InFront(WallZ(9, 7), px, py) {
		t.Error("a wall one diagonal up must be behind the player")
	}
}

func TestThresholdAtOrigin(t *testing.T) {
	if got := XRayThreshold(0, 0); got != ThresholdOffset/Divisor {
		t.Errorf("XRayThreshold(0,0) = %v, want %v", got, ThresholdOffset/Divisor)
	}
}

func TestClipDepthOrdering(t *testing.T) {
	if !(ClipDepth(0.05) < ClipDepth(0.10)) {
		t.Error("larger depth keys must map to larger clip depth")
	}
	if ClipDepth(-1) != 0 || ClipDepth(1) != 1 {
		t.Errorf("ClipDepth range = [%v, %v], want [0, 1]", ClipDepth(-1), ClipDepth(1))
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name string
		z    float32
		want bool
	}{
		{"floor", FloorZ, true},
		{"origin tile", TileZ(0, 0, 0), true},
		{"front entity of a 256 map", EntityZ(255, 255, 1, EntitiesPerTile-1), true},
		{"effect of a 256 map", EffectZ(255, 255, 0), true},
		{"wall past the divisor", WallZ(300, 300), false},
		{"below far plane", -1.5, false},
		{"nan", float32(math.NaN()), false},
		{"negative infinity", float32(math.Inf(-1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InRange(tt.z); got != tt.want {
				t.Errorf("InRange(%v) = %v, want %v", tt.z, got, tt.want)
			}
			if tt.want {
				if c := ClipDepth(tt.z); c < 0 || c > 1 {
					t.Errorf("ClipDepth(%v) = %v outside [0, 1]", tt.z, c)
				}
			}
		})
	}
}
