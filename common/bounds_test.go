package common

import "testing"

func TestRectIntersects(t *testing.T) {
	view := RectFromSize(0, 0, 100, 100)
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", RectFromSize(10, 10, 5, 5), true},
		{"overlapping edge", RectFromSize(95, 95, 10, 10), true},
		{"touching edge", RectFromSize(100, 0, 10, 10), false},
		{"left of view", RectFromSize(-20, 10, 10, 10), false},
		{"covering view", RectFromSize(-10, -10, 200, 200), true},
		{"empty", RectFromSize(10, 10, 0, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := view.Intersects(tt.r); got != tt.want {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.r, got, tt.want)
			}
			if got := tt.r.Intersects(view); got != tt.want {
				t.Errorf("reverse Intersects(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestRectExpandAndContains(t *testing.T) {
	r := RectFromSize(0, 0, 10, 10).Expand(5)
	if r.Width() != 20 || r.Height() != 20 {
		t.Fatalf("expanded size = %vx%v, want 20x20", r.Width(), r.Height())
	}
	if !r.Contains(-5, -5) {
		t.Error("expanded rect should contain its min corner")
	}
	if r.Contains(15, 0) {
		t.Error("max edge is exclusive")
	}
}
