package common

// Rect is an axis-aligned rectangle in world pixels, with Min inclusive and Max exclusive.
// It stands in for a view frustum: the visible world region of an orthographic isometric camera
// is exactly a rectangle.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// RectFromSize builds a Rect from its top-left corner and size.
func RectFromSize(x, y, w, h float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.MaxY - r.MinY
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Intersects reports whether two rectangles overlap by a non-zero area.
//
// Parameters:
//   - o: the rectangle to test against
//
// Returns:
//   - bool: true if the rectangles overlap
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Expand grows the rectangle by margin on every side. A negative margin shrinks it.
func (r Rect) Expand(margin float32) Rect {
	return Rect{
		MinX: r.MinX - margin,
		MinY: r.MinY - margin,
		MaxX: r.MaxX + margin,
		MaxY: r.MaxY + margin,
	}
}
