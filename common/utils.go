package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smoothstep performs Hermite interpolation between 0 and 1 when edge0 < x < edge1, matching the WGSL builtin.
//
// Parameters:
//   - edge0: the lower edge of the transition
//   - edge1: the upper edge of the transition
//   - x: the value to interpolate
//
// Returns:
//   - float32: 0 at or below edge0, 1 at or above edge1, smooth in between
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix linearly interpolates between a and b by t, matching the WGSL builtin.
func Mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}
