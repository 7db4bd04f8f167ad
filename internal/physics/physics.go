// Package physics provides overlap tests and distance utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// StepToward moves (x, y) toward (tx, ty) by at most step and returns the new
// position. The step never overshoots the target.
func StepToward(x, y, tx, ty, step float64) (float64, float64) {
	dist := Distance(x, y, tx, ty)
	if dist == 0 || step >= dist {
		return tx, ty
	}
	if step <= 0 {
		return x, y
	}
	f := step / dist
	return x + (tx-x)*f, y + (ty-y)*f
}

// SpansOverlap reports whether [a, a+aw) and [b, b+bw) intersect.
// Touching edges do not overlap.
func SpansOverlap(a, aw, b, bw float64) bool {
	return a+aw > b && a < b+bw
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
