// Package core provides the shared value types of the HellTiles engine:
// terminal screen buffer, colours, input frames, runtime configuration and
// the visual sink hazards and pickups toggle. It has no dependency on Bubble
// Tea so simulation code stays pure and testable.
package core

import (
	"cmp"
	"time"
)

// Rect is an axis-aligned rectangle in screen characters.
type Rect struct {
	X, Y int // Top-left corner
	W, H int
}

// NewRect creates a rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects reports whether two rectangles share at least one character.
func (r Rect) Intersects(other Rect) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	return r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Contains reports whether the character (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by n characters on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: max(0, r.W-2*n), H: max(0, r.H-2*n)}
}

// Clamp restricts v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	t = Clamp(t, 0, 1)
	return a + (b-a)*t
}

// ScaleDuration multiplies d by f, rounding to the nearest nanosecond.
func ScaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d)*f + 0.5)
}

// Seconds converts whole and fractional seconds from config files into a
// duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s*float64(time.Second) + 0.5)
}
