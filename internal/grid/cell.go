package grid

import "fmt"

// Cell is an integer grid coordinate. Y grows downwards, matching the
// terminal the arena is drawn on.
type Cell struct {
	X, Y int
}

// C is shorthand for Cell{X: x, Y: y}.
func C(x, y int) Cell { return Cell{X: x, Y: y} }

// Add returns the cell offset by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Step returns the neighbouring cell in direction d.
func (c Cell) Step(d Dir) Cell {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders cells row by row; used wherever iteration order must be
// deterministic.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Dir is one of the four grid directions.
type Dir uint8

const (
	DirUp Dir = iota
	DirRight
	DirDown
	DirLeft
)

// Dirs lists the four directions in clockwise order.
var Dirs = [4]Dir{DirUp, DirRight, DirDown, DirLeft}

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) step for the direction.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// Arrow is the glyph used to draw the direction.
func (d Dir) Arrow() rune {
	switch d {
	case DirUp:
		return '↑'
	case DirRight:
		return '→'
	case DirDown:
		return '↓'
	case DirLeft:
		return '←'
	default:
		return '?'
	}
}

// ParseDir converts a config name into a Dir.
func ParseDir(s string) (Dir, bool) {
	for _, d := range Dirs {
		if d.String() == s {
			return d, true
		}
	}
	return DirUp, false
}

// Bounds is the rectangular layout extent. Min may be negative.
type Bounds struct {
	Min  Cell
	W, H int
}

// Max returns the inclusive bottom-right cell.
func (b Bounds) Max() Cell {
	return Cell{X: b.Min.X + b.W - 1, Y: b.Min.Y + b.H - 1}
}

// Contains reports whether c lies inside the bounds.
func (b Bounds) Contains(c Cell) bool {
	return c.X >= b.Min.X && c.X < b.Min.X+b.W && c.Y >= b.Min.Y && c.Y < b.Min.Y+b.H
}

// Clamp moves c to the closest cell inside the bounds.
func (b Bounds) Clamp(c Cell) Cell {
	hi := b.Max()
	return Cell{X: min(max(c.X, b.Min.X), hi.X), Y: min(max(c.Y, b.Min.Y), hi.Y)}
}

// Size returns the number of cells.
func (b Bounds) Size() int {
	return b.W * b.H
}

// Center returns the middle cell, rounding towards Min.
func (b Bounds) Center() Cell {
	return Cell{X: b.Min.X + (b.W-1)/2, Y: b.Min.Y + (b.H-1)/2}
}

func (b Bounds) index(c Cell) int {
	return (c.Y-b.Min.Y)*b.W + (c.X - b.Min.X)
}

func (b Bounds) cellAt(i int) Cell {
	return Cell{X: b.Min.X + i%b.W, Y: b.Min.Y + i/b.W}
}
