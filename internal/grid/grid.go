// Package grid holds the arena model: which cells carry a tile, which of
// those the player may stand on, conversion between cells and world points,
// the snapshot of the original layout and the per-cell landing bounce.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/jakecoffman/cp"
)

// Tile names the tile painted at a cell. NoTile marks an empty cell.
type Tile string

const NoTile Tile = ""

// ErrInvalidLayout is returned for layouts that cannot describe an arena.
var ErrInvalidLayout = errors.New("grid: invalid layout")

// Layout is everything needed to build a Model.
type Layout struct {
	Bounds   Bounds
	Origin   cp.Vector // world position of the Min corner
	CellSize float64

	Tiles   map[Cell]Tile // ground layer
	Blocked map[Cell]Tile // optional blocking overlay; any tile here blocks

	BlockedTiles  []Tile // ground tiles the player can never stand on
	WalkableTiles []Tile // whitelist; empty means every non-blocked tile
}

// Model is the arena grid. It is not safe for concurrent use; the game loop
// owns it.
type Model struct {
	bounds   Bounds
	origin   cp.Vector
	cellSize float64

	tiles    []Tile
	overlay  []Tile
	original []Tile // captured once in New, never written afterwards

	blocked   map[Tile]struct{}
	whitelist map[Tile]struct{}

	bounces map[Cell]*bounce
}

type bounce struct {
	depth    float64
	duration time.Duration
	elapsed  time.Duration
}

// New builds a model from layout and snapshots its tiles.
func New(layout Layout) (*Model, error) {
	b := layout.Bounds
	if b.W <= 0 || b.H <= 0 {
		return nil, fmt.Errorf("%w: bounds %dx%d", ErrInvalidLayout, b.W, b.H)
	}
	size := layout.CellSize
	if size <= 0 {
		size = 1
	}

	m := &Model{
		bounds:    b,
		origin:    layout.Origin,
		cellSize:  size,
		tiles:     make([]Tile, b.Size()),
		overlay:   make([]Tile, b.Size()),
		original:  make([]Tile, b.Size()),
		blocked:   make(map[Tile]struct{}, len(layout.BlockedTiles)),
		whitelist: make(map[Tile]struct{}, len(layout.WalkableTiles)),
		bounces:   make(map[Cell]*bounce),
	}
	for c, t := range layout.Tiles {
		if !b.Contains(c) {
			return nil, fmt.Errorf("%w: tile %s outside bounds", ErrInvalidLayout, c)
		}
		m.tiles[b.index(c)] = t
	}
	for c, t := range layout.Blocked {
		if b.Contains(c) {
			m.overlay[b.index(c)] = t
		}
	}
	for _, t := range layout.BlockedTiles {
		m.blocked[t] = struct{}{}
	}
	for _, t := range layout.WalkableTiles {
		m.whitelist[t] = struct{}{}
	}
	copy(m.original, m.tiles)
	return m, nil
}

// Filled builds a w×h model whose every cell carries tile t.
func Filled(w, h int, t Tile) *Model {
	tiles := make(map[Cell]Tile, w*h)
	for y := range h {
		for x := range w {
			tiles[C(x, y)] = t
		}
	}
	m, err := New(Layout{Bounds: Bounds{W: w, H: h}, CellSize: 1, Tiles: tiles})
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Bounds() Bounds       { return m.bounds }
func (m *Model) CellSize() float64    { return m.cellSize }
func (m *Model) InBounds(c Cell) bool { return m.bounds.Contains(c) }

// CellToWorldCenter returns the world point at the centre of c.
func (m *Model) CellToWorldCenter(c Cell) cp.Vector {
	return cp.Vector{
		X: m.origin.X + (float64(c.X-m.bounds.Min.X)+0.5)*m.cellSize,
		Y: m.origin.Y + (float64(c.Y-m.bounds.Min.Y)+0.5)*m.cellSize,
	}
}

// WorldToCell returns the cell containing p. The result may be out of
// bounds.
func (m *Model) WorldToCell(p cp.Vector) Cell {
	return Cell{
		X: m.bounds.Min.X + int(math.Floor((p.X-m.origin.X)/m.cellSize)),
		Y: m.bounds.Min.Y + int(math.Floor((p.Y-m.origin.Y)/m.cellSize)),
	}
}

// Tile returns the ground tile at c, NoTile when empty or out of bounds.
func (m *Model) Tile(c Cell) Tile {
	if !m.bounds.Contains(c) {
		return NoTile
	}
	return m.tiles[m.bounds.index(c)]
}

// HasTile reports whether c carries a ground tile.
func (m *Model) HasTile(c Cell) bool {
	return m.Tile(c) != NoTile
}

// OriginalTile returns the snapshot tile for c.
func (m *Model) OriginalTile(c Cell) Tile {
	if !m.bounds.Contains(c) {
		return NoTile
	}
	return m.original[m.bounds.index(c)]
}

// SetTile paints t at c; NoTile erases. Writes outside the bounds are
// ignored.
func (m *Model) SetTile(c Cell, t Tile) {
	if !m.bounds.Contains(c) {
		return
	}
	m.tiles[m.bounds.index(c)] = t
}

// IsWalkable reports whether the player may stand on c: a tile exists, it
// is not a blocked tile and, when a whitelist is configured, it is listed.
func (m *Model) IsWalkable(c Cell) bool {
	t := m.Tile(c)
	if t == NoTile {
		return false
	}
	if _, bad := m.blocked[t]; bad {
		return false
	}
	if len(m.whitelist) > 0 {
		_, ok := m.whitelist[t]
		return ok
	}
	return true
}

// IsBlocked reports whether c is unusable: the blocking overlay has a tile
// there or the ground tile is not walkable.
func (m *Model) IsBlocked(c Cell) bool {
	if m.bounds.Contains(c) && m.overlay[m.bounds.index(c)] != NoTile {
		return true
	}
	return !m.IsWalkable(c)
}

// EnumerateWalkableCells yields every walkable cell in row-major order. The
// sequence rescans the whole layout each time it is ranged over; callers
// that sample repeatedly should cache it.
func (m *Model) EnumerateWalkableCells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for i := range m.tiles {
			c := m.bounds.cellAt(i)
			if m.IsBlocked(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// TryFindNearestWalkable returns the walkable cell closest to p in 4-way
// steps. The starting cell is clamped into the bounds first. The search
// visits each cell at most once.
func (m *Model) TryFindNearestWalkable(p cp.Vector) (Cell, bool) {
	start := m.bounds.Clamp(m.WorldToCell(p))
	if !m.IsBlocked(start) {
		return start, true
	}

	visited := make([]bool, m.bounds.Size())
	visited[m.bounds.index(start)] = true
	queue := []Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range Dirs {
			n := c.Step(d)
			if !m.bounds.Contains(n) || visited[m.bounds.index(n)] {
				continue
			}
			if !m.IsBlocked(n) {
				return n, true
			}
			visited[m.bounds.index(n)] = true
			queue = append(queue, n)
		}
	}
	return Cell{}, false
}

// RestoreOriginalLayout resets every cell to its snapshot tile and stops
// all bounces.
func (m *Model) RestoreOriginalLayout() {
	copy(m.tiles, m.original)
	clear(m.bounces)
}

// PlayCellBounce starts a dip of the given depth at c lasting duration. A
// bounce already running on c is replaced.
func (m *Model) PlayCellBounce(c Cell, depth float64, duration time.Duration) {
	if !m.bounds.Contains(c) || duration <= 0 {
		return
	}
	m.bounces[c] = &bounce{depth: depth, duration: duration}
}

// Update advances bounce animations by dt and drops finished ones.
func (m *Model) Update(dt time.Duration) {
	for c, b := range m.bounces {
		b.elapsed += dt
		if b.elapsed >= b.duration {
			delete(m.bounces, c)
		}
	}
}

// CellOffset returns the current vertical offset of c in world units:
// -sin(π·t)·depth over the normalised bounce time, 0 when idle.
func (m *Model) CellOffset(c Cell) float64 {
	b, ok := m.bounces[c]
	if !ok {
		return 0
	}
	t := float64(b.elapsed) / float64(b.duration)
	return -math.Sin(t*math.Pi) * b.depth
}

// ActiveBounces returns how many cells are bouncing.
func (m *Model) ActiveBounces() int {
	return len(m.bounces)
}

// EqualsSnapshot reports whether every cell holds its original tile.
func (m *Model) EqualsSnapshot() bool {
	for i, t := range m.tiles {
		if m.original[i] != t {
			return false
		}
	}
	return true
}
