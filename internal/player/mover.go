package player

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
)

// Grid is what the mover needs from the grid model.
type Grid interface {
	IsWalkable(c grid.Cell) bool
	CellToWorldCenter(c grid.Cell) cp.Vector
	WorldToCell(p cp.Vector) grid.Cell
	TryFindNearestWalkable(p cp.Vector) (grid.Cell, bool)
	PlayCellBounce(c grid.Cell, depth float64, duration time.Duration)
}

// MoverConfig holds hop timing and landing feedback.
type MoverConfig struct {
	HopDuration        time.Duration
	BounceDepth        float64
	BounceDuration     time.Duration
	TileBounceDepth    float64
	TileBounceDuration time.Duration
	SnapToWalkable     bool
}

// DefaultMover matches the stock hop.
func DefaultMover() MoverConfig {
	return MoverConfig{
		HopDuration:        180 * time.Millisecond,
		BounceDepth:        0.1,
		BounceDuration:     300 * time.Millisecond,
		TileBounceDepth:    0.05,
		TileBounceDuration: 300 * time.Millisecond,
	}
}

type moveState int

const (
	stateIdle moveState = iota
	stateHopping
	stateLanding
)

// Mover hops the player one cell at a time. A hop is followed by a short
// landing settle; the mover counts as moving until both end.
type Mover struct {
	grid Grid
	cfg  MoverConfig

	cell   grid.Cell
	pos    cp.Vector
	offset float64

	state   moveState
	from    cp.Vector
	to      cp.Vector
	target  grid.Cell
	elapsed time.Duration
	landFor time.Duration
	locks   int
	shoved  bool // a shove holds one of the locks
	hops    int
}

// NewMover places the mover at start, or at the nearest walkable cell
// when SnapToWalkable is set.
func NewMover(g Grid, start grid.Cell, cfg MoverConfig) *Mover {
	cfg.HopDuration = max(cfg.HopDuration, 10*time.Millisecond)
	m := &Mover{grid: g, cfg: cfg}
	m.Teleport(start)
	return m
}

func (m *Mover) Cell() grid.Cell     { return m.cell }
func (m *Mover) Position() cp.Vector { return m.pos }
func (m *Mover) Offset() float64     { return m.offset }
func (m *Mover) IsMoving() bool      { return m.state != stateIdle }
func (m *Mover) Locked() bool        { return m.locks > 0 }
func (m *Mover) Hops() int           { return m.hops }

// Teleport stops any hop and puts the mover on c.
func (m *Mover) Teleport(c grid.Cell) {
	m.state = stateIdle
	m.offset = 0
	m.locks = 0
	m.shoved = false
	if m.grid == nil {
		m.cell = c
		return
	}
	if m.cfg.SnapToWalkable {
		if snapped, ok := m.grid.TryFindNearestWalkable(m.grid.CellToWorldCenter(c)); ok {
			c = snapped
		}
	}
	m.cell = c
	m.pos = m.grid.CellToWorldCenter(c)
}

// Lock blocks player input until the matching Unlock.
func (m *Mover) Lock() { m.locks++ }

// Unlock releases one Lock.
func (m *Mover) Unlock() { m.locks = max(0, m.locks-1) }

// Step starts a hop from input. It is ignored mid-hop, while locked, or
// toward a cell that is not walkable.
func (m *Mover) Step(d grid.Dir) bool {
	if m.Locked() {
		return false
	}
	return m.TryForceMove(d)
}

// TryForceMove hops one cell in d regardless of input locks. It fails
// mid-hop or when the target is not walkable.
func (m *Mover) TryForceMove(d grid.Dir) bool {
	if m.IsMoving() || m.grid == nil {
		return false
	}
	return m.hop(m.cell.Step(d))
}

// ForceMoveWithLock shoves one cell in d and holds an input lock until the
// shove lands. It fails mid-hop or when the target is not walkable.
func (m *Mover) ForceMoveWithLock(d grid.Dir) bool {
	if !m.TryForceMove(d) {
		return false
	}
	m.Lock()
	m.shoved = true
	return true
}

func (m *Mover) hop(target grid.Cell) bool {
	if !m.grid.IsWalkable(target) {
		return false
	}
	m.state = stateHopping
	m.from = m.pos
	m.to = m.grid.CellToWorldCenter(target)
	m.target = target
	m.elapsed = 0
	return true
}

// Update advances the hop and the landing settle.
func (m *Mover) Update(dt time.Duration) {
	switch m.state {
	case stateHopping:
		m.elapsed += dt
		t := core.Clamp(float64(m.elapsed)/float64(m.cfg.HopDuration), 0, 1)
		m.pos = m.from.Lerp(m.to, easeInOut(t))
		if m.elapsed < m.cfg.HopDuration {
			return
		}
		m.land()
	case stateLanding:
		m.elapsed += dt
		if m.elapsed >= m.landFor {
			m.offset = 0
			m.settle()
			return
		}
		if m.cfg.BounceDepth > 0 && m.cfg.BounceDuration > 0 {
			t := float64(m.elapsed) / float64(m.cfg.BounceDuration)
			m.offset = -math.Sin(t*math.Pi) * m.cfg.BounceDepth
		}
	}
}

func (m *Mover) land() {
	m.pos = m.to
	m.cell = m.target
	m.hops++
	m.elapsed = 0
	m.landFor = 0
	if m.cfg.TileBounceDepth > 0 && m.cfg.TileBounceDuration > 0 {
		m.grid.PlayCellBounce(m.target, m.cfg.TileBounceDepth, m.cfg.TileBounceDuration)
		m.landFor = m.cfg.TileBounceDuration
	}
	if m.cfg.BounceDepth > 0 && m.cfg.BounceDuration > 0 {
		m.landFor = m.cfg.BounceDuration
	}
	if m.landFor <= 0 {
		m.settle()
		return
	}
	m.state = stateLanding
}

// settle ends the move and releases the lock a shove took.
func (m *Mover) settle() {
	m.state = stateIdle
	if m.shoved {
		m.shoved = false
		m.Unlock()
	}
}

// easeInOut is the smoothstep curve with zero slope at both ends.
func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}
