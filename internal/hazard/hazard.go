// Package hazard implements the telegraph → armed → resolving → terminal
// lifecycle shared by every arena hazard. One state machine drives the
// timers; a small per-kind behaviour decides what arming, overlaps and the
// end of the active window do.
package hazard

import (
	"context"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/schedule"
)

// Kind identifies a hazard variant.
type Kind int

const (
	KindSpike Kind = iota
	KindCrackedTile
	KindPushPad
	KindRowSweep
)

func (k Kind) String() string {
	switch k {
	case KindSpike:
		return "spike"
	case KindCrackedTile:
		return "cracked_tile"
	case KindPushPad:
		return "push_pad"
	case KindRowSweep:
		return "row_sweep"
	default:
		return "unknown"
	}
}

// Phase is the lifecycle state of a hazard.
type Phase int

const (
	PhaseTelegraphing Phase = iota
	PhaseArmed
	PhaseResolving
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseTelegraphing:
		return "telegraphing"
	case PhaseArmed:
		return "armed"
	case PhaseResolving:
		return "resolving"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Telegraph configures the warning phase. With On > 0 the hazard blinks:
// it spawns visible, alternates On/Off, and arms on the "on" toggle that
// completes Blinks harmless blinks. With On == 0 it waits Delay without
// blinking.
type Telegraph struct {
	On     time.Duration
	Off    time.Duration
	Blinks int
	Delay  time.Duration
}

// Config holds the timings of one hazard kind. Fields a kind does not use
// are ignored.
type Config struct {
	Telegraph Telegraph

	ActiveFor       time.Duration // spike, push pad, row sweep
	PassiveLifetime time.Duration // cracked tile left alone
	RestoreDelay    time.Duration // cracked tile after breaking
	MaxLifetime     time.Duration // row sweep safety net

	HitboxHalf float64 // half-extent in cells, default 0.45
	ArmedGlyph rune    // sprite swap on arm, 0 keeps the glyph
}

// TileMap is the part of the grid a hazard paints on.
type TileMap interface {
	Tile(c grid.Cell) grid.Tile
	SetTile(c grid.Cell, t grid.Tile)
	CellToWorldCenter(c grid.Cell) cp.Vector
	CellSize() float64
	Bounds() grid.Bounds
}

// Owner is told when a hazard ends on its own. It is the coordinator
// holding the hazard.
type Owner interface {
	HandleDespawn(cell grid.Cell, h *Hazard) bool
}

// Damageable bodies take one hit per call.
type Damageable interface {
	TakeHit() bool
}

// Shoveable bodies can be pushed one cell once they stop hopping. Input
// stays locked until the shove lands.
type Shoveable interface {
	IsMoving() bool
	ForceMoveWithLock(d grid.Dir) bool
}

// SweepAxis selects whether a sweep covers a row or a column.
type SweepAxis int

const (
	SweepRow SweepAxis = iota
	SweepColumn
)

// Deps are the collaborators and assets a hazard is initialised with.
// Every field may be left zero; the hazard skips what it cannot do.
type Deps struct {
	Owner     Owner
	Grid      TileMap
	Space     *overlap.Space
	Scheduler *schedule.Scheduler
	Visual    core.Visual

	CrackedTile grid.Tile // painted by cracked tiles on arm
	Direction   grid.Dir  // push pad
	SweepAxis   SweepAxis // row sweep
	FireLeft    bool      // row sweep travels right to left
}

// Hazard is one live hazard instance. It is driven by Update from the game
// loop and is not safe for concurrent use.
type Hazard struct {
	kind     Kind
	cfg      Config
	cell     grid.Cell
	deps     Deps
	behavior behavior

	phase    Phase
	visible  bool
	segment  time.Duration
	blinks   int
	armedFor time.Duration

	hitbox   *overlap.Hitbox
	sched    *schedule.Scheduler
	ownSched bool

	ctx       context.Context
	cancel    context.CancelFunc
	destroyed bool

	hits int
	dir  grid.Dir

	// cracked tile
	original grid.Tile
	tracked  overlap.Body
	entered  bool
	broken   bool
	restores int
}

// New initialises a hazard of the given kind at cell.
func New(kind Kind, cfg Config, cell grid.Cell, deps Deps) *Hazard {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hazard{
		kind:    kind,
		cfg:     cfg,
		cell:    cell,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		visible: true,
		dir:     deps.Direction,
		sched:   deps.Scheduler,
	}
	if h.sched == nil {
		h.sched = schedule.New()
		h.ownSched = true
	}
	if h.cfg.HitboxHalf <= 0 {
		h.cfg.HitboxHalf = 0.45
	}
	if deps.Grid != nil {
		h.original = deps.Grid.Tile(cell)
	}

	h.behavior = behaviors[kind]
	if h.behavior == nil {
		h.behavior = spikeBehavior{}
	}
	if deps.Space != nil {
		h.hitbox = deps.Space.NewHitbox(h.behavior.bounds(h), h)
	}
	h.setVisible(true)
	h.behavior.init(h)
	return h
}

func (h *Hazard) Kind() Kind              { return h.kind }
func (h *Hazard) Cell() grid.Cell         { return h.cell }
func (h *Hazard) Phase() Phase            { return h.phase }
func (h *Hazard) Visible() bool           { return h.visible }
func (h *Hazard) Hits() int               { return h.hits }
func (h *Hazard) Broken() bool            { return h.broken }
func (h *Hazard) Restores() int           { return h.restores }
func (h *Hazard) Destroyed() bool         { return h.destroyed }
func (h *Hazard) Direction() grid.Dir     { return h.dir }
func (h *Hazard) Visual() core.Visual     { return h.deps.Visual }
func (h *Hazard) ArmedFor() time.Duration { return h.armedFor }

// Context is cancelled when the hazard is destroyed.
func (h *Hazard) Context() context.Context { return h.ctx }

// SetDirection changes where a push pad shoves and swaps its arrow.
func (h *Hazard) SetDirection(d grid.Dir) {
	h.dir = d
	if h.kind == KindPushPad && h.deps.Visual != nil {
		h.deps.Visual.SetGlyph(d.Arrow())
	}
}

// Update advances the hazard by dt. At most one telegraph toggle and one
// phase transition happen per call.
func (h *Hazard) Update(dt time.Duration) {
	if h.destroyed {
		return
	}
	if h.ownSched {
		h.sched.Update(dt)
		if h.destroyed {
			return
		}
	}
	switch h.phase {
	case PhaseTelegraphing:
		h.telegraph(dt)
	case PhaseArmed, PhaseResolving:
		h.armedFor += dt
		h.behavior.tick(h)
	}
}

func (h *Hazard) telegraph(dt time.Duration) {
	t := h.cfg.Telegraph
	if t.On <= 0 {
		h.segment += dt
		if h.segment >= t.Delay {
			h.arm()
		}
		return
	}
	if t.Blinks <= 0 {
		h.arm()
		return
	}

	h.segment += dt
	limit := t.On
	if !h.visible {
		limit = t.Off
	}
	if h.segment < limit {
		return
	}
	h.segment -= limit
	h.setVisible(!h.visible)
	if h.visible {
		h.blinks++
		if h.blinks >= t.Blinks {
			h.arm()
		}
	}
}

func (h *Hazard) arm() {
	h.phase = PhaseArmed
	h.segment = 0
	h.setVisible(true)
	if h.cfg.ArmedGlyph != 0 && h.deps.Visual != nil {
		h.deps.Visual.SetGlyph(h.cfg.ArmedGlyph)
	}
	h.behavior.armed(h)
	// The immediate overlap check runs inside Enable, before this tick's
	// overlap step.
	if h.hitbox != nil && !h.destroyed {
		h.hitbox.Enable()
	}
}

func (h *Hazard) setVisible(on bool) {
	h.visible = on
	if h.deps.Visual != nil {
		h.deps.Visual.SetVisible(on)
	}
}

// OnEnter implements overlap.Handler.
func (h *Hazard) OnEnter(b overlap.Body) {
	if h.destroyed || h.phase != PhaseArmed {
		return
	}
	h.behavior.enter(h, b)
}

// OnExit implements overlap.Handler.
func (h *Hazard) OnExit(b overlap.Body) {
	if h.destroyed || h.phase != PhaseArmed {
		return
	}
	h.behavior.exit(h, b)
}

func (h *Hazard) hit(b overlap.Body) {
	if d, ok := b.(Damageable); ok && d.TakeHit() {
		h.hits++
	}
}

// despawn ends the hazard on its own and reports to the owner.
func (h *Hazard) despawn() {
	if h.destroyed {
		return
	}
	owner := h.deps.Owner
	h.Destroy()
	if owner != nil {
		owner.HandleDespawn(h.cell, h)
	}
}

// Destroy tears the hazard down without touching the grid: the hitbox is
// removed and pending scheduled work is cancelled. Safe to call repeatedly.
func (h *Hazard) Destroy() {
	if h.destroyed {
		return
	}
	h.destroyed = true
	h.phase = PhaseTerminal
	h.cancel()
	if h.hitbox != nil {
		h.hitbox.Remove()
	}
	if h.deps.Visual != nil {
		h.deps.Visual.SetVisible(false)
	}
	h.visible = false
}

func (h *Hazard) cellBox() cp.BB {
	if h.deps.Grid == nil {
		return overlap.Box(cp.Vector{X: float64(h.cell.X) + 0.5, Y: float64(h.cell.Y) + 0.5}, h.cfg.HitboxHalf, h.cfg.HitboxHalf)
	}
	half := h.cfg.HitboxHalf * h.deps.Grid.CellSize()
	return overlap.Box(h.deps.Grid.CellToWorldCenter(h.cell), half, half)
}
