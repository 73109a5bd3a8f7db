package hazard

import (
	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
)

// behavior is the per-kind part of the state machine.
type behavior interface {
	bounds(h *Hazard) cp.BB
	init(h *Hazard)
	armed(h *Hazard)
	tick(h *Hazard)
	enter(h *Hazard, b overlap.Body)
	exit(h *Hazard, b overlap.Body)
}

var behaviors = map[Kind]behavior{
	KindSpike:       spikeBehavior{},
	KindCrackedTile: crackedBehavior{},
	KindPushPad:     pushBehavior{},
	KindRowSweep:    sweepBehavior{},
}

// base provides the no-op defaults.
type base struct{}

func (base) bounds(h *Hazard) cp.BB          { return h.cellBox() }
func (base) init(*Hazard)                    {}
func (base) armed(*Hazard)                   {}
func (base) exit(*Hazard, overlap.Body)      {}
func (base) enter(h *Hazard, b overlap.Body) {}

// expireAfterActive ends the hazard once it has been armed for ActiveFor.
func expireAfterActive(h *Hazard) {
	if h.armedFor >= h.cfg.ActiveFor {
		h.despawn()
	}
}

// Spike: every enter while armed is one hit; the spike stays.
type spikeBehavior struct{ base }

func (spikeBehavior) enter(h *Hazard, b overlap.Body) { h.hit(b) }
func (spikeBehavior) tick(h *Hazard)                  { expireAfterActive(h) }

// Cracked tile: paints a cracked tile on arm, breaks when the player steps
// off, restores the original tile after RestoreDelay. Left alone it restores
// without breaking after PassiveLifetime.
type crackedBehavior struct{ base }

func (crackedBehavior) armed(h *Hazard) {
	if h.deps.Grid != nil && h.deps.CrackedTile != grid.NoTile {
		h.deps.Grid.SetTile(h.cell, h.deps.CrackedTile)
	}
}

func (crackedBehavior) enter(h *Hazard, b overlap.Body) {
	if h.tracked != nil {
		return
	}
	h.tracked = b
	h.entered = true
}

func (c crackedBehavior) exit(h *Hazard, b overlap.Body) {
	if h.tracked == nil || b != h.tracked {
		return
	}
	c.breakTile(h)
}

func (c crackedBehavior) tick(h *Hazard) {
	if h.phase != PhaseArmed {
		return
	}
	if h.tracked != nil {
		// Tracking lost without an exit: poll the geometry instead.
		if h.hitbox != nil && !h.hitbox.Tracking(h.tracked) && !h.hitbox.Overlaps(h.tracked) {
			c.breakTile(h)
		}
		return
	}
	if !h.entered && h.armedFor >= h.cfg.PassiveLifetime {
		restore(h)
	}
}

func (crackedBehavior) breakTile(h *Hazard) {
	h.tracked = nil
	h.broken = true
	h.phase = PhaseResolving
	if h.hitbox != nil {
		h.hitbox.Disable()
	}
	if h.deps.Grid != nil {
		h.deps.Grid.SetTile(h.cell, grid.NoTile)
	}
	h.sched.After(h.ctx, h.cfg.RestoreDelay, func() { restore(h) })
}

// restore puts the cached tile back and ends the hazard. A cell that had
// no tile when the hazard spawned is restored to empty.
func restore(h *Hazard) {
	if h.destroyed {
		return
	}
	if h.deps.Grid != nil {
		h.deps.Grid.SetTile(h.cell, h.original)
	}
	h.restores++
	h.despawn()
}

// Push pad: an enter queues a shove that fires once the body lands.
type pushBehavior struct{ base }

func (pushBehavior) init(h *Hazard) {
	h.SetDirection(h.dir)
}

func (pushBehavior) enter(h *Hazard, b overlap.Body) {
	s, ok := b.(Shoveable)
	if !ok {
		return
	}
	dir := h.dir
	h.sched.WaitUntil(h.ctx, func() bool { return !s.IsMoving() }, func() {
		s.ForceMoveWithLock(dir)
	})
}

func (pushBehavior) tick(h *Hazard) { expireAfterActive(h) }

// Row sweep: a fixed wait, then a full row (or column) becomes lethal for
// ActiveFor. MaxLifetime bounds the whole run regardless of the timers.
type sweepBehavior struct{ base }

func (sweepBehavior) bounds(h *Hazard) cp.BB {
	g := h.deps.Grid
	if g == nil {
		return h.cellBox()
	}
	b := g.Bounds()
	half := h.cfg.HitboxHalf * g.CellSize()
	var first, last grid.Cell
	if h.deps.SweepAxis == SweepColumn {
		first, last = grid.C(h.cell.X, b.Min.Y), grid.C(h.cell.X, b.Max().Y)
	} else {
		first, last = grid.C(b.Min.X, h.cell.Y), grid.C(b.Max().X, h.cell.Y)
	}
	lo, hi := g.CellToWorldCenter(first), g.CellToWorldCenter(last)
	return cp.BB{L: lo.X - half, B: lo.Y - half, R: hi.X + half, T: hi.Y + half}
}

func (sweepBehavior) init(h *Hazard) {
	if h.deps.Visual != nil {
		h.deps.Visual.SetFlipX(h.deps.FireLeft)
	}
	if h.cfg.MaxLifetime > 0 {
		h.sched.After(h.ctx, h.cfg.MaxLifetime, h.despawn)
	}
}

func (sweepBehavior) enter(h *Hazard, b overlap.Body) { h.hit(b) }
func (sweepBehavior) tick(h *Hazard)                  { expireAfterActive(h) }
