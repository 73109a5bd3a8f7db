// Package pickup implements the collectibles that share the arena with the
// hazards: hearts, coins and the angel that wipes the board.
package pickup

import (
	"context"
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/schedule"
)

// Kind identifies a pickup.
type Kind int

const (
	KindHeart Kind = iota
	KindCoin
	KindAngel
)

func (k Kind) String() string {
	switch k {
	case KindHeart:
		return "heart"
	case KindCoin:
		return "coin"
	case KindAngel:
		return "angel"
	default:
		return "unknown"
	}
}

// Config holds per-kind timings.
type Config struct {
	Lifetime     time.Duration // heart and coin; 0 never expires
	Flicker      time.Duration // fade window at the end of Lifetime
	Value        int           // hearts or coins granted
	DespawnAfter time.Duration // angel
	HalfExtent   float64       // default 0.4 cells
}

// Owner is told when a pickup leaves the arena.
type Owner interface {
	HandleDespawn(cell grid.Cell, p *Pickup) bool
}

// Collector is the body that can pick things up.
type Collector interface {
	TryAddHearts(n int) bool
}

// Wallet receives collected coins.
type Wallet interface {
	AddCoins(n int)
}

// Placement is what a pickup needs from the grid.
type Placement interface {
	CellToWorldCenter(c grid.Cell) cp.Vector
	CellSize() float64
}

// Deps are the collaborators of one pickup. Every field may be zero.
type Deps struct {
	Owner     Owner
	Grid      Placement
	Space     *overlap.Space
	Scheduler *schedule.Scheduler
	Visual    core.Visual
	Wallet    Wallet
	// OnAngel runs when an angel is touched. It is expected to consume
	// the pickup; if it does not, the angel despawns afterwards.
	OnAngel func(p *Pickup)
}

// Pickup is one live collectible.
type Pickup struct {
	kind Kind
	cfg  Config
	cell grid.Cell
	deps Deps
	pos  cp.Vector

	sched    *schedule.Scheduler
	ownSched bool
	ctx      context.Context
	cancel   context.CancelFunc

	hitbox    *overlap.Hitbox
	alive     time.Duration
	alpha     float64
	collected bool
	destroyed bool
}

// New creates a pickup at cell. Its hitbox comes alive on the first
// Update.
func New(kind Kind, cfg Config, cell grid.Cell, deps Deps) *Pickup {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pickup{kind: kind, cfg: cfg, cell: cell, deps: deps, ctx: ctx, cancel: cancel, alpha: 1, sched: deps.Scheduler}
	if p.sched == nil {
		p.sched = schedule.New()
		p.ownSched = true
	}
	if p.cfg.HalfExtent <= 0 {
		p.cfg.HalfExtent = 0.4
	}
	size := 1.0
	if deps.Grid != nil {
		p.pos = deps.Grid.CellToWorldCenter(cell)
		size = deps.Grid.CellSize()
	} else {
		p.pos = cp.Vector{X: float64(cell.X) + 0.5, Y: float64(cell.Y) + 0.5}
	}
	if deps.Space != nil {
		half := p.cfg.HalfExtent * size
		p.hitbox = deps.Space.NewHitbox(overlap.Box(p.pos, half, half), p)
	}
	if deps.Visual != nil {
		deps.Visual.SetVisible(true)
		deps.Visual.SetAlpha(1)
	}
	if kind == KindAngel && cfg.DespawnAfter > 0 {
		p.sched.After(ctx, cfg.DespawnAfter, p.despawn)
	}
	return p
}

func (p *Pickup) Kind() Kind          { return p.kind }
func (p *Pickup) Cell() grid.Cell     { return p.cell }
func (p *Pickup) Position() cp.Vector { return p.pos }
func (p *Pickup) Alpha() float64      { return p.alpha }
func (p *Pickup) Collected() bool     { return p.collected }
func (p *Pickup) Destroyed() bool     { return p.destroyed }
func (p *Pickup) Visual() core.Visual { return p.deps.Visual }

// Update ages the pickup and runs its flicker.
func (p *Pickup) Update(dt time.Duration) {
	if p.destroyed {
		return
	}
	if p.ownSched {
		p.sched.Update(dt)
		if p.destroyed {
			return
		}
	}
	if p.hitbox != nil && !p.hitbox.Active() {
		p.hitbox.Enable()
		if p.destroyed {
			return
		}
	}
	if p.cfg.Lifetime <= 0 {
		return
	}
	p.alive += dt
	if p.alive >= p.cfg.Lifetime {
		p.despawn()
		return
	}
	p.flicker()
}

func (p *Pickup) flicker() {
	start := max(p.cfg.Lifetime-p.cfg.Flicker, 0)
	if p.cfg.Flicker <= 0 || p.alive < start {
		return
	}
	remaining := p.cfg.Lifetime - p.alive
	t := pingPong((p.cfg.Flicker-remaining).Seconds()*10, 1)
	p.alpha = core.Lerp(1, 0.2, t)
	if p.deps.Visual != nil {
		p.deps.Visual.SetAlpha(p.alpha)
	}
}

// OnEnter implements overlap.Handler.
func (p *Pickup) OnEnter(b overlap.Body) {
	if p.destroyed || p.collected {
		return
	}
	c, ok := b.(Collector)
	if !ok {
		return
	}
	p.collected = true
	switch p.kind {
	case KindHeart:
		c.TryAddHearts(max(p.cfg.Value, 1))
	case KindCoin:
		if p.deps.Wallet != nil && p.cfg.Value > 0 {
			p.deps.Wallet.AddCoins(p.cfg.Value)
		}
	case KindAngel:
		if p.deps.OnAngel != nil {
			p.deps.OnAngel(p)
		}
	}
	p.despawn()
}

// OnExit implements overlap.Handler.
func (p *Pickup) OnExit(overlap.Body) {}

// Consume removes the pickup and reports it to its owner. The reset
// protocol calls it on the angel that triggered the reset.
func (p *Pickup) Consume() { p.despawn() }

func (p *Pickup) despawn() {
	if p.destroyed {
		return
	}
	p.Destroy()
	if p.deps.Owner != nil {
		p.deps.Owner.HandleDespawn(p.cell, p)
	}
}

// Destroy removes the pickup without reporting it. Safe to call
// repeatedly.
func (p *Pickup) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.cancel()
	if p.hitbox != nil {
		p.hitbox.Remove()
	}
	if p.deps.Visual != nil {
		p.deps.Visual.SetVisible(false)
	}
}

func pingPong(t, length float64) float64 {
	t = math.Mod(t, 2*length)
	if t > length {
		return 2*length - t
	}
	return t
}
