// Package projectile moves projectiles across the arena, throttles them
// against a shared cap and schedules the tracks that fire them.
package projectile

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
)

// Screen-space fallbacks: Y grows downward.
var (
	FallbackUp    = cp.Vector{X: 0, Y: -1}
	FallbackRight = cp.Vector{X: 1, Y: 0}
)

// Spec describes one projectile type.
type Spec struct {
	Speed       float64 // world units per second
	MaxLifetime time.Duration
	MaxDistance float64
	Radius      float64   // hitbox half-extent
	Fallback    cp.Vector // direction used when the target is the spawn point
	Homing      bool      // re-aim at a dynamic target every tick
	Glyph       rune      // 0 draws a direction arrow
}

// DefaultSpec matches the stock arrow.
func DefaultSpec() Spec {
	return Spec{
		Speed:       6,
		MaxLifetime: 8 * time.Second,
		MaxDistance: 20,
		Radius:      0.2,
		Fallback:    FallbackUp,
	}
}

// Target is something a projectile can follow.
type Target interface {
	Position() cp.Vector
}

// Damageable bodies take one hit per call.
type Damageable interface {
	TakeHit() bool
}

// Projectile is one live projectile. It stays idle until one of the
// Initialise methods gives it a target.
type Projectile struct {
	spec  Spec
	field *Field

	pos, spawn cp.Vector
	dir        cp.Vector
	target     cp.Vector
	dynamic    Target
	hasTarget  bool

	elapsed time.Duration
	hitbox  *overlap.Hitbox
	done    bool
	hit     bool
}

func (p *Projectile) Position() cp.Vector    { return p.pos }
func (p *Projectile) Direction() cp.Vector   { return p.dir }
func (p *Projectile) Elapsed() time.Duration { return p.elapsed }
func (p *Projectile) Done() bool             { return p.done }
func (p *Projectile) HitTarget() bool        { return p.hit }
func (p *Projectile) Spec() Spec             { return p.spec }
func (p *Projectile) Travelled() float64     { return p.pos.Distance(p.spawn) }
func (p *Projectile) Tracking() bool         { return p.dynamic != nil }

// Heading is the dominant grid direction of travel.
func (p *Projectile) Heading() grid.Dir {
	if math.Abs(p.dir.X) >= math.Abs(p.dir.Y) {
		if p.dir.X < 0 {
			return grid.DirLeft
		}
		return grid.DirRight
	}
	if p.dir.Y < 0 {
		return grid.DirUp
	}
	return grid.DirDown
}

// Initialise aims at a fixed point.
func (p *Projectile) Initialise(point cp.Vector) {
	p.dynamic = nil
	p.aim(point)
}

// InitialiseTracking aims at target. Only homing projectiles keep
// following it; others fly straight at where it was.
func (p *Projectile) InitialiseTracking(target Target) {
	p.dynamic = nil
	if p.spec.Homing {
		p.dynamic = target
	}
	p.aim(target.Position())
}

// Retarget drops any dynamic target and aims at a fixed point.
func (p *Projectile) Retarget(point cp.Vector) {
	p.dynamic = nil
	p.aim(point)
}

func (p *Projectile) aim(point cp.Vector) {
	if p.done {
		return
	}
	p.target = point
	dir, ok := unit(p.pos, point)
	if !ok {
		dir = p.spec.Fallback
	}
	p.dir = dir
	first := !p.hasTarget
	p.hasTarget = true
	if first && p.hitbox != nil {
		p.hitbox.Enable()
	}
}

// Update moves the projectile and ends it on timeout or distance.
func (p *Projectile) Update(dt time.Duration) {
	if p.done || !p.hasTarget {
		return
	}
	p.elapsed += dt
	if p.elapsed >= p.spec.MaxLifetime {
		p.Destroy()
		return
	}

	if p.dynamic != nil {
		p.target = p.dynamic.Position()
		if d, ok := unit(p.pos, p.target); ok && d.LengthSq() > 1e-4 {
			p.dir = d
		}
	}
	if p.dir.LengthSq() == 0 {
		d, ok := unit(p.pos, p.target)
		if !ok {
			d = p.spec.Fallback
		}
		p.dir = d
	}

	p.pos = p.pos.Add(p.dir.Mult(p.spec.Speed * dt.Seconds()))
	if p.hitbox != nil {
		p.hitbox.SetBounds(p.bounds())
	}
	if p.pos.DistanceSq(p.spawn) >= p.spec.MaxDistance*p.spec.MaxDistance {
		p.Destroy()
	}
}

// OnEnter implements overlap.Handler: the first damageable body takes one
// hit and the projectile is gone.
func (p *Projectile) OnEnter(b overlap.Body) {
	if p.done {
		return
	}
	d, ok := b.(Damageable)
	if !ok {
		return
	}
	d.TakeHit()
	p.hit = true
	p.Destroy()
}

// OnExit implements overlap.Handler.
func (p *Projectile) OnExit(overlap.Body) {}

// Destroy removes the projectile and releases its registry slot. Safe to
// call repeatedly.
func (p *Projectile) Destroy() {
	if p.done {
		return
	}
	p.done = true
	if p.hitbox != nil {
		p.hitbox.Remove()
	}
	if p.field != nil {
		p.field.reg.Unregister()
	}
}

func (p *Projectile) bounds() cp.BB {
	return overlap.Box(p.pos, p.spec.Radius, p.spec.Radius)
}

func unit(from, to cp.Vector) (cp.Vector, bool) {
	d := to.Sub(from)
	l := d.Length()
	if l == 0 {
		return cp.Vector{}, false
	}
	return d.Mult(1 / l), true
}
