// Package reset wipes the arena back to its starting layout when the angel
// is collected.
package reset

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/schedule"
)

// DefaultRingLifetime is how long the ring effect stays on screen.
const DefaultRingLifetime = 420 * time.Millisecond

// Healer is refilled to full health.
type Healer interface {
	RestoreFullHealth()
}

// Projectiles destroys every live projectile.
type Projectiles interface {
	ClearAll()
}

// Hazards is one hazard coordinator.
type Hazards interface {
	DestroyAll()
	ClearAll()
}

// Layout restores the arena tiles.
type Layout interface {
	RestoreOriginalLayout()
}

// Trigger is the pickup that started the reset.
type Trigger interface {
	Position() cp.Vector
	Consume()
}

// Ring is a short-lived effect drawn where a reset happened.
type Ring struct {
	Pos cp.Vector
	Age time.Duration
}

// Protocol clears the arena in a fixed order. Every collaborator may be
// nil; a zero Protocol is valid and does nothing but count.
type Protocol struct {
	Player       Healer
	Projectiles  Projectiles
	Hazards      []Hazards
	Grid         Layout
	Scheduler    *schedule.Scheduler
	RingLifetime time.Duration
	Logger       *log.Logger

	rings []*Ring
	runs  int
}

// Execute runs the reset. trigger may be nil.
func (p *Protocol) Execute(trigger Trigger) {
	p.runs++
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if p.Player != nil {
		p.Player.RestoreFullHealth()
	}
	if p.Projectiles != nil {
		p.Projectiles.ClearAll()
	}
	for _, h := range p.Hazards {
		if h != nil {
			h.DestroyAll()
		}
	}
	for _, h := range p.Hazards {
		if h != nil {
			h.ClearAll()
		}
	}
	if p.Grid != nil {
		p.Grid.RestoreOriginalLayout()
	}
	if trigger != nil {
		p.ring(trigger.Position())
		trigger.Consume()
	}
	logger.Debug("arena reset", "run", p.runs)
}

func (p *Protocol) ring(pos cp.Vector) {
	if p.Scheduler == nil {
		return
	}
	life := p.RingLifetime
	if life <= 0 {
		life = DefaultRingLifetime
	}
	r := &Ring{Pos: pos}
	p.rings = append(p.rings, r)
	p.Scheduler.After(context.Background(), life, func() {
		p.rings = slices.DeleteFunc(p.rings, func(o *Ring) bool { return o == r })
	})
}

// Update ages the live rings.
func (p *Protocol) Update(dt time.Duration) {
	for _, r := range p.rings {
		r.Age += dt
	}
}

// Rings returns the effects currently on screen.
func (p *Protocol) Rings() []Ring {
	out := make([]Ring, len(p.rings))
	for i, r := range p.rings {
		out[i] = *r
	}
	return out
}

// Runs reports how many resets have been executed.
func (p *Protocol) Runs() int { return p.runs }

// Clear drops every ring.
func (p *Protocol) Clear() {
	clear(p.rings)
	p.rings = p.rings[:0]
	p.runs = 0
}
