package projectile

import (
	"slices"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/overlap"
)

// Field owns the live projectiles of one arena.
type Field struct {
	reg   *Registry
	space *overlap.Space
	live  []*Projectile
}

// NewField creates a field counting against reg. space may be nil, in
// which case projectiles never collide.
func NewField(reg *Registry, space *overlap.Space) *Field {
	if reg == nil {
		reg = NewRegistry(0)
	}
	return &Field{reg: reg, space: space}
}

func (f *Field) Registry() *Registry { return f.reg }
func (f *Field) Len() int            { return len(f.live) }

// Spawn creates an idle projectile at pos. It reports false when the
// registry is full.
func (f *Field) Spawn(pos cp.Vector, spec Spec) (*Projectile, bool) {
	if !f.reg.TryRegister() {
		return nil, false
	}
	if spec.Radius <= 0 {
		spec.Radius = DefaultSpec().Radius
	}
	if spec.Fallback.LengthSq() == 0 {
		spec.Fallback = FallbackUp
	}
	p := &Projectile{spec: spec, field: f, pos: pos, spawn: pos}
	if f.space != nil {
		p.hitbox = f.space.NewHitbox(p.bounds(), p)
	}
	f.live = append(f.live, p)
	return p, true
}

// Update advances every projectile and drops the finished ones.
func (f *Field) Update(dt time.Duration) {
	for _, p := range slices.Clone(f.live) {
		p.Update(dt)
	}
	f.compact()
}

// Compact drops projectiles destroyed outside Update, e.g. by a hit during
// the overlap step.
func (f *Field) Compact() { f.compact() }

func (f *Field) compact() {
	f.live = slices.DeleteFunc(f.live, func(p *Projectile) bool { return p.done })
}

// ClearAll destroys every live projectile.
func (f *Field) ClearAll() {
	for _, p := range f.live {
		p.Destroy()
	}
	clear(f.live)
	f.live = f.live[:0]
}

// Each calls fn for every live projectile in spawn order.
func (f *Field) Each(fn func(*Projectile)) {
	for _, p := range f.live {
		if !p.done {
			fn(p)
		}
	}
}
