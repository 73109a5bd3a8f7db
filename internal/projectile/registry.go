package projectile

import "math"

// Registry counts live projectiles against a shared cap. The counter moves
// exactly once per projectile creation and destruction.
type Registry struct {
	active int
	cap    int
}

// NewRegistry creates a registry. A cap <= 0 means unlimited.
func NewRegistry(limit int) *Registry {
	r := &Registry{}
	r.SetCap(limit)
	return r
}

func (r *Registry) Active() int { return r.active }
func (r *Registry) Cap() int    { return r.cap }

// SetCap changes the limit. Live projectiles over a lowered cap are kept;
// new ones are refused until the count drops.
func (r *Registry) SetCap(limit int) {
	if limit <= 0 {
		limit = math.MaxInt
	}
	r.cap = limit
}

// CanSpawn reports whether one more projectile fits.
func (r *Registry) CanSpawn() bool { return r.active < r.cap }

// TryRegister counts a new projectile, refusing at the cap.
func (r *Registry) TryRegister() bool {
	if !r.CanSpawn() {
		return false
	}
	r.active++
	return true
}

// Unregister releases one slot. It never goes below zero.
func (r *Registry) Unregister() {
	r.active = max(0, r.active-1)
}
