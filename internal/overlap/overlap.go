// Package overlap delivers enter/exit notifications between axis-aligned
// hitboxes and moving bodies. It is the trigger layer hazards, projectiles
// and pickups listen on; there is no collision response.
package overlap

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// Body is something that moves through hitboxes, usually the player.
// Implementations must be comparable (pointer types).
type Body interface {
	Bounds() cp.BB
}

// Handler receives the events of one hitbox.
type Handler interface {
	OnEnter(b Body)
	OnExit(b Body)
}

// Box returns the bounding box centred on c with half-extents hw, hh.
func Box(c cp.Vector, hw, hh float64) cp.BB {
	return cp.NewBBForExtents(c, hw, hh)
}

// Space owns the bodies and hitboxes of one arena.
type Space struct {
	bodies   []Body
	hitboxes []*Hitbox
	stepping bool
	dirty    bool
}

// NewSpace creates an empty space.
func NewSpace() *Space {
	return &Space{}
}

// AddBody registers b. Adding the same body twice is a no-op.
func (s *Space) AddBody(b Body) {
	if slices.Contains(s.bodies, b) {
		return
	}
	s.bodies = append(s.bodies, b)
}

// RemoveBody unregisters b. Hitboxes forget it without an exit event.
func (s *Space) RemoveBody(b Body) {
	s.bodies = slices.DeleteFunc(s.bodies, func(o Body) bool { return o == b })
	for _, h := range s.hitboxes {
		delete(h.inside, b)
	}
}

// NewHitbox creates an inactive hitbox with the given bounds.
func (s *Space) NewHitbox(bounds cp.BB, handler Handler) *Hitbox {
	h := &Hitbox{
		space:   s,
		bounds:  bounds,
		handler: handler,
		inside:  make(map[Body]struct{}),
	}
	s.hitboxes = append(s.hitboxes, h)
	return h
}

// Hitboxes returns the number of live hitboxes.
func (s *Space) Hitboxes() int {
	n := 0
	for _, h := range s.hitboxes {
		if !h.removed {
			n++
		}
	}
	return n
}

// Clear removes every hitbox without events. Bodies stay registered.
func (s *Space) Clear() {
	for _, h := range s.hitboxes {
		h.removed = true
		h.active = false
		clear(h.inside)
	}
	s.dirty = true
	s.compact()
}

// Step compares every active hitbox against every body and emits enter
// events for new overlaps and exit events for ended ones. Handlers may
// add, remove or toggle hitboxes while the step runs; a hitbox removed or
// disabled mid-step receives no further events.
func (s *Space) Step() {
	s.stepping = true
	boxes := slices.Clone(s.hitboxes)
	bodies := slices.Clone(s.bodies)
	for _, h := range boxes {
		for _, b := range bodies {
			if !h.active || h.removed {
				break
			}
			_, was := h.inside[b]
			now := h.bounds.Intersects(b.Bounds())
			switch {
			case now && !was:
				h.inside[b] = struct{}{}
				h.handler.OnEnter(b)
			case !now && was:
				delete(h.inside, b)
				h.handler.OnExit(b)
			}
		}
	}
	s.stepping = false
	s.compact()
}

func (s *Space) compact() {
	if !s.dirty || s.stepping {
		return
	}
	s.hitboxes = slices.DeleteFunc(s.hitboxes, func(h *Hitbox) bool { return h.removed })
	s.dirty = false
}

// Hitbox is a trigger area owned by one handler.
type Hitbox struct {
	space   *Space
	bounds  cp.BB
	handler Handler
	active  bool
	removed bool
	inside  map[Body]struct{}
}

// Enable activates the hitbox and immediately delivers OnEnter to every
// body already overlapping it, so a hitbox that appears under the player
// reacts in the same tick. Those bodies are then tracked as inside and get
// no second enter from the next Step.
func (h *Hitbox) Enable() {
	if h.active || h.removed {
		return
	}
	h.active = true
	for _, b := range slices.Clone(h.space.bodies) {
		if !h.active || h.removed {
			return
		}
		if _, was := h.inside[b]; was || !h.bounds.Intersects(b.Bounds()) {
			continue
		}
		h.inside[b] = struct{}{}
		h.handler.OnEnter(b)
	}
}

// Disable deactivates the hitbox and forgets tracked bodies silently.
func (h *Hitbox) Disable() {
	h.active = false
	clear(h.inside)
}

// Remove deactivates and detaches the hitbox from its space. Safe to call
// more than once.
func (h *Hitbox) Remove() {
	if h.removed {
		return
	}
	h.Disable()
	h.removed = true
	h.space.dirty = true
	h.space.compact()
}

func (h *Hitbox) Active() bool  { return h.active }
func (h *Hitbox) Bounds() cp.BB { return h.bounds }

// SetBounds moves the hitbox. Events for the new position come from the
// next Step.
func (h *Hitbox) SetBounds(bb cp.BB) {
	h.bounds = bb
}

// Tracking reports whether b is currently tracked as inside.
func (h *Hitbox) Tracking(b Body) bool {
	_, ok := h.inside[b]
	return ok
}

// Overlaps polls the geometry directly, ignoring tracked state.
func (h *Hitbox) Overlaps(b Body) bool {
	return h.bounds.Intersects(b.Bounds())
}

// Overlapping returns the registered bodies whose bounds currently touch the
// hitbox.
func (h *Hitbox) Overlapping() []Body {
	var out []Body
	for _, b := range h.space.bodies {
		if h.Overlaps(b) {
			out = append(out, b)
		}
	}
	return out
}
