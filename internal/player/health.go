package player

import "time"

// HealthConfig holds the heart and invulnerability settings.
type HealthConfig struct {
	MaxHearts       int
	Invulnerability time.Duration
	BlinkInterval   time.Duration
}

// DefaultHealth is three hearts with a 1.5s grace window.
func DefaultHealth() HealthConfig {
	return HealthConfig{
		MaxHearts:       3,
		Invulnerability: 1500 * time.Millisecond,
		BlinkInterval:   200 * time.Millisecond,
	}
}

// Health tracks hearts. A hit starts an invulnerability window during
// which further hits are ignored and the player blinks.
type Health struct {
	cfg     HealthConfig
	current int
	hits    int

	invuln time.Duration // time left
	blink  time.Duration
	tinted bool
}

// NewHealth starts at full health.
func NewHealth(cfg HealthConfig) *Health {
	cfg.MaxHearts = max(cfg.MaxHearts, 1)
	if cfg.BlinkInterval <= 0 {
		cfg.BlinkInterval = DefaultHealth().BlinkInterval
	}
	return &Health{cfg: cfg, current: cfg.MaxHearts}
}

func (h *Health) Current() int       { return h.current }
func (h *Health) Max() int           { return h.cfg.MaxHearts }
func (h *Health) Dead() bool         { return h.current <= 0 }
func (h *Health) Invulnerable() bool { return h.invuln > 0 }
func (h *Health) Tinted() bool       { return h.tinted }
func (h *Health) Hits() int          { return h.hits }

// TakeHit removes one heart. It reports false when the hit was ignored.
func (h *Health) TakeHit() bool {
	if h.Invulnerable() || h.Dead() {
		return false
	}
	h.current--
	h.hits++
	if h.cfg.Invulnerability > 0 {
		h.invuln = h.cfg.Invulnerability
		h.blink = 0
		h.tinted = true
	}
	return true
}

// TryAddHearts adds up to n hearts without passing the maximum. It reports
// whether anything was added.
func (h *Health) TryAddHearts(n int) bool {
	if n <= 0 || h.Dead() || h.current >= h.cfg.MaxHearts {
		return false
	}
	h.current = min(h.cfg.MaxHearts, h.current+n)
	return true
}

// RestoreFullHealth refills every heart, reviving a dead player.
func (h *Health) RestoreFullHealth() {
	h.current = h.cfg.MaxHearts
}

// Update runs the invulnerability window.
func (h *Health) Update(dt time.Duration) {
	if h.invuln <= 0 {
		return
	}
	h.invuln -= dt
	if h.invuln <= 0 {
		h.invuln = 0
		h.tinted = false
		return
	}
	h.blink += dt
	for h.blink >= h.cfg.BlinkInterval {
		h.blink -= h.cfg.BlinkInterval
		h.tinted = !h.tinted
	}
}
