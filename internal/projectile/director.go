package projectile

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/helltiles/internal/core"
)

// MinInterval is the floor for every track interval.
const MinInterval = 10 * time.Millisecond

// TrackConfig schedules one track.
type TrackConfig struct {
	Label        string
	Track        Track
	Enabled      bool
	InitialDelay time.Duration
	Interval     time.Duration
}

// Multiplier scales track intervals by time since the director started.
type Multiplier func(elapsed time.Duration) float64

type trackState struct {
	cfg   TrackConfig
	timer time.Duration
	fired int
	gated int
}

// Director runs every track on its own timer and skips spawns while the
// registry is full. Skipped spawns are dropped, never queued.
type Director struct {
	reg        *Registry
	maxActive  int
	tracks     []*trackState
	multiplier Multiplier
	elapsed    time.Duration
	stopped    bool
	logger     *log.Logger
}

// DirectorOption configures a Director.
type DirectorOption func(*Director)

// WithMultiplier sets the interval ramp.
func WithMultiplier(m Multiplier) DirectorOption {
	return func(d *Director) { d.multiplier = m }
}

// WithDirectorLogger sets the logger used for warnings.
func WithDirectorLogger(l *log.Logger) DirectorOption {
	return func(d *Director) { d.logger = l }
}

// NewDirector sets the registry cap to maxActive and schedules every
// enabled track. Tracks without an implementation are logged and skipped.
func NewDirector(reg *Registry, maxActive int, tracks []TrackConfig, opts ...DirectorOption) *Director {
	d := &Director{reg: reg, maxActive: maxActive}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	if d.reg == nil {
		d.reg = NewRegistry(maxActive)
	}
	d.reg.SetCap(maxActive)

	for _, tc := range tracks {
		if tc.Track == nil {
			d.logger.Warn("projectile director missing track", "track", tc.Label)
			continue
		}
		if !tc.Enabled {
			continue
		}
		d.tracks = append(d.tracks, &trackState{cfg: tc, timer: max(tc.InitialDelay, 0)})
	}
	return d
}

// Tracks returns the number of scheduled tracks.
func (d *Director) Tracks() int { return len(d.tracks) }

// Fired returns how many spawns the labelled track has made, and how many
// were dropped at the cap.
func (d *Director) Fired(label string) (fired, gated int) {
	for _, ts := range d.tracks {
		if ts.cfg.Label == label {
			return ts.fired, ts.gated
		}
	}
	return 0, 0
}

// Multiplier returns the current interval multiplier.
func (d *Director) Multiplier() float64 {
	if d.multiplier == nil {
		return 1
	}
	return d.multiplier(d.elapsed)
}

// Update advances every track timer and fires the ones that expire.
func (d *Director) Update(dt time.Duration) {
	if d.stopped {
		return
	}
	d.elapsed += dt
	for _, ts := range d.tracks {
		ts.timer -= dt
		if ts.timer > 0 {
			continue
		}
		if d.reg.CanSpawn() {
			ts.cfg.Track.SpawnProjectile()
			ts.fired++
		} else {
			ts.gated++
		}
		ts.timer = max(MinInterval, core.ScaleDuration(ts.cfg.Interval, d.Multiplier()))
	}
}

// Stop halts every track and lifts the registry cap. A stopped director
// stays stopped; a new run builds a new one.
func (d *Director) Stop() {
	d.stopped = true
	d.reg.SetCap(0)
}

func (d *Director) Stopped() bool { return d.stopped }
