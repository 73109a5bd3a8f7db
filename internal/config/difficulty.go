package config

import (
	"time"

	"github.com/vovakirdan/helltiles/internal/core"
)

// MinInterval is the floor applied to every scaled spawn interval.
const MinInterval = 10 * time.Millisecond

// DifficultyManager maps run time onto the spawn interval multiplier.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: core.Clamp(cfg.InitialLevel, 0, 1),
	}
}

// Level returns the difficulty level (0.0 to 1.0) after elapsed run time.
// A zero ramp duration jumps straight to the end.
func (d *DifficultyManager) Level(elapsed time.Duration) float64 {
	if !d.cfg.Enabled {
		return d.initialLevel
	}
	progress := 1.0
	if d.cfg.Ramp.Duration > 0 {
		progress = core.Clamp(float64(elapsed)/float64(d.cfg.Ramp.Duration), 0, 1)
	}
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Multiplier returns the interval multiplier after elapsed run time. It
// has the signature the projectile director expects.
func (d *DifficultyManager) Multiplier(elapsed time.Duration) float64 {
	start, end := d.cfg.Ramp.StartMultiplier, d.cfg.Ramp.EndMultiplier
	if start <= 0 {
		start = 1
	}
	if end <= 0 {
		end = start
	}
	return core.Lerp(start, end, d.Level(elapsed))
}

// Interval scales a base interval, never going below MinInterval.
func (d *DifficultyManager) Interval(base, elapsed time.Duration) time.Duration {
	return max(MinInterval, core.ScaleDuration(base, d.Multiplier(elapsed)))
}
