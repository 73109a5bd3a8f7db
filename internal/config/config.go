// Package config provides YAML-based configuration loading and difficulty
// ramps for the HellTiles arena.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/helltiles/internal/grid"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// HellTilesConfig contains all configuration for one arena.
type HellTilesConfig struct {
	Arena       grid.LayoutSpec   `yaml:"arena"`
	ArenaFile   string            `yaml:"arena_file,omitempty"` // replaces arena; relative to the config file
	Mode        ModeConfig        `yaml:"mode"`
	Player      PlayerConfig      `yaml:"player"`
	Hazards     HazardsConfig     `yaml:"hazards"`
	Pickups     PickupsConfig     `yaml:"pickups"`
	Projectiles ProjectilesConfig `yaml:"projectiles"`
	Difficulty  DifficultyConfig  `yaml:"difficulty"`
}

// ModeConfig describes how a run ends.
type ModeConfig struct {
	Countdown time.Duration `yaml:"countdown"` // survival mode win time; endless ignores it
}

// PlayerConfig defines hearts and hop feel.
type PlayerConfig struct {
	Hearts             int           `yaml:"hearts"`
	Invulnerability    time.Duration `yaml:"invulnerability"`
	Blink              time.Duration `yaml:"blink"`
	Hop                time.Duration `yaml:"hop"`
	BounceDepth        float64       `yaml:"bounce_depth"`
	BounceDuration     time.Duration `yaml:"bounce_duration"`
	TileBounceDepth    float64       `yaml:"tile_bounce_depth"`
	TileBounceDuration time.Duration `yaml:"tile_bounce_duration"`
	SnapToWalkable     bool          `yaml:"snap_to_walkable"`
	Start              *grid.Cell    `yaml:"start"` // nil uses the arena centre
}

// SpawnerConfig is the timer and cap shared by every coordinator.
type SpawnerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Interval     time.Duration `yaml:"interval"`
	IntervalMax  time.Duration `yaml:"interval_max"` // > Interval draws each wait from the range
	MaxActive    int           `yaml:"max_active"`
}

// TelegraphConfig is the warning phase of a hazard.
type TelegraphConfig struct {
	On     time.Duration `yaml:"on"`
	Off    time.Duration `yaml:"off"`
	Blinks int           `yaml:"blinks"`
	Delay  time.Duration `yaml:"delay"`
}

// HazardsConfig groups the hazard kinds.
type HazardsConfig struct {
	Spike   SpikeConfig   `yaml:"spike"`
	Cracked CrackedConfig `yaml:"cracked"`
	Push    PushConfig    `yaml:"push"`
	Sweep   SweepConfig   `yaml:"sweep"`
}

type SpikeConfig struct {
	Spawner   SpawnerConfig   `yaml:"spawner"`
	Telegraph TelegraphConfig `yaml:"telegraph"`
	Active    time.Duration   `yaml:"active"`
}

type CrackedConfig struct {
	Spawner         SpawnerConfig   `yaml:"spawner"`
	Telegraph       TelegraphConfig `yaml:"telegraph"`
	PassiveLifetime time.Duration   `yaml:"passive_lifetime"`
	RestoreDelay    time.Duration   `yaml:"restore_delay"`
	Tile            grid.Tile       `yaml:"tile"`
}

type PushConfig struct {
	Spawner   SpawnerConfig   `yaml:"spawner"`
	Telegraph TelegraphConfig `yaml:"telegraph"`
	Active    time.Duration   `yaml:"active"`
}

// SweepConfig drives the row and column sweeps fired by the projectile
// director.
type SweepConfig struct {
	Telegraph      TelegraphConfig `yaml:"telegraph"`
	Active         time.Duration   `yaml:"active"`
	Lifetime       time.Duration   `yaml:"lifetime"`
	AllowedRows    []int           `yaml:"allowed_rows"`
	AllowedColumns []int           `yaml:"allowed_columns"`
}

// PickupsConfig groups the collectibles.
type PickupsConfig struct {
	Heart PickupConfig `yaml:"heart"`
	Coin  PickupConfig `yaml:"coin"`
	Angel AngelConfig  `yaml:"angel"`
}

type PickupConfig struct {
	Spawner  SpawnerConfig `yaml:"spawner"`
	Lifetime time.Duration `yaml:"lifetime"`
	Flicker  time.Duration `yaml:"flicker"`
	Value    int           `yaml:"value"`
}

type AngelConfig struct {
	Spawner      SpawnerConfig `yaml:"spawner"`
	DespawnAfter time.Duration `yaml:"despawn_after"`
	RingLifetime time.Duration `yaml:"ring_lifetime"`
}

// ProjectilesConfig defines the shared projectile budget and the tracks.
type ProjectilesConfig struct {
	MaxActive   int           `yaml:"max_active"`
	Speed       float64       `yaml:"speed"`
	Lifetime    time.Duration `yaml:"lifetime"`
	MaxDistance float64       `yaml:"max_distance"`
	Tracks      []TrackConfig `yaml:"tracks"`

	EdgeRadius   float64 `yaml:"edge_radius"`
	EdgeMinCoord int     `yaml:"edge_min_coord"`
	EdgeMaxCoord int     `yaml:"edge_max_coord"`
	HomingRadius float64 `yaml:"homing_radius"`
}

// Track kinds understood by the arena.
const (
	TrackArrow       = "arrow"
	TrackEdgeArrow   = "edge_arrow"
	TrackHoming      = "homing"
	TrackRowSweep    = "row_sweep"
	TrackColumnSweep = "column_sweep"
)

// TrackConfig schedules one projectile track.
type TrackConfig struct {
	Kind         string        `yaml:"kind"`
	Enabled      bool          `yaml:"enabled"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Interval     time.Duration `yaml:"interval"`
}

// DifficultyConfig defines the interval ramp. The ramp level runs from
// InitialLevel to 1 over Ramp.Duration and maps linearly onto the interval
// multiplier range.
type DifficultyConfig struct {
	Enabled      bool       `yaml:"enabled"`
	InitialLevel float64    `yaml:"initial_level"` // 0.0 = start multiplier, 1.0 = end multiplier
	Ramp         RampConfig `yaml:"ramp"`
}

// RampConfig bounds the interval multiplier.
type RampConfig struct {
	StartMultiplier float64       `yaml:"start_multiplier"`
	EndMultiplier   float64       `yaml:"end_multiplier"`
	Duration        time.Duration `yaml:"duration"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists every preset in menu order.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}

// ParsePreset validates a preset name. An empty name means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	if s == "" {
		return DifficultyNormal, nil
	}
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, s)
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.2
	case DifficultyHard:
		return 0.5
	default:
		return 0.0
	}
}

// Validate reports every problem in the configuration at once.
func (c HellTilesConfig) Validate() error {
	var errs []error
	if _, err := c.Arena.Layout(); err != nil {
		errs = append(errs, fmt.Errorf("arena: %w", err))
	}
	if c.Player.Hearts <= 0 {
		errs = append(errs, fmt.Errorf("%w: player.hearts must be positive", ErrInvalidConfig))
	}
	if c.Player.Hop <= 0 {
		errs = append(errs, fmt.Errorf("%w: player.hop must be positive", ErrInvalidConfig))
	}
	spawners := map[string]SpawnerConfig{
		"hazards.spike":   c.Hazards.Spike.Spawner,
		"hazards.cracked": c.Hazards.Cracked.Spawner,
		"hazards.push":    c.Hazards.Push.Spawner,
		"pickups.heart":   c.Pickups.Heart.Spawner,
		"pickups.coin":    c.Pickups.Coin.Spawner,
		"pickups.angel":   c.Pickups.Angel.Spawner,
	}
	for _, name := range sortedKeys(spawners) {
		s := spawners[name]
		if s.Interval < 0 || s.InitialDelay < 0 || s.MaxActive < 0 {
			errs = append(errs, fmt.Errorf("%w: %s: negative timer or cap", ErrInvalidConfig, name))
		}
		if s.IntervalMax != 0 && s.IntervalMax < s.Interval {
			errs = append(errs, fmt.Errorf("%w: %s: interval_max below interval", ErrInvalidConfig, name))
		}
	}
	for i, t := range c.Projectiles.Tracks {
		switch t.Kind {
		case TrackArrow, TrackEdgeArrow, TrackHoming, TrackRowSweep, TrackColumnSweep:
		default:
			errs = append(errs, fmt.Errorf("%w: projectiles.tracks[%d]: unknown kind %q", ErrInvalidConfig, i, t.Kind))
		}
	}
	if r := c.Difficulty.Ramp; r.StartMultiplier <= 0 || r.EndMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("%w: difficulty.ramp multipliers must be positive", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
