package config

import (
	_ "embed"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
)

//go:embed defaults/helltiles.yaml
var defaultHellTilesYAML []byte

// DefaultYAML returns the embedded default document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultHellTilesYAML...)
}

func blink(blinks int) TelegraphConfig {
	return TelegraphConfig{On: core.Seconds(0.2), Off: core.Seconds(0.2), Blinks: blinks}
}

// DefaultArena is a 12x8 floor centred on the world origin.
func DefaultArena() grid.LayoutSpec {
	rows := make([]string, 8)
	for i := range rows {
		rows[i] = "############"
	}
	return grid.LayoutSpec{
		Name:     "hell",
		CellSize: 1,
		Min:      grid.Point{X: -6, Y: -4},
		Legend:   map[string]grid.Tile{"#": "floor"},
		Rows:     rows,
	}
}

// DefaultConfig returns the hardcoded configuration used when no file and
// no embedded document can be read.
func DefaultConfig() HellTilesConfig {
	return HellTilesConfig{
		Arena: DefaultArena(),
		Mode:  ModeConfig{Countdown: core.Seconds(80)},
		Player: PlayerConfig{
			Hearts:             3,
			Invulnerability:    core.Seconds(1.5),
			Blink:              core.Seconds(0.2),
			Hop:                core.Seconds(0.18),
			BounceDepth:        0.1,
			BounceDuration:     core.Seconds(0.3),
			TileBounceDepth:    0.05,
			TileBounceDuration: core.Seconds(0.3),
			SnapToWalkable:     true,
		},
		Hazards: HazardsConfig{
			Spike: SpikeConfig{
				Spawner:   SpawnerConfig{Enabled: true, InitialDelay: core.Seconds(4), Interval: core.Seconds(12), MaxActive: 2},
				Telegraph: blink(2),
				Active:    core.Seconds(5),
			},
			Cracked: CrackedConfig{
				Spawner:         SpawnerConfig{Enabled: true, InitialDelay: core.Seconds(6), Interval: core.Seconds(14), MaxActive: 2},
				Telegraph:       blink(3),
				PassiveLifetime: core.Seconds(10),
				RestoreDelay:    core.Seconds(10),
				Tile:            "cracked",
			},
			Push: PushConfig{
				Spawner:   SpawnerConfig{Enabled: true, InitialDelay: core.Seconds(4), Interval: core.Seconds(10), MaxActive: 2},
				Telegraph: blink(2),
				Active:    core.Seconds(5),
			},
			Sweep: SweepConfig{
				Telegraph: TelegraphConfig{Delay: core.Seconds(0.8)},
				Active:    core.Seconds(1.2),
				Lifetime:  core.Seconds(2),
			},
		},
		Pickups: PickupsConfig{
			Heart: PickupConfig{
				Spawner:  SpawnerConfig{Enabled: true, InitialDelay: core.Seconds(5), Interval: core.Seconds(15), MaxActive: 1},
				Lifetime: core.Seconds(4),
				Flicker:  core.Seconds(1.5),
				Value:    1,
			},
			Coin: PickupConfig{
				Spawner:  SpawnerConfig{Enabled: true, InitialDelay: core.Seconds(3), Interval: core.Seconds(12), MaxActive: 2},
				Lifetime: core.Seconds(6),
				Flicker:  core.Seconds(1),
				Value:    1,
			},
			Angel: AngelConfig{
				Spawner:      SpawnerConfig{Enabled: true, Interval: core.Seconds(15), IntervalMax: core.Seconds(25), MaxActive: 1},
				DespawnAfter: core.Seconds(5),
				RingLifetime: core.Seconds(0.42),
			},
		},
		Projectiles: ProjectilesConfig{
			MaxActive:   50,
			Speed:       6,
			Lifetime:    core.Seconds(8),
			MaxDistance: 20,
			Tracks: []TrackConfig{
				{Kind: TrackArrow, Enabled: true, InitialDelay: core.Seconds(2), Interval: core.Seconds(2)},
				{Kind: TrackEdgeArrow, Enabled: true, InitialDelay: core.Seconds(8), Interval: core.Seconds(5)},
				{Kind: TrackHoming, Enabled: true, InitialDelay: core.Seconds(15), Interval: core.Seconds(7)},
				{Kind: TrackRowSweep, Enabled: true, InitialDelay: core.Seconds(20), Interval: core.Seconds(11)},
				{Kind: TrackColumnSweep, Enabled: false, InitialDelay: core.Seconds(25), Interval: core.Seconds(13)},
			},
			EdgeRadius:   10,
			EdgeMinCoord: -2,
			EdgeMaxCoord: 2,
			HomingRadius: 10,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0,
			Ramp:         RampConfig{StartMultiplier: 1, EndMultiplier: 0.5, Duration: core.Seconds(120)},
		},
	}
}
