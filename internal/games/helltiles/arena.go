package helltiles

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/helltiles/internal/config"
	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/pickup"
	"github.com/vovakirdan/helltiles/internal/player"
	"github.com/vovakirdan/helltiles/internal/projectile"
	"github.com/vovakirdan/helltiles/internal/reset"
	"github.com/vovakirdan/helltiles/internal/schedule"
	"github.com/vovakirdan/helltiles/internal/spawn"
)

// Coordinator labels, also used as log keys and in snapshots.
const (
	labelSpike        = "spike"
	labelCracked      = "cracked_tile"
	labelPush         = "push_pad"
	labelRowSweep     = "row_sweep"
	labelColumnSweep  = "column_sweep"
	labelHeart        = "heart"
	labelCoin         = "coin"
	labelAngel        = "angel"
	sweepMaxActive    = 2
	homingSpeedFactor = 0.6
)

// Sprite glyphs.
const (
	glyphSpike        = '^'
	glyphSpikeArmed   = '▲'
	glyphCracked      = '%'
	glyphCrackedArmed = '▒'
	glyphSweep        = '-'
	glyphSweepArmed   = '='
	glyphHeart        = '♥'
	glyphCoin         = '●'
	glyphAngel        = '✦'
	glyphHoming       = '*'
)

// runWallet counts the coins of one run and forwards them to the
// persistent wallet when there is one.
type runWallet struct {
	coins int
	sink  CoinSink
}

func (w *runWallet) AddCoins(n int) {
	w.coins += n
	if w.sink == nil {
		return
	}
	if _, err := w.sink.AddCoins(n); err != nil {
		logger.Warn("wallet update failed", "coins", n, "err", err)
	}
}

// build wires a fresh arena from cfg. Every random source derives from the
// runtime seed in a fixed order so equal seeds replay equal runs.
func (g *Game) build(cfg config.HellTilesConfig) error {
	m, err := cfg.Arena.Build()
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.grid = m
	g.rng = rand.New(rand.NewSource(g.runtime.Seed))
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
	g.space = overlap.NewSpace()
	g.sched = schedule.New()
	g.wallet = &runWallet{sink: g.sink}

	g.player = player.New(m, m.CellSize(), player.Config{
		Health: player.HealthConfig{
			MaxHearts:       cfg.Player.Hearts,
			Invulnerability: cfg.Player.Invulnerability,
			BlinkInterval:   cfg.Player.Blink,
		},
		Mover: player.MoverConfig{
			HopDuration:        cfg.Player.Hop,
			BounceDepth:        cfg.Player.BounceDepth,
			BounceDuration:     cfg.Player.BounceDuration,
			TileBounceDepth:    cfg.Player.TileBounceDepth,
			TileBounceDuration: cfg.Player.TileBounceDuration,
			SnapToWalkable:     cfg.Player.SnapToWalkable,
		},
		Start: g.startCell(),
	})
	g.space.AddBody(g.player)

	g.buildHazards()
	g.buildPickups()
	g.buildProjectiles()

	g.reset = &reset.Protocol{
		Player:       g.player,
		Projectiles:  g.field,
		Hazards:      []reset.Hazards{g.spikes, g.cracked, g.pushes, g.rowSweeps, g.columnSweeps},
		Grid:         g.grid,
		Scheduler:    g.sched,
		RingLifetime: cfg.Pickups.Angel.RingLifetime,
		Logger:       logger,
	}

	g.scaled = make(map[string]*scaled)
	intervals := spawnerIntervals(cfg)
	for label, c := range map[string]interface{ SetSpawnInterval(time.Duration) }{
		labelSpike:   g.spikes,
		labelCracked: g.cracked,
		labelPush:    g.pushes,
		labelHeart:   g.hearts,
		labelCoin:    g.coins,
		labelAngel:   g.angels,
	} {
		g.scaled[label] = &scaled{target: c, base: intervals[label]}
	}
	return nil
}

// startCell is the configured start, or the walkable cell nearest the
// arena centre.
func (g *Game) startCell() grid.Cell {
	if s := g.cfg.Player.Start; s != nil {
		return *s
	}
	c := g.grid.Bounds().Center()
	if g.grid.IsWalkable(c) {
		return c
	}
	if near, ok := g.grid.TryFindNearestWalkable(g.grid.CellToWorldCenter(c)); ok {
		return near
	}
	return c
}

func (g *Game) seeded() *rand.Rand {
	return rand.New(rand.NewSource(g.rng.Int63()))
}

func spawnConfig(label string, s config.SpawnerConfig) spawn.Config {
	return spawn.Config{
		Label:        label,
		InitialDelay: s.InitialDelay,
		Interval:     s.Interval,
		IntervalMax:  s.IntervalMax,
		MaxActive:    s.MaxActive,
		Manual:       !s.Enabled,
	}
}

func spawnerIntervals(cfg config.HellTilesConfig) map[string]time.Duration {
	return map[string]time.Duration{
		labelSpike:   cfg.Hazards.Spike.Spawner.Interval,
		labelCracked: cfg.Hazards.Cracked.Spawner.Interval,
		labelPush:    cfg.Hazards.Push.Spawner.Interval,
		labelHeart:   cfg.Pickups.Heart.Spawner.Interval,
		labelCoin:    cfg.Pickups.Coin.Spawner.Interval,
		labelAngel:   cfg.Pickups.Angel.Spawner.Interval,
	}
}

func telegraph(t config.TelegraphConfig) hazard.Telegraph {
	return hazard.Telegraph{On: t.On, Off: t.Off, Blinks: t.Blinks, Delay: t.Delay}
}

func (g *Game) hazardDeps(owner hazard.Owner, sprite *core.Sprite) hazard.Deps {
	return hazard.Deps{
		Owner:     owner,
		Grid:      g.grid,
		Space:     g.space,
		Scheduler: g.sched,
		Visual:    sprite,
	}
}

func (g *Game) buildHazards() {
	hc := g.cfg.Hazards

	spike := hazard.Config{
		Telegraph:  telegraph(hc.Spike.Telegraph),
		ActiveFor:  hc.Spike.Active,
		ArmedGlyph: glyphSpikeArmed,
	}
	g.spikes = spawn.New[*hazard.Hazard](spawnConfig(labelSpike, hc.Spike.Spawner), g.grid,
		func(c hazards, cell grid.Cell) (*hazard.Hazard, bool) {
			return hazard.New(hazard.KindSpike, spike, cell, g.hazardDeps(c, core.NewSprite(glyphSpike, core.ColorYellow))), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))

	cracked := hazard.Config{
		Telegraph:       telegraph(hc.Cracked.Telegraph),
		PassiveLifetime: hc.Cracked.PassiveLifetime,
		RestoreDelay:    hc.Cracked.RestoreDelay,
		ArmedGlyph:      glyphCrackedArmed,
	}
	g.cracked = spawn.New[*hazard.Hazard](spawnConfig(labelCracked, hc.Cracked.Spawner), g.grid,
		func(c hazards, cell grid.Cell) (*hazard.Hazard, bool) {
			deps := g.hazardDeps(c, core.NewSprite(glyphCracked, core.ColorOrange))
			deps.CrackedTile = hc.Cracked.Tile
			return hazard.New(hazard.KindCrackedTile, cracked, cell, deps), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))

	push := hazard.Config{
		Telegraph: telegraph(hc.Push.Telegraph),
		ActiveFor: hc.Push.Active,
	}
	dirs := g.seeded()
	g.pushes = spawn.New[*hazard.Hazard](spawnConfig(labelPush, hc.Push.Spawner), g.grid,
		func(c hazards, cell grid.Cell) (*hazard.Hazard, bool) {
			deps := g.hazardDeps(c, core.NewSprite(grid.DirUp.Arrow(), core.ColorCyan))
			deps.Direction = grid.Dirs[dirs.Intn(len(grid.Dirs))]
			return hazard.New(hazard.KindPushPad, push, cell, deps), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))

	g.rowSweeps, g.rowTrack = g.sweepCoordinator(labelRowSweep, hazard.SweepRow)
	g.columnSweeps, g.columnTrack = g.sweepCoordinator(labelColumnSweep, hazard.SweepColumn)
}

// sweepCoordinator is a manual coordinator fired by the projectile
// director. Its placer is the sweep track that fires it.
func (g *Game) sweepCoordinator(label string, axis hazard.SweepAxis) (hazards, *projectile.SweepTrack) {
	sc := g.cfg.Hazards.Sweep
	cfg := hazard.Config{
		Telegraph:   hazard.Telegraph{Delay: sc.Telegraph.Delay},
		ActiveFor:   sc.Active,
		MaxLifetime: sc.Lifetime,
		ArmedGlyph:  glyphSweepArmed,
	}
	track := &projectile.SweepTrack{
		Grid:           g.grid,
		AllowedRows:    sc.AllowedRows,
		AllowedColumns: sc.AllowedColumns,
	}
	c := spawn.New[*hazard.Hazard](spawn.Config{Label: label, MaxActive: sweepMaxActive, Manual: true}, g.grid,
		func(c hazards, cell grid.Cell) (*hazard.Hazard, bool) {
			deps := g.hazardDeps(c, core.NewSprite(glyphSweep, core.ColorYellow))
			deps.SweepAxis = axis
			deps.FireLeft = projectile.FiresLeft(cell)
			return hazard.New(hazard.KindRowSweep, cfg, cell, deps), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()), spawn.WithPlacer(track.Place))
	track.Sweeps = c
	return c, track
}

func (g *Game) pickupDeps(owner pickup.Owner, sprite *core.Sprite) pickup.Deps {
	return pickup.Deps{
		Owner:     owner,
		Grid:      g.grid,
		Space:     g.space,
		Scheduler: g.sched,
		Visual:    sprite,
		Wallet:    g.wallet,
	}
}

func (g *Game) buildPickups() {
	pc := g.cfg.Pickups

	heart := pickup.Config{Lifetime: pc.Heart.Lifetime, Flicker: pc.Heart.Flicker, Value: pc.Heart.Value}
	g.hearts = spawn.New[*pickup.Pickup](spawnConfig(labelHeart, pc.Heart.Spawner), g.grid,
		func(c pickups, cell grid.Cell) (*pickup.Pickup, bool) {
			return pickup.New(pickup.KindHeart, heart, cell, g.pickupDeps(c, core.NewSprite(glyphHeart, core.ColorBrightRed))), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))

	coin := pickup.Config{Lifetime: pc.Coin.Lifetime, Flicker: pc.Coin.Flicker, Value: pc.Coin.Value}
	g.coins = spawn.New[*pickup.Pickup](spawnConfig(labelCoin, pc.Coin.Spawner), g.grid,
		func(c pickups, cell grid.Cell) (*pickup.Pickup, bool) {
			return pickup.New(pickup.KindCoin, coin, cell, g.pickupDeps(c, core.NewSprite(glyphCoin, core.ColorBrightYellow))), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))

	angel := pickup.Config{DespawnAfter: pc.Angel.DespawnAfter}
	g.angels = spawn.New[*pickup.Pickup](spawnConfig(labelAngel, pc.Angel.Spawner), g.grid,
		func(c pickups, cell grid.Cell) (*pickup.Pickup, bool) {
			deps := g.pickupDeps(c, core.NewSprite(glyphAngel, core.ColorBrightWhite))
			deps.OnAngel = g.resetArena
			return pickup.New(pickup.KindAngel, angel, cell, deps), true
		},
		spawn.WithLogger(logger), spawn.WithRand(g.seeded()))
}

// resetArena runs the angel reset. The arrow tracks resample the restored
// layout on their next launch.
func (g *Game) resetArena(trigger *pickup.Pickup) {
	g.reset.Execute(trigger)
	for _, a := range g.arrows {
		a.Refresh()
	}
}

func (g *Game) buildProjectiles() {
	pc := g.cfg.Projectiles

	spec := projectile.DefaultSpec()
	if pc.Speed > 0 {
		spec.Speed = pc.Speed
	}
	if pc.Lifetime > 0 {
		spec.MaxLifetime = pc.Lifetime
	}
	if pc.MaxDistance > 0 {
		spec.MaxDistance = pc.MaxDistance
	}
	homing := spec
	homing.Homing = true
	homing.Speed = spec.Speed * homingSpeedFactor
	homing.Glyph = glyphHoming

	g.arrows = nil
	g.registry = projectile.NewRegistry(pc.MaxActive)
	g.field = projectile.NewField(g.registry, g.space)

	tracks := make([]projectile.TrackConfig, 0, len(pc.Tracks))
	for _, tc := range pc.Tracks {
		var track projectile.Track
		switch tc.Kind {
		case config.TrackArrow:
			arrow := &projectile.ArrowTrack{Grid: g.grid, Field: g.field, Spec: spec, Rand: g.seeded()}
			g.arrows = append(g.arrows, arrow)
			track = arrow
		case config.TrackEdgeArrow:
			track = &projectile.EdgeArrowTrack{
				Grid:        g.grid,
				Field:       g.field,
				Spec:        spec,
				Rand:        g.seeded(),
				SpawnRadius: pc.EdgeRadius,
				MinCoord:    pc.EdgeMinCoord,
				MaxCoord:    pc.EdgeMaxCoord,
			}
		case config.TrackHoming:
			track = &projectile.HomingTrack{
				Target: g.player,
				Field:  g.field,
				Spec:   homing,
				Rand:   g.seeded(),
				Circle: true,
				Radius: pc.HomingRadius,
			}
		case config.TrackRowSweep:
			track = g.rowTrack
		case config.TrackColumnSweep:
			track = g.columnTrack
		}
		// An unknown kind leaves Track nil; the director logs and skips it.
		tracks = append(tracks, projectile.TrackConfig{
			Label:        tc.Kind,
			Track:        track,
			Enabled:      tc.Enabled,
			InitialDelay: tc.InitialDelay,
			Interval:     tc.Interval,
		})
	}
	g.director = projectile.NewDirector(g.registry, pc.MaxActive, tracks,
		projectile.WithMultiplier(g.rampMultiplier),
		projectile.WithDirectorLogger(logger))
}
