// Package helltiles is the arena game: the player hops between tiles while
// spawners drop telegraphed hazards, pickups and projectiles around them.
// Survival mode is won by outlasting the countdown; endless mode runs until
// the last heart is gone while every spawn interval ramps down.
package helltiles

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/helltiles/internal/config"
	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/pickup"
	"github.com/vovakirdan/helltiles/internal/player"
	"github.com/vovakirdan/helltiles/internal/projectile"
	"github.com/vovakirdan/helltiles/internal/registry"
	"github.com/vovakirdan/helltiles/internal/reset"
	"github.com/vovakirdan/helltiles/internal/schedule"
	"github.com/vovakirdan/helltiles/internal/spawn"
)

// Game states
const (
	StatePlaying  = "playing"
	StatePaused   = "paused"
	StateGameOver = "gameover"
	StateWon      = "won"
)

// GameMode represents the game mode.
type GameMode int

const (
	ModeSurvival GameMode = iota // Outlast the countdown
	ModeEndless                  // Ramp forever, score until game over
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

var logger = log.New(io.Discard)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil || preset == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetLogger sets the logger shared by every arena component.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// CoinSink persists collected coins across runs.
type CoinSink interface {
	AddCoins(n int) (int, error)
}

type hazards = *spawn.Coordinator[*hazard.Hazard]
type pickups = *spawn.Coordinator[*pickup.Pickup]

// scaled remembers the configured interval of a coordinator so the ramp
// always scales from the base rather than from its own output.
type scaled struct {
	target interface{ SetSpawnInterval(time.Duration) }
	base   time.Duration
}

// Game implements the HellTiles arena.
type Game struct {
	mode GameMode

	runtime    core.RuntimeConfig
	cfg        config.HellTilesConfig
	difficulty *config.DifficultyManager
	rng        *rand.Rand

	grid   *grid.Model
	space  *overlap.Space
	sched  *schedule.Scheduler
	player *player.Player

	spikes       hazards
	cracked      hazards
	pushes       hazards
	rowSweeps    hazards
	columnSweeps hazards
	rowTrack     *projectile.SweepTrack
	columnTrack  *projectile.SweepTrack
	hearts       pickups
	coins        pickups
	angels       pickups
	scaled       map[string]*scaled

	registry *projectile.Registry
	field    *projectile.Field
	director *projectile.Director
	arrows   []*projectile.ArrowTrack

	reset  *reset.Protocol
	wallet *runWallet
	sink   CoinSink
	preset config.DifficultyPreset // overrides difficultyPreset when set

	state   string
	ticks   uint64
	elapsed time.Duration

	minScreenW     int
	minScreenH     int
	screenTooSmall bool
}

// New creates a survival arena.
func New() *Game {
	return &Game{mode: ModeSurvival}
}

// NewEndless creates an endless arena.
func NewEndless() *Game {
	return &Game{mode: ModeEndless}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	if g.mode == ModeEndless {
		return "helltiles_endless"
	}
	return "helltiles"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	if g.mode == ModeEndless {
		return "HellTiles (Endless)"
	}
	return "HellTiles"
}

// SetWallet routes collected coins to a persistent wallet. It survives
// Reset.
func (g *Game) SetWallet(s CoinSink) {
	g.sink = s
	if g.wallet != nil {
		g.wallet.sink = s
	}
}

// SetDifficulty picks a preset for this game only, taking effect on the
// next Reset. An empty name falls back to the process-wide preset.
func (g *Game) SetDifficulty(name string) error {
	if name == "" {
		g.preset = ""
		return nil
	}
	p, err := config.ParsePreset(name)
	if err != nil {
		return err
	}
	g.preset = p
	return nil
}

func (g *Game) activePreset() config.DifficultyPreset {
	if g.preset != "" {
		return g.preset
	}
	return difficultyPreset
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, src, err := config.Load(configPath)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", configPath, "err", err)
		cfg = config.DefaultConfig()
		src = config.SourceBuiltin
	}
	if p := g.activePreset(); p != "" {
		config.ApplyPreset(&cfg, p)
	}
	logger.Debug("arena config", "source", src, "mode", g.ID(), "preset", g.activePreset())

	if err := g.build(cfg); err != nil {
		logger.Error("arena layout rejected, using defaults", "err", err)
		cfg.Arena = config.DefaultArena()
		if err := g.build(cfg); err != nil {
			panic(err)
		}
	}

	b := g.grid.Bounds()
	g.minScreenW = b.W*cellW + 2
	g.minScreenH = b.H + 4
	g.screenTooSmall = runtime.ScreenW < g.minScreenW || runtime.ScreenH < g.minScreenH

	g.state = StatePlaying
	g.ticks = 0
	g.elapsed = 0
	g.applyRamp()
}

// Resize follows a terminal resize without restarting the run.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW = w
	g.runtime.ScreenH = h
	g.screenTooSmall = w < g.minScreenW || h < g.minScreenH
}

// Step advances the arena by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.state == StateGameOver || g.state == StateWon {
		if in.Has(core.ActionRestart) {
			g.Reset(g.runtime)
		}
		return core.StepResult{State: g.State()}
	}
	if in.Has(core.ActionPause) {
		if g.state == StatePaused {
			g.state = StatePlaying
		} else {
			g.state = StatePaused
		}
	}
	if g.state == StatePaused || g.screenTooSmall {
		return core.StepResult{State: g.State()}
	}

	dt := g.runtime.TickDuration()
	g.ticks++
	g.elapsed += dt

	g.player.HandleInput(in)
	g.player.Update(dt)
	g.sched.Update(dt)

	g.applyRamp()
	for _, c := range g.hazardCoordinators() {
		c.Update(dt)
	}
	for _, c := range g.pickupCoordinators() {
		c.Update(dt)
	}

	g.director.Update(dt)
	g.field.Update(dt)

	g.space.Step()
	g.field.Compact()

	g.grid.Update(dt)
	g.reset.Update(dt)

	switch {
	case g.player.Dead():
		g.state = StateGameOver
		g.director.Stop()
		logger.Debug("run over", "survived", g.elapsed, "hits", g.player.Hits())
	case g.mode == ModeSurvival && g.cfg.Mode.Countdown > 0 && g.elapsed >= g.cfg.Mode.Countdown:
		g.state = StateWon
		g.director.Stop()
		logger.Debug("run won", "survived", g.elapsed)
	}

	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	s := core.GameState{
		Score:    int(g.elapsed / time.Second),
		GameOver: g.state == StateGameOver || g.state == StateWon,
		Paused:   g.state == StatePaused,
	}
	if g.wallet != nil {
		s.Coins = g.wallet.coins
	}
	if g.player != nil {
		s.Hits = g.player.Hits()
	}
	return s
}

// Won reports whether the countdown ran out with the player alive.
func (g *Game) Won() bool { return g.state == StateWon }

// Survived is the simulated time of the current run.
func (g *Game) Survived() time.Duration { return g.elapsed }

// Seed is the seed the run was started with.
func (g *Game) Seed() int64 { return g.runtime.Seed }

// Difficulty names the active preset, or "" when none was chosen.
func (g *Game) Difficulty() string { return string(g.activePreset()) }

// Remaining is the countdown left in survival mode.
func (g *Game) Remaining() time.Duration {
	if g.mode != ModeSurvival || g.cfg.Mode.Countdown <= 0 {
		return 0
	}
	return max(g.cfg.Mode.Countdown-g.elapsed, 0)
}

// ApplyConfig takes spawn intervals, the projectile cap and the difficulty
// ramp from a reloaded config without restarting the run. The arena layout
// and the hazard timings apply from the next Reset.
func (g *Game) ApplyConfig(cfg config.HellTilesConfig) {
	if g.grid == nil {
		return
	}
	if p := g.activePreset(); p != "" {
		config.ApplyPreset(&cfg, p)
	}
	for label, s := range spawnerIntervals(cfg) {
		if sc, ok := g.scaled[label]; ok {
			sc.base = s
		}
	}
	g.registry.SetCap(cfg.Projectiles.MaxActive)
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
	g.cfg.Pickups = cfg.Pickups
	g.cfg.Hazards.Spike.Spawner = cfg.Hazards.Spike.Spawner
	g.cfg.Hazards.Cracked.Spawner = cfg.Hazards.Cracked.Spawner
	g.cfg.Hazards.Push.Spawner = cfg.Hazards.Push.Spawner
	g.cfg.Difficulty = cfg.Difficulty
	g.cfg.Projectiles.MaxActive = cfg.Projectiles.MaxActive
	g.applyRamp()
	logger.Info("config applied", "mode", g.ID())
}

// rampElapsed is the time the difficulty ramp sees. Survival holds the
// preset's starting level for the whole run.
func (g *Game) rampElapsed(elapsed time.Duration) time.Duration {
	if g.mode == ModeEndless {
		return elapsed
	}
	return 0
}

func (g *Game) rampMultiplier(elapsed time.Duration) float64 {
	return g.difficulty.Multiplier(g.rampElapsed(elapsed))
}

// applyRamp rescales every coordinator interval from its configured base.
func (g *Game) applyRamp() {
	at := g.rampElapsed(g.elapsed)
	for _, s := range g.scaled {
		s.target.SetSpawnInterval(g.difficulty.Interval(s.base, at))
	}
}

func (g *Game) hazardCoordinators() []hazards {
	return []hazards{g.spikes, g.cracked, g.pushes, g.rowSweeps, g.columnSweeps}
}

func (g *Game) pickupCoordinators() []pickups {
	return []pickups{g.hearts, g.coins, g.angels}
}

func init() {
	registry.Register("helltiles", func() registry.Game {
		return New()
	})
	registry.Register("helltiles_endless", func() registry.Game {
		return NewEndless()
	})
}
