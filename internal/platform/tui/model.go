package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/helltiles/internal/config"
	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/games/helltiles"
	"github.com/vovakirdan/helltiles/internal/registry"
	"github.com/vovakirdan/helltiles/internal/storage"
)

var logger = log.New(io.Discard)

// SetLogger sets the logger used for run bookkeeping and config reloads.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// arenaRun exposes what a finished run records beyond core.GameState.
type arenaRun interface {
	Won() bool
	Survived() time.Duration
	Seed() int64
	Difficulty() string
}

type walletHolder interface {
	SetWallet(helltiles.CoinSink)
}

type reconfigurable interface {
	ApplyConfig(config.HellTilesConfig)
}

type resizable interface {
	Resize(w, h int)
}

// ReloadMsg carries a config file change into the program.
type ReloadMsg config.Reload

// waitForReload blocks on the watcher's next reload. It returns nil when
// there is no watcher so the program never waits on it.
func waitForReload(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-w.Reloads
		if !ok {
			return nil
		}
		return ReloadMsg(r)
	}
}

// attachWallet hands the store to games that collect coins.
func attachWallet(game registry.Game, store *storage.Store) {
	if store == nil {
		return
	}
	if wh, ok := game.(walletHolder); ok {
		wh.SetWallet(store)
	}
}

// recordRun saves a finished run. Saving is best effort.
func recordRun(store *storage.Store, game registry.Game, st core.GameState) {
	if store == nil {
		return
	}
	r := storage.Run{
		Mode:     game.ID(),
		Survived: time.Duration(st.Score) * time.Second,
		Coins:    st.Coins,
		Hits:     st.Hits,
	}
	if a, ok := game.(arenaRun); ok {
		r.Survived = a.Survived()
		r.Won = a.Won()
		r.Seed = a.Seed()
		r.Difficulty = a.Difficulty()
	}
	if r.Survived <= 0 {
		return
	}
	id, err := store.SaveRun(r)
	if err != nil {
		logger.Warn("run not saved", "mode", r.Mode, "err", err)
		return
	}
	logger.Debug("run saved", "id", id, "mode", r.Mode, "survived", r.Survived, "won", r.Won)
}

// applyReload pushes a reloaded config into a running game.
func applyReload(game registry.Game, r ReloadMsg) {
	if r.Err != nil {
		logger.Warn("config reload rejected", "path", r.Path, "err", r.Err)
		return
	}
	if rc, ok := game.(reconfigurable); ok {
		rc.ApplyConfig(r.Config)
		logger.Info("config reloaded", "path", r.Path)
	}
}

// resizeGame follows a terminal resize, restarting only games that cannot
// adapt in place.
func resizeGame(game registry.Game, cfg core.RuntimeConfig, over bool) {
	if rg, ok := game.(resizable); ok {
		rg.Resize(cfg.ScreenW, cfg.ScreenH)
		return
	}
	if !over {
		game.Reset(cfg)
	}
}

// Model is the Bubble Tea model for running a single arena.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	watcher    *config.Watcher
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	keyMapper  *KeyMapper
	gameState  core.GameState
	quitting   bool
	runSaved   bool // Whether the current run has been recorded
}

// NewModel creates a new Bubble Tea model for the given game. watcher may
// be nil.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, watcher *config.Watcher) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	attachWallet(game, store)

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		watcher:    watcher,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tea.Batch(tickCmd(m.config.TickRate), waitForReload(m.watcher))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		resizeGame(m.game, m.config, m.gameState.GameOver)
		return m, nil

	case ReloadMsg:
		applyReload(m.game, msg)
		return m, waitForReload(m.watcher)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}
	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if action == core.ActionRestart && !m.gameState.GameOver {
		return m, nil
	}
	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.runSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver && !m.runSaved {
		recordRun(m.store, m.game, m.gameState)
		m.runSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".helltiles", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("screenshot dir", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		logger.Warn("screenshot not saved", "path", path, "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program for one game. watcher may be nil.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, watcher *config.Watcher) error {
	model := NewModel(game, store, cfg, watcher)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
