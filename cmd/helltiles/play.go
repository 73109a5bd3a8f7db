package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/helltiles/internal/config"
	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/games/helltiles"
	"github.com/vovakirdan/helltiles/internal/platform/tui"
	"github.com/vovakirdan/helltiles/internal/registry"
	"github.com/vovakirdan/helltiles/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagWatch      bool
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start a run in the given mode (helltiles or helltiles_endless).

Controls:
  Arrows/WASD/HJKL - Hop one tile
  P/Esc            - Pause
  R                - Restart (after the run ends)
  Ctrl+S           - Screenshot to ~/.helltiles/screenshots
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - More hearts, fewer arrows
  normal - Starts 20% up the ramp
  hard   - Starts halfway up the ramp, fewer hearts, faster arrows
  fixed  - No ramp, stays at the config's initial level

With --watch the config file is reloaded while you play; spawn intervals,
the arrow cap and the ramp change at once, the layout on the next run.

Examples:
  helltiles play
  helltiles play helltiles_endless --difficulty hard
  helltiles play --config ./my-arena.yaml --watch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom arena config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the config file when it changes")
}

// applyGameFlags hands --config and --difficulty to the arena package.
func applyGameFlags() error {
	if _, err := config.ParsePreset(flagDifficulty); err != nil {
		return err
	}
	helltiles.SetConfigPath(flagConfig)
	helltiles.SetDifficultyPreset(flagDifficulty)
	return nil
}

// terminalConfig builds the runtime config from the terminal size.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the runs database. Runs still play without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}

// startWatcher follows the config file in use, or the user config when no
// --config was given.
func startWatcher() *config.Watcher {
	if !flagWatch {
		return nil
	}
	path := flagConfig
	if path == "" {
		path = config.UserPath()
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Warning: no config file to watch")
		return nil
	}
	w, err := config.Watch(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}
	return w
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := "helltiles"
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'helltiles list' to see available modes.")
		os.Exit(1)
	}
	if err := applyGameFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	watcher := startWatcher()

	runErr := tui.Run(game, store, terminalConfig(), watcher)

	if watcher != nil {
		watcher.Close()
	}
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
