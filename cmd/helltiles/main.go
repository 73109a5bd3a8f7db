// helltiles is a terminal arena game: hop between tiles and outlast the
// hazards, sweeps and arrows the arena throws at you.
//
// Usage:
//
//	helltiles list              - List the game modes
//	helltiles play [mode]       - Play a mode (default: helltiles)
//	helltiles menu              - Pick mode and difficulty interactively
//	helltiles serve             - Start SSH server for remote play
//	helltiles scores [mode]     - Show the longest runs
//	helltiles wallet            - Show or reset the coin wallet
//	helltiles config            - Print or install the default config
//
// Global flags:
//
//	--fps <rate>       - Set tick rate (default: 30)
//	--seed <value>     - Set RNG seed for reproducible runs
//	--db <path>        - Set database path (default: ~/.helltiles/runs.db)
//	--log-file <path>  - Write logs to a file
//	--debug            - Log at debug level
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/helltiles/internal/games/helltiles"
	"github.com/vovakirdan/helltiles/internal/platform/tui"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagLogFile string
	flagDebug   bool

	logFile io.Closer
)

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "helltiles",
	Short: "HellTiles - survive the arena in your terminal",
	Long: `HellTiles is a terminal arena game. Hop between tiles while spikes,
cracked floor, push pads, sweeps and arrows try to take your hearts.

Available commands:
  list     - Show the game modes
  play     - Play a mode directly
  menu     - Interactive mode and difficulty picker
  serve    - Start SSH server for remote play
  scores   - View the longest runs
  wallet   - Show or reset the coin wallet
  config   - Print or install the default config

Examples:
  helltiles play
  helltiles play helltiles_endless --difficulty hard
  helltiles menu
  helltiles serve --ssh :2222
  helltiles scores helltiles_endless`,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.helltiles/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log at debug level")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogging routes game and TUI logs to --log-file. The terminal is
// owned by the game, so without a file logs are dropped.
func setupLogging(_ *cobra.Command, _ []string) error {
	if flagLogFile == "" {
		return nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "helltiles",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	helltiles.SetLogger(logger)
	tui.SetLogger(logger)
	return nil
}
