package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/helltiles/internal/registry"
	"github.com/vovakirdan/helltiles/internal/storage"
)

var (
	flagLimit  int
	flagClear  bool
	flagRecent bool
	flagRunID  string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show the longest runs of a mode",
	Long: `Display the longest runs and the totals for a mode.
Survival runs that outlasted the countdown are marked with *.

--recent lists the latest runs of every mode with their ids. --run shows
one run in full, including the seed that replays it.

Examples:
  helltiles scores
  helltiles scores helltiles_endless --limit 20
  helltiles scores helltiles --clear
  helltiles scores --recent
  helltiles scores --run 6f1c...`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every run of the mode")
	scoresCmd.Flags().BoolVar(&flagRecent, "recent", false, "List the latest runs of every mode")
	scoresCmd.Flags().StringVar(&flagRunID, "run", "", "Show one run by id")
	scoresCmd.MarkFlagsMutuallyExclusive("recent", "run", "clear")
}

func runScores(cmd *cobra.Command, args []string) {
	if flagRecent || flagRunID != "" {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if flagRunID != "" {
			showRun(store, flagRunID)
			return
		}
		showRecent(store, flagLimit)
		return
	}

	mode := "helltiles"
	if len(args) == 1 {
		mode = args[0]
	}

	if !registry.Exists(mode) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", mode)
		fmt.Fprintln(os.Stderr, "Run 'helltiles list' to see available modes.")
		os.Exit(1)
	}
	game, err := registry.Create(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(mode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("Cleared runs for %s\n", game.Title())
		return
	}

	runs, err := store.TopRuns(mode, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		return
	}

	fmt.Printf("Longest Runs - %s\n", game.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'helltiles play %s' to set the first record!\n", mode)
		return
	}

	fmt.Printf("  %-4s  %-9s  %-5s  %-4s  %-7s  %s\n", "Rank", "Survived", "Coins", "Hits", "Level", "Date")
	fmt.Printf("  %-4s  %-9s  %-5s  %-4s  %-7s  %s\n", "----", "--------", "-----", "----", "-----", "----")
	for i, r := range runs {
		fmt.Printf("  %-4d  %-9s  %-5d  %-4d  %-7s  %s\n",
			i+1, survivedLabel(r), r.Coins, r.Hits, levelLabel(r), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := store.Stats(mode); err == nil {
		fmt.Printf("Runs: %d  Wins: %d  Best: %.1fs  Average: %.1fs  Coins: %d\n",
			stats.Runs, stats.Wins, stats.BestSurvival.Seconds(), stats.AvgSurvival.Seconds(), stats.TotalCoins)
	}
}

func showRecent(store *storage.Store, limit int) {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		return
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	fmt.Printf("  %-18s  %-9s  %-5s  %-7s  %-16s  %s\n", "Mode", "Survived", "Coins", "Level", "Date", "ID")
	for _, r := range runs {
		fmt.Printf("  %-18s  %-9s  %-5d  %-7s  %-16s  %s\n",
			r.Mode, survivedLabel(r), r.Coins, levelLabel(r), r.CreatedAt.Format("2006-01-02 15:04"), r.ID)
	}
}

func showRun(store *storage.Store, id string) {
	r, err := store.RunByID(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving run: %v\n", err)
		os.Exit(1)
	}
	if r == nil {
		fmt.Fprintf(os.Stderr, "Error: no run with id %q\n", id)
		os.Exit(1)
	}

	fmt.Printf("Run %s\n\n", r.ID)
	fmt.Printf("  Mode:      %s\n", r.Mode)
	fmt.Printf("  Level:     %s\n", levelLabel(*r))
	fmt.Printf("  Survived:  %s\n", survivedLabel(*r))
	fmt.Printf("  Coins:     %d\n", r.Coins)
	fmt.Printf("  Hits:      %d\n", r.Hits)
	fmt.Printf("  Seed:      %d\n", r.Seed)
	fmt.Printf("  Date:      %s\n", r.CreatedAt.Format("2006-01-02 15:04"))

	replay := fmt.Sprintf("helltiles play %s --seed %d", r.Mode, r.Seed)
	if r.Difficulty != "" {
		replay += " --difficulty " + r.Difficulty
	}
	fmt.Printf("\nReplay with: %s\n", replay)
}

func survivedLabel(r storage.Run) string {
	s := fmt.Sprintf("%.1fs", r.Survived.Seconds())
	if r.Won {
		s += "*"
	}
	return s
}

func levelLabel(r storage.Run) string {
	if r.Difficulty == "" {
		return "-"
	}
	return r.Difficulty
}
