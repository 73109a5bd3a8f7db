package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/helltiles/internal/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print, install or check arena configs",
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the default config",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		os.Stdout.Write(config.DefaultYAML())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ~/.helltiles/configs",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: ok (%dx%d arena, %d tracks)\n",
			args[0], len([]rune(cfg.Arena.Rows[0])), len(cfg.Arena.Rows), len(cfg.Projectiles.Tracks))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configPrintCmd, configInitCmd, configCheckCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := config.UserPath()
	if path == "" {
		return errors.New("no home directory")
	}
	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("%s already exists (use --force)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, config.DefaultYAML(), 0o600); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}
