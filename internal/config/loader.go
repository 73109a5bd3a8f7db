package config

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/helltiles/internal/grid"
)

// FileName is the config file looked up in the search directories.
const FileName = "helltiles.yaml"

// Source names where a configuration came from.
type Source string

const (
	SourceCustom   Source = "custom"
	SourceUser     Source = "user"
	SourceLocal    Source = "local"
	SourceEmbedded Source = "embedded"
	SourceBuiltin  Source = "builtin"
)

// Parse decodes a document on top of DefaultConfig, so a file only needs
// the keys it changes. The result is validated.
func Parse(data []byte) (HellTilesConfig, error) {
	cfg := DefaultConfig()
	cfg.Arena.Rows = nil
	cfg.Arena.Legend = nil
	cfg.Projectiles.Tracks = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: cannot parse: %w", err)
	}
	def := DefaultConfig()
	if len(cfg.Arena.Rows) == 0 {
		cfg.Arena = def.Arena
	}
	if cfg.Projectiles.Tracks == nil {
		cfg.Projectiles.Tracks = def.Projectiles.Tracks
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load loads the arena configuration.
// Search order: customPath -> ~/.helltiles/configs/helltiles.yaml ->
// ./configs/helltiles.yaml -> embedded default -> DefaultConfig.
// A custom path that cannot be read or parsed is an error; the other
// locations are skipped when unusable.
func Load(customPath string) (HellTilesConfig, Source, error) {
	if customPath != "" {
		cfg, err := LoadFile(customPath)
		if err != nil {
			return cfg, SourceCustom, err
		}
		return cfg, SourceCustom, nil
	}

	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if cfg, err := LoadFile(userCfgPath); err == nil {
			return cfg, SourceUser, nil
		}
	}

	if cfg, err := LoadFile(filepath.Join("configs", FileName)); err == nil {
		return cfg, SourceLocal, nil
	}

	cfg, err := Parse(defaultHellTilesYAML)
	if err != nil {
		return DefaultConfig(), SourceBuiltin, nil
	}
	return cfg, SourceEmbedded, nil
}

// LoadFile reads and parses one config file.
func LoadFile(path string) (HellTilesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HellTilesConfig{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.ArenaFile == "" {
		return cfg, nil
	}

	arenaPath := cfg.ArenaFile
	if !filepath.IsAbs(arenaPath) {
		arenaPath = filepath.Join(filepath.Dir(path), arenaPath)
	}
	if cfg.Arena, err = loadArena(arenaPath); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func loadArena(path string) (grid.LayoutSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.LayoutSpec{}, fmt.Errorf("arena_file: %w", err)
	}
	return grid.ParseLayoutYAML(data)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".helltiles", "configs", filename)
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *HellTilesConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
		cfg.Difficulty.InitialLevel = 0
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust gameplay based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Player.Hearts = 5
		cfg.Projectiles.MaxActive = min(cfg.Projectiles.MaxActive, 20)
	case DifficultyHard:
		cfg.Player.Hearts = 2
		cfg.Projectiles.Speed *= 1.25
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.SortedFunc(maps.Keys(m), cmp.Compare[string])
}

// UserPath is where the per-user config lives, or "" without a home
// directory.
func UserPath() string {
	return userConfigPath(FileName)
}
