package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/helltiles/internal/grid"
)

func TestEmbeddedDefaultsMatchBuiltin(t *testing.T) {
	got, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	want := DefaultConfig()

	if got.Player != want.Player {
		t.Errorf("player = %+v\nexpected %+v", got.Player, want.Player)
	}
	if got.Hazards.Spike != want.Hazards.Spike {
		t.Errorf("spike = %+v", got.Hazards.Spike)
	}
	if got.Hazards.Cracked != want.Hazards.Cracked {
		t.Errorf("cracked = %+v", got.Hazards.Cracked)
	}
	if got.Hazards.Push != want.Hazards.Push {
		t.Errorf("push = %+v", got.Hazards.Push)
	}
	if got.Pickups != want.Pickups {
		t.Errorf("pickups = %+v", got.Pickups)
	}
	if got.Difficulty != want.Difficulty || got.Mode != want.Mode {
		t.Errorf("difficulty = %+v mode = %+v", got.Difficulty, got.Mode)
	}
	if len(got.Projectiles.Tracks) != len(want.Projectiles.Tracks) {
		t.Fatalf("tracks = %d", len(got.Projectiles.Tracks))
	}
	for i := range want.Projectiles.Tracks {
		if got.Projectiles.Tracks[i] != want.Projectiles.Tracks[i] {
			t.Errorf("track %d = %+v", i, got.Projectiles.Tracks[i])
		}
	}

	m, err := got.Arena.Build()
	if err != nil {
		t.Fatalf("arena: %v", err)
	}
	if b := m.Bounds(); b.W != 12 || b.H != 8 || b.Min != grid.C(-6, -4) {
		t.Errorf("arena bounds = %+v", b)
	}
}

func TestBuiltinValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte("player:\n  hearts: 6\nhazards:\n  spike:\n    active: 2s\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Player.Hearts != 6 || cfg.Hazards.Spike.Active != 2*time.Second {
		t.Error("overrides not applied")
	}
	if cfg.Player.Hop != 180*time.Millisecond || cfg.Hazards.Spike.Spawner.Interval != 12*time.Second {
		t.Error("missing keys should keep their defaults")
	}
	if len(cfg.Arena.Rows) != 8 || len(cfg.Projectiles.Tracks) != 5 {
		t.Error("arena and tracks should fall back to the defaults")
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Player.Hearts = 0
	cfg.Pickups.Angel.Spawner.IntervalMax = time.Second
	cfg.Projectiles.Tracks = append(cfg.Projectiles.Tracks, TrackConfig{Kind: "laser"})
	cfg.Arena.Rows = []string{"##", "###"}

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, grid.ErrInvalidLayout) {
		t.Fatalf("Validate() = %v", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 4 {
		t.Errorf("expected four joined errors, got %v", err)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	if _, err := Parse([]byte("player: [1, 2")); err == nil {
		t.Error("malformed YAML should fail")
	}
	if _, err := Parse([]byte("player:\n  hop: soon\n")); err == nil {
		t.Error("bad duration should fail")
	}
}

func TestLoadSearchOrder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	_, src, err := Load("")
	if err != nil || src != SourceEmbedded {
		t.Fatalf("Load() source = %s err = %v, expected embedded", src, err)
	}

	if err := os.MkdirAll("configs", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("configs", FileName), []byte("player:\n  hearts: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, src, _ := Load("")
	if src != SourceLocal || cfg.Player.Hearts != 4 {
		t.Errorf("source = %s hearts = %d, expected local", src, cfg.Player.Hearts)
	}

	user := filepath.Join(dir, ".helltiles", "configs")
	if err := os.MkdirAll(user, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(user, FileName), []byte("player:\n  hearts: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, src, _ = Load("")
	if src != SourceUser || cfg.Player.Hearts != 5 {
		t.Errorf("source = %s hearts = %d, expected user", src, cfg.Player.Hearts)
	}

	custom := filepath.Join(dir, "mine.yaml")
	if err := os.WriteFile(custom, []byte("player:\n  hearts: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, src, err = Load(custom)
	if err != nil || src != SourceCustom || cfg.Player.Hearts != 9 {
		t.Errorf("custom load: source = %s hearts = %d err = %v", src, cfg.Player.Hearts, err)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing custom file must be an error")
	}
}

func TestPresets(t *testing.T) {
	for _, tc := range []struct {
		name    string
		preset  DifficultyPreset
		enabled bool
		level   float64
		hearts  int
	}{
		{"easy", DifficultyEasy, true, 0, 5},
		{"normal", DifficultyNormal, true, 0.2, 3},
		{"hard", DifficultyHard, true, 0.5, 2},
		{"fixed", DifficultyFixed, false, 0, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePreset(tc.name)
			if err != nil || p != tc.preset {
				t.Fatalf("ParsePreset(%q) = %q, %v", tc.name, p, err)
			}
			cfg := DefaultConfig()
			ApplyPreset(&cfg, p)
			if cfg.Difficulty.Enabled != tc.enabled || cfg.Difficulty.InitialLevel != tc.level || cfg.Player.Hearts != tc.hearts {
				t.Errorf("difficulty = %+v hearts = %d", cfg.Difficulty, cfg.Player.Hearts)
			}
		})
	}
	if _, err := ParsePreset("nightmare"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParsePreset(nightmare) err = %v", err)
	}
}

func TestDifficultyRamp(t *testing.T) {
	d := NewDifficultyManager(DefaultConfig().Difficulty)

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 1},
		{60 * time.Second, 0.75},
		{120 * time.Second, 0.5},
		{10 * time.Minute, 0.5},
	}
	for _, tc := range tests {
		if got := d.Multiplier(tc.elapsed); got != tc.want {
			t.Errorf("Multiplier(%v) = %v, expected %v", tc.elapsed, got, tc.want)
		}
	}
	if got := d.Interval(12*time.Second, 120*time.Second); got != 6*time.Second {
		t.Errorf("Interval() = %v, expected 6s", got)
	}

	cfg := DefaultConfig().Difficulty
	cfg.InitialLevel = 0.5
	if got := NewDifficultyManager(cfg).Multiplier(0); got != 0.75 {
		t.Errorf("Multiplier(0) at level 0.5 = %v", got)
	}
	cfg.Enabled = false
	if got := NewDifficultyManager(cfg).Multiplier(time.Hour); got != 0.75 {
		t.Errorf("disabled ramp should hold its initial level, got %v", got)
	}
}

func TestLoadFileArenaFile(t *testing.T) {
	dir := t.TempDir()
	layout := "cell_size: 1\nlegend: {'.': floor}\nrows:\n  - \"....\"\n  - \"....\"\n  - \"....\"\n"
	if err := os.MkdirAll(filepath.Join(dir, "arenas"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "arenas", "small.yaml"), []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("arena_file: arenas/small.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	m, err := cfg.Arena.Build()
	if err != nil {
		t.Fatal(err)
	}
	if b := m.Bounds(); b.W != 4 || b.H != 3 {
		t.Errorf("bounds = %+v, expected the 4x3 arena file", b)
	}

	if err := os.WriteFile(path, []byte("arena_file: missing.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("a missing arena file must be an error")
	}
}

func TestIntervalFloor(t *testing.T) {
	d := NewDifficultyManager(DifficultyConfig{Enabled: true, Ramp: RampConfig{StartMultiplier: 1, EndMultiplier: 0.001}})
	if got := d.Interval(time.Second, 0); got != MinInterval {
		t.Errorf("Interval() = %v, expected the floor", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("player:\n  hearts: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("player:\n  hearts: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-w.Reloads:
			if r.Err == nil && r.Config.Player.Hearts == 7 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("player:\n  hearts: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-w.Reloads:
		if !errors.Is(r.Err, ErrInvalidConfig) {
			t.Errorf("Err = %v, expected a validation error", r.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
	if err := w.Close(); err != nil {
		t.Error(err)
	}
	if _, ok := <-w.Reloads; ok {
		t.Error("Reloads should be closed")
	}
}
