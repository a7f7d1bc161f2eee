package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads the tuning settings.
// Search order: customPath -> ~/.blockfall/blockfall.yaml -> ./configs/blockfall.yaml -> embedded default
// Files are layered over the defaults, so a partial file only overrides what it names.
func Load(customPath string) (Settings, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultSettings(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return DefaultSettings(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("blockfall.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/blockfall.yaml"); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultYAML)
	if err != nil {
		return DefaultSettings(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parse(data []byte) (Settings, error) {
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultSettings(), err
	}
	if err := cfg.Validate(); err != nil {
		return DefaultSettings(), err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (s Settings) Validate() error {
	if s.Timing.FPS <= 0 {
		return fmt.Errorf("timing.fps must be positive, got %d", s.Timing.FPS)
	}
	if s.Timing.MoveEvery <= 0 {
		return fmt.Errorf("timing.move_every must be positive, got %d", s.Timing.MoveEvery)
	}
	if s.Timing.ReleaseAfterMS <= 0 {
		return fmt.Errorf("timing.release_after_ms must be positive, got %d", s.Timing.ReleaseAfterMS)
	}
	if len(s.Scoring.Points) == 0 {
		return fmt.Errorf("scoring.points must not be empty")
	}
	for i := 1; i < len(s.Scoring.Points); i++ {
		if s.Scoring.Points[i] < s.Scoring.Points[i-1] {
			return fmt.Errorf("scoring.points must be non-decreasing at index %d", i)
		}
	}
	if s.Scoring.ExtraLine < 0 || s.Scoring.LevelStep <= 0 || s.Scoring.MaxLevel <= 0 {
		return fmt.Errorf("scoring: extra_line, level_step and max_level must be positive")
	}
	if s.Scoring.FallMinMS <= 0 || s.Scoring.FallBaseMS < s.Scoring.FallMinMS {
		return fmt.Errorf("scoring: fall_min_ms must be positive and at most fall_base_ms")
	}
	if _, err := s.Game.Difficulty.BlockTypes(); err != nil {
		return fmt.Errorf("game.difficulty: %w", err)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockfall", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Resolve returns name inside dir unless name is already absolute.
func Resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	name = ExpandHome(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ExpandHome(dir), name)
}
