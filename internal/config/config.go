// Package config provides YAML-based tuning for blockfall: timing, scoring,
// difficulty presets and file locations.
package config

import (
	"time"

	"github.com/vovakirdan/blockfall/internal/engine"
)

// Settings contains every tunable value.
type Settings struct {
	Timing  TimingConfig  `yaml:"timing"`
	Scoring ScoringConfig `yaml:"scoring"`
	Game    GameConfig    `yaml:"game"`
	Paths   PathsConfig   `yaml:"paths"`
}

// TimingConfig defines tick and input timing.
type TimingConfig struct {
	FPS            int `yaml:"fps"`              // Ticks per second
	MoveEvery      int `yaml:"move_every"`       // Ticks between repeated moves while a key is held
	ReleaseAfterMS int `yaml:"release_after_ms"` // Silence after which a key counts as released
}

// ScoringConfig defines points, levels and fall speed.
type ScoringConfig struct {
	Points     []int `yaml:"points"`     // Points by lines cleared at once, index 0 is no lines
	ExtraLine  int   `yaml:"extra_line"` // Points per line beyond the table
	LevelStep  int   `yaml:"level_step"`
	MaxLevel   int   `yaml:"max_level"`
	FallBaseMS int   `yaml:"fall_base_ms"`
	FallStepMS int   `yaml:"fall_step_ms"`
	FallMinMS  int   `yaml:"fall_min_ms"`
}

// GameConfig defines game start options.
type GameConfig struct {
	Difficulty DifficultyPreset `yaml:"difficulty"` // Preselected on the difficulty screen
}

// PathsConfig defines file locations. Relative names live in the data directory.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir"`
	HistoryDB string `yaml:"history_db"`
	Playlist  string `yaml:"playlist"` // File listing music directories, one per line
	LogFile   string `yaml:"log_file"`
}

// ReleaseAfter returns the key release timeout.
func (t TimingConfig) ReleaseAfter() time.Duration {
	return time.Duration(t.ReleaseAfterMS) * time.Millisecond
}

// Engine converts the scoring section into the engine's policy.
func (s ScoringConfig) Engine() engine.Scoring {
	return engine.Scoring{
		Table:     append([]int(nil), s.Points...),
		ExtraLine: s.ExtraLine,
		LevelStep: s.LevelStep,
		MaxLevel:  s.MaxLevel,
		FallBase:  time.Duration(s.FallBaseMS) * time.Millisecond,
		FallStep:  time.Duration(s.FallStepMS) * time.Millisecond,
		FallMin:   time.Duration(s.FallMinMS) * time.Millisecond,
	}
}
