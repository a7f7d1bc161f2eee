package config

import (
	_ "embed"
)

//go:embed defaults/blockfall.yaml
var defaultYAML []byte

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Timing: TimingConfig{
			FPS:            60,
			MoveEvery:      3,
			ReleaseAfterMS: 100,
		},
		Scoring: ScoringConfig{
			Points:     []int{0, 10, 30, 60, 100},
			ExtraLine:  40,
			LevelStep:  100,
			MaxLevel:   99,
			FallBaseMS: 800,
			FallStepMS: 100,
			FallMinMS:  100,
		},
		Game: GameConfig{
			Difficulty: DifficultyEasy,
		},
		Paths: PathsConfig{
			DataDir:   "~/.blockfall",
			HistoryDB: "history.db",
			LogFile:   "blockfall.log",
		},
	}
}
