package config

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/blockfall/internal/engine"
)

// DifficultyPreset names a starting number of block types.
// A bare number between MinBlockTypes and MaxBlockTypes is accepted too.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyExpert DifficultyPreset = "expert"
)

// BlockTypes returns the block-type count for a preset.
func (p DifficultyPreset) BlockTypes() (int, error) {
	switch p {
	case "", DifficultyEasy:
		return engine.MinBlockTypes, nil
	case DifficultyNormal:
		return engine.MinBlockTypes + 1, nil
	case DifficultyHard:
		return engine.MinBlockTypes + 2, nil
	case DifficultyExpert:
		return engine.MaxBlockTypes, nil
	}

	n, err := strconv.Atoi(string(p))
	if err != nil || n < engine.MinBlockTypes || n > engine.MaxBlockTypes {
		return 0, fmt.Errorf("unknown difficulty %q (want easy, normal, hard, expert or %d..%d)",
			p, engine.MinBlockTypes, engine.MaxBlockTypes)
	}
	return n, nil
}
