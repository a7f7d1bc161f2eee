package engine

import "time"

// Scoring holds the score, level and fall-speed policy.
type Scoring struct {
	Table     []int // Points by lines cleared at once; index 0 is no lines
	ExtraLine int   // Points per line beyond the table
	LevelStep int   // Score needed per level
	MaxLevel  int

	FallBase time.Duration
	FallStep time.Duration // Subtracted per level
	FallMin  time.Duration
}

// DefaultScoring returns the stock policy.
func DefaultScoring() Scoring {
	return Scoring{
		Table:     []int{0, 10, 30, 60, 100},
		ExtraLine: 40,
		LevelStep: 100,
		MaxLevel:  99,
		FallBase:  800 * time.Millisecond,
		FallStep:  100 * time.Millisecond,
		FallMin:   100 * time.Millisecond,
	}
}

// Points returns the score for clearing lines rows in one collapse.
func (s Scoring) Points(lines int) int {
	if lines <= 0 || len(s.Table) == 0 {
		return 0
	}
	last := len(s.Table) - 1
	if lines <= last {
		return s.Table[lines]
	}
	return s.Table[last] + (lines-last)*s.ExtraLine
}

// LevelFor derives the level from a score.
func (s Scoring) LevelFor(score int) int {
	step := s.LevelStep
	if step <= 0 {
		step = 100
	}
	level := 1 + score/step
	if s.MaxLevel > 0 && level > s.MaxLevel {
		level = s.MaxLevel
	}
	return level
}

// FallDelay is the time between automatic falls at a level.
func (s Scoring) FallDelay(level int) time.Duration {
	d := s.FallBase - time.Duration(level)*s.FallStep
	if d < s.FallMin {
		return s.FallMin
	}
	return d
}
