package core

// RuntimeConfig contains configuration passed to the game at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second
	Seed     int64 // Seed for the entropy pool's initial fill; 0 means time based
	Debug    bool  // Show diagnostic overlays
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// GameState is the coarse status the platform needs after each tick.
type GameState struct {
	Score    int  // Current score
	GameOver bool // Game over, including name selection/entry
	Paused   bool // Game is paused
	Quit     bool // The game asked the platform to stop
}

// StepResult is returned by Step after each simulation tick.
type StepResult struct {
	State GameState
}
