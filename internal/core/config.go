package core

// RuntimeConfig is passed to games when they start.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Platform ticks per second
	Seed     int64 // RNG seed; 0 means time based in the platform layer
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is what a game reports to the platform after each tick.
type GameState struct {
	Score    int  // Current or final score
	GameOver bool // Whether the episode has ended
	Paused   bool // Whether the game is paused
}

// StepResult is returned by Game.Step().
type StepResult struct {
	State GameState
}

// EpisodeSummary describes a finished episode for persistence.
type EpisodeSummary struct {
	Seed       int64
	Score      int
	DrainSteps int
	Eaten      int
	Leftover   int
	Placed     int
	Turns      int
}
