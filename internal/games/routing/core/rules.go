package core

import "fmt"

// MaskMode selects how the edit mask is rebuilt.
type MaskMode uint8

const (
	MaskFull     MaskMode = iota // every cell editable
	MaskOccupied                 // only occupied cells
	MaskAdjacent                 // cells around the last placed piece
)

func (m MaskMode) String() string {
	switch m {
	case MaskFull:
		return "full"
	case MaskOccupied:
		return "occupied"
	case MaskAdjacent:
		return "adjacent"
	default:
		return "unknown"
	}
}

// ParseMaskMode parses a mask mode name.
func ParseMaskMode(s string) (MaskMode, error) {
	switch s {
	case "full", "":
		return MaskFull, nil
	case "occupied":
		return MaskOccupied, nil
	case "adjacent":
		return MaskAdjacent, nil
	default:
		return MaskFull, fmt.Errorf("unknown mask mode %q", s)
	}
}

// ExitMode selects when the exit cell is cleared during a tick.
type ExitMode uint8

const (
	// ExitBeforeMove removes a piece sitting on the exit before movement.
	// The piece stays visible at the exit for one observation.
	ExitBeforeMove ExitMode = iota
	// ExitAfterMove removes a piece that arrives at the exit in the same tick.
	ExitAfterMove
)

func (m ExitMode) String() string {
	if m == ExitAfterMove {
		return "after"
	}
	return "before"
}

// ParseExitMode parses "before" or "after".
func ParseExitMode(s string) (ExitMode, error) {
	switch s {
	case "before", "":
		return ExitBeforeMove, nil
	case "after":
		return ExitAfterMove, nil
	default:
		return ExitBeforeMove, fmt.Errorf("unknown exit mode %q", s)
	}
}

// Weights are the score multipliers for collisions and stranded pieces.
type Weights struct {
	Collision int `json:"collision"`
	Leftover  int `json:"leftover"`
}

// Rules holds every parameter of an episode.
type Rules struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Exit   Coord `json:"exit"`

	InitialPieces     int `json:"initial_pieces"`     // placed during init
	ExtraPieces       int `json:"extra_pieces"`       // placer budget, one per turn
	PlacementAttempts int `json:"placement_attempts"` // random placer retry budget
	DrainCeiling      int `json:"drain_ceiling"`

	Weights Weights `json:"weights"`

	AllowNone        bool     `json:"allow_none"`
	RandomDirections bool     `json:"random_directions"` // false zeroes directions to None
	InitialMask      MaskMode `json:"initial_mask"`      // full or occupied
	PlacementMask    MaskMode `json:"placement_mask"`    // full or adjacent
	MaskRadius       int      `json:"mask_radius"`
	ExitClear        ExitMode `json:"exit_clear"`
	HeadOnCollisions bool     `json:"head_on_collisions"` // swapping neighbours collide
}

// TickRules are the parts of Rules the step engine needs.
type TickRules struct {
	Exit   ExitMode
	HeadOn bool
}

// TickRules returns the engine settings for these rules.
func (r Rules) TickRules() TickRules {
	return TickRules{Exit: r.ExitClear, HeadOn: r.HeadOnCollisions}
}

// StandardRules returns the training rule set: four directions, randomized
// on reset, full-board edit mask, exit cleared before movement.
func StandardRules() Rules {
	return Rules{
		Width:             10,
		Height:            10,
		Exit:              C(5, 0),
		InitialPieces:     8,
		ExtraPieces:       5,
		PlacementAttempts: 200,
		DrainCeiling:      25,
		Weights:           Weights{Collision: 10, Leftover: 10},
		AllowNone:         false,
		RandomDirections:  true,
		InitialMask:       MaskFull,
		PlacementMask:     MaskFull,
		MaskRadius:        1,
		ExitClear:         ExitBeforeMove,
		HeadOnCollisions:  true,
	}
}

// ClassicRules returns the human-placer rule set: None allowed, directions
// start at None, only occupied cells are editable after the initial batch,
// the placed cell and its neighbours are editable after each placement, and
// the exit is cleared after movement.
func ClassicRules() Rules {
	r := StandardRules()
	r.AllowNone = true
	r.RandomDirections = false
	r.InitialMask = MaskOccupied
	r.PlacementMask = MaskAdjacent
	r.ExitClear = ExitAfterMove
	return r
}

// Categories returns the number of action categories per cell.
func (r Rules) Categories() int {
	if r.AllowNone {
		return 5
	}
	return 4
}

// Cells returns the number of board cells.
func (r Rules) Cells() int {
	return r.Width * r.Height
}

// Validate checks the rule set for consistency.
func (r Rules) Validate() error {
	switch {
	case r.Width <= 0:
		return &RulesError{Field: "width", Message: fmt.Sprintf("must be positive, got %d", r.Width)}
	case r.Height <= 0:
		return &RulesError{Field: "height", Message: fmt.Sprintf("must be positive, got %d", r.Height)}
	case r.Exit.X < 0 || r.Exit.X >= r.Width || r.Exit.Y < 0 || r.Exit.Y >= r.Height:
		return &RulesError{Field: "exit", Message: fmt.Sprintf("%s is outside %dx%d", r.Exit, r.Width, r.Height)}
	case r.InitialPieces < 0:
		return &RulesError{Field: "initial_pieces", Message: "must not be negative"}
	case r.ExtraPieces < 0:
		return &RulesError{Field: "extra_pieces", Message: "must not be negative"}
	case r.PlacementAttempts <= 0:
		return &RulesError{Field: "placement_attempts", Message: "must be positive"}
	case r.DrainCeiling < 0:
		return &RulesError{Field: "drain_ceiling", Message: "must not be negative"}
	case r.Weights.Collision < 0 || r.Weights.Leftover < 0:
		return &RulesError{Field: "weights", Message: "must not be negative"}
	case r.MaskRadius < 0:
		return &RulesError{Field: "mask_radius", Message: "must not be negative"}
	case !r.RandomDirections && !r.AllowNone:
		return &RulesError{Field: "directions", Message: "zeroed directions require allow_none"}
	case r.ExitClear > ExitAfterMove:
		return &RulesError{Field: "exit_clear", Message: fmt.Sprintf("unknown exit mode %d", r.ExitClear)}
	case r.InitialMask >= MaskAdjacent:
		return &RulesError{Field: "initial_mask", Message: "must be full or occupied"}
	case r.PlacementMask == MaskOccupied || r.PlacementMask > MaskAdjacent:
		return &RulesError{Field: "placement_mask", Message: "must be full or adjacent"}
	}
	return nil
}
