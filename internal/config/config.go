// Package config provides YAML-based puzzle configuration loading and the
// named rule presets.
package config

import (
	"fmt"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// RoutingConfig contains all configuration for the routing puzzle.
type RoutingConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Placer  PlacerConfig  `yaml:"placer"`
	Drain   DrainConfig   `yaml:"drain"`
	Scoring ScoringConfig `yaml:"scoring"`
	Rules   RulesConfig   `yaml:"rules"`
}

// BoardConfig defines the grid and its exit cell.
type BoardConfig struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Exit   ExitConfig `yaml:"exit"`
}

// ExitConfig is the exit cell position.
type ExitConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// PlacerConfig defines how many pieces enter the board.
type PlacerConfig struct {
	Initial  int `yaml:"initial"`  // placed during init
	Extra    int `yaml:"extra"`    // one per router turn
	Attempts int `yaml:"attempts"` // random placer retry budget
}

// DrainConfig bounds the automatic drain ticks.
type DrainConfig struct {
	Ceiling int `yaml:"ceiling"`
}

// ScoringConfig holds the score multipliers.
type ScoringConfig struct {
	Collision int `yaml:"collision"`
	Leftover  int `yaml:"leftover"`
}

// RulesConfig holds the variant switches as YAML strings.
type RulesConfig struct {
	AllowNone        bool   `yaml:"allow_none"`
	Directions       string `yaml:"directions"`     // "random" or "zero"
	InitialMask      string `yaml:"initial_mask"`   // "full" or "occupied"
	PlacementMask    string `yaml:"placement_mask"` // "full" or "adjacent"
	MaskRadius       int    `yaml:"mask_radius"`
	ExitClear        string `yaml:"exit_clear"` // "before" or "after"
	HeadOnCollisions bool   `yaml:"head_on_collisions"`
}

// Preset names a complete rules section.
type Preset string

const (
	PresetStandard Preset = "standard"
	PresetClassic  Preset = "classic"
)

// ParsePreset parses a preset name. The empty string means standard.
func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case PresetStandard, "":
		return PresetStandard, nil
	case PresetClassic:
		return PresetClassic, nil
	default:
		return PresetStandard, fmt.Errorf("unknown preset %q (expected standard or classic)", s)
	}
}

// RulesFor returns the core rules of a preset.
func RulesFor(preset Preset) core.Rules {
	if preset == PresetClassic {
		return core.ClassicRules()
	}
	return core.StandardRules()
}

// CoreRules maps the YAML config onto core rules and validates the result.
func (c RoutingConfig) CoreRules() (core.Rules, error) {
	r := core.Rules{
		Width:             c.Board.Width,
		Height:            c.Board.Height,
		Exit:              core.C(c.Board.Exit.X, c.Board.Exit.Y),
		InitialPieces:     c.Placer.Initial,
		ExtraPieces:       c.Placer.Extra,
		PlacementAttempts: c.Placer.Attempts,
		DrainCeiling:      c.Drain.Ceiling,
		Weights:           core.Weights{Collision: c.Scoring.Collision, Leftover: c.Scoring.Leftover},
		AllowNone:         c.Rules.AllowNone,
		MaskRadius:        c.Rules.MaskRadius,
		HeadOnCollisions:  c.Rules.HeadOnCollisions,
	}

	switch c.Rules.Directions {
	case "random", "":
		r.RandomDirections = true
	case "zero":
		r.RandomDirections = false
	default:
		return r, &core.RulesError{Field: "directions", Message: fmt.Sprintf("unknown value %q", c.Rules.Directions)}
	}

	var err error
	if r.InitialMask, err = core.ParseMaskMode(c.Rules.InitialMask); err != nil {
		return r, &core.RulesError{Field: "initial_mask", Message: err.Error()}
	}
	if r.PlacementMask, err = core.ParseMaskMode(c.Rules.PlacementMask); err != nil {
		return r, &core.RulesError{Field: "placement_mask", Message: err.Error()}
	}
	if r.ExitClear, err = core.ParseExitMode(c.Rules.ExitClear); err != nil {
		return r, &core.RulesError{Field: "exit_clear", Message: err.Error()}
	}

	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// FromRules builds the YAML form of core rules.
func FromRules(r core.Rules) RoutingConfig {
	directions := "random"
	if !r.RandomDirections {
		directions = "zero"
	}
	return RoutingConfig{
		Board: BoardConfig{
			Width:  r.Width,
			Height: r.Height,
			Exit:   ExitConfig{X: r.Exit.X, Y: r.Exit.Y},
		},
		Placer: PlacerConfig{
			Initial:  r.InitialPieces,
			Extra:    r.ExtraPieces,
			Attempts: r.PlacementAttempts,
		},
		Drain:   DrainConfig{Ceiling: r.DrainCeiling},
		Scoring: ScoringConfig{Collision: r.Weights.Collision, Leftover: r.Weights.Leftover},
		Rules:   rulesSection(r, directions),
	}
}

func rulesSection(r core.Rules, directions string) RulesConfig {
	return RulesConfig{
		AllowNone:        r.AllowNone,
		Directions:       directions,
		InitialMask:      r.InitialMask.String(),
		PlacementMask:    r.PlacementMask.String(),
		MaskRadius:       r.MaskRadius,
		ExitClear:        r.ExitClear.String(),
		HeadOnCollisions: r.HeadOnCollisions,
	}
}

// ApplyRulesPreset replaces the rules section with the preset's switches.
// Board size, piece counts, drain ceiling and scoring are kept.
func ApplyRulesPreset(cfg *RoutingConfig, preset Preset) {
	preset, err := ParsePreset(string(preset))
	if err != nil {
		preset = PresetStandard
	}
	cfg.Rules = FromRules(RulesFor(preset)).Rules
}
