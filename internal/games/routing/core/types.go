// Package core provides the rule engine for the routing puzzle.
// This package is UI-agnostic and deterministic for a given seed.
package core

import (
	"fmt"
	"strings"
)

// Dir represents the direction stored in a board cell.
// The numeric values are the native encoding shared with external agents.
type Dir uint8

const (
	DirNone Dir = iota
	DirUp
	DirRight
	DirDown
	DirLeft
)

// MoveDirs lists the four movement directions in encoding order.
var MoveDirs = [4]Dir{DirUp, DirRight, DirDown, DirLeft}

// String returns the string representation of a direction.
func (d Dir) String() string {
	switch d {
	case DirNone:
		return "None"
	case DirUp:
		return "Up"
	case DirRight:
		return "Right"
	case DirDown:
		return "Down"
	case DirLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Glyph returns the single character used to draw the direction.
func (d Dir) Glyph() rune {
	switch d {
	case DirUp:
		return '^'
	case DirRight:
		return '>'
	case DirDown:
		return 'v'
	case DirLeft:
		return '<'
	default:
		return '.'
	}
}

// Delta returns the (dx, dy) offset for moving one step in this direction.
// Up decreases Y, Down increases Y (screen coordinates). None does not move.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the opposite direction. None is its own opposite.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return d
	}
}

// Next returns the following direction in cycle order.
// None is part of the cycle only when allowNone is set.
func (d Dir) Next(allowNone bool) Dir {
	switch d {
	case DirUp:
		return DirRight
	case DirRight:
		return DirDown
	case DirDown:
		return DirLeft
	case DirLeft:
		if allowNone {
			return DirNone
		}
		return DirUp
	default:
		return DirUp
	}
}

// Valid reports whether d may be stored on a board.
func (d Dir) Valid(allowNone bool) bool {
	if d == DirNone {
		return allowNone
	}
	return d <= DirLeft
}

// ParseDir parses a direction name or glyph, case-insensitive.
func ParseDir(s string) (Dir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n", ".", "0":
		return DirNone, nil
	case "up", "u", "^", "1":
		return DirUp, nil
	case "right", "r", ">", "2":
		return DirRight, nil
	case "down", "d", "v", "3":
		return DirDown, nil
	case "left", "l", "<", "4":
		return DirLeft, nil
	default:
		return DirNone, fmt.Errorf("unknown direction %q", s)
	}
}
