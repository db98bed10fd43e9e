package core

import (
	"fmt"
	"strings"
)

// RenderASCII creates an ASCII representation of a board.
// This is used for debugging, testing, and the line-based front end.
//
// Format:
//   - column indices on top, row index at the start of each row
//   - occupied cells as [g] where g is the direction glyph
//   - empty cells as " g ", editable empty cells as ":g:"
//   - the exit cell's empty form is " E "
func RenderASCII(s Snapshot, phase Phase) string {
	var sb strings.Builder
	w, h := s.Occupied.W, s.Occupied.H

	sb.WriteString(fmt.Sprintf("Phase: %s | Turn: %d | Pieces: %d | Eaten: %d | Placer left: %d\n",
		phase, s.Turn, s.Pieces(), s.Eaten, s.PlacerLeft))

	sb.WriteString("   ")
	for x := 0; x < w; x++ {
		sb.WriteString(fmt.Sprintf("%2d ", x))
	}
	sb.WriteString("\n")

	for y := 0; y < h; y++ {
		sb.WriteString(fmt.Sprintf("%2d ", y))
		for x := 0; x < w; x++ {
			c := C(x, y)
			glyph := s.Dirs.Get(c).Glyph()
			switch {
			case s.Occupied.Get(c):
				sb.WriteString("[" + string(glyph) + "]")
			case c == s.Exit:
				sb.WriteString(" E ")
			case s.Mask.Get(c):
				sb.WriteString(":" + string(glyph) + ":")
			default:
				sb.WriteString(" " + string(glyph) + " ")
			}
		}
		sb.WriteString("\n")
	}

	if phase == PhaseTerminated {
		sb.WriteString(fmt.Sprintf("Drain steps: %d | Leftover: %d\n", s.DrainSteps, s.Pieces()))
	}
	return sb.String()
}
