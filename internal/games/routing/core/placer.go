package core

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// Placer chooses empty cells for new pieces.
// Place puts up to count pieces on distinct empty cells of occ and returns
// the last cell it filled. ok is false when nothing was placed.
type Placer interface {
	Place(occ *Grid[bool], count int) (last Coord, ok bool)
}

// RandomPlacer samples cells uniformly. Its retry budget is shared by the
// whole batch, so a crowded board yields fewer pieces instead of an error.
type RandomPlacer struct {
	rng      *rand.Rand
	attempts int
}

// NewRandomPlacer creates a random placer drawing from rng.
func NewRandomPlacer(rng *rand.Rand, attempts int) *RandomPlacer {
	if attempts <= 0 {
		attempts = 200
	}
	return &RandomPlacer{rng: rng, attempts: attempts}
}

// Place implements Placer.
func (p *RandomPlacer) Place(occ *Grid[bool], count int) (Coord, bool) {
	var last Coord
	placed := 0
	for try := 0; placed < count && try < p.attempts; try++ {
		c := C(p.rng.Intn(occ.W), p.rng.Intn(occ.H))
		if occ.Get(c) {
			continue
		}
		occ.Set(c, true)
		last = c
		placed++
	}
	return last, placed > 0
}

// ScriptedPlacer places pieces at a fixed sequence of cells.
// Cells that are out of bounds or occupied when their turn comes are skipped.
type ScriptedPlacer struct {
	Cells []Coord
	next  int
}

// NewScriptedPlacer creates a placer that replays cells in order.
func NewScriptedPlacer(cells ...Coord) *ScriptedPlacer {
	return &ScriptedPlacer{Cells: cells}
}

// Push appends cells to the script.
func (p *ScriptedPlacer) Push(cells ...Coord) {
	p.Cells = append(p.Cells, cells...)
}

// Remaining returns the number of unused script entries.
func (p *ScriptedPlacer) Remaining() int {
	return len(p.Cells) - p.next
}

// Place implements Placer.
func (p *ScriptedPlacer) Place(occ *Grid[bool], count int) (Coord, bool) {
	var last Coord
	placed := 0
	for placed < count && p.next < len(p.Cells) {
		c := p.Cells[p.next]
		p.next++
		if !occ.InBounds(c) || occ.Get(c) {
			continue
		}
		occ.Set(c, true)
		last = c
		placed++
	}
	return last, placed > 0
}

// PromptPlacer asks a human for each cell over a line-based stream.
// Bad input is answered with a message and a new prompt. End of input stops
// placement early.
type PromptPlacer struct {
	in  *bufio.Scanner
	out io.Writer

	// Show, if set, is called before each prompt to print the board.
	Show func(w io.Writer, occ *Grid[bool])
}

// NewPromptPlacer creates a placer reading "x y" lines from r.
func NewPromptPlacer(r io.Reader, w io.Writer) *PromptPlacer {
	return &PromptPlacer{in: bufio.NewScanner(r), out: w}
}

// Place implements Placer.
func (p *PromptPlacer) Place(occ *Grid[bool], count int) (Coord, bool) {
	var last Coord
	placed := 0
	for placed < count {
		c, ok := p.ask(occ, placed+1, count)
		if !ok {
			break
		}
		occ.Set(c, true)
		last = c
		placed++
	}
	return last, placed > 0
}

// ask prompts until it reads a valid empty cell or input ends.
func (p *PromptPlacer) ask(occ *Grid[bool], n, count int) (Coord, bool) {
	for {
		if p.Show != nil {
			p.Show(p.out, occ)
		}
		fmt.Fprintf(p.out, "Place piece %d/%d (x y): ", n, count)
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return Coord{}, false
		}
		c, err := ParseCoord(p.in.Text())
		switch {
		case err != nil:
			fmt.Fprintf(p.out, "Invalid input: %v\n", err)
		case !occ.InBounds(c):
			fmt.Fprintf(p.out, "%s is outside the %dx%d board\n", c, occ.W, occ.H)
		case occ.Get(c):
			fmt.Fprintf(p.out, "%s is already occupied\n", c)
		default:
			return c, true
		}
	}
}

// ParseCoord parses "x y" or "x,y".
func ParseCoord(s string) (Coord, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return Coord{}, fmt.Errorf("expected two numbers, got %q", strings.TrimSpace(s))
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return Coord{}, fmt.Errorf("bad x %q", fields[0])
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return Coord{}, fmt.Errorf("bad y %q", fields[1])
	}
	return C(x, y), nil
}
