package core

import "fmt"

// Action is one direction category per cell in row-major order.
// With four categories, value v maps to MoveDirs[v] (None excluded).
// With five categories, value v is the native Dir encoding.
type Action []int

// DecodeAction converts a flat action into a direction grid.
// Nothing is clamped: a wrong length or category is an *ActionError.
func DecodeAction(r Rules, a Action) (*Grid[Dir], error) {
	if len(a) != r.Cells() {
		return nil, &ActionError{
			Code:    CodeActionLength,
			Index:   -1,
			Value:   len(a),
			Message: fmt.Sprintf("action has %d entries, board has %d cells", len(a), r.Cells()),
		}
	}

	n := r.Categories()
	dirs := NewGrid[Dir](r.Width, r.Height)
	for i, v := range a {
		if v < 0 || v >= n {
			return nil, &ActionError{
				Code:    CodeActionCategory,
				Index:   i,
				Value:   v,
				Message: fmt.Sprintf("cell %d: category %d outside [0,%d)", i, v, n),
			}
		}
		if r.AllowNone {
			dirs.Cells[i] = Dir(v)
		} else {
			dirs.Cells[i] = MoveDirs[v]
		}
	}
	return dirs, nil
}

// EncodeDirections converts a direction grid into an action.
// Under four-category rules None encodes as Up.
func EncodeDirections(r Rules, dirs *Grid[Dir]) Action {
	a := make(Action, len(dirs.Cells))
	for i, d := range dirs.Cells {
		switch {
		case r.AllowNone:
			a[i] = int(d)
		case d == DirNone:
			a[i] = 0
		default:
			a[i] = int(d) - 1
		}
	}
	return a
}

// Observation is the agent-facing view of a board. Every slice is owned by
// the observation and has Width*Height entries in row-major order.
type Observation struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Board      []uint8 `json:"board"`      // 1 = occupied
	Directions []uint8 `json:"directions"` // native Dir encoding
	EditMask   []uint8 `json:"edit_mask"`  // 1 = editable next turn
	StepsHint  int     `json:"steps_hint"` // router turns left, advisory
	Phase      string  `json:"phase"`
}

// Encode builds an observation from a snapshot.
func Encode(s Snapshot, phase Phase) Observation {
	n := len(s.Occupied.Cells)
	obs := Observation{
		Width:      s.Occupied.W,
		Height:     s.Occupied.H,
		Board:      make([]uint8, n),
		Directions: make([]uint8, n),
		EditMask:   make([]uint8, n),
		Phase:      phase.String(),
	}
	for i := 0; i < n; i++ {
		if s.Occupied.Cells[i] {
			obs.Board[i] = 1
		}
		obs.Directions[i] = uint8(s.Dirs.Cells[i])
		if s.Mask.Cells[i] {
			obs.EditMask[i] = 1
		}
	}
	if phase != PhaseTerminated {
		obs.StepsHint = s.PlacerLeft + 1
	}
	return obs
}

// DirGrid returns the observation's directions as a grid.
func (o Observation) DirGrid() *Grid[Dir] {
	g := NewGrid[Dir](o.Width, o.Height)
	for i, d := range o.Directions {
		g.Cells[i] = Dir(d)
	}
	return g
}

// Occupied reports whether the cell at c holds a piece.
func (o Observation) Occupied(c Coord) bool {
	return o.Board[c.Y*o.Width+c.X] == 1
}

// Editable reports whether the router may change the cell at c.
func (o Observation) Editable(c Coord) bool {
	return o.EditMask[c.Y*o.Width+c.X] == 1
}

// Planes flattens the observation into a channel-major float tensor:
// occupancy, one plane per legal direction, then the edit mask.
func (o Observation) Planes(allowNone bool) []float32 {
	n := o.Width * o.Height
	dirPlanes := 4
	if allowNone {
		dirPlanes = 5
	}
	out := make([]float32, (dirPlanes+2)*n)
	for i := 0; i < n; i++ {
		out[i] = float32(o.Board[i])
		d := int(o.Directions[i])
		if !allowNone {
			d--
		}
		if d >= 0 && d < dirPlanes {
			out[(1+d)*n+i] = 1
		}
		out[(1+dirPlanes)*n+i] = float32(o.EditMask[i])
	}
	return out
}
