package core

// Board holds the mutable state of one episode.
type Board struct {
	Occupied *Grid[bool] // one piece per occupied cell
	Dirs     *Grid[Dir]  // per-cell direction, independent of occupancy
	Mask     *Grid[bool] // cells the router may currently overwrite
	Exit     Coord

	Eaten      int // pieces destroyed in collisions, never decreases
	DrainSteps int // ticks executed during drain
	PlacerLeft int // placer budget still to spend
	Placed     int // pieces ever placed
	Exited     int // pieces removed at the exit
	Turn       int // router turns taken
}

// NewBoard creates an empty board with None directions and a full mask.
func NewBoard(w, h int, exit Coord) *Board {
	b := &Board{
		Occupied: NewGrid[bool](w, h),
		Dirs:     NewGrid[Dir](w, h),
		Mask:     NewGrid[bool](w, h),
		Exit:     exit,
	}
	b.Mask.Fill(true)
	return b
}

// W returns the board width.
func (b *Board) W() int { return b.Occupied.W }

// H returns the board height.
func (b *Board) H() int { return b.Occupied.H }

// Pieces returns the number of occupied cells.
func (b *Board) Pieces() int {
	return b.Occupied.Count(true)
}

// ApplyRouterEdit overwrites the direction of every masked cell with the
// matching entry of dirs. Unmasked cells are left untouched.
// Returns the number of cells whose direction changed.
func (b *Board) ApplyRouterEdit(dirs *Grid[Dir]) int {
	invariant(dirs.W == b.W() && dirs.H == b.H(),
		"edit grid %dx%d does not match board %dx%d", dirs.W, dirs.H, b.W(), b.H())

	changed := 0
	for i, editable := range b.Mask.Cells {
		if !editable {
			continue
		}
		if b.Dirs.Cells[i] != dirs.Cells[i] {
			b.Dirs.Cells[i] = dirs.Cells[i]
			changed++
		}
	}
	return changed
}

// SetMaskAll makes every cell editable.
func (b *Board) SetMaskAll() {
	b.Mask.Fill(true)
}

// SetMaskOccupied makes only occupied cells editable.
func (b *Board) SetMaskOccupied() {
	copy(b.Mask.Cells, b.Occupied.Cells)
}

// SetMaskAround makes editable every cell within Manhattan distance radius
// of center, clipped to the board.
func (b *Board) SetMaskAround(center Coord, radius int) {
	b.Mask.Fill(false)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if abs(dx)+abs(dy) > radius {
				continue
			}
			b.Mask.Set(center.Add(dx, dy), true)
		}
	}
}

// Snapshot is an immutable copy of a board. Its grids never alias the board.
type Snapshot struct {
	Occupied   *Grid[bool]
	Dirs       *Grid[Dir]
	Mask       *Grid[bool]
	Exit       Coord
	Eaten      int
	DrainSteps int
	PlacerLeft int
	Placed     int
	Exited     int
	Turn       int
}

// Snapshot returns a deep copy of the board state.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Occupied:   b.Occupied.Clone(),
		Dirs:       b.Dirs.Clone(),
		Mask:       b.Mask.Clone(),
		Exit:       b.Exit,
		Eaten:      b.Eaten,
		DrainSteps: b.DrainSteps,
		PlacerLeft: b.PlacerLeft,
		Placed:     b.Placed,
		Exited:     b.Exited,
		Turn:       b.Turn,
	}
}

// Pieces returns the number of occupied cells in the snapshot.
func (s Snapshot) Pieces() int {
	return s.Occupied.Count(true)
}

// Equal reports whether two snapshots describe the same state.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Occupied.Equal(o.Occupied) &&
		s.Dirs.Equal(o.Dirs) &&
		s.Mask.Equal(o.Mask) &&
		s.Exit == o.Exit &&
		s.Eaten == o.Eaten &&
		s.DrainSteps == o.DrainSteps &&
		s.PlacerLeft == o.PlacerLeft &&
		s.Placed == o.Placed &&
		s.Exited == o.Exited &&
		s.Turn == o.Turn
}

// checkInvariants panics if the piece bookkeeping is inconsistent.
func (b *Board) checkInvariants() {
	pieces := b.Pieces()
	invariant(pieces == b.Placed-b.Eaten-b.Exited,
		"%d pieces on board, expected placed %d - eaten %d - exited %d",
		pieces, b.Placed, b.Eaten, b.Exited)
	invariant(b.PlacerLeft >= 0, "placer budget %d is negative", b.PlacerLeft)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Put places a piece on an empty in-bounds cell and records it as placed.
func (b *Board) Put(c Coord) bool {
	if !b.Occupied.InBounds(c) || b.Occupied.Get(c) {
		return false
	}
	b.Occupied.Set(c, true)
	b.Placed++
	return true
}
