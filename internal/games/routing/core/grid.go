package core

// Grid is a rectangular layer of per-cell values.
// Cells are stored in row-major order: index = y*W + x.
type Grid[T comparable] struct {
	W     int // Width of the grid
	H     int // Height of the grid
	Cells []T // Flat array of cells, length W*H
}

// NewGrid creates a grid with every cell set to the zero value.
func NewGrid[T comparable](w, h int) *Grid[T] {
	return &Grid[T]{
		W:     w,
		H:     h,
		Cells: make([]T, w*h),
	}
}

// Index converts a coordinate to a flat array index.
func (g *Grid[T]) Index(c Coord) int {
	return c.Y*g.W + c.X
}

// CoordOf converts a flat array index back to a coordinate.
func (g *Grid[T]) CoordOf(i int) Coord {
	return Coord{X: i % g.W, Y: i / g.W}
}

// InBounds returns true if the coordinate is within the grid boundaries.
func (g *Grid[T]) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// Get returns the value at the given coordinate.
// Returns the zero value if out of bounds.
func (g *Grid[T]) Get(c Coord) T {
	if !g.InBounds(c) {
		var zero T
		return zero
	}
	return g.Cells[g.Index(c)]
}

// Set stores a value at the given coordinate. Out-of-bounds writes are ignored.
func (g *Grid[T]) Set(c Coord, v T) {
	if g.InBounds(c) {
		g.Cells[g.Index(c)] = v
	}
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.Cells {
		g.Cells[i] = v
	}
}

// Count returns the number of cells equal to v.
func (g *Grid[T]) Count(v T) int {
	n := 0
	for _, c := range g.Cells {
		if c == v {
			n++
		}
	}
	return n
}

// Coords returns the coordinates of all cells equal to v in row-major order.
func (g *Grid[T]) Coords(v T) []Coord {
	var coords []Coord
	for i, c := range g.Cells {
		if c == v {
			coords = append(coords, g.CoordOf(i))
		}
	}
	return coords
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	cells := make([]T, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid[T]{W: g.W, H: g.H, Cells: cells}
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid[T]) Equal(other *Grid[T]) bool {
	if g.W != other.W || g.H != other.H {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}
