package core

// TickResult describes what happened during one simulation tick.
type TickResult struct {
	Before     int     // pieces on the board when the tick started
	Survivors  int     // pieces on the board when the tick ended
	Eaten      int     // pieces destroyed in collisions this tick
	Exited     int     // pieces removed at the exit this tick
	Collisions []Coord // cells where more than one piece arrived
}

// Tick advances the board by exactly one synchronous step:
//  1. Exit before move: a piece on the exit is removed.
//  2. Every piece targets the cell its direction points to; off-board
//     targets and None collapse to the piece's own cell.
//  3. With head-on collisions, two neighbours pointing at each other both
//     end up in the cell with the lower row-major index.
//  4. Arrivals are counted per target. k arrivals leave one piece and eat k-1.
//  5. The new occupancy replaces the old one. Directions are unchanged.
//
// With exit after move the exit is cleared after step 5 instead of before step 1.
func (b *Board) Tick(tr TickRules) TickResult {
	res := TickResult{Before: b.Pieces()}

	if tr.Exit == ExitBeforeMove && b.Occupied.Get(b.Exit) {
		b.Occupied.Set(b.Exit, false)
		res.Exited++
	}

	target := make([]int, len(b.Occupied.Cells))
	for i, occupied := range b.Occupied.Cells {
		target[i] = -1
		if !occupied {
			continue
		}
		from := b.Occupied.CoordOf(i)
		to := from.Step(b.Dirs.Cells[i])
		if !b.Occupied.InBounds(to) {
			to = from
		}
		target[i] = b.Occupied.Index(to)
	}

	if tr.HeadOn {
		for i, t := range target {
			if t > i && target[t] == i {
				target[i] = i
			}
		}
	}

	arrivals := make([]int, len(target))
	for _, t := range target {
		if t >= 0 {
			arrivals[t]++
		}
	}

	next := NewGrid[bool](b.W(), b.H())
	for i, k := range arrivals {
		if k == 0 {
			continue
		}
		next.Cells[i] = true
		if k > 1 {
			res.Eaten += k - 1
			res.Collisions = append(res.Collisions, next.CoordOf(i))
		}
	}
	b.Occupied = next

	if tr.Exit == ExitAfterMove && b.Occupied.Get(b.Exit) {
		b.Occupied.Set(b.Exit, false)
		res.Exited++
	}

	b.Eaten += res.Eaten
	b.Exited += res.Exited
	res.Survivors = b.Pieces()

	invariant(res.Before == res.Survivors+res.Eaten+res.Exited,
		"tick lost pieces: before %d, survivors %d, eaten %d, exited %d",
		res.Before, res.Survivors, res.Eaten, res.Exited)
	b.checkInvariants()

	return res
}
