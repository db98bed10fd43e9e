package agent

import (
	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// FlowRouter points every editable cell one step closer to the exit along a
// breadth-first distance field. Ties resolve in Up, Right, Down, Left order.
// The exit cell points into a wall so an arrival that is not cleared stays put.
type FlowRouter struct {
	rules core.Rules
	dist  *core.Grid[int]
}

func NewFlowRouter(rules core.Rules) *FlowRouter {
	return &FlowRouter{rules: rules, dist: distanceField(rules)}
}

func (f *FlowRouter) Name() string { return "flow" }

func (f *FlowRouter) Act(obs core.Observation) core.Action {
	dirs := obs.DirGrid()
	for i, m := range obs.EditMask {
		if m != 1 {
			continue
		}
		c := dirs.CoordOf(i)
		if d, ok := f.best(c); ok {
			dirs.Cells[i] = d
		}
	}
	return core.EncodeDirections(f.rules, dirs)
}

// Distance returns the number of moves from c to the exit.
func (f *FlowRouter) Distance(c core.Coord) int {
	return f.dist.Get(c)
}

func (f *FlowRouter) best(c core.Coord) (core.Dir, bool) {
	if c == f.rules.Exit {
		for _, d := range core.MoveDirs {
			if !f.dist.InBounds(c.Step(d)) {
				return d, true
			}
		}
		if f.rules.AllowNone {
			return core.DirNone, true
		}
		return core.DirNone, false
	}

	here := f.dist.Get(c)
	for _, d := range core.MoveDirs {
		n := c.Step(d)
		if f.dist.InBounds(n) && f.dist.Get(n) == here-1 {
			return d, true
		}
	}
	return core.DirNone, false
}

// distanceField runs a BFS outward from the exit over the whole board.
func distanceField(rules core.Rules) *core.Grid[int] {
	dist := core.NewGrid[int](rules.Width, rules.Height)
	dist.Fill(-1)
	dist.Set(rules.Exit, 0)

	queue := []core.Coord{rules.Exit}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range core.MoveDirs {
			n := cur.Step(d)
			if !dist.InBounds(n) || dist.Get(n) >= 0 {
				continue
			}
			dist.Set(n, dist.Get(cur)+1)
			queue = append(queue, n)
		}
	}
	return dist
}
