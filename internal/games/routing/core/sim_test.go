package core_test

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

func newBoard(pieces map[core.Coord]core.Dir) *core.Board {
	b := core.NewBoard(10, 10, core.C(5, 0))
	b.Dirs.Fill(core.DirUp)
	for c, d := range pieces {
		b.Put(c)
		b.Dirs.Set(c, d)
	}
	return b
}

var defaultTick = core.StandardRules().TickRules()

func TestTickStraightShot(t *testing.T) {
	b := newBoard(map[core.Coord]core.Dir{core.C(5, 1): core.DirUp})

	res := b.Tick(defaultTick)
	if !b.Occupied.Get(core.C(5, 0)) {
		t.Fatal("expected piece at exit after first tick")
	}
	if res.Exited != 0 || res.Survivors != 1 {
		t.Errorf("first tick = %+v, expected 1 survivor and no exit", res)
	}

	res = b.Tick(defaultTick)
	if b.Pieces() != 0 {
		t.Errorf("expected empty board after second tick, got %d pieces", b.Pieces())
	}
	if res.Exited != 1 {
		t.Errorf("Exited = %d, expected 1", res.Exited)
	}
	if b.Eaten != 0 {
		t.Errorf("Eaten = %d, expected 0", b.Eaten)
	}
}

func TestTickExitAfterMoveClearsImmediately(t *testing.T) {
	b := newBoard(map[core.Coord]core.Dir{core.C(5, 1): core.DirUp})

	res := b.Tick(core.TickRules{Exit: core.ExitAfterMove, HeadOn: true})
	if b.Pieces() != 0 {
		t.Errorf("expected piece removed in the tick it arrived, got %d pieces", b.Pieces())
	}
	if res.Exited != 1 {
		t.Errorf("Exited = %d, expected 1", res.Exited)
	}
}

func TestTickHeadOnCollision(t *testing.T) {
	a, bc := core.C(2, 3), core.C(3, 3)
	b := newBoard(map[core.Coord]core.Dir{a: core.DirRight, bc: core.DirLeft})

	res := b.Tick(defaultTick)
	if b.Pieces() != 1 {
		t.Fatalf("expected 1 survivor, got %d", b.Pieces())
	}
	if !b.Occupied.Get(a) || b.Occupied.Get(bc) {
		t.Errorf("expected survivor at %v (lower index), got occupancy a=%v b=%v",
			a, b.Occupied.Get(a), b.Occupied.Get(bc))
	}
	if b.Eaten != 1 || res.Eaten != 1 {
		t.Errorf("Eaten = %d (tick %d), expected 1", b.Eaten, res.Eaten)
	}
	if len(res.Collisions) != 1 || res.Collisions[0] != a {
		t.Errorf("Collisions = %v, expected [%v]", res.Collisions, a)
	}
}

func TestTickSwapWithoutHeadOn(t *testing.T) {
	a, bc := core.C(2, 3), core.C(3, 3)
	b := newBoard(map[core.Coord]core.Dir{a: core.DirRight, bc: core.DirLeft})

	b.Tick(core.TickRules{Exit: core.ExitBeforeMove, HeadOn: false})
	if b.Pieces() != 2 || b.Eaten != 0 {
		t.Errorf("pieces = %d eaten = %d, expected pieces to pass through", b.Pieces(), b.Eaten)
	}
}

func TestTickWallBounce(t *testing.T) {
	tests := []struct {
		name string
		at   core.Coord
		dir  core.Dir
	}{
		{"left edge", core.C(0, 4), core.DirLeft},
		{"right edge", core.C(9, 4), core.DirRight},
		{"top edge", core.C(3, 0), core.DirUp},
		{"bottom edge", core.C(3, 9), core.DirDown},
		{"none", core.C(4, 4), core.DirNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(map[core.Coord]core.Dir{tt.at: tt.dir})
			b.Tick(defaultTick)
			if !b.Occupied.Get(tt.at) {
				t.Errorf("piece left %v", tt.at)
			}
			if b.Eaten != 0 {
				t.Errorf("Eaten = %d, expected 0", b.Eaten)
			}
		})
	}
}

func TestTickPileUpKeepsOneSurvivor(t *testing.T) {
	target := core.C(4, 4)
	b := newBoard(map[core.Coord]core.Dir{
		core.C(4, 3): core.DirDown,
		core.C(3, 4): core.DirRight,
		core.C(5, 4): core.DirLeft,
		core.C(4, 5): core.DirUp,
	})

	res := b.Tick(defaultTick)
	if b.Pieces() != 1 || !b.Occupied.Get(target) {
		t.Errorf("expected single survivor at %v, got %d pieces", target, b.Pieces())
	}
	if res.Eaten != 3 {
		t.Errorf("Eaten = %d, expected 3", res.Eaten)
	}
}

func TestTickStayPutCollision(t *testing.T) {
	b := newBoard(map[core.Coord]core.Dir{
		core.C(0, 0): core.DirUp,
		core.C(1, 0): core.DirLeft,
	})

	b.Tick(defaultTick)
	if b.Pieces() != 1 || b.Eaten != 1 {
		t.Errorf("pieces = %d eaten = %d, expected 1 and 1", b.Pieces(), b.Eaten)
	}
}

func TestTickLeavesDirectionsUntouched(t *testing.T) {
	b := newBoard(map[core.Coord]core.Dir{core.C(2, 2): core.DirRight})
	before := b.Dirs.Clone()
	b.Tick(defaultTick)
	if !b.Dirs.Equal(before) {
		t.Error("tick changed the direction grid")
	}
}

func TestTickConservationAndBounds(t *testing.T) {
	modes := []core.TickRules{
		{Exit: core.ExitBeforeMove, HeadOn: true},
		{Exit: core.ExitAfterMove, HeadOn: true},
		{Exit: core.ExitBeforeMove, HeadOn: false},
	}

	for seed := int64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, mode := range modes {
			b := core.NewBoard(7, 5, core.C(3, 0))
			for i := range b.Dirs.Cells {
				b.Dirs.Cells[i] = core.Dir(rng.Intn(5))
				if rng.Intn(2) == 0 {
					b.Put(b.Occupied.CoordOf(i))
				}
			}

			for tick := 0; tick < 10; tick++ {
				res := b.Tick(mode)
				if res.Before != res.Survivors+res.Eaten+res.Exited {
					t.Fatalf("seed %d: conservation broken: %+v", seed, res)
				}
				if len(b.Occupied.Cells) != 7*5 {
					t.Fatalf("seed %d: occupancy grid resized", seed)
				}
				for _, c := range b.Occupied.Coords(true) {
					if c.X < 0 || c.X >= 7 || c.Y < 0 || c.Y >= 5 {
						t.Fatalf("seed %d: piece out of bounds at %v", seed, c)
					}
				}
			}
		}
	}
}

func TestTickPanicsOnCorruptBookkeeping(t *testing.T) {
	b := core.NewBoard(3, 3, core.C(1, 0))
	// A piece that was never placed.
	b.Occupied.Set(core.C(2, 2), true)

	defer func() {
		if recover() == nil {
			t.Error("expected invariant panic")
		}
	}()
	b.Tick(defaultTick)
}
