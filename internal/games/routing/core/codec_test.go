package core_test

import (
	"testing"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

func smallRules(allowNone bool) core.Rules {
	r := core.StandardRules()
	r.Width, r.Height = 5, 1
	r.Exit = core.C(0, 0)
	r.AllowNone = allowNone
	return r
}

func TestDecodeActionFourCategories(t *testing.T) {
	r := smallRules(false)
	dirs, err := core.DecodeAction(r, core.Action{0, 1, 2, 3, 0})
	if err != nil {
		t.Fatalf("DecodeAction() failed: %v", err)
	}
	want := []core.Dir{core.DirUp, core.DirRight, core.DirDown, core.DirLeft, core.DirUp}
	for i, d := range want {
		if dirs.Cells[i] != d {
			t.Errorf("cell %d = %v, expected %v", i, dirs.Cells[i], d)
		}
	}

	if _, err := core.DecodeAction(r, core.Action{0, 1, 2, 3, 4}); err == nil {
		t.Error("category 4 accepted without None")
	}
}

func TestDecodeActionFiveCategories(t *testing.T) {
	r := smallRules(true)
	dirs, err := core.DecodeAction(r, core.Action{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("DecodeAction() failed: %v", err)
	}
	want := []core.Dir{core.DirNone, core.DirUp, core.DirRight, core.DirDown, core.DirLeft}
	for i, d := range want {
		if dirs.Cells[i] != d {
			t.Errorf("cell %d = %v, expected %v", i, dirs.Cells[i], d)
		}
	}
}

func TestEncodeDirectionsInvertsDecode(t *testing.T) {
	for _, allowNone := range []bool{false, true} {
		r := smallRules(allowNone)
		in := core.Action{3, 2, 1, 0, 1}
		dirs, err := core.DecodeAction(r, in)
		if err != nil {
			t.Fatalf("DecodeAction() failed: %v", err)
		}
		out := core.EncodeDirections(r, dirs)
		for i := range in {
			if in[i] != out[i] {
				t.Errorf("allowNone=%v cell %d: %d != %d", allowNone, i, in[i], out[i])
			}
		}
	}
}

func TestActionErrorDetails(t *testing.T) {
	r := smallRules(false)
	_, err := core.DecodeAction(r, core.Action{0, 0, 9, 0, 0})
	ae, ok := err.(*core.ActionError)
	if !ok {
		t.Fatalf("error = %T, expected *ActionError", err)
	}
	if ae.Index != 2 || ae.Value != 9 || ae.Code != core.CodeActionCategory {
		t.Errorf("ActionError = %+v", ae)
	}
	if ae.Error() == "" {
		t.Error("empty error message")
	}
}

func TestObservationOwnsItsSlices(t *testing.T) {
	env, err := core.NewEnv(core.Config{Rules: core.StandardRules(), Seed: 1})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	obs := env.Observation()
	obs.Board[0] = 7
	obs.Directions[0] = 7
	obs.EditMask[0] = 7

	again := env.Observation()
	if again.Board[0] == 7 || again.Directions[0] == 7 || again.EditMask[0] == 7 {
		t.Error("observation aliases env state")
	}
}

func TestObservationPlanes(t *testing.T) {
	r := smallRules(false)
	env, err := core.NewEnv(core.Config{
		Rules:  r,
		Seed:   1,
		Placer: core.NewScriptedPlacer(core.C(1, 0)),
	})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	obs := env.Observation()
	planes := obs.Planes(false)

	n := r.Cells()
	if len(planes) != 6*n {
		t.Fatalf("len(planes) = %d, expected %d", len(planes), 6*n)
	}
	if planes[1] != 1 || planes[0] != 0 {
		t.Error("occupancy plane wrong")
	}
	for i := 0; i < n; i++ {
		sum := float32(0)
		for d := 0; d < 4; d++ {
			sum += planes[(1+d)*n+i]
		}
		if sum != 1 {
			t.Errorf("cell %d has %v direction bits, expected one-hot", i, sum)
		}
		if planes[5*n+i] != 1 {
			t.Errorf("cell %d mask plane = %v, expected 1", i, planes[5*n+i])
		}
	}
}
