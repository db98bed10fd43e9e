package core_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// actionFor builds an action setting fill everywhere and overrides at the given cells.
func actionFor(r core.Rules, fill core.Dir, overrides map[core.Coord]core.Dir) core.Action {
	g := core.NewGrid[core.Dir](r.Width, r.Height)
	g.Fill(fill)
	for c, d := range overrides {
		g.Set(c, d)
	}
	return core.EncodeDirections(r, g)
}

func scriptedEnv(t *testing.T, r core.Rules, cells ...core.Coord) *core.Env {
	t.Helper()
	env, err := core.NewEnv(core.Config{
		Rules:  r,
		Seed:   1,
		Placer: core.NewScriptedPlacer(cells...),
	})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	return env
}

func TestEpisodeStraightShotExitBeforeMove(t *testing.T) {
	r := core.StandardRules()
	r.InitialPieces = 1
	r.ExtraPieces = 0
	env := scriptedEnv(t, r, core.C(5, 1))

	res, err := env.Step(actionFor(r, core.DirUp, nil))
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if !res.Terminated {
		t.Fatal("expected episode to terminate with zero placer budget")
	}

	ticks := env.Ticks()
	if len(ticks) != 2 {
		t.Fatalf("ticks = %d, expected manual tick plus one drain tick", len(ticks))
	}
	if ticks[0].Survivors != 1 || ticks[0].Exited != 0 {
		t.Errorf("manual tick = %+v, expected piece to reach the exit", ticks[0])
	}
	if ticks[1].Exited != 1 || ticks[1].Survivors != 0 {
		t.Errorf("drain tick = %+v, expected piece cleared", ticks[1])
	}

	score, ok := env.Score()
	if !ok {
		t.Fatal("Score() not available after termination")
	}
	want := core.Score{DrainSteps: 1, Eaten: 0, Leftover: 0, Total: 1}
	if score != want {
		t.Errorf("Score() = %+v, expected %+v", score, want)
	}
	if res.Reward != -1 {
		t.Errorf("Reward = %v, expected -1", res.Reward)
	}
}

func TestEpisodeStraightShotExitAfterMove(t *testing.T) {
	r := core.ClassicRules()
	r.InitialPieces = 1
	r.ExtraPieces = 0
	env := scriptedEnv(t, r, core.C(5, 1))

	res, err := env.Step(actionFor(r, core.DirUp, nil))
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	score, _ := env.Score()
	if score.Total != 0 || score.DrainSteps != 0 {
		t.Errorf("Score() = %+v, expected zero drain and zero total", score)
	}
	if !res.Terminated || res.Reward != 0 {
		t.Errorf("result = %+v, expected terminal step with reward 0", res)
	}
}

func TestEpisodeAllPiecesExitScoreEqualsDrain(t *testing.T) {
	r := core.StandardRules()
	r.InitialPieces = 2
	r.ExtraPieces = 0
	env := scriptedEnv(t, r, core.C(5, 3), core.C(5, 5))

	res, err := env.Step(actionFor(r, core.DirUp, nil))
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	score, _ := env.Score()
	if score.Eaten != 0 || score.Leftover != 0 {
		t.Fatalf("Score() = %+v, expected no collisions and no leftovers", score)
	}
	if score.Total != score.DrainSteps || score.DrainSteps != 5 {
		t.Errorf("Score() = %+v, expected total == drain steps == 5", score)
	}
	if res.Reward != -5 {
		t.Errorf("Reward = %v, expected -5", res.Reward)
	}
}

func TestEpisodeCycleHitsDrainCeiling(t *testing.T) {
	r := core.StandardRules()
	r.InitialPieces = 4
	r.ExtraPieces = 0
	cycle := map[core.Coord]core.Dir{
		core.C(1, 1): core.DirRight,
		core.C(2, 1): core.DirDown,
		core.C(2, 2): core.DirLeft,
		core.C(1, 2): core.DirUp,
	}
	env := scriptedEnv(t, r, core.C(1, 1), core.C(2, 1), core.C(2, 2), core.C(1, 2))

	if _, err := env.Step(actionFor(r, core.DirUp, cycle)); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	score, _ := env.Score()
	want := core.Score{DrainSteps: 25, Eaten: 0, Leftover: 4, Total: 25 + 40}
	if score != want {
		t.Errorf("Score() = %+v, expected %+v", score, want)
	}
}

func TestEpisodeRewardOnlyAtTermination(t *testing.T) {
	r := core.StandardRules()
	env, err := core.NewEnv(core.Config{Rules: r, Seed: 7})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	steps := 0
	for {
		a := make(core.Action, r.Cells())
		for i := range a {
			a[i] = rng.Intn(r.Categories())
		}
		res, err := env.Step(a)
		if err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
		steps++
		if res.Terminated {
			score, _ := env.Score()
			if res.Reward != -float64(score.Total) {
				t.Errorf("terminal reward = %v, expected %v", res.Reward, -float64(score.Total))
			}
			break
		}
		if res.Reward != 0 {
			t.Errorf("step %d reward = %v, expected 0", steps, res.Reward)
		}
		if len(res.Info) != 0 {
			t.Errorf("step %d info = %v, expected empty", steps, res.Info)
		}
	}

	// ExtraPieces placement turns plus the turn that triggers drain.
	if steps != r.ExtraPieces+1 {
		t.Errorf("steps = %d, expected %d", steps, r.ExtraPieces+1)
	}
}

func TestEpisodeCountersMonotonic(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		r := core.StandardRules()
		env, err := core.NewEnv(core.Config{Rules: r, Seed: seed})
		if err != nil {
			t.Fatalf("NewEnv() failed: %v", err)
		}
		rng := rand.New(rand.NewSource(seed))

		prev := env.Snapshot()
		for !env.Done() {
			a := make(core.Action, r.Cells())
			for i := range a {
				a[i] = rng.Intn(r.Categories())
			}
			if _, err := env.Step(a); err != nil {
				t.Fatalf("seed %d: Step() failed: %v", seed, err)
			}
			cur := env.Snapshot()
			if cur.Eaten < prev.Eaten {
				t.Fatalf("seed %d: eaten decreased %d -> %d", seed, prev.Eaten, cur.Eaten)
			}
			if cur.DrainSteps < prev.DrainSteps {
				t.Fatalf("seed %d: drain steps decreased", seed)
			}
			if cur.PlacerLeft > prev.PlacerLeft {
				t.Fatalf("seed %d: placer budget increased", seed)
			}
			if cur.DrainSteps > r.DrainCeiling {
				t.Fatalf("seed %d: drain ran %d ticks, ceiling %d", seed, cur.DrainSteps, r.DrainCeiling)
			}
			prev = cur
		}
	}
}

func TestStepAfterTermination(t *testing.T) {
	r := core.StandardRules()
	r.ExtraPieces = 0
	env, err := core.NewEnv(core.Config{Rules: r, Seed: 3})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	a := actionFor(r, core.DirUp, nil)
	if _, err := env.Step(a); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if _, err := env.Step(a); !errors.Is(err, core.ErrTerminated) {
		t.Errorf("Step() after termination = %v, expected ErrTerminated", err)
	}

	env.Reset()
	if env.Phase() != core.PhaseRouting {
		t.Errorf("Phase() after Reset = %v, expected routing", env.Phase())
	}
}

func TestStepRejectsBadActionWithoutMutation(t *testing.T) {
	r := core.StandardRules()
	env, err := core.NewEnv(core.Config{Rules: r, Seed: 5})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	before := env.Snapshot()

	tests := []struct {
		name   string
		action core.Action
		code   string
	}{
		{"short", make(core.Action, r.Cells()-1), core.CodeActionLength},
		{"long", make(core.Action, r.Cells()+1), core.CodeActionLength},
		{"category too high", func() core.Action {
			a := make(core.Action, r.Cells())
			a[17] = 4
			return a
		}(), core.CodeActionCategory},
		{"negative", func() core.Action {
			a := make(core.Action, r.Cells())
			a[0] = -1
			return a
		}(), core.CodeActionCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Step(tt.action)
			var ae *core.ActionError
			if !errors.As(err, &ae) {
				t.Fatalf("Step() error = %v, expected *ActionError", err)
			}
			if ae.Code != tt.code {
				t.Errorf("Code = %s, expected %s", ae.Code, tt.code)
			}
			if !env.Snapshot().Equal(before) {
				t.Error("rejected action mutated the board")
			}
		})
	}
}

func TestInitStandardRules(t *testing.T) {
	r := core.StandardRules()
	env, err := core.NewEnv(core.Config{Rules: r, Seed: 11})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	snap := env.Snapshot()

	if snap.Pieces() != r.InitialPieces {
		t.Errorf("pieces = %d, expected %d", snap.Pieces(), r.InitialPieces)
	}
	if snap.Mask.Count(true) != r.Cells() {
		t.Errorf("mask cells = %d, expected full board", snap.Mask.Count(true))
	}
	if snap.Dirs.Count(core.DirNone) != 0 {
		t.Error("standard rules must not place None directions")
	}
	if snap.PlacerLeft != r.ExtraPieces {
		t.Errorf("PlacerLeft = %d, expected %d", snap.PlacerLeft, r.ExtraPieces)
	}

	obs := env.Observation()
	if obs.StepsHint != r.ExtraPieces+1 {
		t.Errorf("StepsHint = %d, expected %d", obs.StepsHint, r.ExtraPieces+1)
	}
}

func TestClassicMaskLifecycle(t *testing.T) {
	r := core.ClassicRules()
	r.InitialPieces = 1
	r.ExtraPieces = 1
	env := scriptedEnv(t, r, core.C(2, 2), core.C(7, 7))

	obs := env.Observation()
	if obs.Directions[0] != uint8(core.DirNone) {
		t.Error("classic rules start with None directions")
	}
	if !obs.Editable(core.C(2, 2)) || countOnes(obs.EditMask) != 1 {
		t.Errorf("initial mask should cover only the occupied cell, got %d cells", countOnes(obs.EditMask))
	}

	res, err := env.Step(actionFor(r, core.DirNone, nil))
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	obs = res.Observation
	if countOnes(obs.EditMask) != 5 || !obs.Editable(core.C(7, 7)) || !obs.Editable(core.C(7, 6)) {
		t.Errorf("mask after placement should be the cross around (7,7), got %d cells", countOnes(obs.EditMask))
	}
	if obs.Editable(core.C(2, 2)) {
		t.Error("old piece should no longer be editable")
	}

	res, err = env.Step(actionFor(r, core.DirNone, nil))
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	score, _ := env.Score()
	want := core.Score{DrainSteps: 25, Eaten: 0, Leftover: 2, Total: 45}
	if score != want {
		t.Errorf("Score() = %+v, expected %+v", score, want)
	}
	if res.Observation.StepsHint != 0 || res.Observation.Phase != "terminated" {
		t.Errorf("terminal observation = %+v", res.Observation)
	}
}

func TestUnmaskedCellsIgnoreAction(t *testing.T) {
	r := core.ClassicRules()
	r.InitialPieces = 1
	r.ExtraPieces = 2
	env := scriptedEnv(t, r, core.C(2, 2), core.C(8, 8), core.C(0, 9))

	// Only (2,2) is editable: the Up written elsewhere must not stick.
	if _, err := env.Step(actionFor(r, core.DirUp, nil)); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	snap := env.Snapshot()
	if snap.Dirs.Get(core.C(2, 2)) != core.DirUp {
		t.Error("editable cell was not updated")
	}
	if snap.Dirs.Count(core.DirUp) != 1 {
		t.Errorf("Up cells = %d, expected only the editable one", snap.Dirs.Count(core.DirUp))
	}
}

func TestPlacerExhaustionDegradesGracefully(t *testing.T) {
	r := core.StandardRules()
	r.Width, r.Height = 3, 1
	r.Exit = core.C(0, 0)
	r.InitialPieces = 5
	env, err := core.NewEnv(core.Config{Rules: r, Seed: 2})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	if got := env.Snapshot().Pieces(); got > 3 {
		t.Errorf("pieces = %d, expected at most 3 on a 3-cell board", got)
	}

	empty := core.NewScriptedPlacer()
	env, err = core.NewEnv(core.Config{Rules: core.StandardRules(), Seed: 2, Placer: empty})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	res, err := env.Step(actionFor(core.StandardRules(), core.DirUp, nil))
	if err != nil {
		t.Fatalf("Step() with empty placer failed: %v", err)
	}
	if countOnes(res.Observation.EditMask) != 100 {
		t.Error("mask should reset to full when nothing was placed")
	}
}

func TestEnvDeterminism(t *testing.T) {
	r := core.StandardRules()
	a, _ := core.NewEnv(core.Config{Rules: r, Seed: 42})
	b, _ := core.NewEnv(core.Config{Rules: r, Seed: 42})

	rng := rand.New(rand.NewSource(99))
	for !a.Done() {
		act := make(core.Action, r.Cells())
		for i := range act {
			act[i] = rng.Intn(4)
		}
		ra, _ := a.Step(act)
		rb, _ := b.Step(act)
		if !a.Snapshot().Equal(b.Snapshot()) || ra.Reward != rb.Reward {
			t.Fatal("envs with equal seeds diverged")
		}
	}

	c, _ := core.NewEnv(core.Config{Rules: r, Seed: 43})
	a.Reseed(42)
	a.Reset()
	if a.Snapshot().Equal(c.Snapshot()) {
		t.Error("different seeds produced identical boards")
	}
}

func TestNewEnvRejectsInvalidRules(t *testing.T) {
	r := core.StandardRules()
	r.RandomDirections = false

	_, err := core.NewEnv(core.Config{Rules: r})
	var re *core.RulesError
	if !errors.As(err, &re) {
		t.Fatalf("NewEnv() error = %v, expected *RulesError", err)
	}
	if re.Field != "directions" {
		t.Errorf("Field = %s, expected directions", re.Field)
	}
}

func countOnes(xs []uint8) int {
	n := 0
	for _, x := range xs {
		if x == 1 {
			n++
		}
	}
	return n
}
