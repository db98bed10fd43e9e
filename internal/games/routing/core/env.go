package core

import (
	"math/rand"
)

// Phase is the state of the turn-order state machine.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseRouting
	PhaseDrain
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseRouting:
		return "routing"
	case PhaseDrain:
		return "drain"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// phaseFunc runs one phase and returns the phase that follows it.
type phaseFunc func(e *Env) Phase

// phaseTable is the single dispatch point for phase transitions.
// Terminated has no handler: stepping it is a caller error.
var phaseTable = map[Phase]phaseFunc{
	PhaseInit:    (*Env).runInit,
	PhaseRouting: (*Env).runRouting,
	PhaseDrain:   (*Env).runDrain,
}

// Config configures a new Env.
type Config struct {
	Rules  Rules
	Seed   int64
	Placer Placer // nil uses a RandomPlacer on the env's own RNG
}

// StepResult is returned by Env.Step.
type StepResult struct {
	Observation Observation    `json:"observation"`
	Reward      float64        `json:"reward"`
	Terminated  bool           `json:"terminated"`
	Info        map[string]any `json:"info"`
}

// Env runs episodes of the routing puzzle. An Env is not safe for concurrent
// use; run one Env per goroutine.
type Env struct {
	rules  Rules
	rng    *rand.Rand
	placer Placer
	board  *Board
	phase  Phase
	score  Score
	ticks  []TickResult
}

// NewEnv validates the rules and returns an Env that has already been reset.
func NewEnv(cfg Config) (*Env, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	placer := cfg.Placer
	if placer == nil {
		placer = NewRandomPlacer(rng, cfg.Rules.PlacementAttempts)
	}
	e := &Env{
		rules:  cfg.Rules,
		rng:    rng,
		placer: placer,
	}
	e.Reset()
	return e, nil
}

// Reseed restarts the env's random stream. Takes effect at the next Reset.
func (e *Env) Reseed(seed int64) {
	e.rng.Seed(seed)
}

// Reset discards the current episode, runs the init phase, and returns the
// first observation.
func (e *Env) Reset() Observation {
	e.board = NewBoard(e.rules.Width, e.rules.Height, e.rules.Exit)
	e.phase = PhaseInit
	e.score = Score{}
	e.ticks = e.ticks[:0]
	e.advance()
	return e.Observation()
}

// Step applies the router's action to the masked cells, then runs the
// current phase. The reward is zero except on the terminating step, where it
// is the negated score.
func (e *Env) Step(a Action) (StepResult, error) {
	if e.phase == PhaseTerminated {
		return StepResult{}, ErrTerminated
	}
	dirs, err := DecodeAction(e.rules, a)
	if err != nil {
		return StepResult{}, err
	}

	e.board.ApplyRouterEdit(dirs)
	e.phase = phaseTable[e.phase](e)
	e.advance()

	res := StepResult{
		Observation: e.Observation(),
		Terminated:  e.phase == PhaseTerminated,
		Info:        map[string]any{},
	}
	if res.Terminated {
		res.Reward = e.score.Reward()
	}
	return res, nil
}

// advance runs phases that need no router input.
func (e *Env) advance() {
	for e.phase == PhaseInit || e.phase == PhaseDrain {
		e.phase = phaseTable[e.phase](e)
	}
}

func (e *Env) runInit() Phase {
	b := e.board
	for i := range b.Dirs.Cells {
		if e.rules.RandomDirections {
			b.Dirs.Cells[i] = MoveDirs[e.rng.Intn(len(MoveDirs))]
		} else {
			b.Dirs.Cells[i] = DirNone
		}
	}
	b.SetMaskAll()
	b.PlacerLeft = e.rules.ExtraPieces

	if e.rules.InitialPieces > 0 {
		e.place(e.rules.InitialPieces)
	}
	if e.rules.InitialMask == MaskOccupied {
		b.SetMaskOccupied()
	}
	b.checkInvariants()
	return PhaseRouting
}

func (e *Env) runRouting() Phase {
	b := e.board
	e.ticks = append(e.ticks, b.Tick(e.rules.TickRules()))
	b.Turn++

	if b.PlacerLeft == 0 {
		return PhaseDrain
	}

	last, ok := e.place(1)
	b.PlacerLeft--
	if e.rules.PlacementMask == MaskAdjacent && ok {
		b.SetMaskAround(last, e.rules.MaskRadius)
	} else {
		b.SetMaskAll()
	}
	b.checkInvariants()
	return PhaseRouting
}

func (e *Env) runDrain() Phase {
	b := e.board
	for b.Pieces() > 0 && b.DrainSteps < e.rules.DrainCeiling {
		e.ticks = append(e.ticks, b.Tick(e.rules.TickRules()))
		b.DrainSteps++
	}
	e.score = ComputeScore(e.rules.Weights, b.DrainSteps, b.Eaten, b.Pieces())
	return PhaseTerminated
}

// place asks the placer for count pieces and books the ones it added.
func (e *Env) place(count int) (Coord, bool) {
	b := e.board
	before := b.Pieces()
	last, ok := e.placer.Place(b.Occupied, count)
	added := b.Pieces() - before

	invariant(added >= 0 && added <= count, "placer added %d pieces, asked for %d", added, count)
	invariant(!ok || b.Occupied.Get(last), "placer reported %s but left it empty", last)

	b.Placed += added
	return last, ok && added > 0
}

// Observation returns the current observation.
func (e *Env) Observation() Observation {
	return Encode(e.board.Snapshot(), e.phase)
}

// Rules returns the rules this env was built with.
func (e *Env) Rules() Rules {
	return e.rules
}

// Phase returns the current phase.
func (e *Env) Phase() Phase {
	return e.phase
}

// Done reports whether the episode has terminated.
func (e *Env) Done() bool {
	return e.phase == PhaseTerminated
}

// Snapshot returns a deep copy of the board.
func (e *Env) Snapshot() Snapshot {
	return e.board.Snapshot()
}

// Score returns the final score once the episode has terminated.
func (e *Env) Score() (Score, bool) {
	return e.score, e.phase == PhaseTerminated
}

// Ticks returns every tick simulated in the current episode.
func (e *Env) Ticks() []TickResult {
	out := make([]TickResult, len(e.ticks))
	copy(out, e.ticks)
	return out
}

// LastTick returns the most recent tick, if any.
func (e *Env) LastTick() (TickResult, bool) {
	if len(e.ticks) == 0 {
		return TickResult{}, false
	}
	return e.ticks[len(e.ticks)-1], true
}

// Render returns an ASCII view of the current board.
func (e *Env) Render() string {
	return RenderASCII(e.board.Snapshot(), e.phase)
}
