// Package routing adapts the routing puzzle engine to the terminal platform:
// the player is the router, the placer is the engine's random placer.
package routing

import (
	"math/rand"

	"github.com/vovakirdan/routeboard/internal/agent"
	"github.com/vovakirdan/routeboard/internal/config"
	platformcore "github.com/vovakirdan/routeboard/internal/core"
	"github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/registry"
)

// Variant is a playable rule preset.
type Variant struct {
	ID     string
	Title  string
	Preset config.Preset
}

// Variants lists the registered variants.
var Variants = []Variant{
	{ID: "routing", Title: "Routing", Preset: config.PresetStandard},
	{ID: "routing_classic", Title: "Routing Classic", Preset: config.PresetClassic},
}

var configPath string

// SetConfigPath sets the routing.yaml used by new episodes. Empty means the
// default search order.
func SetConfigPath(path string) {
	configPath = path
}

func init() {
	for _, v := range Variants {
		registry.Register(v.ID, func() registry.Game {
			return New(v)
		})
	}
}

// VariantByID finds a registered variant.
func VariantByID(id string) (Variant, bool) {
	for _, v := range Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// LoadRules resolves the rules of a variant: board, pieces, drain and scoring
// come from the loaded config, the switches from the variant's preset.
func LoadRules(v Variant) (core.Rules, error) {
	cfg, err := config.LoadRouting(configPath)
	if err != nil {
		return config.RulesFor(v.Preset), err
	}
	config.ApplyRulesPreset(&cfg, v.Preset)
	rules, err := cfg.CoreRules()
	if err != nil {
		return config.RulesFor(v.Preset), err
	}
	return rules, nil
}

// edit is one undoable direction change.
type edit struct {
	cell core.Coord
	prev core.Dir
}

// Game implements registry.Game for one variant.
type Game struct {
	variant Variant
	fixed   *core.Rules // set by NewWithRules; skips config loading

	rules   core.Rules
	env     *core.Env
	flow    *agent.FlowRouter
	rng     *rand.Rand
	seed    int64
	warning string

	// Pending router turn
	cursor  core.Coord
	pending *core.Grid[core.Dir]
	history []edit

	// Result of the last committed turn
	collided  map[core.Coord]bool
	lastEaten int
	lastExits int

	screenW  int
	screenH  int
	paused   bool
	gameOver bool
}

// New creates a game for a variant. Rules are loaded on Reset.
func New(v Variant) *Game {
	return &Game{variant: v}
}

// NewWithRules creates a game with fixed rules.
func NewWithRules(v Variant, rules core.Rules) *Game {
	return &Game{variant: v, fixed: &rules}
}

// ID returns the variant identifier.
func (g *Game) ID() string {
	return g.variant.ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.variant.Title
}

// Reset starts a new episode.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.seed = cfg.Seed
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.paused = false
	g.gameOver = false
	g.warning = ""

	if g.fixed != nil {
		g.rules = *g.fixed
	} else {
		rules, err := LoadRules(g.variant)
		if err != nil {
			g.warning = "config ignored: " + err.Error()
		}
		g.rules = rules
	}

	env, err := core.NewEnv(core.Config{Rules: g.rules, Seed: cfg.Seed})
	if err != nil {
		// Only reachable with invalid fixed rules.
		g.warning = err.Error()
		g.env = nil
		g.gameOver = true
		return
	}
	g.env = env
	g.flow = agent.NewFlowRouter(g.rules)
	g.cursor = core.C(g.rules.Width/2, g.rules.Height/2)
	g.collided = map[core.Coord]bool{}
	g.lastEaten = 0
	g.lastExits = 0
	g.beginTurn()
}

// beginTurn copies the board's directions into the pending edit buffer.
func (g *Game) beginTurn() {
	g.pending = g.env.Snapshot().Dirs
	g.history = g.history[:0]
}

// Step handles one frame of input.
func (g *Game) Step(input platformcore.InputFrame) platformcore.StepResult {
	if input.Has(platformcore.ActionRestart) && g.gameOver {
		g.Reset(platformcore.RuntimeConfig{
			Seed:    g.rng.Int63(),
			ScreenW: g.screenW,
			ScreenH: g.screenH,
		})
		return platformcore.StepResult{State: g.State()}
	}

	if input.Has(platformcore.ActionPause) && !g.gameOver {
		g.paused = !g.paused
	}

	if g.gameOver || g.paused || g.env == nil {
		return platformcore.StepResult{State: g.State()}
	}

	g.moveCursor(input)

	switch {
	case input.Has(platformcore.ActionSetUp):
		g.setDir(core.DirUp)
	case input.Has(platformcore.ActionSetRight):
		g.setDir(core.DirRight)
	case input.Has(platformcore.ActionSetDown):
		g.setDir(core.DirDown)
	case input.Has(platformcore.ActionSetLeft):
		g.setDir(core.DirLeft)
	case input.Has(platformcore.ActionSetNone):
		g.setDir(core.DirNone)
	case input.Has(platformcore.ActionCycle):
		g.setDir(g.pending.Get(g.cursor).Next(g.rules.AllowNone))
	}

	if input.Has(platformcore.ActionUndo) {
		g.Undo()
	}
	if input.Has(platformcore.ActionAutopilot) {
		g.Autopilot()
	}
	if input.Has(platformcore.ActionConfirm) {
		g.Commit()
	}

	return platformcore.StepResult{State: g.State()}
}

func (g *Game) moveCursor(input platformcore.InputFrame) {
	c := g.cursor
	if input.Has(platformcore.ActionUp) {
		c.Y--
	}
	if input.Has(platformcore.ActionDown) {
		c.Y++
	}
	if input.Has(platformcore.ActionLeft) {
		c.X--
	}
	if input.Has(platformcore.ActionRight) {
		c.X++
	}
	c.X = platformcore.Clamp(c.X, 0, g.rules.Width-1)
	c.Y = platformcore.Clamp(c.Y, 0, g.rules.Height-1)
	g.cursor = c
}

// editable reports whether c is inside the current edit mask.
func (g *Game) editable(c core.Coord) bool {
	return g.env.Observation().Editable(c)
}

// setDir writes d under the cursor if the cell is editable and d is legal.
func (g *Game) setDir(d core.Dir) bool {
	return g.setAt(g.cursor, d)
}

func (g *Game) setAt(c core.Coord, d core.Dir) bool {
	if !d.Valid(g.rules.AllowNone) || !g.editable(c) {
		return false
	}
	prev := g.pending.Get(c)
	if prev == d {
		return false
	}
	g.history = append(g.history, edit{cell: c, prev: prev})
	g.pending.Set(c, d)
	return true
}

// Undo reverts the most recent edit of the pending turn.
func (g *Game) Undo() bool {
	if len(g.history) == 0 {
		return false
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.pending.Set(last.cell, last.prev)
	return true
}

// Autopilot lets the flow router fill the edit mask. Each change is undoable.
func (g *Game) Autopilot() int {
	dirs, err := core.DecodeAction(g.rules, g.flow.Act(g.env.Observation()))
	if err != nil {
		return 0
	}
	changed := 0
	for i, d := range dirs.Cells {
		if g.setAt(dirs.CoordOf(i), d) {
			changed++
		}
	}
	return changed
}

// Commit submits the pending directions as the router's turn.
func (g *Game) Commit() error {
	ticksBefore := len(g.env.Ticks())
	before := g.env.Snapshot()

	res, err := g.env.Step(core.EncodeDirections(g.rules, g.pending))
	if err != nil {
		return err
	}

	g.collided = map[core.Coord]bool{}
	for _, t := range g.env.Ticks()[ticksBefore:] {
		for _, c := range t.Collisions {
			g.collided[c] = true
		}
	}
	after := g.env.Snapshot()
	g.lastEaten = after.Eaten - before.Eaten
	g.lastExits = after.Exited - before.Exited
	g.gameOver = res.Terminated
	g.beginTurn()
	return nil
}

// Env exposes the engine, mainly for tests and text play.
func (g *Game) Env() *core.Env {
	return g.env
}

// Cursor returns the cursor cell.
func (g *Game) Cursor() core.Coord {
	return g.cursor
}

// Pending returns the direction under c in the unsubmitted turn.
func (g *Game) Pending(c core.Coord) core.Dir {
	return g.pending.Get(c)
}

// Collided reports whether c saw a collision during the last committed turn.
func (g *Game) Collided(c core.Coord) bool {
	return g.collided[c]
}

// State returns the platform view of the game. Score is the final total and
// stays 0 until the episode ends.
func (g *Game) State() platformcore.GameState {
	st := platformcore.GameState{GameOver: g.gameOver, Paused: g.paused}
	if g.env != nil {
		if score, ok := g.env.Score(); ok {
			st.Score = score.Total
		}
	}
	return st
}

// Summary describes the finished episode.
func (g *Game) Summary() (platformcore.EpisodeSummary, bool) {
	if g.env == nil {
		return platformcore.EpisodeSummary{}, false
	}
	score, ok := g.env.Score()
	if !ok {
		return platformcore.EpisodeSummary{}, false
	}
	snap := g.env.Snapshot()
	return platformcore.EpisodeSummary{
		Seed:       g.seed,
		Score:      score.Total,
		DrainSteps: score.DrainSteps,
		Eaten:      score.Eaten,
		Leftover:   score.Leftover,
		Placed:     snap.Placed,
		Turns:      snap.Turn,
	}, true
}
