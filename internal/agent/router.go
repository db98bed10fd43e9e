// Package agent provides baseline routers that play the router role through
// the observation/action codec.
package agent

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// Router chooses the directions for one router turn.
type Router interface {
	Name() string
	Act(obs core.Observation) core.Action
}

// Factory builds a router for a rule set.
type Factory func(rules core.Rules, seed int64) Router

var routers = map[string]Factory{
	"keep":   func(r core.Rules, _ int64) Router { return NewKeepRouter(r) },
	"random": func(r core.Rules, seed int64) Router { return NewRandomRouter(r, seed) },
	"flow":   func(r core.Rules, _ int64) Router { return NewFlowRouter(r) },
}

// New builds a router by name.
func New(name string, rules core.Rules, seed int64) (Router, error) {
	f, ok := routers[name]
	if !ok {
		return nil, fmt.Errorf("agent: unknown router %q (available: %v)", name, Names())
	}
	return f(rules, seed), nil
}

// Names lists the available routers, sorted.
func Names() []string {
	names := make([]string, 0, len(routers))
	for name := range routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeepRouter resubmits the current directions.
type KeepRouter struct {
	rules core.Rules
}

func NewKeepRouter(rules core.Rules) *KeepRouter {
	return &KeepRouter{rules: rules}
}

func (k *KeepRouter) Name() string { return "keep" }

func (k *KeepRouter) Act(obs core.Observation) core.Action {
	return core.EncodeDirections(k.rules, obs.DirGrid())
}

// RandomRouter picks a uniform category for every editable cell.
type RandomRouter struct {
	rules core.Rules
	rng   *rand.Rand
}

func NewRandomRouter(rules core.Rules, seed int64) *RandomRouter {
	return &RandomRouter{rules: rules, rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomRouter) Name() string { return "random" }

func (r *RandomRouter) Act(obs core.Observation) core.Action {
	a := core.EncodeDirections(r.rules, obs.DirGrid())
	n := r.rules.Categories()
	for i, m := range obs.EditMask {
		if m == 1 {
			a[i] = r.rng.Intn(n)
		}
	}
	return a
}
