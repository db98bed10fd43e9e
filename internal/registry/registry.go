// Package registry maps game IDs to factories so the platform can start a
// puzzle variant by name. Variants register themselves in init().
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/routeboard/internal/core"
)

// Game is what the terminal platform drives. Implementations hold pure
// logic; input mapping, timing and styling belong to the platform.
type Game interface {
	// ID identifies the variant in CLI flags and stored episodes.
	ID() string

	// Title is the display name shown in menus.
	Title() string

	// Reset starts a new episode using the runtime seed.
	Reset(cfg core.RuntimeConfig)

	// Step consumes one frame of semantic input.
	Step(in core.InputFrame) core.StepResult

	// Render draws into a pre-cleared screen.
	Render(dst *core.Screen)

	// State reports score and game-over status.
	State() core.GameState
}

// Summarizer is implemented by games that can describe a finished episode
// in more detail than GameState carries.
type Summarizer interface {
	Summary() (core.EpisodeSummary, bool)
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered games sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
