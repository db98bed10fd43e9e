package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/routeboard/internal/core"
)

// GameKeyMap holds the key bindings used while playing.
type GameKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	SetUp     key.Binding
	SetRight  key.Binding
	SetDown   key.Binding
	SetLeft   key.Binding
	SetNone   key.Binding
	Cycle     key.Binding
	Undo      key.Binding
	Autopilot key.Binding
	Commit    key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Undo, k.Autopilot, k.Commit, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.SetUp, k.SetRight, k.SetDown, k.SetLeft, k.SetNone},
		{k.Cycle, k.Undo, k.Autopilot, k.Commit},
		{k.Pause, k.Restart, k.Back, k.Help, k.Quit},
	}
}

// DefaultGameKeyMap returns the default bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "cursor up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "cursor down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "cursor left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cursor right")),
		SetUp:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "point up")),
		SetRight:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "point right")),
		SetDown:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "point down")),
		SetLeft:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "point left")),
		SetNone:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Cycle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "rotate")),
		Undo:      key.NewBinding(key.WithKeys("u", "backspace"), key.WithHelp("u", "undo")),
		Autopilot: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "autopilot")),
		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit turn")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Back:      key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "menu")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct {
	keys     GameKeyMap
	bindings []binding
}

type binding struct {
	key    key.Binding
	action core.Action
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	k := DefaultGameKeyMap()
	return &KeyMapper{
		keys: k,
		bindings: []binding{
			{k.Up, core.ActionUp},
			{k.Down, core.ActionDown},
			{k.Left, core.ActionLeft},
			{k.Right, core.ActionRight},
			{k.SetUp, core.ActionSetUp},
			{k.SetRight, core.ActionSetRight},
			{k.SetDown, core.ActionSetDown},
			{k.SetLeft, core.ActionSetLeft},
			{k.SetNone, core.ActionSetNone},
			{k.Cycle, core.ActionCycle},
			{k.Undo, core.ActionUndo},
			{k.Autopilot, core.ActionAutopilot},
			{k.Commit, core.ActionConfirm},
			{k.Pause, core.ActionPause},
			{k.Restart, core.ActionRestart},
			{k.Back, core.ActionBack},
			{k.Quit, core.ActionQuit},
		},
	}
}

// Keys returns the bindings, for help rendering.
func (km *KeyMapper) Keys() GameKeyMap {
	return km.keys
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	for _, b := range km.bindings {
		if key.Matches(msg, b.key) {
			return b.action, b.action == core.ActionQuit
		}
	}
	return core.ActionNone, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab":
		return MenuActionScoreboard
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
