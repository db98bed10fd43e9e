package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/routeboard/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{"arrow left", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{"set up", runeKey('w'), core.ActionSetUp, false},
		{"set left", runeKey('a'), core.ActionSetLeft, false},
		{"set down", runeKey('s'), core.ActionSetDown, false},
		{"set right", runeKey('d'), core.ActionSetRight, false},
		{"clear", runeKey('x'), core.ActionSetNone, false},
		{"rotate", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionCycle, false},
		{"undo", runeKey('u'), core.ActionUndo, false},
		{"autopilot", runeKey('f'), core.ActionAutopilot, false},
		{"commit", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, false},
		{"back", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{"quit", runeKey('q'), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", runeKey('z'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			require.Equal(t, tt.action, action)
			require.Equal(t, tt.quit, quit)
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	require.Equal(t, MenuActionUp, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyUp}))
	require.Equal(t, MenuActionDown, km.MapKeyToMenuAction(runeKey('j')))
	require.Equal(t, MenuActionSelect, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, MenuActionScoreboard, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyTab}))
	require.Equal(t, MenuActionBack, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyEsc}))
	require.Equal(t, MenuActionQuit, km.MapKeyToMenuAction(runeKey('q')))
	require.Equal(t, MenuActionNone, km.MapKeyToMenuAction(runeKey('z')))
}

func TestHelpCoversBindings(t *testing.T) {
	keys := DefaultGameKeyMap()
	total := 0
	for _, col := range keys.FullHelp() {
		total += len(col)
	}
	require.Equal(t, 18, total)
	require.NotEmpty(t, keys.ShortHelp())
}
