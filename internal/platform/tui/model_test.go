package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/routeboard/internal/core"
	"github.com/vovakirdan/routeboard/internal/games/routing"
	routingcore "github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	next, _ = next.(Model).Update(TickMsg{})
	return next.(Model)
}

func newTestModel(t *testing.T, store *storage.Store) Model {
	t.Helper()
	game := routing.NewWithRules(routing.Variants[0], routingcore.StandardRules())
	cfg := core.RuntimeConfig{ScreenW: 100, ScreenH: 40, TickRate: 30, Seed: 7}
	return NewModel(game, store, storage.SourceSSH, cfg)
}

func TestModelPlaysEpisodeAndSavesOnce(t *testing.T) {
	store := openStore(t)
	m := newTestModel(t, store)
	require.False(t, m.State().GameOver)

	for i := 0; i < 500 && !m.State().GameOver; i++ {
		m = press(m, runeKey('f'))
		m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	require.True(t, m.State().GameOver)

	// Extra ticks after game over must not store the episode again.
	m = press(m, runeKey('z'))
	m = press(m, runeKey('z'))

	episodes, err := store.TopEpisodes(routing.Variants[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.Equal(t, storage.SourceSSH, episodes[0].Source)
	require.Equal(t, int64(7), episodes[0].Seed)
	require.Equal(t, m.State().Score, episodes[0].Score)
}

func TestModelResizeKeepsBoard(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, runeKey('w'))

	game := m.game.(*routing.Game)
	cursor := game.Cursor()
	pending := game.Pending(cursor)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	m = next.(Model)

	require.Equal(t, cursor, game.Cursor())
	require.Equal(t, pending, game.Pending(cursor))
	require.Equal(t, 120, m.screen.Width())
}

func TestModelBackAndQuit(t *testing.T) {
	m := newTestModel(t, nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, next.(Model).BackToMenu())

	next, cmd := m.Update(runeKey('q'))
	require.True(t, next.(Model).IsQuitting())
	require.NotNil(t, cmd)
	require.Empty(t, next.(Model).View())
}

func TestModelViewShowsBoard(t *testing.T) {
	m := newTestModel(t, nil)
	view := m.View()
	require.True(t, strings.Contains(view, "Routing"), "view should contain title")
}

func TestModelHelpToggle(t *testing.T) {
	m := newTestModel(t, nil)

	next, _ := m.Update(runeKey('?'))
	m = next.(Model)
	require.Contains(t, m.View(), "cursor up")

	next, _ = m.Update(runeKey('?'))
	m = next.(Model)
	require.NotContains(t, m.View(), "cursor up")
}
