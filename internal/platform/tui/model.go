package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/routeboard/internal/core"
	"github.com/vovakirdan/routeboard/internal/registry"
	"github.com/vovakirdan/routeboard/internal/storage"
)

// Model is the Bubble Tea model for playing one routing variant.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	source     string
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	help       help.Model
	showHelp   bool
	quitting   bool
	backToMenu bool
	saved      bool // episode already persisted for this game over
	saveErr    error
}

// NewModel creates a new Bubble Tea model for the given game.
// source tags persisted episodes (storage.SourceTUI, storage.SourceSSH).
func NewModel(game registry.Game, store *storage.Store, source string, cfg core.RuntimeConfig) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if source == "" {
		source = storage.SourceTUI
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		source:     source,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		help:       help.New(),
	}
	m.help.ShowAll = true
	m.help.Width = cfg.ScreenW
	// Reset here so the first frame already shows a board.
	game.Reset(cfg)
	m.gameState = game.State()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The board is turn based; resizing only changes the layout.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}
	if key.Matches(msg, m.keyMapper.Keys().Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		return m, tea.Quit
	case action == core.ActionBack:
		m.backToMenu = true
		return m, tea.Quit
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick feeds the buffered input to the game.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.saved = false
		m.saveErr = nil
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	if !m.inputFrame.Empty() {
		result := m.game.Step(m.inputFrame)
		m.gameState = result.State
		m.inputFrame.Clear()
	}

	if m.gameState.GameOver && !m.saved {
		m.saveErr = m.saveEpisode()
		m.saved = true
	}

	return m, tickCmd(m.config.TickRate)
}

// saveEpisode stores the finished episode. Zero is the best possible
// score, so every finished episode is saved.
func (m *Model) saveEpisode() error {
	if m.store == nil {
		return nil
	}
	s, ok := m.game.(registry.Summarizer)
	if !ok {
		return nil
	}
	sum, ok := s.Summary()
	if !ok {
		return nil
	}
	_, err := m.store.SaveEpisode(storage.EpisodeRecord{
		Variant:    m.game.ID(),
		Seed:       sum.Seed,
		Score:      sum.Score,
		DrainSteps: sum.DrainSteps,
		Eaten:      sum.Eaten,
		Leftover:   sum.Leftover,
		Placed:     sum.Placed,
		Turns:      sum.Turns,
		Source:     m.source,
	})
	return err
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.screen.Clear()
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".routeboard", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showHelp {
		return "\n " + m.game.Title() + " controls\n\n" + m.help.View(m.keyMapper.Keys()) + "\n\n ? to return"
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	out := RenderScreen(m.screen)
	if m.saveErr != nil {
		out += "\n" + colorStyles[core.ColorRed].Render("could not save episode: "+m.saveErr.Error())
	}
	return out
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// State returns the last reported game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// Run starts the Bubble Tea program with the given game.
// Returns true if the player asked to go back to the menu.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig) (backToMenu bool, err error) {
	model := NewModel(game, store, storage.SourceTUI, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(Model)
	return ok && m.BackToMenu(), nil
}
