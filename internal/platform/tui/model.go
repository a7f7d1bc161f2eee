package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
)

// Game is what the terminal loop drives.
type Game interface {
	ID() string
	Reset(cfg core.RuntimeConfig)
	Step(in core.InputFrame) core.StepResult
	Render(dst *core.Screen)
	Resize(w, h int)
	WantsText() bool
	Shutdown() error
}

// Options tunes the terminal loop.
type Options struct {
	ReleaseAfter  time.Duration // Synthesized key release delay
	ScreenshotDir string        // Empty disables ctrl+s
	Logger        *log.Logger
}

// Model is the Bubble Tea model for running the game.
type Model struct {
	game     Game
	screen   *core.Screen
	keys     KeyMap
	tracker  *core.KeyTracker
	config   core.RuntimeConfig
	opts     Options
	log      *log.Logger
	state    core.GameState
	quitting bool
	err      error // Shutdown error, reported by Run
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game Game, cfg core.RuntimeConfig, opts Options) Model {
	if opts.ReleaseAfter <= 0 {
		opts.ReleaseAfter = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return Model{
		game:    game,
		screen:  core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		keys:    DefaultKeyMap(),
		tracker: core.NewKeyTracker(opts.ReleaseAfter),
		config:  cfg,
		opts:    opts,
		log:     opts.Logger.WithPrefix("tui"),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.quit()
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	m.keys.Feed(m.tracker, msg, m.game.WantsText(), time.Now())
	return m, nil
}

// handleResize processes window resize events. The game keeps its state.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.game.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	result := m.game.Step(m.tracker.Poll(now))
	if result.State.GameOver && !m.state.GameOver {
		m.log.Debug("game over", "score", result.State.Score)
	}
	m.state = result.State

	if m.state.Quit {
		return m.quit()
	}
	return m, tickCmd(m.config.TickRate)
}

// quit saves through the game and stops the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.game.Shutdown(); err != nil {
		m.log.Error("shutdown", "err", err)
		m.err = err
	}
	return m, tea.Quit
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.opts.ScreenshotDir == "" {
		return
	}
	m.game.Render(m.screen)

	if err := os.MkdirAll(m.opts.ScreenshotDir, 0o755); err != nil {
		m.log.Warn("screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(m.opts.ScreenshotDir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("screenshot", "err", err)
		return
	}
	m.log.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program and blocks until the game exits.
// The game is always shut down, also when the program fails.
func Run(game Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if m, ok := final.(Model); ok && m.quitting {
		return errors.Join(err, m.err)
	}
	return errors.Join(err, game.Shutdown())
}
