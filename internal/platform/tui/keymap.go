package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/core"
)

// KeyMap binds terminal keys to the logical controls.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	Mute       key.Binding
	VolumeDown key.Binding
	VolumeUp   key.Binding
	Select     key.Binding
	Start      key.Binding
	Erase      key.Binding
	Screenshot key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "w"), key.WithHelp("↑/w", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "drop")),
		Left:       key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "right")),
		Confirm:    key.NewBinding(key.WithKeys("z", "enter"), key.WithHelp("z/enter", "rotate/accept")),
		Cancel:     key.NewBinding(key.WithKeys("x", "esc"), key.WithHelp("x/esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		VolumeDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "volume down")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		Select:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select")),
		Start:      key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space/p", "start/pause")),
		Erase:      key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "erase")),
		Screenshot: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "screenshot")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Down, k.Confirm, k.Start, k.ForceQuit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Confirm, k.Cancel, k.Start, k.Select},
		{k.Mute, k.VolumeDown, k.VolumeUp, k.Erase},
		{k.Quit, k.Screenshot, k.ForceQuit},
	}
}

// Action returns the logical key bound to msg.
func (k KeyMap) Action(msg tea.KeyMsg) (core.Action, bool) {
	bindings := []struct {
		b key.Binding
		a core.Action
	}{
		{k.Up, core.ActionUp},
		{k.Down, core.ActionDown},
		{k.Left, core.ActionLeft},
		{k.Right, core.ActionRight},
		{k.Confirm, core.ActionConfirm},
		{k.Cancel, core.ActionCancel},
		{k.Quit, core.ActionQuit},
		{k.Mute, core.ActionMute},
		{k.VolumeDown, core.ActionVolumeDown},
		{k.VolumeUp, core.ActionVolumeUp},
		{k.Select, core.ActionSelect},
		{k.Start, core.ActionStart},
		{k.Erase, core.ActionErase},
	}
	for _, e := range bindings {
		if key.Matches(msg, e.b) {
			return e.a, true
		}
	}
	return 0, false
}

// Feed routes a key message into the tracker. In text mode printable keys
// become runes instead of actions.
func (k KeyMap) Feed(t *core.KeyTracker, msg tea.KeyMsg, textMode bool, at time.Time) {
	if textMode && (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) {
		if msg.Type == tea.KeySpace {
			t.Type(' ')
			return
		}
		for _, r := range msg.Runes {
			t.Type(r)
		}
		return
	}
	if a, ok := k.Action(msg); ok {
		t.Press(a, at)
	}
}
