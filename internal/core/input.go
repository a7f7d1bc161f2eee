package core

import "time"

// Action is a logical key of the handheld-style control layout.
// The platform maps physical keys onto these; games only see actions.
type Action int

const (
	ActionUp         Action = iota // D-pad up
	ActionDown                     // D-pad down
	ActionLeft                     // D-pad left
	ActionRight                    // D-pad right
	ActionConfirm                  // A - rotate, accept
	ActionCancel                   // B - abandon, change name
	ActionQuit                     // X - quit after game over
	ActionMute                     // Y - toggle music
	ActionVolumeDown               // left trigger
	ActionVolumeUp                 // right trigger
	ActionSelect                   // Select
	ActionStart                    // Start - pause, replay
	ActionErase                    // Backspace during name entry

	actionCount
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionConfirm:
		return "Confirm"
	case ActionCancel:
		return "Cancel"
	case ActionQuit:
		return "Quit"
	case ActionMute:
		return "Mute"
	case ActionVolumeDown:
		return "VolumeDown"
	case ActionVolumeUp:
		return "VolumeUp"
	case ActionSelect:
		return "Select"
	case ActionStart:
		return "Start"
	case ActionErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// Actions lists every logical key in declaration order.
func Actions() []Action {
	all := make([]Action, actionCount)
	for i := range all {
		all[i] = Action(i)
	}
	return all
}

// KeyState is the level and edge state of one logical key for one tick.
type KeyState struct {
	Pressed bool // Current level
	Changed bool // Level differs from the previous tick
}

// InputFrame is everything the input device reports for a single tick.
type InputFrame struct {
	At    time.Time // When the frame was polled
	Keys  [actionCount]KeyState
	Runes []rune // Printable characters typed this tick (name entry)
}

// NewInputFrame creates an empty frame stamped with the given time.
func NewInputFrame(at time.Time) InputFrame {
	return InputFrame{At: at}
}

// Key returns the state of a logical key.
func (f InputFrame) Key(a Action) KeyState {
	if a < 0 || a >= actionCount {
		return KeyState{}
	}
	return f.Keys[a]
}

// Held reports whether the key is currently down.
func (f InputFrame) Held(a Action) bool {
	return f.Key(a).Pressed
}

// Hit reports a fresh press: pressed this tick and not on the previous one.
func (f InputFrame) Hit(a Action) bool {
	k := f.Key(a)
	return k.Pressed && k.Changed
}

// AnyChanged reports whether any key transitioned this tick.
func (f InputFrame) AnyChanged() bool {
	for _, k := range f.Keys {
		if k.Changed {
			return true
		}
	}
	return false
}

// Press marks a key as down with a rising edge. Handy for tests and scripted input.
func (f *InputFrame) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	f.Keys[a] = KeyState{Pressed: true, Changed: true}
}

// Hold marks a key as down without an edge.
func (f *InputFrame) Hold(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	f.Keys[a] = KeyState{Pressed: true}
}

// KeyTracker turns a stream of key-press events into per-tick frames.
//
// Terminals report presses (and auto-repeat) but not releases, so a key is
// considered released once no press for it has arrived within ReleaseAfter.
// The first press after a release produces a rising edge; the synthesized
// release produces a falling edge on the tick it is detected.
type KeyTracker struct {
	ReleaseAfter time.Duration

	lastPress [actionCount]time.Time
	down      [actionCount]bool
	pending   [actionCount]bool
	runes     []rune
}

// NewKeyTracker creates a tracker with the given release timeout.
func NewKeyTracker(releaseAfter time.Duration) *KeyTracker {
	return &KeyTracker{ReleaseAfter: releaseAfter}
}

// Press records a key press (or terminal auto-repeat) at the given time.
func (t *KeyTracker) Press(a Action, at time.Time) {
	if a < 0 || a >= actionCount {
		return
	}
	t.lastPress[a] = at
	t.pending[a] = true
}

// Type queues a printable rune for the next frame.
func (t *KeyTracker) Type(r rune) {
	t.runes = append(t.runes, r)
}

// Poll builds the frame for the tick at now and resets per-tick buffers.
func (t *KeyTracker) Poll(now time.Time) InputFrame {
	frame := NewInputFrame(now)
	for i := range t.down {
		wasDown := t.down[i]
		isDown := t.pending[i] || (wasDown && now.Sub(t.lastPress[i]) < t.ReleaseAfter)
		t.down[i] = isDown
		t.pending[i] = false
		frame.Keys[i] = KeyState{Pressed: isDown, Changed: isDown != wasDown}
	}
	if len(t.runes) > 0 {
		frame.Runes = t.runes
		t.runes = nil
	}
	return frame
}
