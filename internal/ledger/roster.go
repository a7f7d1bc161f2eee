package ledger

const (
	// MaxPlayers is the number of roster slots.
	MaxPlayers = 12
	// PlayerNameLength is the maximum visible length of a name.
	PlayerNameLength = 8
)

// Roster is a fixed list of player names with a cursor on the current one.
type Roster struct {
	names   [MaxPlayers]string
	current int
}

// TruncateName cuts a name to PlayerNameLength runes.
func TruncateName(name string) string {
	r := []rune(name)
	if len(r) > PlayerNameLength {
		r = r[:PlayerNameLength]
	}
	return string(r)
}

// Current returns the selected name, possibly empty.
func (r *Roster) Current() string {
	return r.names[r.current]
}

// Index returns the cursor position.
func (r *Roster) Index() int {
	return r.current
}

// SetCurrent moves the cursor, clamped to the roster.
func (r *Roster) SetCurrent(i int) {
	switch {
	case i < 0:
		i = 0
	case i >= MaxPlayers:
		i = MaxPlayers - 1
	}
	r.current = i
}

// Next moves the cursor down one slot, stopping at the last.
func (r *Roster) Next() {
	r.SetCurrent(r.current + 1)
}

// Prev moves the cursor up one slot, stopping at the first.
func (r *Roster) Prev() {
	r.SetCurrent(r.current - 1)
}

// Rename sets the name in the current slot.
func (r *Roster) Rename(name string) {
	r.names[r.current] = TruncateName(name)
}

// Names returns every slot.
func (r *Roster) Names() [MaxPlayers]string {
	return r.names
}

// SetNames replaces every slot, truncating overlong names.
func (r *Roster) SetNames(names [MaxPlayers]string) {
	for i, n := range names {
		r.names[i] = TruncateName(n)
	}
}
