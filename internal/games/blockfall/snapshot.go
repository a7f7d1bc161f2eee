package blockfall

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/entropy"
	"github.com/vovakirdan/blockfall/internal/ledger"
)

// Snapshot is a read-only copy of everything a presenter may show.
type Snapshot struct {
	Tick        uint64
	State       State
	Board       engine.Grid
	Figure      engine.Figure
	Score       int
	Level       int
	Figures     int
	Lines       int
	BlockTypes  int // Difficulty of the session, or the selection before play
	GameCounter uint32
	Volume      int
	MusicPaused bool
	Track       string
	HasSave     bool
	RosterIdx   int
	Names       [ledger.MaxPlayers]string
	NameInput   string
	Records     []ledger.Record // Records of the current tier
	Rank        int             // Position of the record just inserted, -1 if none
	Message     string
	Entropy     entropy.Snapshot
	Debug       bool
}

// Snapshot returns the current state.
func (g *Game) Snapshot() Snapshot {
	bt := g.blockTypes
	if g.state != StateDifficulty && g.state != StateLoadGame {
		bt = g.session.BlockTypes
	}
	var recs []ledger.Record
	if tier, err := ledger.Tier(bt); err == nil {
		recs = g.ledger.Records(tier)
	}

	s := Snapshot{
		Tick:        g.tick,
		State:       g.state,
		Board:       g.session.Board.Cells(),
		Figure:      g.session.Figure,
		Score:       g.session.Score,
		Level:       g.session.Level,
		Figures:     g.session.Figures,
		Lines:       g.session.Lines,
		BlockTypes:  bt,
		GameCounter: g.counter,
		Volume:      g.volume,
		MusicPaused: g.musicOff,
		HasSave:     g.pending != nil,
		RosterIdx:   g.roster.Index(),
		Names:       g.roster.Names(),
		NameInput:   string(g.nameBuf),
		Records:     recs,
		Rank:        g.rank,
		Message:     g.message,
		Debug:       g.debug,
	}
	if g.pool != nil {
		s.Entropy = g.pool.Snapshot()
	}
	if jb := g.opts.Jukebox; jb != nil && jb.Loaded() {
		s.Track = jb.Name()
	}
	return s
}

// DebugState returns a string representation of the game state.
func (g *Game) DebugState() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d, State: %s, Score: %d, Level: %d\n", g.tick, g.state, g.session.Score, g.session.Level)
	fmt.Fprintf(&b, "Figures: %d, Lines: %d, BlockTypes: %d\n", g.session.Figures, g.session.Lines, g.session.BlockTypes)
	f := g.session.Figure
	fmt.Fprintf(&b, "Figure: %v at (%d, %d) orient %d\n", f.Blocks, f.X, f.Y, f.Orient)
	return b.String()
}
