// Package blockfall sequences a falling-block game: resume offer, difficulty
// selection, play, pause, name entry and game over. It is the only component
// that drives the engine, the entropy pool and the ledger each tick.
package blockfall

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/entropy"
	"github.com/vovakirdan/blockfall/internal/ledger"
	"github.com/vovakirdan/blockfall/internal/persist"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// Version is shown in the HUD.
const Version = "1.0"

// messageFor is how long an on-screen notice stays up.
const messageFor = 3 * time.Second

// State is the macro state of the application.
type State int

const (
	StateLoadGame State = iota
	StateDifficulty
	StateRunning
	StatePaused
	StateSelectName
	StateSetName
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateLoadGame:
		return "load_game"
	case StateDifficulty:
		return "difficulty"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateSelectName:
		return "select_name"
	case StateSetName:
		return "set_name"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Store persists the configuration and the game in progress.
// LoadConfig returns usable defaults alongside any error.
type Store interface {
	LoadConfig() (persist.Config, error)
	SaveConfig(persist.Config) error
	LoadGame() (*engine.Session, error)
	SaveGame(*engine.Session) error
	DeleteGame() error
}

// History receives every finished game.
type History interface {
	RecordGame(storage.GameRecord) (int64, error)
}

// Jukebox is the music track list.
type Jukebox interface {
	Loaded() bool
	Current() string
	Name() string
	Position() int
	Len() int
	Next() (track string, turnOver bool)
	Prev() (track string, turnOver bool)
	Restore(path string) bool
}

// Presenter receives a read-only view of every tick.
type Presenter interface {
	Present(Snapshot)
}

// Options wires the game to its collaborators. Only Store is required.
type Options struct {
	Settings  config.Settings
	Store     Store
	History   History
	Jukebox   Jukebox
	Entropy   *entropy.Pool // Nil means a pool seeded from RuntimeConfig.Seed
	Presenter Presenter
	Logger    *log.Logger
}

// Game is the application state machine.
type Game struct {
	opts    Options
	log     *log.Logger
	scoring engine.Scoring

	state   State
	tick    uint64
	session engine.Session
	pending *engine.Session // Save offered for resume
	pool    *entropy.Pool

	ledger     *ledger.Ledger
	roster     ledger.Roster
	blockTypes int // Difficulty selection
	counter    uint32
	volume     int
	musicOff   bool
	musicPath  string

	moveDiv   int
	lastFall  time.Time
	startedAt time.Time
	lastAt    time.Time
	nameBuf   []rune
	rank      int // Position of the last inserted record, -1 if none
	recorded  bool

	message      string
	messageUntil time.Time

	screenW int
	screenH int
	debug   bool
	quit    bool
}

// New creates a game. Call Reset before the first Step.
func New(opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Settings.Timing.MoveEvery <= 0 {
		opts.Settings = config.DefaultSettings()
	}
	return &Game{
		opts:    opts,
		log:     opts.Logger.WithPrefix("game"),
		scoring: opts.Settings.Scoring.Engine(),
		ledger:  ledger.New(),
		rank:    -1,
	}
}

// ID returns the game identifier used for scores and logs.
func (g *Game) ID() string {
	return "blockfall"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Blockfall"
}

// Reset loads the configuration, looks for a saved game and enters LoadGame.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.debug = cfg.Debug
	g.tick = 0
	g.quit = false

	g.pool = g.opts.Entropy
	if g.pool == nil {
		if cfg.Seed != 0 {
			g.pool = entropy.NewSeeded(uint64(cfg.Seed))
		} else {
			g.pool = entropy.New()
		}
	}
	g.watchBoard()

	g.blockTypes = engine.MinBlockTypes
	if n, err := g.opts.Settings.Game.Difficulty.BlockTypes(); err == nil {
		g.blockTypes = n
	}

	g.loadConfig()
	g.enterLoadGame()
}

// watchBoard logs out-of-range board writes in debug mode.
func (g *Game) watchBoard() {
	if !g.debug {
		return
	}
	g.session.Board.Violation = func(op string, x, y int) {
		g.log.Error("board contract violation", "op", op, "x", x, "y", y)
	}
}

func (g *Game) loadConfig() {
	c, err := g.opts.Store.LoadConfig()
	if err != nil {
		// Missing, damaged or older files all fall back to defaults.
		g.log.Debug("using default configuration", "err", err)
	}
	g.volume = c.Volume
	g.musicOff = c.MusicPaused
	g.counter = c.GameCounter
	g.roster.SetNames(c.Names)
	g.roster.SetCurrent(c.PlayerIdx)
	for t, tb := range c.Records {
		g.ledger.SetTable(t, tb)
	}
	g.musicPath = c.MusicPath
	if jb := g.opts.Jukebox; jb != nil && jb.Loaded() {
		if !jb.Restore(c.MusicPath) {
			g.musicPath = jb.Current()
		}
		g.log.Info("playlist loaded", "tracks", jb.Len(), "track", jb.Name())
	}
}

func (g *Game) configBlob() persist.Config {
	c := persist.Config{
		Volume:      g.volume,
		MusicPaused: g.musicOff,
		GameCounter: g.counter,
		PlayerIdx:   g.roster.Index(),
		Names:       g.roster.Names(),
		MusicPath:   g.musicPath,
	}
	for t := range c.Records {
		c.Records[t] = g.ledger.Table(t)
	}
	return c
}

func (g *Game) saveConfig(at time.Time) error {
	if err := g.opts.Store.SaveConfig(g.configBlob()); err != nil {
		g.log.Warn("cannot save configuration", "err", err)
		g.notify(at, "Saving settings failed")
		return err
	}
	return nil
}

func (g *Game) saveGame(at time.Time) error {
	if err := g.opts.Store.SaveGame(&g.session); err != nil {
		g.log.Warn("cannot save game", "err", err)
		g.notify(at, "Saving game failed")
		return err
	}
	g.log.Debug("game saved", "score", g.session.Score, "figures", g.session.Figures)
	return nil
}

func (g *Game) deleteSave() {
	if err := g.opts.Store.DeleteGame(); err != nil {
		g.log.Warn("cannot delete saved game", "err", err)
	}
}

func (g *Game) notify(at time.Time, msg string) {
	g.message = msg
	g.messageUntil = at.Add(messageFor)
}

// enterLoadGame offers a compatible save for resume, or goes straight to
// difficulty selection.
func (g *Game) enterLoadGame() {
	g.pending = nil
	s, err := g.opts.Store.LoadGame()
	switch {
	case err == nil:
		g.pending = s
		g.state = StateLoadGame
		g.log.Info("saved game found", "score", s.Score, "block_types", s.BlockTypes)
		return
	case errors.Is(err, os.ErrNotExist):
	default:
		g.log.Debug("ignoring saved game", "err", err)
	}
	g.state = StateDifficulty
}

// Step advances the state machine by one tick: entropy, global keys, the
// current state's logic, then presentation.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.lastAt = in.At

	if in.AnyChanged() {
		g.pool.RecordEdge(in.At)
	}

	g.globalKeys(in)

	if !g.quit {
		switch g.state {
		case StateLoadGame:
			g.stepLoadGame(in)
		case StateDifficulty:
			g.stepDifficulty(in)
		case StateRunning:
			g.stepRunning(in)
		case StatePaused:
			g.stepPaused(in)
		case StateSelectName:
			g.stepSelectName(in)
		case StateSetName:
			g.stepSetName(in)
		case StateGameOver:
			g.stepGameOver(in)
		}
	}

	if g.message != "" && !in.At.Before(g.messageUntil) {
		g.message = ""
	}

	if g.opts.Presenter != nil {
		g.opts.Presenter.Present(g.Snapshot())
	}
	return core.StepResult{State: g.State()}
}

func (g *Game) globalKeys(in core.InputFrame) {
	if in.Held(core.ActionStart) && in.Held(core.ActionSelect) {
		g.log.Info("quit requested")
		g.quit = true
		return
	}
	if in.Hit(core.ActionVolumeDown) {
		g.changeVolume(-persist.VolumeStep)
	}
	if in.Hit(core.ActionVolumeUp) {
		g.changeVolume(persist.VolumeStep)
	}
	if in.Hit(core.ActionMute) {
		g.musicOff = !g.musicOff
		g.log.Debug("music toggled", "paused", g.musicOff)
	}
}

func (g *Game) changeVolume(delta int) {
	g.volume = core.Clamp(g.volume+delta, persist.VolumeMin, persist.VolumeMax)
}

// menuKeys handles volume and track selection shared by Paused and GameOver.
func (g *Game) menuKeys(in core.InputFrame) {
	if in.Hit(core.ActionUp) {
		g.changeVolume(persist.VolumeStep)
	}
	if in.Hit(core.ActionDown) {
		g.changeVolume(-persist.VolumeStep)
	}

	jb := g.opts.Jukebox
	if jb == nil || !jb.Loaded() {
		return
	}
	var track string
	var turnOver bool
	switch {
	case in.Hit(core.ActionRight):
		track, turnOver = jb.Next()
	case in.Hit(core.ActionLeft):
		track, turnOver = jb.Prev()
	default:
		return
	}
	g.musicPath = track
	g.log.Info("track changed", "track", jb.Name(), "pos", jb.Position(), "turn_over", turnOver)
}

func (g *Game) stepLoadGame(in core.InputFrame) {
	switch {
	case in.Hit(core.ActionConfirm):
		g.session = *g.pending
		g.watchBoard()
		g.blockTypes = g.session.BlockTypes
		g.pending = nil
		g.deleteSave()
		g.enterRunning(in.At)
		g.startedAt = in.At
		g.log.Info("game resumed", "score", g.session.Score)
	case in.Hit(core.ActionCancel):
		g.pending = nil
		g.deleteSave()
		g.state = StateDifficulty
		g.log.Info("saved game abandoned")
	}
}

func (g *Game) stepDifficulty(in core.InputFrame) {
	if in.Hit(core.ActionUp) {
		g.blockTypes = engine.ClampBlockTypes(g.blockTypes + 1)
	}
	if in.Hit(core.ActionDown) {
		g.blockTypes = engine.ClampBlockTypes(g.blockTypes - 1)
	}
	if in.Hit(core.ActionStart) || in.Hit(core.ActionConfirm) || in.Hit(core.ActionCancel) {
		g.newGame(in.At)
	}
}

func (g *Game) newGame(at time.Time) {
	g.session.Start(g.blockTypes, g.pool)
	g.counter++
	g.rank = -1
	g.recorded = false
	g.startedAt = at
	g.enterRunning(at)
	g.log.Info("game started", "game", g.counter, "block_types", g.blockTypes)
}

func (g *Game) enterRunning(at time.Time) {
	g.state = StateRunning
	g.moveDiv = 0
	g.lastFall = at
}

func (g *Game) stepRunning(in core.InputFrame) {
	if in.Hit(core.ActionStart) {
		g.state = StatePaused
		g.saveGame(in.At)
		return
	}

	// Input before the fall timer, so a manual drop and an automatic fall
	// never land in the same tick.
	if g.moveFigure(in) {
		g.lastFall = in.At
	}
	if in.Hit(core.ActionConfirm) {
		g.session.TryRotate()
	}

	if in.At.Sub(g.lastFall) < g.scoring.FallDelay(g.session.Level) {
		return
	}
	g.lastFall = in.At

	res, landed := g.session.Fall(g.pool, g.scoring)
	if landed && res.Lines > 0 {
		g.log.Debug("rows cleared", "lines", res.Lines, "points", res.Points, "score", g.session.Score)
		if res.LevelUp {
			g.log.Info("level up", "level", g.session.Level)
		}
	}
	if g.session.Over {
		g.endGame(in.At)
	}
}

// moveFigure applies held direction keys: at once on a fresh press, then
// every MoveEvery ticks. Reports whether the figure moved down.
func (g *Game) moveFigure(in core.InputFrame) bool {
	left, right, down := in.Held(core.ActionLeft), in.Held(core.ActionRight), in.Held(core.ActionDown)
	if !left && !right && !down {
		g.moveDiv = 0
		return false
	}
	if in.Hit(core.ActionLeft) || in.Hit(core.ActionRight) || in.Hit(core.ActionDown) {
		g.moveDiv = 0
	}

	movedDown := false
	if g.moveDiv == 0 {
		switch {
		case right:
			g.session.TryMove(engine.Right)
		case left:
			g.session.TryMove(engine.Left)
		}
		if down {
			movedDown = g.session.TryMove(engine.Down)
		}
	}
	g.moveDiv = (g.moveDiv + 1) % g.opts.Settings.Timing.MoveEvery
	return movedDown
}

// endGame leaves Running after the next figure failed to spawn.
func (g *Game) endGame(at time.Time) {
	g.deleteSave()
	g.log.Info("game over",
		"score", g.session.Score,
		"level", g.session.Level,
		"figures", g.session.Figures,
		"lines", g.session.Lines)

	tier, err := ledger.Tier(g.session.BlockTypes)
	if err == nil {
		if _, ok := g.ledger.WouldRank(tier, g.session.Score); ok {
			g.state = StateSelectName
			return
		}
	}
	g.enterGameOver(at, "")
}

func (g *Game) enterGameOver(at time.Time, player string) {
	g.state = StateGameOver
	g.recordHistory(at, player)
}

func (g *Game) recordHistory(at time.Time, player string) {
	if g.recorded || g.opts.History == nil {
		return
	}
	g.recorded = true
	_, err := g.opts.History.RecordGame(storage.GameRecord{
		Player:     player,
		BlockTypes: g.session.BlockTypes,
		Level:      g.session.Level,
		Score:      g.session.Score,
		Figures:    g.session.Figures,
		Lines:      g.session.Lines,
		Duration:   at.Sub(g.startedAt),
		PlayedAt:   at,
	})
	if err != nil {
		g.log.Warn("cannot record game history", "err", err)
	}
}

// commitRecord inserts the finished game under name and saves the ledger.
func (g *Game) commitRecord(at time.Time, name string) {
	tier, err := ledger.Tier(g.session.BlockTypes)
	if err == nil {
		if pos, ok := g.ledger.Insert(tier, name, g.session.Level, g.session.Score); ok {
			g.rank = pos
			g.log.Info("new record", "name", name, "tier", tier, "pos", pos+1)
		}
	}
	g.saveConfig(at)
	g.enterGameOver(at, name)
}

func (g *Game) stepPaused(in core.InputFrame) {
	if in.Hit(core.ActionStart) {
		g.enterRunning(in.At)
		return
	}
	g.menuKeys(in)
}

func (g *Game) stepSelectName(in core.InputFrame) {
	switch {
	case in.Hit(core.ActionDown):
		g.roster.Next()
	case in.Hit(core.ActionUp):
		g.roster.Prev()
	case in.Hit(core.ActionConfirm):
		if name := g.roster.Current(); name != "" {
			g.commitRecord(in.At, name)
			return
		}
		g.nameBuf = g.nameBuf[:0]
		g.state = StateSetName
	case in.Hit(core.ActionCancel):
		g.nameBuf = []rune(g.roster.Current())
		g.state = StateSetName
	}
}

func (g *Game) stepSetName(in core.InputFrame) {
	for _, r := range in.Runes {
		if len(g.nameBuf) >= ledger.PlayerNameLength || !unicode.IsPrint(r) {
			continue
		}
		g.nameBuf = append(g.nameBuf, r)
	}
	if in.Hit(core.ActionErase) && len(g.nameBuf) > 0 {
		g.nameBuf = g.nameBuf[:len(g.nameBuf)-1]
	}

	switch {
	case in.Hit(core.ActionConfirm):
		name := strings.TrimSpace(string(g.nameBuf))
		if name == "" {
			return
		}
		g.roster.Rename(name)
		g.commitRecord(in.At, name)
	case in.Hit(core.ActionCancel):
		g.enterGameOver(in.At, "")
	}
}

func (g *Game) stepGameOver(in core.InputFrame) {
	switch {
	case in.Hit(core.ActionStart):
		g.enterLoadGame()
		return
	case in.Hit(core.ActionQuit):
		g.quit = true
		return
	}
	g.menuKeys(in)
}

// Shutdown saves a game in progress and the configuration. A finished game
// still waiting for a name is recorded in the history without one.
func (g *Game) Shutdown() error {
	at := g.lastAt
	if at.IsZero() {
		at = time.Now()
	}
	var errs []error
	switch g.state {
	case StateRunning, StatePaused:
		if err := g.saveGame(at); err != nil {
			errs = append(errs, err)
		}
	case StateSelectName, StateSetName:
		g.recordHistory(at, "")
	}
	if err := g.saveConfig(at); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WantsText reports whether typed characters should reach the game as runes.
func (g *Game) WantsText() bool {
	return g.state == StateSetName
}

// State returns the coarse state the platform needs.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.session.Score,
		GameOver: g.state == StateGameOver || g.state == StateSelectName || g.state == StateSetName,
		Paused:   g.state == StatePaused,
		Quit:     g.quit,
	}
}

// Current returns the macro state.
func (g *Game) Current() State {
	return g.state
}

// Resize updates the screen dimensions used by Render.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
}
