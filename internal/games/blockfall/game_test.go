package blockfall

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/ledger"
	"github.com/vovakirdan/blockfall/internal/persist"
	"github.com/vovakirdan/blockfall/internal/playlist"
	"github.com/vovakirdan/blockfall/internal/storage"
)

type historyLog struct {
	games []storage.GameRecord
}

func (h *historyLog) RecordGame(r storage.GameRecord) (int64, error) {
	h.games = append(h.games, r)
	return int64(len(h.games)), nil
}

type presenterLog struct {
	frames []Snapshot
}

func (p *presenterLog) Present(s Snapshot) {
	p.frames = append(p.frames, s)
}

// brokenStore fails every game save.
type brokenStore struct {
	*persist.Store
}

func (brokenStore) SaveGame(*engine.Session) error {
	return errors.New("disk full")
}

// clock produces frames 16ms apart.
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) press(keys ...core.Action) core.InputFrame {
	c.t = c.t.Add(16 * time.Millisecond)
	f := core.NewInputFrame(c.t)
	for _, k := range keys {
		f.Press(k)
	}
	return f
}

func (c *clock) hold(keys ...core.Action) core.InputFrame {
	c.t = c.t.Add(16 * time.Millisecond)
	f := core.NewInputFrame(c.t)
	for _, k := range keys {
		f.Hold(k)
	}
	return f
}

func (c *clock) typed(text string) core.InputFrame {
	f := c.press()
	f.Runes = []rune(text)
	return f
}

type fixture struct {
	dir     string
	store   *persist.Store
	history *historyLog
	clock   *clock
	game    *Game
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	fx := &fixture{
		dir:     dir,
		store:   persist.NewStore(dir),
		history: &historyLog{},
		clock:   newClock(),
	}
	fx.game = fx.newGame(Options{})
	return fx
}

func (fx *fixture) newGame(opts Options) *Game {
	opts.Settings = config.DefaultSettings()
	if opts.Store == nil {
		opts.Store = fx.store
	}
	opts.History = fx.history
	g := New(opts)
	cfg := core.DefaultConfig()
	cfg.Seed = 7
	g.Reset(cfg)
	return g
}

func (fx *fixture) step(f core.InputFrame) {
	fx.game.Step(f)
}

func (fx *fixture) start(t *testing.T) {
	t.Helper()
	require.Equal(t, StateDifficulty, fx.game.Current())
	fx.step(fx.clock.press(core.ActionStart))
	require.Equal(t, StateRunning, fx.game.Current())
}

func (fx *fixture) saveExists() bool {
	_, err := os.Stat(filepath.Join(fx.dir, persist.GameFile))
	return err == nil
}

func TestStartsAtDifficultyWithoutSave(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, StateDifficulty, fx.game.Current())
	assert.Equal(t, engine.MinBlockTypes, fx.game.Snapshot().BlockTypes)
}

func TestDifficultySelectionClamps(t *testing.T) {
	fx := newFixture(t)

	for i := 0; i < 10; i++ {
		fx.step(fx.clock.press(core.ActionUp))
	}
	assert.Equal(t, engine.MaxBlockTypes, fx.game.Snapshot().BlockTypes)

	for i := 0; i < 10; i++ {
		fx.step(fx.clock.press(core.ActionDown))
	}
	assert.Equal(t, engine.MinBlockTypes, fx.game.Snapshot().BlockTypes)

	fx.step(fx.clock.press(core.ActionUp))
	fx.step(fx.clock.press(core.ActionConfirm))
	snap := fx.game.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, engine.MinBlockTypes+1, snap.BlockTypes)
	assert.Equal(t, uint32(1), snap.GameCounter)
}

func TestPauseSavesAndResumeOffersSave(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.game.session.Score = 70

	fx.step(fx.clock.press(core.ActionStart))
	require.Equal(t, StatePaused, fx.game.Current())
	require.True(t, fx.saveExists())

	g2 := fx.newGame(Options{})
	require.Equal(t, StateLoadGame, g2.Current())
	assert.True(t, g2.Snapshot().HasSave)

	g2.Step(fx.clock.press(core.ActionConfirm))
	assert.Equal(t, StateRunning, g2.Current())
	assert.Equal(t, 70, g2.Snapshot().Score)
	assert.False(t, fx.saveExists(), "resuming consumes the save")
}

func TestAbandonSaveDeletesIt(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.step(fx.clock.press(core.ActionStart))
	require.True(t, fx.saveExists())

	g2 := fx.newGame(Options{})
	g2.Step(fx.clock.press(core.ActionCancel))
	assert.Equal(t, StateDifficulty, g2.Current())
	assert.False(t, fx.saveExists())
}

func TestPauseResume(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.step(fx.clock.press(core.ActionStart))
	require.Equal(t, StatePaused, fx.game.Current())

	y := fx.game.session.Figure.Y
	for i := 0; i < 200; i++ {
		fx.step(fx.clock.press())
	}
	assert.Equal(t, y, fx.game.session.Figure.Y, "nothing falls while paused")

	fx.step(fx.clock.press(core.ActionStart))
	assert.Equal(t, StateRunning, fx.game.Current())
}

func TestAutomaticFall(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	y := fx.game.session.Figure.Y
	delay := config.DefaultSettings().Scoring.Engine().FallDelay(1)

	ticks := int(delay/(16*time.Millisecond)) + 1
	for i := 0; i < ticks; i++ {
		fx.step(fx.clock.press())
	}
	assert.Equal(t, y+1, fx.game.session.Figure.Y)
}

func TestHeldMoveRepeatsEveryFewTicks(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	x := fx.game.session.Figure.X

	fx.step(fx.clock.press(core.ActionLeft))
	assert.Equal(t, x-1, fx.game.session.Figure.X, "a fresh press moves at once")

	fx.step(fx.clock.hold(core.ActionLeft))
	fx.step(fx.clock.hold(core.ActionLeft))
	assert.Equal(t, x-1, fx.game.session.Figure.X)

	fx.step(fx.clock.hold(core.ActionLeft))
	assert.Equal(t, x-2, fx.game.session.Figure.X)
}

func TestRotateOnConfirm(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	// Let the figure fall clear of the top row first.
	fx.game.session.Figure.Y = 5
	orient := fx.game.session.Figure.Orient

	fx.step(fx.clock.press(core.ActionConfirm))
	assert.NotEqual(t, orient, fx.game.session.Figure.Orient)
}

// Holding Down at the lowest difficulty stacks figures in the spawn column
// until one cannot spawn. The figure never overlaps the board meanwhile, and
// the game leaves Running.
func TestDropUntilGameOver(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	g := fx.game

	fx.step(fx.clock.press(core.ActionDown))
	for i := 0; i < 10000 && g.Current() == StateRunning; i++ {
		require.True(t, g.session.Figure.Fits(&g.session.Board), "tick %d", i)
		fx.step(fx.clock.hold(core.ActionDown))
	}

	require.NotEqual(t, StateRunning, g.Current())
	assert.True(t, g.session.Over)
	assert.False(t, g.session.Figure.Fits(&g.session.Board))
	assert.Equal(t, StateGameOver, g.Current(), "a zero score does not rank")
	assert.True(t, g.State().GameOver)
	require.Len(t, fx.history.games, 1)
	assert.Equal(t, g.session.Figures, fx.history.games[0].Figures)
	assert.False(t, fx.saveExists())
}

func TestRankedGameAsksForName(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	g := fx.game
	g.session.Score = 500
	g.session.Level = 6
	g.endGame(fx.clock.t)
	require.Equal(t, StateSelectName, g.Current())

	// Empty roster slot: Confirm switches to typing.
	fx.step(fx.clock.press(core.ActionConfirm))
	require.Equal(t, StateSetName, g.Current())
	assert.True(t, g.WantsText())

	fx.step(fx.clock.typed("Anx"))
	fx.step(fx.clock.press(core.ActionErase))
	fx.step(fx.clock.typed("n"))
	assert.Equal(t, "Ann", g.Snapshot().NameInput)

	fx.step(fx.clock.press(core.ActionConfirm))
	require.Equal(t, StateGameOver, g.Current())

	snap := g.Snapshot()
	assert.Equal(t, 0, snap.Rank)
	assert.Equal(t, ledger.Record{Name: "Ann", Level: 6, Score: 500}, snap.Records[0])
	assert.Equal(t, "Ann", snap.Names[0])
	require.Len(t, fx.history.games, 1)
	assert.Equal(t, "Ann", fx.history.games[0].Player)

	c, err := fx.store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Names[0])
	assert.Equal(t, 500, c.Records[0][0].Score)
}

func TestNameEntryIsBounded(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.game.session.Score = 50
	fx.game.endGame(fx.clock.t)
	fx.step(fx.clock.press(core.ActionCancel))
	require.Equal(t, StateSetName, fx.game.Current())

	fx.step(fx.clock.typed("abcdefghijkl"))
	assert.Equal(t, "abcdefgh", fx.game.Snapshot().NameInput)

	// Confirm with only spaces is ignored.
	for i := 0; i < ledger.PlayerNameLength; i++ {
		fx.step(fx.clock.press(core.ActionErase))
	}
	fx.step(fx.clock.typed("  "))
	fx.step(fx.clock.press(core.ActionConfirm))
	assert.Equal(t, StateSetName, fx.game.Current())
}

func TestSelectExistingName(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	g := fx.game
	g.roster.SetCurrent(2)
	g.roster.Rename("Bea")
	g.roster.SetCurrent(0)

	g.session.Score = 40
	g.endGame(fx.clock.t)
	fx.step(fx.clock.press(core.ActionDown))
	fx.step(fx.clock.press(core.ActionDown))
	fx.step(fx.clock.press(core.ActionConfirm))

	require.Equal(t, StateGameOver, g.Current())
	assert.Equal(t, "Bea", g.Snapshot().Records[0].Name)
}

func TestSetNameCancelSkipsRecord(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	g := fx.game
	g.session.Score = 40
	g.endGame(fx.clock.t)
	fx.step(fx.clock.press(core.ActionCancel))
	fx.step(fx.clock.press(core.ActionCancel))

	require.Equal(t, StateGameOver, g.Current())
	assert.Equal(t, ledger.DefaultTable()[0], g.Snapshot().Records[0])
	assert.Equal(t, -1, g.Snapshot().Rank)
	require.Len(t, fx.history.games, 1)
	assert.Empty(t, fx.history.games[0].Player)
}

func TestReplayIncrementsCounter(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.game.endGame(fx.clock.t)
	require.Equal(t, StateGameOver, fx.game.Current())

	fx.step(fx.clock.press(core.ActionStart))
	require.Equal(t, StateDifficulty, fx.game.Current())
	fx.step(fx.clock.press(core.ActionStart))
	assert.Equal(t, StateRunning, fx.game.Current())
	assert.Equal(t, uint32(2), fx.game.Snapshot().GameCounter)
	assert.Zero(t, fx.game.Snapshot().Score)
}

func TestQuitAfterGameOver(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.game.endGame(fx.clock.t)

	fx.step(fx.clock.press(core.ActionQuit))
	assert.True(t, fx.game.State().Quit)
}

func TestStartSelectQuitsAnywhere(t *testing.T) {
	fx := newFixture(t)
	fx.step(fx.clock.hold(core.ActionStart, core.ActionSelect))
	assert.True(t, fx.game.State().Quit)
	assert.Equal(t, StateDifficulty, fx.game.Current(), "quit skips state logic")
}

func TestVolumeAndMute(t *testing.T) {
	fx := newFixture(t)
	start := fx.game.Snapshot().Volume

	fx.step(fx.clock.press(core.ActionVolumeDown))
	assert.Equal(t, start-1, fx.game.Snapshot().Volume)

	for i := 0; i < 40; i++ {
		fx.step(fx.clock.press(core.ActionVolumeUp))
	}
	assert.Equal(t, persist.VolumeMax, fx.game.Snapshot().Volume)

	fx.step(fx.clock.press(core.ActionMute))
	assert.True(t, fx.game.Snapshot().MusicPaused)
	fx.step(fx.clock.press(core.ActionMute))
	assert.False(t, fx.game.Snapshot().MusicPaused)
}

func TestPausedTrackSelection(t *testing.T) {
	fx := newFixture(t)
	jb := playlist.New([]string{"/m/a.mod", "/m/b.xm", "/m/c.s3m"})
	fx.game = fx.newGame(Options{Jukebox: jb})
	fx.start(t)
	fx.step(fx.clock.press(core.ActionStart))
	require.Equal(t, StatePaused, fx.game.Current())

	fx.step(fx.clock.press(core.ActionRight))
	assert.Equal(t, "b.xm", fx.game.Snapshot().Track)
	fx.step(fx.clock.press(core.ActionLeft))
	fx.step(fx.clock.press(core.ActionLeft))
	assert.Equal(t, "c.s3m", fx.game.Snapshot().Track)

	vol := fx.game.Snapshot().Volume
	fx.step(fx.clock.press(core.ActionDown))
	assert.Equal(t, vol-1, fx.game.Snapshot().Volume)

	require.NoError(t, fx.game.Shutdown())
	c, err := fx.store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/m/c.s3m", c.MusicPath)

	// The last track is restored on the next run.
	jb2 := playlist.New([]string{"/m/a.mod", "/m/b.xm", "/m/c.s3m"})
	fx.newGame(Options{Jukebox: jb2})
	assert.Equal(t, "c.s3m", jb2.Name())
}

func TestShutdownSavesGameAndConfig(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	require.NoError(t, fx.game.Shutdown())

	assert.True(t, fx.saveExists())
	c, err := fx.store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.GameCounter)
}

func TestShutdownDuringNameEntryRecordsHistory(t *testing.T) {
	fx := newFixture(t)
	fx.start(t)
	fx.game.session.Score = 30
	fx.game.endGame(fx.clock.t)
	require.Equal(t, StateSelectName, fx.game.Current())

	require.NoError(t, fx.game.Shutdown())
	require.Len(t, fx.history.games, 1)
	assert.False(t, fx.saveExists())
}

func TestSaveFailureShowsMessage(t *testing.T) {
	fx := newFixture(t)
	fx.game = fx.newGame(Options{Store: brokenStore{fx.store}})
	fx.start(t)

	fx.step(fx.clock.press(core.ActionStart))
	assert.Equal(t, StatePaused, fx.game.Current(), "the game continues")
	assert.Equal(t, "Saving game failed", fx.game.Snapshot().Message)

	for i := 0; i < int(messageFor/(16*time.Millisecond))+1; i++ {
		fx.step(fx.clock.press())
	}
	assert.Empty(t, fx.game.Snapshot().Message)
}

func TestCorruptSaveIsIgnored(t *testing.T) {
	fx := newFixture(t)
	path := filepath.Join(fx.dir, persist.GameFile)
	require.NoError(t, os.WriteFile(path, []byte{99, 1, 2}, 0o644))

	g := fx.newGame(Options{})
	assert.Equal(t, StateDifficulty, g.Current())
	_, err := os.Stat(path)
	assert.NoError(t, err, "a mismatched save is left on disk")
}

func TestKeyEdgesFeedEntropy(t *testing.T) {
	fx := newFixture(t)
	before := fx.game.Snapshot().Entropy.Write

	fx.step(fx.clock.hold(core.ActionLeft))
	assert.Equal(t, before, fx.game.Snapshot().Entropy.Write, "held keys without edges add nothing")

	fx.step(fx.clock.press(core.ActionLeft, core.ActionRight))
	assert.Equal(t, (before+1)%32, fx.game.Snapshot().Entropy.Write, "one edge per tick")
}

func TestPresenterSeesEveryTick(t *testing.T) {
	fx := newFixture(t)
	p := &presenterLog{}
	fx.game = fx.newGame(Options{Presenter: p})

	fx.step(fx.clock.press())
	fx.step(fx.clock.press(core.ActionStart))
	require.Len(t, p.frames, 2)
	assert.Equal(t, StateDifficulty, p.frames[0].State)
	assert.Equal(t, StateRunning, p.frames[1].State)
}

func TestRender(t *testing.T) {
	fx := newFixture(t)
	scr := core.NewScreen(80, 24)

	fx.game.Render(scr)
	out := scr.String()
	assert.Contains(t, out, "BLOCKFALL")
	assert.Contains(t, out, "Select difficulty")

	fx.start(t)
	fx.game.Render(scr)
	out = scr.String()
	assert.NotContains(t, out, "Select difficulty")
	assert.Equal(t, 1, strings.Count(out, "┌"), "only the board box")

	small := core.NewScreen(30, 10)
	fx.game.Render(small)
	assert.Contains(t, small.String(), "Window too small")
}
