package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/ledger"
)

type constSource byte

func (c constSource) NextByte() byte { return byte(c) }

func sampleConfig() Config {
	c := DefaultConfig()
	c.Volume = 7
	c.MusicPaused = true
	c.GameCounter = 42
	c.PlayerIdx = 3
	c.Names[3] = "Zoë"
	c.Names[11] = "last"
	c.Records[2][0] = ledger.Record{Name: "Zoë", Level: 4, Score: 310}
	c.MusicPath = "/music/space_debris.mod"
	return c
}

func TestConfigRoundTrip(t *testing.T) {
	want := sampleConfig()
	data, err := EncodeConfig(want)
	require.NoError(t, err)

	got, err := DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfigVersionMismatch(t *testing.T) {
	data, err := EncodeConfig(sampleConfig())
	require.NoError(t, err)
	data[0] = ConfigVersion + 1

	got, err := DecodeConfig(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.Equal(t, DefaultConfig(), got)
}

func TestConfigShortBlob(t *testing.T) {
	data, err := EncodeConfig(sampleConfig())
	require.NoError(t, err)

	_, err = DecodeConfig(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrShortBlob)
	_, err = DecodeConfig(nil)
	assert.ErrorIs(t, err, ErrShortBlob)
}

func TestConfigClampsVolume(t *testing.T) {
	c := DefaultConfig()
	c.Volume = 99
	data, err := EncodeConfig(c)
	require.NoError(t, err)

	got, err := DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, VolumeMax, got.Volume)
}

func TestPutStringCutsOnRuneBoundary(t *testing.T) {
	dst := make([]byte, 4)
	putString(dst, "abcé")
	assert.Equal(t, "abc", getString(dst))
}

func sampleSession() *engine.Session {
	s := engine.NewSession(6, constSource(4))
	s.Board.Place(0, engine.MapHeight-1, 6)
	s.Board.Place(9, engine.MapHeight-2, 2)
	s.Score = 130
	s.Level = 2
	s.Figures = 17
	s.Lines = 5
	return s
}

func TestGameRoundTrip(t *testing.T) {
	want := sampleSession()
	data, err := EncodeGame(want)
	require.NoError(t, err)

	got, err := DecodeGame(data)
	require.NoError(t, err)
	assert.Equal(t, want.Board.Cells(), got.Board.Cells())
	assert.Equal(t, want.Figure, got.Figure)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Level, got.Level)
	assert.Equal(t, want.Figures, got.Figures)
	assert.Equal(t, want.Lines, got.Lines)
	assert.Equal(t, want.BlockTypes, got.BlockTypes)
	assert.Equal(t, GameVersion, got.Version)
}

func TestGameRejectsCorruptCells(t *testing.T) {
	s := sampleSession()
	s.Board.Place(4, engine.MapHeight-1, engine.MaxBlockTypes)
	data, err := EncodeGame(s)
	require.NoError(t, err)

	_, err = DecodeGame(data)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestGameVersionMismatch(t *testing.T) {
	data, err := EncodeGame(sampleSession())
	require.NoError(t, err)
	data[0]++

	_, err = DecodeGame(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestStoreGameLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	st := NewStore(dir)

	_, err := st.LoadGame()
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, st.DeleteGame(), "deleting a missing save is fine")

	require.NoError(t, st.SaveGame(sampleSession()))
	got, err := st.LoadGame()
	require.NoError(t, err)
	assert.Equal(t, 130, got.Score)

	require.NoError(t, st.DeleteGame())
	_, err = os.Stat(filepath.Join(dir, GameFile))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreConfigMismatchLeavesFile(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte{0xff, 1, 2, 3}, 0o644))

	c, err := st.LoadConfig()
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.Equal(t, DefaultConfig(), c)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 1, 2, 3}, data)
}

func TestStoreConfigRoundTrip(t *testing.T) {
	st := NewStore(t.TempDir())
	require.NoError(t, st.SaveConfig(sampleConfig()))

	c, err := st.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig(), c)
}
