// Package persist reads and writes the binary configuration and save-game
// files. Both are fixed-size little-endian records led by a version byte and
// are always read and written whole.
package persist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/ledger"
)

// Blob format versions. A file with any other version is ignored.
const (
	ConfigVersion uint8 = 1
	GameVersion         = engine.SessionVersion
)

// Field sizes in bytes.
const (
	nameBytes       = ledger.PlayerNameLength * utf8.UTFMax
	MusicPathLength = 256
)

// Volume range.
const (
	VolumeMin     = 0
	VolumeMax     = 30
	VolumeStep    = 1
	DefaultVolume = 20
)

var (
	// ErrVersionMismatch means the blob was written by another format version.
	ErrVersionMismatch = errors.New("persist: version mismatch")
	// ErrShortBlob means the blob size does not match the format.
	ErrShortBlob = errors.New("persist: blob size mismatch")
	// ErrCorrupt means the blob decoded but holds impossible values.
	ErrCorrupt = errors.New("persist: corrupt blob")
)

// Config is everything kept between runs apart from a game in progress.
type Config struct {
	Volume      int
	MusicPaused bool
	GameCounter uint32
	PlayerIdx   int
	Names       [ledger.MaxPlayers]string
	Records     [ledger.Tiers]ledger.Table
	MusicPath   string // Last played track
}

// DefaultConfig returns the configuration of a first run.
func DefaultConfig() Config {
	c := Config{Volume: DefaultVolume}
	for i := range c.Records {
		c.Records[i] = ledger.DefaultTable()
	}
	return c
}

type recordWire struct {
	Name  [nameBytes]byte
	Level uint16
	Score uint32
}

type configWire struct {
	Version     uint8
	Volume      uint8
	MusicPaused uint8
	PlayerIdx   uint8
	GameCounter uint32
	Names       [ledger.MaxPlayers][nameBytes]byte
	Records     [ledger.Tiers][ledger.MaxRecords]recordWire
	MusicPath   [MusicPathLength]byte
}

type gameWire struct {
	Version    uint8
	BlockTypes uint8
	Orient     uint8
	FigX       int8
	FigY       int8
	Blocks     [engine.FigureSize]uint8
	Score      uint32
	Level      uint16
	Figures    uint32
	Lines      uint32
	Board      engine.Grid
}

// putString copies s into a zero-padded field, cutting on a rune boundary.
func putString(dst []byte, s string) {
	for len(s) > len(dst) {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	copy(dst, s)
}

func getString(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeConfig serialises a configuration.
func EncodeConfig(c Config) ([]byte, error) {
	w := configWire{
		Version:     ConfigVersion,
		Volume:      uint8(clampInt(c.Volume, VolumeMin, VolumeMax)),
		PlayerIdx:   uint8(clampInt(c.PlayerIdx, 0, ledger.MaxPlayers-1)),
		GameCounter: c.GameCounter,
	}
	if c.MusicPaused {
		w.MusicPaused = 1
	}
	for i, n := range c.Names {
		putString(w.Names[i][:], ledger.TruncateName(n))
	}
	for t := range c.Records {
		for i, r := range c.Records[t] {
			rw := &w.Records[t][i]
			putString(rw.Name[:], ledger.TruncateName(r.Name))
			rw.Level = uint16(clampInt(r.Level, 0, 0xffff))
			rw.Score = uint32(max(r.Score, 0))
		}
	}
	putString(w.MusicPath[:], c.MusicPath)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &w); err != nil {
		return nil, fmt.Errorf("persist: encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func checkHeader(data []byte, version uint8, size int) error {
	if len(data) == 0 {
		return ErrShortBlob
	}
	if data[0] != version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, data[0], version)
	}
	if len(data) != size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortBlob, len(data), size)
	}
	return nil
}

// DecodeConfig parses a configuration blob. On error the returned
// configuration is the default one.
func DecodeConfig(data []byte) (Config, error) {
	var w configWire
	if err := checkHeader(data, ConfigVersion, binary.Size(&w)); err != nil {
		return DefaultConfig(), err
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &w); err != nil {
		return DefaultConfig(), fmt.Errorf("persist: decode config: %w", err)
	}

	c := Config{
		Volume:      clampInt(int(w.Volume), VolumeMin, VolumeMax),
		MusicPaused: w.MusicPaused != 0,
		GameCounter: w.GameCounter,
		PlayerIdx:   clampInt(int(w.PlayerIdx), 0, ledger.MaxPlayers-1),
		MusicPath:   getString(w.MusicPath[:]),
	}
	for i := range w.Names {
		c.Names[i] = ledger.TruncateName(getString(w.Names[i][:]))
	}
	for t := range w.Records {
		for i, rw := range w.Records[t] {
			c.Records[t][i] = ledger.Record{
				Name:  ledger.TruncateName(getString(rw.Name[:])),
				Level: int(rw.Level),
				Score: int(rw.Score),
			}
		}
	}
	return c, nil
}

// EncodeGame serialises a game in progress.
func EncodeGame(s *engine.Session) ([]byte, error) {
	w := gameWire{
		Version:    GameVersion,
		BlockTypes: uint8(s.BlockTypes),
		Orient:     uint8(s.Figure.Orient),
		FigX:       int8(s.Figure.X),
		FigY:       int8(s.Figure.Y),
		Blocks:     s.Figure.Blocks,
		Score:      uint32(max(s.Score, 0)),
		Level:      uint16(clampInt(s.Level, 0, 0xffff)),
		Figures:    uint32(max(s.Figures, 0)),
		Lines:      uint32(max(s.Lines, 0)),
		Board:      s.Board.Cells(),
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &w); err != nil {
		return nil, fmt.Errorf("persist: encode game: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeGame parses a save blob and checks that the restored board and figure
// are consistent.
func DecodeGame(data []byte) (*engine.Session, error) {
	var w gameWire
	if err := checkHeader(data, GameVersion, binary.Size(&w)); err != nil {
		return nil, err
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &w); err != nil {
		return nil, fmt.Errorf("persist: decode game: %w", err)
	}

	bt := int(w.BlockTypes)
	if bt < engine.MinBlockTypes || bt > engine.MaxBlockTypes {
		return nil, fmt.Errorf("%w: %d block types", ErrCorrupt, bt)
	}
	if w.Orient > uint8(engine.Horizontal) {
		return nil, fmt.Errorf("%w: orientation %d", ErrCorrupt, w.Orient)
	}
	for y := range w.Board {
		for x, c := range w.Board[y] {
			if int(c) > bt {
				return nil, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrCorrupt, x, y, c)
			}
		}
	}
	for i, b := range w.Blocks {
		if b == 0 || int(b) > bt {
			return nil, fmt.Errorf("%w: figure block %d holds %d", ErrCorrupt, i, b)
		}
	}

	s := &engine.Session{
		Figure: engine.Figure{
			Blocks: w.Blocks,
			X:      int(w.FigX),
			Y:      int(w.FigY),
			Orient: engine.Orientation(w.Orient),
		},
		Score:      int(w.Score),
		Level:      int(w.Level),
		Figures:    int(w.Figures),
		Lines:      int(w.Lines),
		BlockTypes: bt,
		Version:    w.Version,
	}
	s.Board.Load(w.Board)
	if !s.Figure.Fits(&s.Board) {
		return nil, fmt.Errorf("%w: figure overlaps the board", ErrCorrupt)
	}
	return s, nil
}
