package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vovakirdan/blockfall/internal/engine"
)

// File names inside the data directory.
const (
	ConfigFile = "config.bin"
	GameFile   = "game.bin"
)

// Store keeps the blobs in a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// writeFile replaces a file through a temporary sibling so a failed write
// never leaves a truncated blob behind.
func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("persist: create %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("persist: write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: write %s: %w", name, err)
	}
	return nil
}

// LoadConfig reads the configuration. Any error yields the defaults; the file
// itself is left alone.
func (s *Store) LoadConfig() (Config, error) {
	data, err := os.ReadFile(s.path(ConfigFile))
	if err != nil {
		return DefaultConfig(), fmt.Errorf("persist: read config: %w", err)
	}
	return DecodeConfig(data)
}

// SaveConfig writes the configuration.
func (s *Store) SaveConfig(c Config) error {
	data, err := EncodeConfig(c)
	if err != nil {
		return err
	}
	return s.writeFile(ConfigFile, data)
}

// LoadGame reads the saved game.
func (s *Store) LoadGame() (*engine.Session, error) {
	data, err := os.ReadFile(s.path(GameFile))
	if err != nil {
		return nil, fmt.Errorf("persist: read game: %w", err)
	}
	return DecodeGame(data)
}

// SaveGame writes a game in progress.
func (s *Store) SaveGame(sess *engine.Session) error {
	data, err := EncodeGame(sess)
	if err != nil {
		return err
	}
	return s.writeFile(GameFile, data)
}

// DeleteGame removes the saved game. A missing file is not an error.
func (s *Store) DeleteGame() error {
	err := os.Remove(s.path(GameFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("persist: delete game: %w", err)
	}
	return nil
}
