// Package playlist builds the ordered list of tracker-music files the game
// cycles through. The list is a plain slice with a current index; next and
// previous wrap around and report when they do.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTrack is played when no playlist is loaded.
const DefaultTrack = "music.mod"

// Extensions lists the module formats picked up by a scan.
var Extensions = []string{".mod", ".s3m", ".xm"}

// Playlist is an ordered, circular list of track paths.
type Playlist struct {
	tracks []string
	pos    int
}

// New returns a playlist over the given tracks.
func New(tracks []string) *Playlist {
	return &Playlist{tracks: tracks}
}

// Load reads a playlist file listing one music directory per line and scans
// each directory recursively.
func Load(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("playlist: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read scans the directories listed in r. Blank lines and lines starting
// with # are skipped.
func Read(r io.Reader) (*Playlist, error) {
	var tracks []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		found, err := Scan(line)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, found...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("playlist: read: %w", err)
	}
	return New(tracks), nil
}

// Scan walks dir and returns every music file in lexical order.
// A missing directory yields no tracks.
func Scan(dir string) ([]string, error) {
	var tracks []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && IsMusic(path) {
			tracks = append(tracks, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("playlist: scan %s: %w", dir, err)
	}
	return tracks, nil
}

// IsMusic reports whether path has one of the supported extensions.
func IsMusic(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Loaded reports whether the playlist holds any track.
func (p *Playlist) Loaded() bool {
	return p != nil && len(p.tracks) > 0
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tracks)
}

// Position returns the 1-based index of the current track, 0 when empty.
func (p *Playlist) Position() int {
	if !p.Loaded() {
		return 0
	}
	return p.pos + 1
}

// Current returns the current track, or DefaultTrack when empty.
func (p *Playlist) Current() string {
	if !p.Loaded() {
		return DefaultTrack
	}
	return p.tracks[p.pos]
}

// Name returns the file name of the current track.
func (p *Playlist) Name() string {
	return filepath.Base(p.Current())
}

// Next advances to the following track. turnOver is true when it wrapped
// from the last track back to the first.
func (p *Playlist) Next() (track string, turnOver bool) {
	if !p.Loaded() {
		return DefaultTrack, false
	}
	p.pos++
	if p.pos == len(p.tracks) {
		p.pos = 0
		turnOver = true
	}
	return p.tracks[p.pos], turnOver
}

// Prev steps back one track. turnOver is true when it wrapped from the first
// track to the last.
func (p *Playlist) Prev() (track string, turnOver bool) {
	if !p.Loaded() {
		return DefaultTrack, false
	}
	p.pos--
	if p.pos < 0 {
		p.pos = len(p.tracks) - 1
		turnOver = true
	}
	return p.tracks[p.pos], turnOver
}

// Restore makes path the current track if it is in the list.
func (p *Playlist) Restore(path string) bool {
	if !p.Loaded() || path == "" {
		return false
	}
	for i, t := range p.tracks {
		if t == path {
			p.pos = i
			return true
		}
	}
	return false
}
