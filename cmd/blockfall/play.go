package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/playlist"
)

var (
	flagDifficulty string
	flagSeed       int64
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play blockfall",
	Long: `Start the game. A saved game is offered for resume first.

Controls:
  Left/Right, a/d  - Move
  Down, s          - Drop faster
  z/Enter          - Rotate, accept
  x/Esc            - Back, change name
  Space/p          - Start, pause
  m, -, +          - Mute, volume
  q                - Quit after game over
  Space+Tab        - Quit at any time (saves the game)
  Ctrl+C           - Quit at any time (saves the game)

Difficulty options:
  easy   - 4 block types
  normal - 5 block types
  hard   - 6 block types
  expert - 8 block types
  4..8   - Exact number of block types

Examples:
  blockfall play
  blockfall play --difficulty hard
  blockfall play --config ./my-blockfall.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Preselected difficulty: easy, normal, hard, expert or 4..8")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "Entropy seed (0 = time based)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if flagDifficulty != "" {
		preset := config.DifficultyPreset(flagDifficulty)
		if _, err := preset.BlockTypes(); err != nil {
			return err
		}
		e.settings.Game.Difficulty = preset
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: e.settings.Timing.FPS,
		Seed:     flagSeed,
		Debug:    flagDebug,
	}

	opts := blockfall.Options{
		Settings: e.settings,
		Store:    e.store(),
		Logger:   e.log,
	}

	// Interface fields stay nil when the backing store is missing.
	if h := e.openHistory(); h != nil {
		defer h.Close()
		opts.History = h
	}
	if pl := loadPlaylist(e); pl != nil {
		opts.Jukebox = pl
	}

	game := blockfall.New(opts)
	e.log.Info("starting", "data_dir", e.dataDir, "fps", cfg.TickRate, "size", fmt.Sprintf("%dx%d", width, height))

	err = tui.Run(game, cfg, tui.Options{
		ReleaseAfter:  e.settings.Timing.ReleaseAfter(),
		ScreenshotDir: filepath.Join(e.dataDir, "screenshots"),
		Logger:        e.log,
	})
	if err != nil {
		e.log.Error("exit", "err", err)
		return fmt.Errorf("running game: %w", err)
	}
	e.log.Info("bye")
	return nil
}

func loadPlaylist(e *env) *playlist.Playlist {
	path := e.settings.Paths.Playlist
	if path == "" {
		return nil
	}
	pl, err := playlist.Load(config.Resolve(e.dataDir, path))
	if err != nil {
		e.log.Warn("playlist unavailable", "err", err)
		return nil
	}
	if !pl.Loaded() {
		e.log.Info("playlist has no tracks", "path", path)
		return nil
	}
	return pl
}
