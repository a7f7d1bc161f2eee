// blockfall is a falling-block puzzle game for the terminal.
//
// Usage:
//
//	blockfall                - Play (same as "blockfall play")
//	blockfall play           - Play, optionally preselecting a difficulty
//	blockfall scores         - Show the record tables and history statistics
//	blockfall history        - Show recently finished games
//
// Global flags:
//
//	--data-dir <dir>  - Where saves, records and history live (default: ~/.blockfall)
//	--config <path>   - Tuning file (YAML)
//	--fps <rate>      - Override the tick rate
//	--debug           - Debug logging and the entropy overlay
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/persist"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	// Global flags
	flagDataDir string
	flagConfig  string
	flagFPS     int
	flagDebug   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - line up falling columns in your terminal",
	Long: `Blockfall drops three-block columns onto a 10x16 well. Rotate the
colors, line up three or more, and clear rows before the well fills up.

Available commands:
  play     - Start the game (default)
  scores   - View record tables and statistics
  history  - View recently finished games

Examples:
  blockfall
  blockfall play --difficulty hard
  blockfall scores --tier 5
  blockfall history --limit 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default from config: ~/.blockfall)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to tuning YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Debug logging and overlays")

	addPlayFlags(rootCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
}

// env is what every command needs: settings, a data directory and a logger.
type env struct {
	settings config.Settings
	dataDir  string
	log      *log.Logger
	logFile  *os.File
}

// setup loads the settings, creates the data directory and opens the log.
func setup() (*env, error) {
	settings, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagFPS > 0 {
		settings.Timing.FPS = flagFPS
	}

	dir := settings.Paths.DataDir
	if flagDataDir != "" {
		dir = flagDataDir
	}
	dir = config.ExpandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %s: %w", dir, err)
	}

	e := &env{settings: settings, dataDir: dir}

	logPath := config.Resolve(dir, settings.Paths.LogFile)
	if logPath == "" {
		logPath = filepath.Join(dir, "blockfall.log")
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log %s: %w", logPath, err)
	}
	e.logFile = f

	level := log.InfoLevel
	if flagDebug {
		level = log.DebugLevel
	}
	e.log = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "blockfall",
		Level:           level,
	})
	return e, nil
}

func (e *env) close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func (e *env) store() *persist.Store {
	return persist.NewStore(e.dataDir)
}

// openHistory opens the history database. A failure is logged and yields nil;
// the game runs without history.
func (e *env) openHistory() *storage.Store {
	path := config.Resolve(e.dataDir, e.settings.Paths.HistoryDB)
	if path == "" {
		return nil
	}
	h, err := storage.Open(path)
	if err != nil {
		e.log.Warn("history unavailable", "path", path, "err", err)
		return nil
	}
	return h
}
