// Package storage keeps the history of finished games in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for the game history.
type Store struct {
	db *sql.DB
}

// GameRecord is one finished game.
type GameRecord struct {
	ID         int64
	Player     string // Empty when the result was not ranked
	BlockTypes int
	Level      int
	Score      int
	Figures    int
	Lines      int
	Duration   time.Duration
	PlayedAt   time.Time
}

// Stats aggregates the history.
type Stats struct {
	Games        int
	BestScore    int
	TotalLines   int
	TotalFigures int
	TotalTime    time.Duration
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL DEFAULT '',
			block_types INTEGER NOT NULL,
			level INTEGER NOT NULL,
			score INTEGER NOT NULL,
			figures INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			played_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_top ON games(block_types, score DESC);
		CREATE INDEX IF NOT EXISTS idx_games_played ON games(played_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordGame appends a finished game. A zero PlayedAt means now.
// Returns the ID of the inserted record.
func (s *Store) RecordGame(g GameRecord) (int64, error) {
	if g.PlayedAt.IsZero() {
		g.PlayedAt = time.Now()
	}
	result, err := s.db.Exec(
		`INSERT INTO games
		 (player, block_types, level, score, figures, lines, duration_ms, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Player,
		g.BlockTypes,
		g.Level,
		g.Score,
		g.Figures,
		g.Lines,
		g.Duration.Milliseconds(),
		g.PlayedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot record game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const selectGames = `SELECT id, player, block_types, level, score, figures, lines, duration_ms, played_at FROM games`

// RecentGames returns the latest games, newest first.
func (s *Store) RecentGames(limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryGames(selectGames+` ORDER BY played_at DESC, id DESC LIMIT ?`, limit)
}

// TopGames returns the best games for a difficulty, ordered by score.
func (s *Store) TopGames(blockTypes, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryGames(
		selectGames+` WHERE block_types = ? ORDER BY score DESC, id ASC LIMIT ?`,
		blockTypes, limit,
	)
}

func (s *Store) queryGames(query string, args ...any) ([]GameRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		var durationMS int64
		var playedAt any
		if err := rows.Scan(
			&g.ID,
			&g.Player,
			&g.BlockTypes,
			&g.Level,
			&g.Score,
			&g.Figures,
			&g.Lines,
			&durationMS,
			&playedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.Duration = time.Duration(durationMS) * time.Millisecond
		g.PlayedAt = parseTime(playedAt)
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return games, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Stats aggregates the history. blockTypes 0 covers every difficulty.
func (s *Store) Stats(blockTypes int) (Stats, error) {
	var st Stats
	var best, lines, figures, ms sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COUNT(*), MAX(score), SUM(lines), SUM(figures), SUM(duration_ms)
		 FROM games
		 WHERE ? = 0 OR block_types = ?`,
		blockTypes, blockTypes,
	).Scan(&st.Games, &best, &lines, &figures, &ms)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot query stats: %w", err)
	}

	st.BestScore = int(best.Int64)
	st.TotalLines = int(lines.Int64)
	st.TotalFigures = int(figures.Int64)
	st.TotalTime = time.Duration(ms.Int64) * time.Millisecond
	return st, nil
}

// ClearHistory deletes every recorded game.
func (s *Store) ClearHistory() error {
	if _, err := s.db.Exec("DELETE FROM games"); err != nil {
		return fmt.Errorf("storage: cannot clear history: %w", err)
	}
	return nil
}
