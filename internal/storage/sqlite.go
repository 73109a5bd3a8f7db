// Package storage provides SQLite-based persistence for HellTiles runs and
// the coin wallet. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one finished arena run.
type Run struct {
	ID         string
	Mode       string
	Difficulty string
	Survived   time.Duration
	Coins      int
	Hits       int
	Won        bool
	Seed       int64
	CreatedAt  time.Time
}

// Score is the whole seconds survived, the number shown on scoreboards.
func (r Run) Score() int { return int(r.Survived / time.Second) }

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
	// One writer at a time; SSH sessions share the store.
	db.SetMaxOpenConns(1)

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
		CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			survived_ms INTEGER NOT NULL,
			coins INTEGER NOT NULL DEFAULT 0,
			hits INTEGER NOT NULL DEFAULT 0,
			won INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(mode, survived_ms DESC);

		CREATE TABLE IF NOT EXISTS wallet (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			coins INTEGER NOT NULL DEFAULT 0
		);
		INSERT OR IGNORE INTO wallet (id, coins) VALUES (1, 0);
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

// SaveRun records a finished run and returns its generated ID.
func (s *Store) SaveRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, mode, difficulty, survived_ms, coins, hits, won, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, r.Difficulty, r.Survived.Milliseconds(), r.Coins, r.Hits, r.Won, r.Seed,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.ID, nil
}

const runColumns = `id, mode, difficulty, survived_ms, coins, hits, won, seed, created_at`

// TopRuns retrieves the longest runs for the given mode. Ties keep the
// earlier run first.
func (s *Store) TopRuns(mode string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE mode = ?
		 ORDER BY survived_ms DESC, seq ASC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RecentRuns retrieves the latest runs across every mode.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY seq DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RunByID retrieves one run. It returns nil when the ID is unknown.
func (s *Store) RunByID(id string) (*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var survivedMs int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Mode, &r.Difficulty, &survivedMs, &r.Coins, &r.Hits, &r.Won, &r.Seed, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Survived = time.Duration(survivedMs) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestSurvival returns the longest survival for the given mode.
// Returns 0 if no runs exist.
func (s *Store) BestSurvival(mode string) (time.Duration, error) {
	var best sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(survived_ms) FROM runs WHERE mode = ?",
		mode,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best survival: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return time.Duration(best.Int64) * time.Millisecond, nil
}

// ClearRuns deletes all runs for the given mode.
func (s *Store) ClearRuns(mode string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE mode = ?", mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// ModeStats contains aggregated statistics for a mode.
type ModeStats struct {
	Mode         string
	Runs         int
	Wins         int
	BestSurvival time.Duration
	AvgSurvival  time.Duration
	TotalCoins   int64
	LastPlayed   time.Time
}

// Stats aggregates every run of a mode.
func (s *Store) Stats(mode string) (ModeStats, error) {
	stats := ModeStats{Mode: mode}
	var best sql.NullInt64
	var avg sql.NullFloat64
	var wins, coins sql.NullInt64
	var last any
	err := s.db.QueryRow(
		`SELECT COUNT(*), SUM(won), MAX(survived_ms), AVG(survived_ms), SUM(coins), MAX(created_at)
		 FROM runs WHERE mode = ?`,
		mode,
	).Scan(&stats.Runs, &wins, &best, &avg, &coins, &last)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	stats.Wins = int(wins.Int64)
	stats.BestSurvival = time.Duration(best.Int64) * time.Millisecond
	stats.AvgSurvival = time.Duration(avg.Float64 * float64(time.Millisecond))
	stats.TotalCoins = coins.Int64
	stats.LastPlayed = parseTime(last)
	return stats, nil
}
