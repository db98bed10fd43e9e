// Package storage provides SQLite-based persistence for finished episodes.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Episode sources.
const (
	SourceTUI     = "tui"
	SourceText    = "text"
	SourceSSH     = "ssh"
	SourceBridge  = "bridge"
	SourceRollout = "rollout"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// EpisodeRecord is one finished episode. Lower scores are better.
type EpisodeRecord struct {
	ID         int64
	Variant    string
	Seed       int64
	Score      int
	DrainSteps int
	Eaten      int
	Leftover   int
	Placed     int
	Turns      int
	Source     string
	CreatedAt  time.Time
}

// VariantStats contains aggregated statistics for a variant.
type VariantStats struct {
	Variant      string
	Episodes     int
	BestScore    int
	WorstScore   int
	AvgScore     float64
	AvgEaten     float64
	AvgLeftover  float64
	LastFinished time.Time
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
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			variant TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL,
			drain_steps INTEGER NOT NULL DEFAULT 0,
			eaten INTEGER NOT NULL DEFAULT 0,
			leftover INTEGER NOT NULL DEFAULT 0,
			placed INTEGER NOT NULL DEFAULT 0,
			turns INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT 'tui',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_variant ON episodes(variant);
		CREATE INDEX IF NOT EXISTS idx_episodes_best ON episodes(variant, score ASC);
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

// SaveEpisode records a finished episode and returns its ID.
func (s *Store) SaveEpisode(e EpisodeRecord) (int64, error) {
	if e.Source == "" {
		e.Source = SourceTUI
	}
	result, err := s.db.Exec(
		`INSERT INTO episodes (variant, seed, score, drain_steps, eaten, leftover, placed, turns, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Variant, e.Seed, e.Score, e.DrainSteps, e.Eaten, e.Leftover, e.Placed, e.Turns, e.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

const episodeColumns = `id, variant, seed, score, drain_steps, eaten, leftover, placed, turns, source, created_at`

// TopEpisodes retrieves the best N episodes for a variant, lowest score first.
func (s *Store) TopEpisodes(variant string, limit int) ([]EpisodeRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE variant = ?
		 ORDER BY score ASC, id ASC
		 LIMIT ?`,
		variant, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	return scanEpisodes(rows)
}

// RecentEpisodes retrieves the most recently saved episodes of any variant.
func (s *Store) RecentEpisodes(limit int) ([]EpisodeRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent episodes: %w", err)
	}
	return scanEpisodes(rows)
}

func scanEpisodes(rows *sql.Rows) ([]EpisodeRecord, error) {
	defer rows.Close()

	var entries []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		var createdAt any
		if err := rows.Scan(
			&e.ID, &e.Variant, &e.Seed, &e.Score, &e.DrainSteps,
			&e.Eaten, &e.Leftover, &e.Placed, &e.Turns, &e.Source, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// BestScore returns the lowest score for a variant.
// ok is false when the variant has no episodes.
func (s *Store) BestScore(variant string) (score int, ok bool, err error) {
	var best sql.NullInt64
	err = s.db.QueryRow(
		"SELECT MIN(score) FROM episodes WHERE variant = ?",
		variant,
	).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}

// Stats retrieves aggregated statistics for a variant.
func (s *Store) Stats(variant string) (*VariantStats, error) {
	stats := &VariantStats{Variant: variant}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(score), 0), COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0), COALESCE(AVG(eaten), 0), COALESCE(AVG(leftover), 0)
		 FROM episodes WHERE variant = ?`,
		variant,
	).Scan(&stats.Episodes, &stats.BestScore, &stats.WorstScore,
		&stats.AvgScore, &stats.AvgEaten, &stats.AvgLeftover)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get variant stats: %w", err)
	}

	var last any
	err = s.db.QueryRow(
		`SELECT created_at FROM episodes WHERE variant = ? ORDER BY id DESC LIMIT 1`,
		variant,
	).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last finished: %w", err)
	}
	if err == nil {
		stats.LastFinished = parseTime(last)
	}

	return stats, nil
}

// ClearEpisodes deletes all episodes for a variant.
func (s *Store) ClearEpisodes(variant string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE variant = ?", variant)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// parseTime handles both driver-decoded times and raw SQLite strings.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
