package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomz197/catch/internal/stats"
)

// SQLite stores each record as a JSON document keyed by card number. The high
// score is duplicated into its own column for the leaderboard queries.
type SQLite struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stats (
		id TEXT PRIMARY KEY,
		high_score INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS stats_high_score ON stats (high_score DESC, id)`,
	`CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS loyalty_cards (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	)`,
}

// OpenSQLite opens or creates the database at path, creating its directory.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One writer; sessions queue on the pool instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LoadStats(ctx context.Context, id string) (stats.Stats, error) {
	var st stats.Stats
	if err := s.loadJSON(ctx, `SELECT data FROM stats WHERE id = ?`, id, &st); err != nil {
		return stats.Stats{}, fmt.Errorf("load stats %s: %w", id, err)
	}
	st.Normalize()
	return st, nil
}

func (s *SQLite) SaveStats(ctx context.Context, id string, st stats.Stats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stats (id, high_score, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET high_score = excluded.high_score, data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		id, st.HighScore, string(data))
	if err != nil {
		return fmt.Errorf("save stats %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) LoadAchievements(ctx context.Context, id string) ([]stats.Achievement, error) {
	var a []stats.Achievement
	if err := s.loadJSON(ctx, `SELECT data FROM achievements WHERE id = ?`, id, &a); err != nil {
		return nil, fmt.Errorf("load achievements %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLite) SaveAchievements(ctx context.Context, id string, a []stats.Achievement) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode achievements: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO achievements (id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		id, string(data))
	if err != nil {
		return fmt.Errorf("save achievements %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) LoadIdentity(ctx context.Context, id string) (Identity, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM loyalty_cards WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load card %s: %w", id, err)
	}
	created, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("load card %s: decode: %w", id, err)
	}
	return Identity{Card: id, CreatedAt: created}, nil
}

func (s *SQLite) SaveIdentity(ctx context.Context, id string, ident Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loyalty_cards (id, created_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at`,
		id, ident.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save card %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, high_score FROM stats ORDER BY high_score DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		e := LeaderboardEntry{Place: len(out) + 1}
		if err := rows.Scan(&e.ID, &e.Score); err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return out, nil
}

func (s *SQLite) Rank(ctx context.Context, id string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx, `SELECT high_score FROM stats WHERE id = ?`, id).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("rank %s: %w", id, err)
	}
	var ahead int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stats WHERE high_score > ? OR (high_score = ? AND id < ?)`,
		score, score, id).Scan(&ahead)
	if err != nil {
		return 0, fmt.Errorf("rank %s: %w", id, err)
	}
	return ahead + 1, nil
}

func (s *SQLite) loadJSON(ctx context.Context, query, id string, v any) error {
	var data string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

var _ Store = (*SQLite)(nil)
