// Package store persists player records: stats, achievements and the
// loyalty-card identity, plus the high-score leaderboard. Backends implement
// Store; Retrying, Cached and Syncer layer delivery guarantees on top.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomz197/catch/internal/stats"
)

var (
	// ErrNotFound is returned by loads of a record that was never saved.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidCard is returned by ParseCard.
	ErrInvalidCard = errors.New("store: invalid loyalty card number")
)

// Card number format.
const (
	CardLength = 10
	CardPrefix = "51"
)

// Identity is a player's loyalty card record.
type Identity struct {
	Card      string    `json:"number"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry is one row of the high-score table.
type LeaderboardEntry struct {
	Place int    `json:"place"`
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Store is a persistence backend. Loads of absent records return ErrNotFound.
type Store interface {
	LoadStats(ctx context.Context, id string) (stats.Stats, error)
	SaveStats(ctx context.Context, id string, s stats.Stats) error
	LoadAchievements(ctx context.Context, id string) ([]stats.Achievement, error)
	SaveAchievements(ctx context.Context, id string, a []stats.Achievement) error
	LoadIdentity(ctx context.Context, id string) (Identity, error)
	SaveIdentity(ctx context.Context, id string, ident Identity) error

	// Top returns up to n players by high score, best first. Ties are
	// ordered by id.
	Top(ctx context.Context, n int) ([]LeaderboardEntry, error)
	// Rank returns the 1-based place of id in the same ordering as Top.
	Rank(ctx context.Context, id string) (int, error)
}

// ParseCard normalizes and validates a loyalty card number.
func ParseCard(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != CardLength || !strings.HasPrefix(s, CardPrefix) {
		return "", ErrInvalidCard
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidCard
		}
	}
	return s, nil
}

// VerifySave reads back id's stats and reports whether the stored high score
// matches expected. Read errors count as a mismatch.
func VerifySave(ctx context.Context, s Store, id string, expected stats.Stats) bool {
	got, err := s.LoadStats(ctx, id)
	if err != nil {
		return false
	}
	return got.HighScore == expected.HighScore
}

// lessEntry orders leaderboard rows: higher score first, then id.
func lessEntry(a, b LeaderboardEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}
