package server

import (
	"time"

	"github.com/tomz197/catch/internal/store"
)

// Snapshot is an immutable view of the hub for rendering. A new value is
// stored on every change; readers never see a partial update.
type Snapshot struct {
	Leaderboard []store.LeaderboardEntry
	Players     int
	UpdatedAt   time.Time
}

// Leader returns the top entry, if any.
func (s *Snapshot) Leader() (store.LeaderboardEntry, bool) {
	if s == nil || len(s.Leaderboard) == 0 {
		return store.LeaderboardEntry{}, false
	}
	return s.Leaderboard[0], true
}
