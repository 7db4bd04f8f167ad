package stats

import (
	"time"

	"github.com/tomz197/catch/internal/object"
)

// Tracker owns a player's Stats during a session and re-evaluates
// achievements after every change. It is not safe for concurrent use; hand
// Snapshot copies to other goroutines.
type Tracker struct {
	stats        Stats
	achievements []Achievement
	fresh        []Achievement // unlocked since the last TakeUnlocked
}

// NewTracker starts tracking from s.
func NewTracker(s Stats) *Tracker {
	s = s.Clone()
	s.Normalize()
	return &Tracker{stats: s, achievements: Evaluate(s)}
}

// Snapshot returns a deep copy of the current stats.
func (t *Tracker) Snapshot() Stats {
	return t.stats.Clone()
}

// Achievements returns the current evaluation.
func (t *Tracker) Achievements() []Achievement {
	return append([]Achievement(nil), t.achievements...)
}

// TakeUnlocked returns and clears the achievements unlocked since the last call.
func (t *Tracker) TakeUnlocked() []Achievement {
	out := t.fresh
	t.fresh = nil
	return out
}

// GamePlayed counts a started run.
func (t *Tracker) GamePlayed() {
	t.stats.GamesPlayed++
	t.refresh()
}

// Caught counts one catch of k.
func (t *Tracker) Caught(k object.Kind) {
	t.stats.ItemsCaught[k.String()]++
	t.refresh()
}

// AnvilDeath counts a run lost to an anvil.
func (t *Tracker) AnvilDeath() {
	t.stats.DeathsByAnvil++
	t.refresh()
}

// AddSlowTime credits time spent under the slow effect.
func (t *Tracker) AddSlowTime(d time.Duration) {
	if d <= 0 {
		return
	}
	t.stats.TimeUnderSlowEffect += d.Milliseconds()
	t.refresh()
}

// AddPlayTime credits countdown time.
func (t *Tracker) AddPlayTime(d time.Duration) {
	if d <= 0 {
		return
	}
	t.stats.TotalPlayTime += d.Milliseconds()
	t.refresh()
}

// SubmitScore records a finished run's score and reports whether it became
// the new high score.
func (t *Tracker) SubmitScore(score int) bool {
	if score <= t.stats.HighScore {
		return false
	}
	t.stats.HighScore = score
	t.refresh()
	return true
}

func (t *Tracker) refresh() {
	before := Unlocked(t.achievements)
	t.achievements = Evaluate(t.stats)
	for _, a := range t.achievements {
		if a.Unlocked && !before[a.ID] {
			t.fresh = append(t.fresh, a)
		}
	}
}
