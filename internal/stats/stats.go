// Package stats aggregates a player's lifetime counters and derives their
// achievements and prize tiers.
package stats

import (
	"time"

	"github.com/tomz197/catch/internal/object"
)

// Stats are the lifetime counters of one player. Durations are stored in
// milliseconds so the JSON form stays compatible with existing records.
type Stats struct {
	GamesPlayed         int            `json:"gamesPlayed"`
	TotalPlayTime       int64          `json:"totalPlayTime"`
	DeathsByAnvil       int            `json:"deathsByAnvil"`
	ItemsCaught         map[string]int `json:"itemsCaught"`
	TimeUnderSlowEffect int64          `json:"timeUnderSlowEffect"`
	HighScore           int            `json:"highScore"`
}

// New returns zeroed stats.
func New() Stats {
	return Stats{ItemsCaught: make(map[string]int)}
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	out := s
	out.ItemsCaught = make(map[string]int, len(s.ItemsCaught))
	for k, v := range s.ItemsCaught {
		out.ItemsCaught[k] = v
	}
	return out
}

// Caught returns the lifetime catch count for k.
func (s Stats) Caught(k object.Kind) int {
	return s.ItemsCaught[k.String()]
}

// Tickets is the number of tickets ever caught.
func (s Stats) Tickets() int {
	return s.Caught(object.Ticket)
}

// PlayTime returns TotalPlayTime as a duration.
func (s Stats) PlayTime() time.Duration {
	return time.Duration(s.TotalPlayTime) * time.Millisecond
}

// SlowTime returns TimeUnderSlowEffect as a duration.
func (s Stats) SlowTime() time.Duration {
	return time.Duration(s.TimeUnderSlowEffect) * time.Millisecond
}

// Normalize repairs values a malformed record may carry.
func (s *Stats) Normalize() {
	if s.ItemsCaught == nil {
		s.ItemsCaught = make(map[string]int)
	}
	for k, v := range s.ItemsCaught {
		if v < 0 {
			delete(s.ItemsCaught, k)
		}
	}
	if s.GamesPlayed < 0 {
		s.GamesPlayed = 0
	}
	if s.TotalPlayTime < 0 {
		s.TotalPlayTime = 0
	}
	if s.DeathsByAnvil < 0 {
		s.DeathsByAnvil = 0
	}
	if s.TimeUnderSlowEffect < 0 {
		s.TimeUnderSlowEffect = 0
	}
	if s.HighScore < 0 {
		s.HighScore = 0
	}
}

// Prize is a reward tier unlocked by collected tickets.
type Prize struct {
	Tickets     int    `json:"tickets"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PrizeTiers lists the prizes in unlock order.
var PrizeTiers = []Prize{
	{Tickets: 1, Title: "100 off", Description: "100 off a purchase of 1000 or more. Show the code at the checkout."},
	{Tickets: 2, Title: "200 off", Description: "200 off a purchase of 2000 or more. Show the code at the checkout."},
	{Tickets: 3, Title: "500 off", Description: "500 off a purchase of 3000 or more. Show the code at the checkout."},
}

// Prizes returns the unlocked tiers.
func (s Stats) Prizes() []Prize {
	var out []Prize
	for _, p := range PrizeTiers {
		if s.Tickets() >= p.Tickets {
			out = append(out, p)
		}
	}
	return out
}
