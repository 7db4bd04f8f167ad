package stats

// Achievement ids.
const (
	AnvilFan   = "anvil_fan"
	CrownKing  = "crown_king"
	Legend     = "legend"
	FishLover  = "fish_lover"
	TimeMaster = "time_master"
)

// Achievement is one evaluated predicate over Stats.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"isUnlocked"`
	Progress    int64  `json:"progress"`
	Target      int64  `json:"target"`
}

type definition struct {
	id, title, description string
	target                 int64
	value                  func(Stats) int64
}

var definitions = []definition{
	{AnvilFan, "Anvil Fan", "Lose to an anvil 10 times", 10,
		func(s Stats) int64 { return int64(s.DeathsByAnvil) }},
	{CrownKing, "King of the Castle", "Play 1000 games", 1000,
		func(s Stats) int64 { return int64(s.GamesPlayed) }},
	{Legend, "Legend", "Score 5000 points in one run", 5000,
		func(s Stats) int64 { return int64(s.HighScore) }},
	{FishLover, "Fish Lover", "Spend 10 minutes slowed down", 600_000,
		func(s Stats) int64 { return s.TimeUnderSlowEffect }},
	{TimeMaster, "Out of Time", "Play for two hours in total", 7_200_000,
		func(s Stats) int64 { return s.TotalPlayTime }},
}

// Evaluate derives every achievement from s. It is pure: the same stats always
// produce the same result regardless of history.
func Evaluate(s Stats) []Achievement {
	out := make([]Achievement, len(definitions))
	for i, d := range definitions {
		v := d.value(s)
		out[i] = Achievement{
			ID:          d.id,
			Title:       d.title,
			Description: d.description,
			Unlocked:    v >= d.target,
			Progress:    min(v, d.target),
			Target:      d.target,
		}
	}
	return out
}

// Unlocked returns the ids of unlocked achievements.
func Unlocked(list []Achievement) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, a := range list {
		if a.Unlocked {
			out[a.ID] = true
		}
	}
	return out
}
