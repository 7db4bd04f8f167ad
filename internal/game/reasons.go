package game

import "math/rand"

var timeoutReasons = []string{
	"Happy people don't watch the clock?",
	"The clock ticked too fast",
	"Time is up",
}

var hazardReasons = []string{
	"Flattened!",
	"The anvil did its job",
	"Are your nerves made of iron too?",
	"Keep an eye on the anvils",
}

// deathReason picks a flavor line for the way a run ended.
func deathReason(rng *rand.Rand, cause Cause) string {
	var pool []string
	switch cause {
	case CauseTimeout:
		pool = timeoutReasons
	case CauseHazard:
		pool = hazardReasons
	default:
		return "Game over"
	}
	return pool[rng.Intn(len(pool))]
}
