package object

import (
	"math/rand"
	"strconv"
	"time"
)

// Spawn cadence.
const (
	SpawnInterval     = 375 * time.Millisecond
	RainSpawnInterval = 250 * time.Millisecond
	RainBurst         = 4
	MaxCatchUpTicks   = 3 // spawn ticks honored per frame; older backlog is dropped
)

// ItemSpawner emits items on a fixed game-clock cadence by weighted draw from
// the catalog. During rain it emits RainBurst reward items per tick at the
// faster rain cadence.
type ItemSpawner struct {
	catalog *Catalog
	rng     *rand.Rand
	acc     time.Duration
	seq     uint64
}

// NewItemSpawner creates a spawner drawing from catalog.
func NewItemSpawner(catalog *Catalog, rng *rand.Rand) *ItemSpawner {
	return &ItemSpawner{catalog: catalog, rng: rng}
}

// Reset clears the cadence accumulator. Item ids keep counting so they stay
// unique across runs.
func (s *ItemSpawner) Reset() {
	s.acc = 0
}

// Update spawns the items due this frame through ctx.Spawner.
func (s *ItemSpawner) Update(ctx UpdateContext) (bool, error) {
	interval, burst := SpawnInterval, 1
	if ctx.Rain {
		interval, burst = RainSpawnInterval, RainBurst
	}

	s.acc += ctx.Delta
	ticks := 0
	for s.acc >= interval && ticks < MaxCatchUpTicks {
		s.acc -= interval
		ticks++
		for i := 0; i < burst; i++ {
			ctx.Spawner.Spawn(s.next(ctx))
		}
	}
	if s.acc >= interval {
		s.acc %= interval
	}
	return false, nil
}

func (s *ItemSpawner) next(ctx UpdateContext) *Item {
	s.seq++
	k := s.catalog.Draw(s.rng, ctx.Rain)
	return NewItem(strconv.FormatUint(s.seq, 36), k, ctx.Screen, s.rng)
}

// Draw is a no-op; spawner is not visible.
func (s *ItemSpawner) Draw(_ DrawContext) error {
	return nil
}

var _ Object = (*ItemSpawner)(nil)
var _ Object = (*Item)(nil)
