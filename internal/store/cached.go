package store

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/stats"
)

// Cached is a write-through cache in front of a slower backend. Saves land in
// the cache first, so a player's progress survives a backend outage for the
// life of the process. Loads prefer the backend and repair it from the cache
// when the backend is missing a record or holds a lower high score.
type Cached struct {
	backend Store
	logger  *log.Logger

	mu           sync.Mutex
	stats        map[string]stats.Stats
	achievements map[string][]stats.Achievement
	identities   map[string]Identity
}

// NewCached wraps backend.
func NewCached(backend Store, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{
		backend:      backend,
		logger:       logger,
		stats:        make(map[string]stats.Stats),
		achievements: make(map[string][]stats.Achievement),
		identities:   make(map[string]Identity),
	}
}

func (c *Cached) LoadStats(ctx context.Context, id string) (stats.Stats, error) {
	remote, err := c.backend.LoadStats(ctx, id)
	c.mu.Lock()
	local, cached := c.stats[id]
	c.mu.Unlock()

	switch {
	case err == nil && (!cached || remote.HighScore >= local.HighScore):
		c.mu.Lock()
		c.stats[id] = remote.Clone()
		c.mu.Unlock()
		return remote, nil
	case !cached:
		return stats.Stats{}, err
	case err == nil || errors.Is(err, ErrNotFound):
		c.logger.Warn("repairing stats from cache", "id", id, "high", local.HighScore)
		if err := c.backend.SaveStats(ctx, id, local); err != nil {
			c.logger.Warn("stats repair failed", "id", id, "err", err)
		}
	default:
		c.logger.Warn("stats backend unavailable, serving cache", "id", id, "err", err)
	}
	return local.Clone(), nil
}

func (c *Cached) SaveStats(ctx context.Context, id string, s stats.Stats) error {
	c.mu.Lock()
	c.stats[id] = s.Clone()
	c.mu.Unlock()
	return c.backend.SaveStats(ctx, id, s)
}

func (c *Cached) LoadAchievements(ctx context.Context, id string) ([]stats.Achievement, error) {
	remote, err := c.backend.LoadAchievements(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.achievements[id] = append([]stats.Achievement(nil), remote...)
		return remote, nil
	}
	local, ok := c.achievements[id]
	if !ok {
		return nil, err
	}
	c.logger.Warn("achievements served from cache", "id", id, "err", err)
	return append([]stats.Achievement(nil), local...), nil
}

func (c *Cached) SaveAchievements(ctx context.Context, id string, a []stats.Achievement) error {
	c.mu.Lock()
	c.achievements[id] = append([]stats.Achievement(nil), a...)
	c.mu.Unlock()
	return c.backend.SaveAchievements(ctx, id, a)
}

func (c *Cached) LoadIdentity(ctx context.Context, id string) (Identity, error) {
	remote, err := c.backend.LoadIdentity(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.identities[id] = remote
		return remote, nil
	}
	if local, ok := c.identities[id]; ok {
		return local, nil
	}
	return Identity{}, err
}

func (c *Cached) SaveIdentity(ctx context.Context, id string, ident Identity) error {
	c.mu.Lock()
	c.identities[id] = ident
	c.mu.Unlock()
	return c.backend.SaveIdentity(ctx, id, ident)
}

func (c *Cached) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	return c.backend.Top(ctx, n)
}

func (c *Cached) Rank(ctx context.Context, id string) (int, error) {
	return c.backend.Rank(ctx, id)
}

var _ Store = (*Cached)(nil)
