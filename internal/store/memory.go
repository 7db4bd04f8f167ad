package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tomz197/catch/internal/stats"
)

// Memory is an in-process Store. It backs anonymous play and tests.
type Memory struct {
	mu           sync.RWMutex
	stats        map[string]stats.Stats
	achievements map[string][]stats.Achievement
	identities   map[string]Identity
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		stats:        make(map[string]stats.Stats),
		achievements: make(map[string][]stats.Achievement),
		identities:   make(map[string]Identity),
	}
}

func (m *Memory) LoadStats(_ context.Context, id string) (stats.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[id]
	if !ok {
		return stats.Stats{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) SaveStats(_ context.Context, id string, s stats.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[id] = s.Clone()
	return nil
}

func (m *Memory) LoadAchievements(_ context.Context, id string) ([]stats.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.achievements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]stats.Achievement(nil), a...), nil
}

func (m *Memory) SaveAchievements(_ context.Context, id string, a []stats.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.achievements[id] = append([]stats.Achievement(nil), a...)
	return nil
}

func (m *Memory) LoadIdentity(_ context.Context, id string) (Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ident, ok := m.identities[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return ident, nil
}

func (m *Memory) SaveIdentity(_ context.Context, id string, ident Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[id] = ident
	return nil
}

func (m *Memory) Top(_ context.Context, n int) ([]LeaderboardEntry, error) {
	all := m.ranked()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *Memory) Rank(_ context.Context, id string) (int, error) {
	for _, e := range m.ranked() {
		if e.ID == id {
			return e.Place, nil
		}
	}
	return 0, ErrNotFound
}

func (m *Memory) ranked() []LeaderboardEntry {
	m.mu.RLock()
	out := make([]LeaderboardEntry, 0, len(m.stats))
	for id, s := range m.stats {
		out = append(out, LeaderboardEntry{ID: id, Score: s.HighScore})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return lessEntry(out[i], out[j]) })
	for i := range out {
		out[i].Place = i + 1
	}
	return out
}

var _ Store = (*Memory)(nil)
