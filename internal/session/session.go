// Package session binds a Match to a player's stored record: it loads stats
// on login, checkpoints them as the player plays and saves them on exit.
package session

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/loop/config"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

// Options configures a session.
type Options struct {
	Screen  object.Screen
	Catalog *object.Catalog
	Rand    *rand.Rand
	Logger  *log.Logger

	// CheckpointEvery is the wall-clock interval of periodic saves.
	CheckpointEvery time.Duration
	// SaveTimeout bounds each background save.
	SaveTimeout time.Duration
	// Now is the wall clock; tests replace it.
	Now func() time.Time
}

// Session is one player's Match plus its persistence. A session without a
// card is a guest: it plays normally and saves nothing.
type Session struct {
	Match *game.Match

	card   string
	syncer *store.Syncer
	logger *log.Logger
	every  time.Duration
	now    func() time.Time
	last   time.Time
}

// Open loads card's record from st and starts a session on the menu. Missing
// or unreadable records start from zero; only ctx ending is an error. An
// empty card opens a guest session.
func Open(ctx context.Context, st store.Store, card string, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = config.CheckpointInterval
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = config.ExitSaveTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		card:   card,
		logger: opts.Logger,
		every:  opts.CheckpointEvery,
		now:    opts.Now,
		last:   opts.Now(),
	}
	loaded := stats.New()
	if card != "" {
		s.logger = opts.Logger.With("player", card)
		var err error
		loaded, err = s.load(ctx, st)
		if err != nil {
			return nil, err
		}
		s.syncer = store.NewSyncer(st, card, opts.SaveTimeout, s.logger)
	}

	tracker := stats.NewTracker(loaded)
	s.Match = game.New(game.Options{
		Screen:   opts.Screen,
		Catalog:  opts.Catalog,
		Rand:     opts.Rand,
		Tracker:  tracker,
		OnRunEnd: s.runEnded,
		Logger:   s.logger,
	})
	if s.syncer != nil {
		// First checkpoint creates the records of a new player.
		s.Checkpoint()
	}
	return s, nil
}

func (s *Session) load(ctx context.Context, st store.Store) (stats.Stats, error) {
	if _, err := st.LoadIdentity(ctx, s.card); err != nil {
		if ctx.Err() != nil {
			return stats.Stats{}, ctx.Err()
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("loading card", "err", err)
		}
		ident := store.Identity{Card: s.card, CreatedAt: s.now().UTC()}
		if err := st.SaveIdentity(ctx, s.card, ident); err != nil {
			s.logger.Warn("saving card", "err", err)
		}
	}

	loaded, err := st.LoadStats(ctx, s.card)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return stats.Stats{}, ctx.Err()
	case errors.Is(err, store.ErrNotFound):
		s.logger.Info("new player")
		loaded = stats.New()
	default:
		s.logger.Warn("stats unreadable, starting fresh", "err", err)
		loaded = stats.New()
	}

	if saved, err := st.LoadAchievements(ctx, s.card); err == nil {
		now := stats.Unlocked(stats.Evaluate(loaded))
		for id := range stats.Unlocked(saved) {
			if !now[id] {
				s.logger.Warn("stored achievement no longer earned", "achievement", id)
			}
		}
	}
	return loaded, nil
}

// Card returns the player's card number, or "" for a guest.
func (s *Session) Card() string { return s.card }

// Guest reports whether the session saves nothing.
func (s *Session) Guest() bool { return s.syncer == nil }

// Logger returns the session's logger.
func (s *Session) Logger() *log.Logger { return s.logger }

func (s *Session) runEnded(game.Result, stats.Stats) {
	s.Checkpoint()
}

// Checkpoint queues a background save of the current stats.
func (s *Session) Checkpoint() {
	if s.syncer == nil {
		return
	}
	s.last = s.now()
	s.syncer.Checkpoint(s.checkpoint())
}

// Tick checkpoints when CheckpointEvery has passed since the last save.
func (s *Session) Tick() {
	if s.syncer != nil && s.now().Sub(s.last) >= s.every {
		s.Checkpoint()
	}
}

func (s *Session) checkpoint() store.Checkpoint {
	t := s.Match.Tracker()
	return store.Checkpoint{Stats: t.Snapshot(), Achievements: t.Achievements()}
}

// Close abandons a run in progress and saves synchronously within ctx.
func (s *Session) Close(ctx context.Context) error {
	s.Match.Abandon()
	if s.syncer == nil {
		return nil
	}
	return s.syncer.Close(ctx, s.checkpoint())
}
