package session

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

const card = "5112345678"

var errCorrupt = errors.New("decode: unexpected end of JSON input")

// corrupt fails every stats load with a non-NotFound error.
type corrupt struct{ store.Store }

func (corrupt) LoadStats(context.Context, string) (stats.Stats, error) {
	return stats.Stats{}, errCorrupt
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testOptions() Options {
	return Options{
		Screen: object.Screen{Width: 480, Height: 800},
		Rand:   rand.New(rand.NewSource(7)),
		Logger: log.New(io.Discard),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGuestSavesNothing(t *testing.T) {
	st := store.NewMemory()
	s, err := Open(context.Background(), st, "", testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Guest() || s.Card() != "" {
		t.Fatalf("got guest=%v card=%q", s.Guest(), s.Card())
	}
	s.Match.Start()
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if top, _ := st.Top(context.Background(), 10); len(top) != 0 {
		t.Fatalf("guest saved records: %+v", top)
	}
}

func TestNewPlayerRecordsCreated(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s, err := Open(ctx, st, card, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if s.Match.State() != game.StateMenu {
		t.Fatalf("state %v, want menu", s.Match.State())
	}
	if _, err := st.LoadIdentity(ctx, card); err != nil {
		t.Fatalf("card not saved: %v", err)
	}
	waitFor(t, func() bool {
		_, err := st.LoadStats(ctx, card)
		return err == nil
	})

	s.Match.Start()
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := st.LoadStats(ctx, card)
	if err != nil || got.GamesPlayed != 1 {
		t.Fatalf("got %+v, %v", got, err)
	}
	if _, err := st.LoadAchievements(ctx, card); err != nil {
		t.Fatalf("achievements not saved: %v", err)
	}
}

func TestExistingStatsLoaded(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	prior := stats.New()
	prior.HighScore = 500
	prior.GamesPlayed = 4
	st.SaveStats(ctx, card, prior)

	s, err := Open(ctx, st, card, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)
	got := s.Match.Tracker().Snapshot()
	if got.HighScore != 500 || got.GamesPlayed != 4 {
		t.Fatalf("got %+v", got)
	}
}

func TestUnreadableStatsStartFresh(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, corrupt{store.NewMemory()}, card, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)
	if got := s.Match.Tracker().Snapshot(); got.GamesPlayed != 0 || got.HighScore != 0 {
		t.Fatalf("got %+v, want zero stats", got)
	}
}

func TestRunEndCheckpoints(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s, err := Open(ctx, st, card, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	s.Match.Start()
	for i := 0; i < 200 && s.Match.State() == game.StatePlaying; i++ {
		s.Match.Advance(100 * time.Millisecond)
	}
	if s.Match.State() != game.StateResult {
		t.Fatalf("state %v, want result", s.Match.State())
	}
	waitFor(t, func() bool {
		got, err := st.LoadStats(ctx, card)
		return err == nil && got.GamesPlayed == 1 && got.TotalPlayTime > 0
	})
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestTickCheckpointsPeriodically(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts := testOptions()
	opts.Now = clock.Now
	opts.CheckpointEvery = 30 * time.Second

	s, err := Open(ctx, st, card, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)
	waitFor(t, func() bool {
		_, err := st.LoadStats(ctx, card)
		return err == nil
	})

	s.Match.Start()
	clock.Add(10 * time.Second)
	s.Tick()
	time.Sleep(20 * time.Millisecond)
	if got, _ := st.LoadStats(ctx, card); got.GamesPlayed != 0 {
		t.Fatalf("checkpoint before interval: %+v", got)
	}

	clock.Add(25 * time.Second)
	s.Tick()
	waitFor(t, func() bool {
		got, _ := st.LoadStats(ctx, card)
		return got.GamesPlayed == 1
	})
}
