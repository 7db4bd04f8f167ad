// Package game runs one player's match: the screen state machine, the run
// countdown, item motion, collision and catch handling. A Match is driven
// entirely by Advance and is not safe for concurrent use.
package game

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/effect"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/stats"
)

// State is the screen the player is on.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateResult
	StateAuth
	StateProfile
	StateStats
	StateAchievements
	StatePrizes
	StateHowToPlay
	StateLeaderboard
)

var stateNames = map[State]string{
	StateMenu:         "menu",
	StatePlaying:      "playing",
	StateResult:       "result",
	StateAuth:         "auth",
	StateProfile:      "profile",
	StateStats:        "stats",
	StateAchievements: "achievements",
	StatePrizes:       "prizes",
	StateHowToPlay:    "howtoplay",
	StateLeaderboard:  "leaderboard",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseState resolves a state by name.
func ParseState(name string) (State, bool) {
	for s, n := range stateNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Cause is why a run ended.
type Cause int

const (
	CauseNone Cause = iota
	CauseTimeout
	CauseHazard
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseHazard:
		return "hazard"
	default:
		return "none"
	}
}

// MarshalText encodes c by name.
func (c Cause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Result summarizes a finished run.
type Result struct {
	Score        int                 `json:"score"`
	Cause        Cause               `json:"cause"`
	Reason       string              `json:"reason"`
	HighScore    int                 `json:"highScore"`
	NewHighScore bool                `json:"newHighScore"`
	Duration     time.Duration       `json:"duration"`
	Unlocked     []stats.Achievement `json:"unlocked,omitempty"`
}

// Source produces items into the match. The default is an object.ItemSpawner.
type Source interface {
	Update(ctx object.UpdateContext) (bool, error)
	Reset()
}

// Options configures a Match.
type Options struct {
	Screen  object.Screen
	Catalog *object.Catalog
	Rand    *rand.Rand
	Source  Source
	Tracker *stats.Tracker
	// OnRunEnd is called once per finished run with a copy of the stats,
	// e.g. to checkpoint them. It must not block.
	OnRunEnd func(Result, stats.Stats)
	Logger   *log.Logger
}

// Match is one player's game.
type Match struct {
	screen   object.Screen
	catalog  *object.Catalog
	rng      *rand.Rand
	source   Source
	tracker  *stats.Tracker
	onRunEnd func(Result, stats.Stats)
	logger   *log.Logger

	state   State
	effects *effect.Registry
	basket  *object.Basket
	items   []*object.Item

	score    int
	timeLeft time.Duration
	clock    time.Duration // game clock of the current run
	tickAcc  time.Duration
	result   Result
	cue      Cue
}

// Cue is the floating text shown over the last catch.
type Cue struct {
	Text  string        `json:"text"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	until time.Duration // game clock
}

// New creates a match on the menu screen.
func New(opts Options) *Match {
	if opts.Catalog == nil {
		opts.Catalog = object.DefaultCatalog()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Source == nil {
		opts.Source = object.NewItemSpawner(opts.Catalog, opts.Rand)
	}
	if opts.Tracker == nil {
		opts.Tracker = stats.NewTracker(stats.New())
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Match{
		screen:   opts.Screen,
		catalog:  opts.Catalog,
		rng:      opts.Rand,
		source:   opts.Source,
		tracker:  opts.Tracker,
		onRunEnd: opts.OnRunEnd,
		logger:   opts.Logger,
		state:    StateMenu,
		effects:  effect.NewRegistry(),
		basket:   object.NewBasket(opts.Screen),
		timeLeft: MaxTime,
	}
}

// State returns the current screen.
func (m *Match) State() State { return m.state }

// Score returns the current run's score.
func (m *Match) Score() int { return m.score }

// TimeLeft returns the remaining countdown.
func (m *Match) TimeLeft() time.Duration { return m.timeLeft }

// Clock returns the game clock of the current run.
func (m *Match) Clock() time.Duration { return m.clock }

// Result returns the last finished run.
func (m *Match) Result() Result { return m.result }

// Tracker returns the stats tracker.
func (m *Match) Tracker() *stats.Tracker { return m.tracker }

// Catalog returns the spawn table.
func (m *Match) Catalog() *object.Catalog { return m.catalog }

// Basket returns the basket.
func (m *Match) Basket() *object.Basket { return m.basket }

// Effects returns the effect registry.
func (m *Match) Effects() *effect.Registry { return m.effects }

// Items returns the live items. The slice is owned by the match.
func (m *Match) Items() []*object.Item { return m.items }

// Show switches to an information screen. It is refused while playing.
func (m *Match) Show(s State) bool {
	if m.state == StatePlaying || s == StatePlaying {
		return false
	}
	m.state = s
	return true
}

// Start begins a new run: score 0, full time, centered full-size basket, no
// effects, no items. Pending expiries of the previous run are discarded.
func (m *Match) Start() {
	m.effects.Reset()
	m.items = m.items[:0]
	m.score = 0
	m.timeLeft = MaxTime
	m.clock = 0
	m.tickAcc = 0
	m.result = Result{}
	m.cue = Cue{}
	m.basket.Reset(m.screen)
	m.source.Reset()
	m.tracker.GamePlayed()
	m.state = StatePlaying
	m.logger.Debug("run started", "games", m.tracker.Snapshot().GamesPlayed)
}

// Abandon leaves a run without finishing it, e.g. when the player quits.
// Time spent under slow still counts; the score does not.
func (m *Match) Abandon() {
	if m.state != StatePlaying {
		return
	}
	m.effects.Flush(m.clock)
	m.items = m.items[:0]
	m.state = StateMenu
}

// Spawn adds an item to the run. Implements object.Spawner.
func (m *Match) Spawn(it *object.Item) {
	m.items = append(m.items, it)
}

// PointerDown starts a basket drag.
func (m *Match) PointerDown(x float64) {
	if m.state == StatePlaying {
		m.basket.PointerDown(x)
	}
}

// PointerMove drags the basket.
func (m *Match) PointerMove(x float64) {
	if m.state == StatePlaying {
		m.basket.PointerMove(x, m.screen)
	}
}

// PointerUp ends a basket drag.
func (m *Match) PointerUp() {
	m.basket.PointerUp()
}

// Nudge moves the basket by dx without a drag, for keyboard control.
func (m *Match) Nudge(dx float64) {
	if m.state == StatePlaying {
		m.basket.Nudge(dx, m.screen)
	}
}

// Advance moves the run forward by dt of game time: effect expiries,
// countdown, spawning, motion, collisions and basket tilt, in that order.
func (m *Match) Advance(dt time.Duration) {
	if m.state != StatePlaying || dt <= 0 {
		return
	}
	m.clock += dt
	m.effects.Expire(m.clock)

	if m.tickCountdown(dt) {
		return
	}

	ctx := m.updateContext(dt)
	if _, err := m.source.Update(ctx); err != nil {
		m.logger.Warn("spawn failed", "err", err)
	}
	m.moveItems(ctx)
	m.resolveCollisions()
	if m.state != StatePlaying {
		return
	}
	m.basket.UpdateTilt(dt)

	if m.timeLeft <= 0 {
		m.end(CauseTimeout)
	}
}

// tickCountdown applies whole countdown ticks and reports whether the run ended.
func (m *Match) tickCountdown(dt time.Duration) bool {
	m.tickAcc += dt
	for m.tickAcc >= CountdownTick {
		m.tickAcc -= CountdownTick
		m.tracker.AddPlayTime(CountdownTick)
		m.addTime(-CountdownTick)
		if m.timeLeft <= 0 {
			m.end(CauseTimeout)
			return true
		}
	}
	return false
}

// addTime changes the countdown, clamped to [0, MaxTime].
func (m *Match) addTime(d time.Duration) {
	m.timeLeft += d
	if m.timeLeft > MaxTime {
		m.timeLeft = MaxTime
	}
	if m.timeLeft < 0 {
		m.timeLeft = 0
	}
}

func (m *Match) end(cause Cause) {
	m.effects.Flush(m.clock)
	newHigh := m.tracker.SubmitScore(m.score)
	snap := m.tracker.Snapshot()
	m.result = Result{
		Score:        m.score,
		Cause:        cause,
		Reason:       deathReason(m.rng, cause),
		HighScore:    snap.HighScore,
		NewHighScore: newHigh,
		Duration:     m.clock,
		Unlocked:     m.tracker.TakeUnlocked(),
	}
	clear(m.items)
	m.items = m.items[:0]
	m.basket.PointerUp()
	m.state = StateResult
	m.logger.Info("run ended", "score", m.score, "cause", cause, "high", snap.HighScore)
	if m.onRunEnd != nil {
		m.onRunEnd(m.result, snap)
	}
}
