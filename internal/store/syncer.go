package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/stats"
)

// ErrVerify is returned when a save could not be read back intact.
var ErrVerify = errors.New("store: save verification failed")

// Checkpoint is one player's state to persist.
type Checkpoint struct {
	Stats        stats.Stats
	Achievements []stats.Achievement
}

// Syncer saves one player's checkpoints on its own goroutine so gameplay never
// waits on the store. Only the newest pending checkpoint is kept.
type Syncer struct {
	store   Store
	id      string
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *Checkpoint
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewSyncer starts a syncer for player id. Each background save is bounded by
// timeout.
func NewSyncer(s Store, id string, timeout time.Duration, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	y := &Syncer{
		store:   s,
		id:      id,
		logger:  logger,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go y.run()
	return y
}

// Checkpoint queues cp for saving and returns immediately.
func (y *Syncer) Checkpoint(cp Checkpoint) {
	cp.Stats = cp.Stats.Clone()
	cp.Achievements = append([]stats.Achievement(nil), cp.Achievements...)

	y.mu.Lock()
	y.pending = &cp
	y.mu.Unlock()

	select {
	case y.wake <- struct{}{}:
	default:
	}
}

func (y *Syncer) run() {
	defer close(y.done)
	for {
		select {
		case <-y.quit:
			return
		case <-y.wake:
			cp := y.take()
			if cp == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(y.ctx, y.timeout)
			if err := y.save(ctx, *cp); err != nil {
				y.logger.Warn("checkpoint not saved", "id", y.id, "err", err)
			}
			cancel()
		}
	}
}

func (y *Syncer) take() *Checkpoint {
	y.mu.Lock()
	defer y.mu.Unlock()
	cp := y.pending
	y.pending = nil
	return cp
}

// save writes cp, verifies it and retries the stats write once on mismatch.
func (y *Syncer) save(ctx context.Context, cp Checkpoint) error {
	if err := y.store.SaveStats(ctx, y.id, cp.Stats); err != nil {
		return err
	}
	if err := y.store.SaveAchievements(ctx, y.id, cp.Achievements); err != nil {
		return err
	}
	if VerifySave(ctx, y.store, y.id, cp.Stats) {
		return nil
	}
	y.logger.Warn("save verification failed, retrying", "id", y.id, "high", cp.Stats.HighScore)
	if err := y.store.SaveStats(ctx, y.id, cp.Stats); err != nil {
		return err
	}
	if !VerifySave(ctx, y.store, y.id, cp.Stats) {
		y.logger.Error("save verification failed twice", "id", y.id, "high", cp.Stats.HighScore)
		return ErrVerify
	}
	return nil
}

// Close stops the background goroutine and saves final synchronously within
// ctx. A background save still running when ctx ends is cancelled.
func (y *Syncer) Close(ctx context.Context, final Checkpoint) error {
	y.once.Do(func() { close(y.quit) })
	select {
	case <-y.done:
	case <-ctx.Done():
		y.cancel()
		<-y.done
	}
	defer y.cancel()

	if err := y.save(ctx, final); err != nil {
		return fmt.Errorf("final save %s: %w", y.id, err)
	}
	return nil
}
