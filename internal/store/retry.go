package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/stats"
)

// RetryPolicy bounds Retrying. Delays grow from Initial by Multiplier.
type RetryPolicy struct {
	Attempts   int
	Initial    time.Duration
	Multiplier float64
}

// DefaultRetryPolicy is three attempts, waiting 1 s then 2 s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Initial: time.Second, Multiplier: 2}

// Retrying wraps a Store and retries failed calls with exponential backoff.
// ErrNotFound and context cancellation are returned at once.
type Retrying struct {
	next   Store
	policy RetryPolicy
	logger *log.Logger
}

// NewRetrying wraps next. A nil logger logs to the default logger.
func NewRetrying(next Store, policy RetryPolicy, logger *log.Logger) *Retrying {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

func (r *Retrying) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.Initial
	b.Multiplier = r.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.Attempts-1)), ctx)
}

func retry[T any](ctx context.Context, r *Retrying, op string, fn func() (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := fn()
		if err != nil && (errors.Is(err, ErrNotFound) || ctx.Err() != nil) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, r.backOff(ctx), func(err error, wait time.Duration) {
		r.logger.Warn("store call failed", "op", op, "attempt", attempt, "retry_in", wait, "err", err)
	})
}

func retryErr(ctx context.Context, r *Retrying, op string, fn func() error) error {
	_, err := retry(ctx, r, op, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (r *Retrying) LoadStats(ctx context.Context, id string) (stats.Stats, error) {
	return retry(ctx, r, "load stats", func() (stats.Stats, error) { return r.next.LoadStats(ctx, id) })
}

func (r *Retrying) SaveStats(ctx context.Context, id string, s stats.Stats) error {
	return retryErr(ctx, r, "save stats", func() error { return r.next.SaveStats(ctx, id, s) })
}

func (r *Retrying) LoadAchievements(ctx context.Context, id string) ([]stats.Achievement, error) {
	return retry(ctx, r, "load achievements", func() ([]stats.Achievement, error) {
		return r.next.LoadAchievements(ctx, id)
	})
}

func (r *Retrying) SaveAchievements(ctx context.Context, id string, a []stats.Achievement) error {
	return retryErr(ctx, r, "save achievements", func() error { return r.next.SaveAchievements(ctx, id, a) })
}

func (r *Retrying) LoadIdentity(ctx context.Context, id string) (Identity, error) {
	return retry(ctx, r, "load card", func() (Identity, error) { return r.next.LoadIdentity(ctx, id) })
}

func (r *Retrying) SaveIdentity(ctx context.Context, id string, ident Identity) error {
	return retryErr(ctx, r, "save card", func() error { return r.next.SaveIdentity(ctx, id, ident) })
}

func (r *Retrying) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	return retry(ctx, r, "leaderboard", func() ([]LeaderboardEntry, error) { return r.next.Top(ctx, n) })
}

func (r *Retrying) Rank(ctx context.Context, id string) (int, error) {
	return retry(ctx, r, "rank", func() (int, error) { return r.next.Rank(ctx, id) })
}

var _ Store = (*Retrying)(nil)
