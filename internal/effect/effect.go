// Package effect keeps the temporary modifiers of a run as a deadline map on
// the game clock. The owner polls Expire once per frame; nothing here starts
// goroutines or wall-clock timers.
package effect

import (
	"fmt"
	"sort"
	"time"
)

// Kind identifies a temporary modifier.
type Kind uint8

const (
	Rain     Kind = iota // reward-only spawns, hazards harmless
	Magnet               // rewards steer into the basket
	Shield               // wider basket, hazard immunity
	Shrink               // half-size basket
	Slow                 // rewards fall at half speed
	BootSwap             // every item counts as a boot
	kindCount
)

var kindNames = [kindCount]string{
	Rain:     "rain",
	Magnet:   "magnet",
	Shield:   "shield",
	Shrink:   "shrink",
	Slow:     "slow",
	BootSwap: "boot",
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("effect(%d)", uint8(k))
	}
	return kindNames[k]
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Expiry is the rollback run when an effect ends. active is how long the
// effect was in force.
type Expiry func(k Kind, active time.Duration)

type timer struct {
	live     bool
	start    time.Duration
	deadline time.Duration
	onExpire Expiry
}

// Registry holds at most one live timer per kind.
type Registry struct {
	timers [kindCount]timer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Activate starts k at now for d. It returns false and changes nothing when k
// is already live: re-triggering neither extends nor shortens the effect.
func (r *Registry) Activate(k Kind, now, d time.Duration, onExpire Expiry) bool {
	if k >= kindCount || r.timers[k].live {
		return false
	}
	r.timers[k] = timer{live: true, start: now, deadline: now + d, onExpire: onExpire}
	return true
}

// Active reports whether k is live.
func (r *Registry) Active(k Kind) bool {
	return k < kindCount && r.timers[k].live
}

// Remaining returns how long k stays live after now, or 0.
func (r *Registry) Remaining(k Kind, now time.Duration) time.Duration {
	if !r.Active(k) {
		return 0
	}
	if left := r.timers[k].deadline - now; left > 0 {
		return left
	}
	return 0
}

// Expire ends every effect whose deadline is at or before now, earliest
// deadline first (ties by kind), running each rollback exactly once.
// It returns the number of effects ended.
func (r *Registry) Expire(now time.Duration) int {
	due := r.due(func(t timer) bool { return t.deadline <= now })
	n := 0
	for _, k := range due {
		t := r.timers[k]
		if !t.live || t.deadline > now {
			continue // replaced by an earlier rollback
		}
		r.timers[k] = timer{}
		n++
		if t.onExpire != nil {
			t.onExpire(k, t.deadline-t.start)
		}
	}
	return n
}

// Flush ends every live effect at now, crediting the time actually spent.
// Used when a run ends before its effects do.
func (r *Registry) Flush(now time.Duration) {
	due := r.due(func(timer) bool { return true })
	for _, k := range due {
		t := r.timers[k]
		r.timers[k] = timer{}
		if t.onExpire != nil {
			active := now - t.start
			if full := t.deadline - t.start; active > full {
				active = full
			}
			if active < 0 {
				active = 0
			}
			t.onExpire(k, active)
		}
	}
}

// Reset drops every timer without running rollbacks. Pending expiries of a
// previous run can never fire afterwards.
func (r *Registry) Reset() {
	r.timers = [kindCount]timer{}
}

func (r *Registry) due(match func(timer) bool) []Kind {
	var due []Kind
	for k, t := range r.timers {
		if t.live && match(t) {
			due = append(due, Kind(k))
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return r.timers[due[i]].deadline < r.timers[due[j]].deadline
	})
	return due
}

// Status describes one live effect.
type Status struct {
	Kind      Kind          `json:"kind"`
	Remaining time.Duration `json:"remaining"`
	Total     time.Duration `json:"total"`
}

// Snapshot lists live effects in kind order.
func (r *Registry) Snapshot(now time.Duration) []Status {
	var out []Status
	for k, t := range r.timers {
		if !t.live {
			continue
		}
		out = append(out, Status{
			Kind:      Kind(k),
			Remaining: r.Remaining(Kind(k), now),
			Total:     t.deadline - t.start,
		})
	}
	return out
}
