package game

import (
	"fmt"
	"time"

	"github.com/tomz197/catch/internal/effect"
	"github.com/tomz197/catch/internal/object"
)

// resolveCollisions tests every item against the catch band and the bottom
// edge. The band test runs after motion, so an item that moved past the band
// in one large step is still tested against the basket that frame.
func (m *Match) resolveCollisions() {
	shield := m.effects.Active(effect.Shield)
	kept := m.items[:0]
	for _, it := range m.items {
		if m.basket.Reached(it, m.screen, shield) && m.basket.Overlaps(it, shield) {
			m.catch(it)
			if m.state != StatePlaying {
				// end already emptied the live set.
				return
			}
			shield = m.effects.Active(effect.Shield)
			continue
		}
		if it.Y > m.screen.H() {
			m.miss(it)
			continue
		}
		kept = append(kept, it)
	}
	clear(m.items[len(kept):])
	m.items = kept
}

// miss handles an item that left the bottom edge.
func (m *Match) miss(it *object.Item) {
	kind := m.effectiveKind(it)
	if kind.IsReward() && !m.effects.Active(effect.Rain) {
		m.addTime(-MissPenalty)
	}
}

func (m *Match) effectiveKind(it *object.Item) object.Kind {
	return it.EffectiveKind(m.effects.Active(effect.BootSwap))
}

// suppressedByRain lists the kinds that do nothing but count while it rains.
func suppressedByRain(k object.Kind) bool {
	switch k {
	case object.Anvil, object.Puffer, object.Sock, object.Drop, object.Shield, object.Boot:
		return true
	}
	return false
}

// catch applies a caught item. The lifetime counter always moves first.
func (m *Match) catch(it *object.Item) {
	kind := m.effectiveKind(it)
	m.tracker.Caught(kind)

	if m.effects.Active(effect.Rain) && suppressedByRain(kind) {
		return
	}
	shield := m.effects.Active(effect.Shield)

	switch kind {
	case object.Champignon, object.Cucumber, object.Eggplant, object.Kebab, object.Salad:
		e, _ := m.catalog.Lookup(kind)
		m.score += e.Points
		m.addTime(e.TimeBonus)
		m.showCue(it, fmt.Sprintf("+%d", e.Points))
	case object.Anvil:
		if shield {
			m.showCue(it, "blocked")
			return
		}
		m.tracker.AnvilDeath()
		m.end(CauseHazard)
	case object.Drop:
		if m.activate(effect.Rain, RainDuration, nil) {
			m.showCue(it, "rain!")
		}
	case object.Magnet:
		if m.activate(effect.Magnet, MagnetDuration, nil) {
			m.showCue(it, "magnet!")
		}
	case object.Shield:
		if m.activate(effect.Shield, ShieldDuration, nil) {
			m.showCue(it, "shield!")
		}
	case object.Sock:
		if shield {
			return
		}
		if m.activate(effect.Shrink, ShrinkDuration, m.restoreScale) {
			m.basket.Scale = object.ShrinkScale
			m.addTime(-SockPenalty)
			m.showCue(it, "-2s")
		}
	case object.Puffer:
		if shield {
			return
		}
		if m.activate(effect.Slow, SlowDuration, m.creditSlow) {
			m.showCue(it, "slow...")
		}
	case object.Boot:
		if shield {
			return
		}
		if m.activate(effect.BootSwap, BootDuration, nil) {
			m.showCue(it, "boots!")
		}
	case object.Ticket:
		m.showCue(it, "ticket!")
	}
}

func (m *Match) activate(k effect.Kind, d time.Duration, onExpire effect.Expiry) bool {
	ok := m.effects.Activate(k, m.clock, d, onExpire)
	if ok {
		m.logger.Debug("effect on", "effect", k, "for", d)
	}
	return ok
}

func (m *Match) restoreScale(effect.Kind, time.Duration) {
	m.basket.Scale = 1
}

func (m *Match) creditSlow(_ effect.Kind, active time.Duration) {
	m.tracker.AddSlowTime(active)
}

func (m *Match) showCue(it *object.Item, text string) {
	x, y := it.Center()
	m.cue = Cue{Text: text, X: x, Y: y, until: m.clock + CueDuration}
}
