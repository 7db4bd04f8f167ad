package game

import (
	"time"

	"github.com/tomz197/catch/internal/effect"
	"github.com/tomz197/catch/internal/object"
)

func (m *Match) updateContext(dt time.Duration) object.UpdateContext {
	shield := m.effects.Active(effect.Shield)
	return object.UpdateContext{
		Delta:    dt,
		Screen:   m.screen,
		Spawner:  m,
		Rain:     m.effects.Active(effect.Rain),
		Slow:     m.effects.Active(effect.Slow),
		Magnet:   m.effects.Active(effect.Magnet),
		BootSwap: m.effects.Active(effect.BootSwap),
		Target:   m.basket.CatchPoint(m.screen, shield),
	}
}

// moveItems advances every live item. An item that fails to update is
// dropped on its own; the rest of the frame proceeds.
func (m *Match) moveItems(ctx object.UpdateContext) {
	kept := m.items[:0]
	for _, it := range m.items {
		remove, err := it.Update(ctx)
		if err != nil {
			m.logger.Warn("dropping item", "id", it.ID, "kind", it.Kind, "err", err)
		}
		if !remove {
			kept = append(kept, it)
		}
	}
	clear(m.items[len(kept):])
	m.items = kept
}
