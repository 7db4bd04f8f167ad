package game

import (
	"github.com/tomz197/catch/internal/effect"
	"github.com/tomz197/catch/internal/object"
)

// View is a renderer-neutral snapshot of a match, sent as-is to web clients.
type View struct {
	State        State           `json:"state"`
	Score        int             `json:"score"`
	TimeLeft     int64           `json:"timeLeft"` // ms
	TimeFraction float64         `json:"timeFraction"`
	Items        []object.Item   `json:"items"`
	Basket       BasketView      `json:"basket"`
	Effects      []effect.Status `json:"effects,omitempty"`
	Tint         string          `json:"tint,omitempty"`
	Cue          *Cue            `json:"cue,omitempty"`
	Result       *Result         `json:"result,omitempty"`
	Tickets      int             `json:"tickets"`
}

// BasketView is the basket's drawn footprint.
type BasketView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Tilt   float64 `json:"tilt"`
	Scale  float64 `json:"scale"`
	Shield bool    `json:"shield"`
}

// MarshalText encodes s by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View captures the current frame. Items carry their effective kind.
func (m *Match) View() View {
	shield := m.effects.Active(effect.Shield)
	bootSwap := m.effects.Active(effect.BootSwap)
	w, h := m.basket.Size(shield)

	v := View{
		State:        m.state,
		Score:        m.score,
		TimeLeft:     m.timeLeft.Milliseconds(),
		TimeFraction: float64(m.timeLeft) / float64(MaxTime),
		Items:        make([]object.Item, len(m.items)),
		Basket: BasketView{
			X:      m.basket.X,
			Y:      m.screen.H() - h,
			W:      w,
			H:      h,
			Tilt:   m.basket.Tilt,
			Scale:  m.basket.Scale,
			Shield: shield,
		},
		Effects: m.effects.Snapshot(m.clock),
		Tint:    m.Tint(),
		Tickets: m.tracker.Snapshot().Tickets(),
	}
	for i, it := range m.items {
		v.Items[i] = *it
		v.Items[i].Kind = it.EffectiveKind(bootSwap)
	}
	if cue, ok := m.ActiveCue(); ok {
		v.Cue = &cue
	}
	if m.state == StateResult {
		r := m.result
		v.Result = &r
	}
	return v
}

// Tint is the screen tint for the live effects, or "" for none. Shield wins
// over magnet, magnet over slow.
func (m *Match) Tint() string {
	switch {
	case m.effects.Active(effect.Shield):
		return TintShield
	case m.effects.Active(effect.Magnet):
		return TintMagnet
	case m.effects.Active(effect.Slow):
		return TintSlow
	}
	return ""
}

// ActiveCue returns the catch cue while it is still on screen.
func (m *Match) ActiveCue() (Cue, bool) {
	if m.state != StatePlaying || m.cue.Text == "" || m.clock >= m.cue.until {
		return Cue{}, false
	}
	return m.cue, true
}
