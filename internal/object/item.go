package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/catch/internal/draw"
	"github.com/tomz197/catch/internal/physics"
)

// Item geometry and motion.
const (
	ItemSize       = 50.0
	AnvilSize      = 72.0
	BaseSpeed      = 450.0 // px/s, scaled by AnvilSpeedMult for anvils
	AnvilSpeedMult = 1.5
	MinSpeed       = 150.0
	SpeedRange     = 200.0
	RotationSpeed  = 1.0 // rad/s
	SlowFactor     = 0.5
	MagnetMult     = 2.0
)

// Item is a falling object. Position is the top-left corner in logical pixels.
type Item struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Speed    float64 `json:"-"`
	Rotation float64 `json:"rot"`
}

// NewItem creates an item of kind k just above the top edge at a random column.
func NewItem(id string, k Kind, screen Screen, rng *rand.Rand) *Item {
	size := ItemSize
	speed := MinSpeed + rng.Float64()*SpeedRange
	if k == Anvil {
		size = AnvilSize
		speed = BaseSpeed * AnvilSpeedMult
	}
	span := screen.W() - size
	if span < 0 {
		span = 0
	}
	return &Item{
		ID:    id,
		Kind:  k,
		X:     rng.Float64() * span,
		Y:     -size,
		W:     size,
		H:     size,
		Speed: speed,
	}
}

// EffectiveKind is the kind used for scoring and rendering. While boots are
// swapped in every item counts as a boot.
func (it *Item) EffectiveKind(bootSwap bool) Kind {
	if bootSwap {
		return Boot
	}
	return it.Kind
}

// Center returns the center of the item's footprint.
func (it *Item) Center() (x, y float64) {
	return it.X + it.W/2, it.Y + it.H/2
}

// Update advances the item by one frame. Reward items are pulled toward
// ctx.Target under a magnet and fall at half speed under slow; everything else
// falls at its own speed.
func (it *Item) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	kind := it.EffectiveKind(ctx.BootSwap)

	if it.Kind != Anvil {
		it.Rotation += RotationSpeed * dt
	}

	if ctx.Magnet && kind.IsReward() {
		cx, cy := it.Center()
		nx, ny := physics.StepToward(cx, cy, ctx.Target.X, ctx.Target.Y, it.Speed*MagnetMult*dt)
		it.X += nx - cx
		it.Y += ny - cy
	} else {
		v := it.Speed
		if ctx.Slow && kind.IsReward() {
			v *= SlowFactor
		}
		it.Y += v * dt
	}

	if !finite(it.X) || !finite(it.Y) {
		return true, ErrNonFinite
	}
	return false, nil
}

// Draw renders the item as a rotated polygon. The glyph overlay is written by
// the caller, which knows the terminal cell layout.
func (it *Item) Draw(ctx DrawContext) error {
	cx, cy := it.Center()
	sides, filled := shapeOf(it.Kind)
	points := ctx.Canvas.BorrowPoints(sides)
	r := it.W / 2
	for i := range points {
		a := it.Rotation + float64(i)*2*math.Pi/float64(sides)
		points[i] = draw.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	ctx.Canvas.DrawPolygon(points, filled)
	return nil
}

// shapeOf gives each class of kind a distinct outline.
func shapeOf(k Kind) (sides int, filled bool) {
	switch {
	case k == Anvil:
		return 4, true
	case k.IsReward():
		return 8, true
	case k == Ticket:
		return 4, false
	default:
		return 3, false
	}
}
