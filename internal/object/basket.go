package object

import (
	"time"

	"github.com/tomz197/catch/internal/draw"
	"github.com/tomz197/catch/internal/physics"
)

// Basket geometry and tilt tuning.
const (
	BasketWidth    = 100.0
	BasketHeight   = 80.0
	ShrinkScale    = 0.5
	ShieldSizeMult = 1.5
	TiltGain       = 0.07
	MaxTilt        = 0.3 // rad
	TiltInterval   = 16 * time.Millisecond
)

// Basket is the player-controlled catcher anchored to the bottom edge.
// X is the left edge and stays within [0, screen width - BasketWidth].
type Basket struct {
	X     float64
	Scale float64
	Tilt  float64

	dragging  bool
	lastX     float64 // last pointer sample while dragging
	tiltAcc   time.Duration
	tiltFromX float64
}

// NewBasket returns a basket centered on the screen.
func NewBasket(screen Screen) *Basket {
	b := &Basket{}
	b.Reset(screen)
	return b
}

// Reset centers the basket and restores the default scale.
func (b *Basket) Reset(screen Screen) {
	b.X = (screen.W() - BasketWidth) / 2
	b.clamp(screen)
	b.Scale = 1
	b.Tilt = 0
	b.dragging = false
	b.tiltAcc = 0
	b.tiltFromX = b.X
}

// PointerDown starts a drag at pointer position x.
func (b *Basket) PointerDown(x float64) {
	if !finite(x) {
		return
	}
	b.dragging = true
	b.lastX = x
}

// PointerMove applies the delta since the previous sample while dragging.
func (b *Basket) PointerMove(x float64, screen Screen) {
	if !b.dragging || !finite(x) {
		return
	}
	b.X += x - b.lastX
	b.lastX = x
	b.clamp(screen)
}

// PointerUp ends the drag.
func (b *Basket) PointerUp() {
	b.dragging = false
}

// Dragging reports whether a drag is in progress.
func (b *Basket) Dragging() bool { return b.dragging }

// Nudge moves the basket by dx, as a keyboard drag.
func (b *Basket) Nudge(dx float64, screen Screen) {
	if !finite(dx) {
		return
	}
	b.X += dx
	b.clamp(screen)
}

func (b *Basket) clamp(screen Screen) {
	hi := screen.W() - BasketWidth
	if hi < 0 {
		hi = 0
	}
	b.X = physics.Clamp(b.X, 0, hi)
}

// Size returns the effective footprint used for both collision and drawing.
func (b *Basket) Size(shield bool) (w, h float64) {
	w, h = BasketWidth*b.Scale, BasketHeight*b.Scale
	if shield {
		w *= ShieldSizeMult
		h *= ShieldSizeMult
	}
	return w, h
}

// BandTop is the y above which nothing can be caught.
func (b *Basket) BandTop(screen Screen, shield bool) float64 {
	_, h := b.Size(shield)
	return screen.H() - h
}

// Reached reports whether an item's bottom edge has entered the catch band.
func (b *Basket) Reached(it *Item, screen Screen, shield bool) bool {
	return it.Y+it.H > b.BandTop(screen, shield)
}

// Overlaps reports horizontal overlap between the item and the effective basket.
func (b *Basket) Overlaps(it *Item, shield bool) bool {
	w, _ := b.Size(shield)
	return physics.SpansOverlap(it.X, it.W, b.X, w)
}

// CatchPoint is where magnet-pulled items are steered: the basket center on the catch band.
func (b *Basket) CatchPoint(screen Screen, shield bool) draw.Point {
	w, h := b.Size(shield)
	return draw.Point{X: b.X + w/2, Y: screen.H() - h/2}
}

// UpdateTilt recomputes the cosmetic tilt once per TiltInterval from the
// horizontal movement since the previous tilt tick.
func (b *Basket) UpdateTilt(dt time.Duration) {
	b.tiltAcc += dt
	if b.tiltAcc < TiltInterval {
		return
	}
	b.tiltAcc %= TiltInterval
	dx := b.X - b.tiltFromX
	b.tiltFromX = b.X
	b.Tilt = physics.Clamp(dx*TiltGain, -MaxTilt, MaxTilt)
}

// Draw renders the basket as a tilted trapezoid.
func (b *Basket) Draw(ctx DrawContext, shield bool) error {
	w, h := b.Size(shield)
	top := ctx.Screen.H() - h
	cx := b.X + w/2
	cy := top + h/2
	corners := [4]draw.Point{
		{X: -w / 2, Y: -h / 2},
		{X: w / 2, Y: -h / 2},
		{X: w * 0.35, Y: h / 2},
		{X: -w * 0.35, Y: h / 2},
	}
	points := ctx.Canvas.BorrowPoints(len(corners))
	for i, c := range corners {
		points[i] = draw.Rotate(c, b.Tilt)
		points[i].X += cx
		points[i].Y += cy
	}
	ctx.Canvas.DrawPolygon(points, false)
	return nil
}
