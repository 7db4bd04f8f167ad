// Package object holds the entities of the play field: falling items, the
// basket, the item catalog and the spawner that feeds items into a run.
package object

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/tomz197/catch/internal/draw"
)

// ErrNonFinite is returned by Update when an item's position stopped being a finite number.
var ErrNonFinite = errors.New("object: non-finite position")

// Spawner accepts items produced during an update.
type Spawner interface {
	Spawn(it *Item)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Screen  Screen
	Spawner Spawner

	// Active modifiers for this frame.
	Rain     bool
	Slow     bool
	Magnet   bool
	BootSwap bool

	// Target is the point magnet-pulled items move toward (basket catch point).
	Target draw.Point
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas // High-resolution canvas (2x vertical)
	Writer io.Writer    // Direct terminal output (for text overlays)
	Screen Screen
}

// Screen is the logical play field size.
type Screen struct {
	Width  int
	Height int
}

// W returns the width as float64.
func (s Screen) W() float64 { return float64(s.Width) }

// H returns the height as float64.
func (s Screen) H() float64 { return float64(s.Height) }

// Object is a drawable and updatable game entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object. Use ctx.Canvas for shapes, ctx.Writer for text.
	Draw(ctx DrawContext) error
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
