package object

import (
	"testing"
	"time"
)

func TestBasketOverlapScenario(t *testing.T) {
	b := NewBasket(testScreen)
	b.X = 100
	it := &Item{X: 120, W: 50, H: 50, Y: testScreen.H() - 60}
	if !b.Reached(it, testScreen, false) {
		t.Fatal("item should be in the catch band")
	}
	if !b.Overlaps(it, false) {
		t.Fatal("item 120..170 should overlap basket 100..200")
	}
}

func TestBasketShrinkAndShield(t *testing.T) {
	b := NewBasket(testScreen)
	b.X = 100
	b.Scale = ShrinkScale
	it := &Item{X: 160, W: 30, H: 50}
	if b.Overlaps(it, false) {
		t.Fatal("shrunk basket spans 100..150 and should miss 160")
	}
	if !b.Overlaps(it, true) {
		t.Fatal("shielded shrunk basket spans 100..175 and should catch 160")
	}
	w, h := b.Size(true)
	if w != 75 || h != 60 {
		t.Fatalf("got %vx%v, want 75x60", w, h)
	}
}

func TestBasketDragClamp(t *testing.T) {
	b := NewBasket(testScreen)
	if b.X != 190 {
		t.Fatalf("start x %v, want centered 190", b.X)
	}
	b.PointerDown(200)
	b.PointerMove(-1000, testScreen)
	if b.X != 0 {
		t.Fatalf("got %v, want 0", b.X)
	}
	b.PointerMove(5000, testScreen)
	if b.X != testScreen.W()-BasketWidth {
		t.Fatalf("got %v, want %v", b.X, testScreen.W()-BasketWidth)
	}
	b.PointerUp()
	b.PointerMove(0, testScreen)
	if b.X != testScreen.W()-BasketWidth {
		t.Fatal("move without drag should be ignored")
	}
}

func TestBasketDragUsesDeltas(t *testing.T) {
	b := NewBasket(testScreen)
	b.PointerDown(10)
	b.PointerMove(30, testScreen)
	b.PointerMove(25, testScreen)
	if b.X != 205 {
		t.Fatalf("got %v, want 205", b.X)
	}
}

func TestBasketTilt(t *testing.T) {
	b := NewBasket(testScreen)
	b.Nudge(2, testScreen)
	b.UpdateTilt(TiltInterval)
	if want := 2 * TiltGain; b.Tilt != want {
		t.Fatalf("got %v, want %v", b.Tilt, want)
	}
	b.Nudge(-100, testScreen)
	b.UpdateTilt(TiltInterval)
	if b.Tilt != -MaxTilt {
		t.Fatalf("got %v, want %v", b.Tilt, -MaxTilt)
	}
	b.UpdateTilt(TiltInterval)
	if b.Tilt != 0 {
		t.Fatalf("got %v, want 0 when still", b.Tilt)
	}
}

func TestBasketTiltWaitsForTick(t *testing.T) {
	b := NewBasket(testScreen)
	b.Nudge(3, testScreen)
	b.UpdateTilt(5 * time.Millisecond)
	if b.Tilt != 0 {
		t.Fatalf("tilt changed before tick: %v", b.Tilt)
	}
}
