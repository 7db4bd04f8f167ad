package object

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/catch/internal/draw"
)

var testScreen = Screen{Width: 480, Height: 800}

type collector struct{ items []*Item }

func (c *collector) Spawn(it *Item) { c.items = append(c.items, it) }

func TestNewItemGeometry(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		it := NewItem("x", Kebab, testScreen, rng)
		if it.X < 0 || it.X >= testScreen.W()-ItemSize {
			t.Fatalf("x %v out of [0, %v)", it.X, testScreen.W()-ItemSize)
		}
		if it.Y != -ItemSize || it.W != ItemSize {
			t.Fatalf("got y=%v w=%v", it.Y, it.W)
		}
		if it.Speed < MinSpeed || it.Speed >= MinSpeed+SpeedRange {
			t.Fatalf("speed %v out of range", it.Speed)
		}
	}
	a := NewItem("a", Anvil, testScreen, rng)
	if a.W != AnvilSize || a.Speed != 675 {
		t.Fatalf("anvil got w=%v speed=%v", a.W, a.Speed)
	}
}

func TestFallMonotonicInDelta(t *testing.T) {
	prev := 0.0
	for _, ms := range []int{1, 5, 16, 33, 100, 1000} {
		it := &Item{Kind: Salad, W: ItemSize, H: ItemSize, Speed: 200}
		if _, err := it.Update(UpdateContext{Delta: time.Duration(ms) * time.Millisecond}); err != nil {
			t.Fatal(err)
		}
		if it.Y <= prev {
			t.Fatalf("dt=%dms moved %v, not more than %v", ms, it.Y, prev)
		}
		prev = it.Y
	}
}

func TestSlowHalvesRewardsOnly(t *testing.T) {
	ctx := UpdateContext{Delta: time.Second, Slow: true}
	food := &Item{Kind: Kebab, W: 50, H: 50, Speed: 200}
	anvil := &Item{Kind: Anvil, W: 72, H: 72, Speed: 675}
	food.Update(ctx)
	anvil.Update(ctx)
	if food.Y != 100 {
		t.Fatalf("food y %v, want 100", food.Y)
	}
	if anvil.Y != 675 {
		t.Fatalf("anvil y %v, want 675", anvil.Y)
	}
}

func TestMagnetPullsWithoutOvershoot(t *testing.T) {
	target := draw.Point{X: 240, Y: 760}
	it := &Item{Kind: Salad, X: 215, Y: 600, W: 50, H: 50, Speed: 300}
	ctx := UpdateContext{Delta: time.Second, Magnet: true, Target: target}
	it.Update(ctx)
	cx, cy := it.Center()
	if math.Abs(cx-target.X) > 1e-9 || math.Abs(cy-target.Y) > 1e-9 {
		t.Fatalf("center (%v, %v), want target %v", cx, cy, target)
	}
}

func TestMagnetIgnoresNonRewards(t *testing.T) {
	it := &Item{Kind: Sock, X: 0, Y: 0, W: 50, H: 50, Speed: 100}
	it.Update(UpdateContext{Delta: time.Second, Magnet: true, Target: draw.Point{X: 400, Y: 700}})
	if it.X != 0 || it.Y != 100 {
		t.Fatalf("got (%v, %v), want (0, 100)", it.X, it.Y)
	}
}

func TestBootSwapDisablesMagnet(t *testing.T) {
	it := &Item{Kind: Salad, X: 0, Y: 0, W: 50, H: 50, Speed: 100}
	it.Update(UpdateContext{Delta: time.Second, Magnet: true, BootSwap: true, Target: draw.Point{X: 400, Y: 700}})
	if it.X != 0 || it.Y != 100 {
		t.Fatalf("got (%v, %v), want plain fall", it.X, it.Y)
	}
}

func TestRotation(t *testing.T) {
	food := &Item{Kind: Salad, W: 50, H: 50, Speed: 100}
	anvil := &Item{Kind: Anvil, W: 72, H: 72, Speed: 675}
	ctx := UpdateContext{Delta: 500 * time.Millisecond}
	food.Update(ctx)
	anvil.Update(ctx)
	if math.Abs(food.Rotation-0.5) > 1e-9 {
		t.Fatalf("food rotation %v, want 0.5", food.Rotation)
	}
	if anvil.Rotation != 0 {
		t.Fatalf("anvil rotation %v, want 0", anvil.Rotation)
	}

	// The phase keeps growing past a full turn.
	prev := food.Rotation
	for i := 0; i < 20; i++ {
		food.Update(UpdateContext{Delta: time.Second})
		if food.Rotation <= prev {
			t.Fatalf("rotation went from %v to %v", prev, food.Rotation)
		}
		prev = food.Rotation
	}
	if food.Rotation < 2*math.Pi {
		t.Fatalf("rotation %v did not pass a full turn", food.Rotation)
	}
}

func TestNonFiniteItemIsRemoved(t *testing.T) {
	it := &Item{Kind: Salad, W: 50, H: 50, Speed: math.Inf(1)}
	remove, err := it.Update(UpdateContext{Delta: time.Millisecond})
	if !remove || err == nil {
		t.Fatalf("got remove=%v err=%v, want removal", remove, err)
	}
}

func TestSpawnerCadence(t *testing.T) {
	c := &collector{}
	s := NewItemSpawner(DefaultCatalog(), rand.New(rand.NewSource(1)))
	ctx := UpdateContext{Screen: testScreen, Spawner: c, Delta: 100 * time.Millisecond}
	for i := 0; i < 15; i++ { // 1.5 s
		s.Update(ctx)
	}
	if len(c.items) != 4 {
		t.Fatalf("got %d spawns, want 4", len(c.items))
	}
}

func TestSpawnerRainBurst(t *testing.T) {
	c := &collector{}
	s := NewItemSpawner(DefaultCatalog(), rand.New(rand.NewSource(1)))
	s.Update(UpdateContext{Screen: testScreen, Spawner: c, Rain: true, Delta: 250 * time.Millisecond})
	if len(c.items) != RainBurst {
		t.Fatalf("got %d spawns, want %d", len(c.items), RainBurst)
	}
	for _, it := range c.items {
		if !it.Kind.IsReward() {
			t.Fatalf("rain spawned %v", it.Kind)
		}
	}
}

func TestSpawnerCatchUpCap(t *testing.T) {
	c := &collector{}
	s := NewItemSpawner(DefaultCatalog(), rand.New(rand.NewSource(1)))
	s.Update(UpdateContext{Screen: testScreen, Spawner: c, Delta: time.Minute})
	if len(c.items) != MaxCatchUpTicks {
		t.Fatalf("got %d spawns, want %d", len(c.items), MaxCatchUpTicks)
	}
	seen := make(map[string]bool)
	for _, it := range c.items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %q", it.ID)
		}
		seen[it.ID] = true
	}
}
