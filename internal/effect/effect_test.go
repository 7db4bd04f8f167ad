package effect

import (
	"testing"
	"time"
)

const ms = time.Millisecond

func TestActivateDoesNotRestack(t *testing.T) {
	r := NewRegistry()
	if !r.Activate(Magnet, 0, 3200*ms, nil) {
		t.Fatal("first activation should succeed")
	}
	if r.Activate(Magnet, 1000*ms, 3200*ms, nil) {
		t.Fatal("re-activation while live should be ignored")
	}
	if got := r.Remaining(Magnet, 1000*ms); got != 2200*ms {
		t.Fatalf("got %v, want %v", got, 2200*ms)
	}
	r.Expire(3199 * ms)
	if !r.Active(Magnet) {
		t.Fatal("magnet expired early")
	}
	r.Expire(3200 * ms)
	if r.Active(Magnet) {
		t.Fatal("magnet should have expired at its original deadline")
	}
}

func TestExpireRunsRollbackOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	var credited time.Duration
	r.Activate(Slow, 0, 3100*ms, func(k Kind, active time.Duration) {
		calls++
		credited += active
	})
	r.Expire(5000 * ms)
	r.Expire(6000 * ms)
	if calls != 1 {
		t.Fatalf("rollback ran %d times, want 1", calls)
	}
	if credited != 3100*ms {
		t.Fatalf("credited %v, want %v", credited, 3100*ms)
	}
}

func TestExpireOrder(t *testing.T) {
	r := NewRegistry()
	var order []Kind
	record := func(k Kind, _ time.Duration) { order = append(order, k) }
	r.Activate(Rain, 0, 4000*ms, record)
	r.Activate(Shield, 0, 2100*ms, record)
	r.Activate(Magnet, 0, 3200*ms, record)
	if n := r.Expire(10 * time.Second); n != 3 {
		t.Fatalf("expired %d, want 3", n)
	}
	want := []Kind{Shield, Magnet, Rain}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order %v, want %v", order, want)
		}
	}
}

func TestResetInvalidatesPendingExpiries(t *testing.T) {
	r := NewRegistry()
	fired := false
	r.Activate(Shrink, 0, 3200*ms, func(Kind, time.Duration) { fired = true })
	r.Reset()
	r.Expire(time.Hour)
	if fired {
		t.Fatal("rollback from before reset fired")
	}
	if !r.Activate(Shrink, 0, 3200*ms, nil) {
		t.Fatal("activation after reset should succeed")
	}
}

func TestFlushCreditsPartialTime(t *testing.T) {
	r := NewRegistry()
	var credited time.Duration
	r.Activate(Slow, 1000*ms, 3100*ms, func(_ Kind, active time.Duration) { credited = active })
	r.Flush(2500 * ms)
	if credited != 1500*ms {
		t.Fatalf("got %v, want %v", credited, 1500*ms)
	}
	if r.Active(Slow) {
		t.Fatal("flush should end the effect")
	}
}

func TestRollbackMayReactivate(t *testing.T) {
	r := NewRegistry()
	r.Activate(Rain, 0, 100*ms, func(k Kind, _ time.Duration) {
		r.Activate(k, 100*ms, 100*ms, nil)
	})
	r.Expire(100 * ms)
	if !r.Active(Rain) {
		t.Fatal("rollback re-activation was lost")
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Activate(Shield, 0, 2100*ms, nil)
	r.Activate(Rain, 0, 4000*ms, nil)
	snap := r.Snapshot(1000 * ms)
	if len(snap) != 2 || snap[0].Kind != Rain || snap[1].Kind != Shield {
		t.Fatalf("got %+v", snap)
	}
	if snap[1].Remaining != 1100*ms {
		t.Fatalf("got %v, want %v", snap[1].Remaining, 1100*ms)
	}
}
