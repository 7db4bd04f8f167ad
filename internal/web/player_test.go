package web

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

type fakeConn struct {
	sendCh chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 1024)}
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

// expect reads messages until one of type typ arrives.
func expect(t *testing.T, fc *fakeConn, typ string) Envelope {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == typ {
				return env
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", typ)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func send(p *Player, t string, payload any) {
	b, _ := Encode(t, payload)
	env, _ := DecodeEnvelope(b)
	p.Deliver(env)
}

type harness struct {
	hub  *server.Server
	p    *Player
	fc   *fakeConn
	done chan error
}

func startPlayer(t *testing.T, st store.Store) *harness {
	t.Helper()
	logger := log.New(io.Discard)
	hub := server.NewServer(st, server.Options{Logger: logger, RefreshEvery: time.Hour})
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	h := &harness{hub: hub, fc: newFakeConn(), done: make(chan error, 1)}
	h.p = NewPlayer(h.fc, hub, nil, logger, "test")
	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.done <- h.p.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(3 * time.Second):
			t.Error("player did not stop")
		}
		stopHub()
		<-hubDone
	})
	return h
}

type viewState struct {
	State string `json:"state"`
	Score int    `json:"score"`
}

func TestPlayerLoginAndPlay(t *testing.T) {
	st := store.NewMemory()
	h := startPlayer(t, st)

	send(h.p, MsgHello, Hello{Card: "5100000001"})
	w, err := DecodePayload[Welcome](expect(t, h.fc, MsgWelcome))
	if err != nil {
		t.Fatal(err)
	}
	if w.Card != "5100000001" || w.Guest {
		t.Fatalf("got welcome %+v", w)
	}

	send(h.p, MsgStart, nil)
	for {
		v, err := DecodePayload[viewState](expect(t, h.fc, MsgView))
		if err != nil {
			t.Fatal(err)
		}
		if v.State == "playing" {
			break
		}
	}

	send(h.p, MsgPointer, Pointer{Action: "down", X: 240})
	send(h.p, MsgPointer, Pointer{Action: "move", X: 300})
	send(h.p, MsgPointer, Pointer{Action: "up"})
	send(h.p, MsgShow, Show{Screen: "stats"})
	e, err := DecodePayload[Error](expect(t, h.fc, MsgError))
	if err != nil {
		t.Fatal(err)
	}
	if e.Message != "screen unavailable while playing" {
		t.Fatalf("got error %q", e.Message)
	}

	if _, err := st.LoadIdentity(context.Background(), "5100000001"); err != nil {
		t.Fatalf("identity not created: %v", err)
	}
}

func TestPlayerRejects(t *testing.T) {
	h := startPlayer(t, store.NewMemory())

	tests := []struct {
		name    string
		typ     string
		payload any
	}{
		{"bad card", MsgHello, Hello{Card: "1234"}},
		{"unknown screen", MsgShow, Show{Screen: "credits"}},
		{"unknown action", MsgPointer, Pointer{Action: "wiggle"}},
		{"unknown type", "dance", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(h.p, tt.typ, tt.payload)
			expect(t, h.fc, MsgError)
		})
	}
}

func TestPlayerGuestProfile(t *testing.T) {
	h := startPlayer(t, store.NewMemory())

	send(h.p, MsgHello, Hello{})
	w, err := DecodePayload[Welcome](expect(t, h.fc, MsgWelcome))
	if err != nil {
		t.Fatal(err)
	}
	if !w.Guest {
		t.Fatal("empty card should play as guest")
	}

	send(h.p, MsgProfile, nil)
	prof, err := DecodePayload[Profile](expect(t, h.fc, MsgProfile))
	if err != nil {
		t.Fatal(err)
	}
	if prof.Stats.GamesPlayed != 0 || prof.Tickets != 0 || len(prof.Achievements) == 0 {
		t.Fatalf("got profile %+v", prof)
	}
}

func TestPlayerLeaderboard(t *testing.T) {
	st := store.NewMemory()
	for id, high := range map[string]int{"5100000001": 80, "5100000002": 40} {
		s := stats.New()
		s.HighScore = high
		if err := st.SaveStats(context.Background(), id, s); err != nil {
			t.Fatal(err)
		}
	}
	h := startPlayer(t, st)

	send(h.p, MsgHello, Hello{Card: "5100000002"})
	expect(t, h.fc, MsgWelcome)

	waitFor(t, func() bool { return len(h.hub.GetSnapshot().Leaderboard) == 2 })
	send(h.p, MsgLeaderboard, nil)
	lb, err := DecodePayload[Leaderboard](expect(t, h.fc, MsgLeaderboard))
	if err != nil {
		t.Fatal(err)
	}
	if lb.Place != 2 {
		t.Fatalf("place got %d, want 2", lb.Place)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].ID != "5100000001" {
		t.Fatalf("got entries %+v", lb.Entries)
	}
}

func TestPlayerShutdown(t *testing.T) {
	h := startPlayer(t, store.NewMemory())
	send(h.p, MsgHello, Hello{})
	expect(t, h.fc, MsgWelcome)

	waitFor(t, func() bool { return h.hub.Clients() == 1 })
	go h.hub.Shutdown(2 * time.Second)
	expect(t, h.fc, MsgShutdown)
	select {
	case err := <-h.done:
		if err != nil {
			t.Fatal(err)
		}
		h.done <- nil
	case <-time.After(2 * time.Second):
		t.Fatal("player still running after shutdown")
	}
}

func TestViewPayloadIsJSON(t *testing.T) {
	h := startPlayer(t, store.NewMemory())
	send(h.p, MsgStart, nil)
	env := expect(t, h.fc, MsgView)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(env.P, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"state", "score", "timeFraction", "items", "basket"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("view missing %q", key)
		}
	}
}
