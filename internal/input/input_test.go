package input

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func newState() *keyState {
	return &keyState{numberVal: -1}
}

func TestParseArrowsAndSteps(t *testing.T) {
	now := time.Now()
	in := parse(newState(), []byte("\x1b[C\x1b[C\x1b[Da"), now)
	if in.Steps != 0 {
		t.Fatalf("got steps %d, want 0", in.Steps)
	}
	if !in.Left || !in.Right {
		t.Fatalf("left=%v right=%v, want both held", in.Left, in.Right)
	}
	if string(in.Typed) != "a" {
		t.Fatalf("got typed %q, want %q", in.Typed, "a")
	}
}

func TestParseSGRMouse(t *testing.T) {
	buf := []byte("\x1b[<0;12;7M\x1b[<32;14;7M\x1b[<0;15;8m\x1b[<64;1;1M")
	in := parse(newState(), buf, time.Now())
	want := []Pointer{
		{Action: PointerDown, Col: 12, Row: 7},
		{Action: PointerMove, Col: 14, Row: 7},
		{Action: PointerUp, Col: 15, Row: 8},
	}
	if len(in.Pointers) != len(want) {
		t.Fatalf("got %d pointers %+v, want %d", len(in.Pointers), in.Pointers, len(want))
	}
	for i, p := range want {
		if in.Pointers[i] != p {
			t.Fatalf("pointer %d: got %+v, want %+v", i, in.Pointers[i], p)
		}
	}
	if len(in.Typed) != 0 {
		t.Fatalf("mouse bytes leaked into typed: %q", in.Typed)
	}
	if in.Escape {
		t.Fatal("mouse report should not register as escape")
	}
}

func TestParseTruncatedMouseFallsBack(t *testing.T) {
	in := parse(newState(), []byte("\x1b[<0;12"), time.Now())
	if len(in.Pointers) != 0 {
		t.Fatalf("got %+v, want no pointers", in.Pointers)
	}
}

func TestKeyHoldExpires(t *testing.T) {
	st := newState()
	now := time.Now()
	if in := parse(st, []byte(" "), now); !in.Space {
		t.Fatal("space should be held")
	}
	if in := parse(st, nil, now.Add(10*time.Millisecond)); !in.Space {
		t.Fatal("space should still be held within hold duration")
	}
	if in := parse(st, nil, now.Add(keyHoldDuration)); in.Space {
		t.Fatal("space should be released after hold duration")
	}
}

func TestParseDigits(t *testing.T) {
	in := parse(newState(), []byte("51"), time.Now())
	if in.Number != 1 {
		t.Fatalf("got %d, want 1", in.Number)
	}
	if string(in.Typed) != "51" {
		t.Fatalf("got %q, want %q", in.Typed, "51")
	}
}

func TestStreamClosed(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))
	deadline := time.Now().Add(time.Second)
	var sawQuit bool
	for !s.Closed() && time.Now().Before(deadline) {
		if ReadInput(s).Quit {
			sawQuit = true
		}
		time.Sleep(time.Millisecond)
	}
	if !s.Closed() {
		t.Fatal("stream should report closed after EOF")
	}
	if !sawQuit {
		t.Fatal("quit key was not delivered")
	}
}
