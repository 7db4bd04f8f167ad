// Package input turns the raw terminal byte stream into per-frame input:
// held keys, typed characters and SGR mouse pointer events.
package input

import (
	"bufio"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// PointerAction is the phase of a pointer event.
type PointerAction uint8

const (
	PointerDown PointerAction = iota
	PointerMove
	PointerUp
)

// Pointer is one mouse event in 1-based absolute terminal coordinates.
type Pointer struct {
	Action PointerAction
	Col    int
	Row    int
}

// Input represents the current frame's input state.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool
	Down      bool
	Space     bool
	Enter     bool
	Backspace bool
	Escape    bool
	Number    int // last digit pressed, -1 if none

	// Steps counts arrow presses this frame: +1 per right, -1 per left.
	Steps int
	// Typed holds the printable characters of this frame in order.
	Typed []byte
	// Pointers holds the mouse events of this frame in order.
	Pointers []Pointer
	// Pressed holds the raw bytes of this frame.
	Pressed []byte
}

// Active reports whether anything at all arrived this frame.
func (in Input) Active() bool {
	return len(in.Pressed) > 0
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit      time.Time
	left      time.Time
	right     time.Time
	up        time.Time
	down      time.Time
	space     time.Time
	enter     time.Time
	backspace time.Time
	escape    time.Time
	number    time.Time
	numberVal int
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:    make(chan byte, 256),
		state: keyState{numberVal: -1},
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return parse(&s.state, buf, time.Now())
}

// ResetKeyInput clears all held key state, so a key that started a screen
// transition does not leak into the next screen.
func ResetKeyInput(s *Stream) {
	s.state = keyState{numberVal: -1}
}

// parse decodes buf into an Input, updating the key hold timestamps in state.
func parse(state *keyState, buf []byte, now time.Time) Input {
	in := Input{Number: -1, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if buf[i+2] == '<' {
				if p, n, ok := parseSGRMouse(buf[i+3:]); ok {
					if p.Action != pointerIgnored {
						in.Pointers = append(in.Pointers, p)
					}
					i += 2 + n
					continue
				}
			}
			switch buf[i+2] {
			case 'A':
				state.up = now
				i += 2
				continue
			case 'B':
				state.down = now
				i += 2
				continue
			case 'C':
				state.right = now
				in.Steps++
				i += 2
				continue
			case 'D':
				state.left = now
				in.Steps--
				i += 2
				continue
			}
		}

		switch b {
		case 'a', 'A':
			in.Steps--
		case 'd', 'D':
			in.Steps++
		}
		if b >= 0x20 && b < 0x7f {
			in.Typed = append(in.Typed, b)
		}
		applyByteToState(state, b, now)
	}

	in.Quit = now.Sub(state.quit) < keyHoldDuration
	in.Left = now.Sub(state.left) < keyHoldDuration
	in.Right = now.Sub(state.right) < keyHoldDuration
	in.Up = now.Sub(state.up) < keyHoldDuration
	in.Down = now.Sub(state.down) < keyHoldDuration
	in.Space = now.Sub(state.space) < keyHoldDuration
	in.Enter = now.Sub(state.enter) < keyHoldDuration
	in.Backspace = now.Sub(state.backspace) < keyHoldDuration
	in.Escape = now.Sub(state.escape) < keyHoldDuration
	if now.Sub(state.number) < keyHoldDuration {
		in.Number = state.numberVal
	}
	return in
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q':
		state.quit = now
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'w', 'W':
		state.up = now
	case 's', 'S':
		state.down = now
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\b', '\x7f':
		state.backspace = now
	case '\x1b':
		state.escape = now
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		state.number = now
		state.numberVal = int(b - '0')
	}
}

const pointerIgnored PointerAction = 255

// parseSGRMouse decodes "b;col;row" followed by 'M' (press/drag) or 'm'
// (release), the part of an SGR mouse report after "ESC [ <". It returns the
// number of bytes consumed.
func parseSGRMouse(b []byte) (Pointer, int, bool) {
	var fields [3]int
	field, start := 0, 0
	for i, c := range b {
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == ';' && field < 2:
			n, err := strconv.Atoi(string(b[start:i]))
			if err != nil {
				return Pointer{}, 0, false
			}
			fields[field] = n
			field++
			start = i + 1
		case (c == 'M' || c == 'm') && field == 2:
			n, err := strconv.Atoi(string(b[start:i]))
			if err != nil {
				return Pointer{}, 0, false
			}
			fields[2] = n
			ev := Pointer{Col: fields[1], Row: fields[2]}
			button := fields[0]
			switch {
			case c == 'm':
				ev.Action = PointerUp
			case button&64 != 0: // wheel
				ev.Action = pointerIgnored
			case button&32 != 0:
				ev.Action = PointerMove
			case button&3 == 0:
				ev.Action = PointerDown
			default:
				ev.Action = pointerIgnored
			}
			return ev, i + 1, true
		default:
			return Pointer{}, 0, false
		}
	}
	return Pointer{}, 0, false
}
