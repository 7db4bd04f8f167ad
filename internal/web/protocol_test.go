package web

import (
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(MsgPointer, Pointer{Action: "move", X: 120.5})
	if err != nil {
		t.Fatal(err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatal(err)
	}
	if env.T != MsgPointer {
		t.Fatalf("type got %q, want %q", env.T, MsgPointer)
	}
	ptr, err := DecodePayload[Pointer](env)
	if err != nil {
		t.Fatal(err)
	}
	if ptr.Action != "move" || ptr.X != 120.5 {
		t.Fatalf("got %+v", ptr)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	b, err := Encode(MsgStart, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"t":"start","p":{}}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if _, err := Encode("", Hello{}); err == nil {
		t.Fatal("expected error for empty type")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"no type", `{"p":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tt.in)); err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
		})
	}

	if _, err := DecodePayload[Hello](Envelope{T: MsgHello}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
