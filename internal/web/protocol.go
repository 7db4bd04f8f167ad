// Package web serves the game to browsers: one match per websocket
// connection, JSON envelopes on the wire.
package web

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

// Client to server.
const (
	MsgHello       = "hello"
	MsgPointer     = "pointer"
	MsgStart       = "start"
	MsgShow        = "show"
	MsgLogout      = "logout"
	MsgProfile     = "profile"
	MsgLeaderboard = "leaderboard"
)

// Server to client.
const (
	MsgWelcome  = "welcome"
	MsgView     = "view"
	MsgAnnounce = "announce"
	MsgShutdown = "shutdown"
	MsgError    = "error"
)

// Rates of the per-connection loop.
const (
	SimTickHz   = 60
	BroadcastHz = 30
)

// Envelope wraps every message: T names the type, P holds the payload.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

var errEmptyMessage = errors.New("web: empty message")

// Encode wraps payload in an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("web: encode envelope without type")
	}
	if payload == nil {
		payload = struct{}{}
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses the outer envelope of b.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("web: envelope without type")
	}
	return e, nil
}

// DecodePayload decodes the payload of env into a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("web: empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// Hello logs in with a loyalty card. An empty card plays as guest.
type Hello struct {
	Card string `json:"card,omitempty"`
}

// Pointer is a pointer event in logical coordinates.
type Pointer struct {
	Action string  `json:"action"` // down, move or up
	X      float64 `json:"x"`
}

// Show switches to an information screen by name.
type Show struct {
	Screen string `json:"screen"`
}

// Welcome answers Hello.
type Welcome struct {
	Card   string `json:"card,omitempty"`
	Guest  bool   `json:"guest"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	TickHz int    `json:"tickHz"`
}

// Profile is the player's lifetime record.
type Profile struct {
	Stats        stats.Stats         `json:"stats"`
	Achievements []stats.Achievement `json:"achievements"`
	Prizes       []stats.Prize       `json:"prizes"`
	Tickets      int                 `json:"tickets"`
}

// Leaderboard is the top table plus the player's place, 0 when unranked.
type Leaderboard struct {
	Entries []store.LeaderboardEntry `json:"entries"`
	Place   int                      `json:"place"`
}

// Announce tells every player about a new leader.
type Announce struct {
	Leader store.LeaderboardEntry `json:"leader"`
}

// Error reports a rejected message.
type Error struct {
	Message string `json:"message"`
}
