package client

import (
	"time"

	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/input"
	"github.com/tomz197/catch/internal/store"
)

// ClientState holds per-connection UI state that is not part of the match.
type ClientState struct {
	Input         input.Input
	Running       bool          // Client loop running
	delta         time.Duration // Frame delta time (client-side)
	shuttingDown  bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool    // Whether the client is in inactive warning state

	// Last drawn screen, for full clears on transitions.
	prevGameState game.State
	wasInactive   bool
	wasShutdown   bool

	// Card entry on the auth screen.
	cardInput []byte
	authError string

	// Player's place when the leaderboard screen was opened; 0 if unranked.
	rank int

	// Hub announcement shown over any screen until it times out.
	announcement      string
	announcementTimer float64
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:   true,
		cardInput: []byte(store.CardPrefix),
	}
}

// resetCardInput restores the card field to its prefix.
func (s *ClientState) resetCardInput() {
	s.cardInput = append(s.cardInput[:0], store.CardPrefix...)
	s.authError = ""
}
