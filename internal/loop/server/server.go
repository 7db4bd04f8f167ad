package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/loop/config"
	"github.com/tomz197/catch/internal/store"
)

// GameServer is the interface clients use to communicate with the hub.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	GetSnapshot() *Snapshot
	RequestRefresh()
	ReportScore(clientID int, card string, score int)
	Rank(ctx context.Context, card string) (int, error)
	Store() store.Store
}

// Server is the hub shared by every session: it tracks connected clients,
// keeps the leaderboard snapshot fresh and fans out server-wide events.
// Each client runs its own match; nothing here touches gameplay.
type Server struct {
	store    store.Store
	logger   *log.Logger
	snapshot atomic.Pointer[Snapshot]

	clients      map[int]*ClientHandle
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	refreshCh    chan struct{}
	scoreCh      chan scoreReport
	mu           sync.RWMutex

	refreshEvery time.Duration
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the hub.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent // Events sent to client
}

// ClientEvent represents an event sent from the hub to a client.
type ClientEvent struct {
	Type   ClientEventType
	Leader store.LeaderboardEntry // For EventNewLeader
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
	EventNewLeader
)

type scoreReport struct {
	clientID int
	card     string
	score    int
}

// Options configures the hub.
type Options struct {
	Logger       *log.Logger
	RefreshEvery time.Duration
}

// NewServer creates a hub reading the leaderboard from st.
func NewServer(st store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = config.LeaderboardRefresh
	}
	s := &Server{
		store:        st,
		logger:       opts.Logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		refreshCh:    make(chan struct{}, 1),
		scoreCh:      make(chan scoreReport, 64),
		refreshEvery: opts.RefreshEvery,
	}

	// Create initial empty snapshot
	s.snapshot.Store(&Snapshot{})
	return s
}

// Run starts the hub loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()

	s.refreshLeaderboard(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("client registered", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
		case r := <-s.scoreCh:
			s.handleScore(ctx, r)
		case <-s.refreshCh:
			s.refreshLeaderboard(ctx)
		case <-ticker.C:
			s.refreshLeaderboard(ctx)
		}
		s.publishPlayers()
	}
}

// Shutdown gracefully shuts down the hub by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the hub context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.broadcast(ClientEvent{Type: EventServerShutdown})

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.Clients() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the hub.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// Clients returns the number of registered clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// GetSnapshot returns the current leaderboard snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// RequestRefresh asks the hub to reload the leaderboard soon.
func (s *Server) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
		// Refresh already pending
	}
}

// ReportScore tells the hub a registered player finished a run. A score that
// beats the current leader is announced to every client.
func (s *Server) ReportScore(clientID int, card string, score int) {
	select {
	case s.scoreCh <- scoreReport{clientID: clientID, card: card, score: score}:
	default:
		// Report channel full, drop report
	}
}

// Rank returns card's leaderboard place.
func (s *Server) Rank(ctx context.Context, card string) (int, error) {
	return s.store.Rank(ctx, card)
}

// Store returns the hub's store.
func (s *Server) Store() store.Store {
	return s.store
}

func (s *Server) handleScore(ctx context.Context, r scoreReport) {
	snap := s.GetSnapshot()
	if len(snap.Leaderboard) > 0 {
		leader := snap.Leaderboard[0]
		if r.score <= leader.Score || leader.ID == r.card {
			s.RequestRefresh()
			return
		}
	} else if r.score <= 0 {
		return
	}
	s.refreshLeaderboard(ctx)
	s.logger.Info("new leader", "player", r.card, "score", r.score)
	s.broadcast(ClientEvent{
		Type:   EventNewLeader,
		Leader: store.LeaderboardEntry{Place: 1, ID: r.card, Score: r.score},
	})
}

func (s *Server) broadcast(ev ClientEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ev:
		default:
		}
	}
}

// refreshLeaderboard reloads the top scores. Failures keep the old table.
func (s *Server) refreshLeaderboard(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	top, err := s.store.Top(ctx, config.LeaderboardSize)
	if err != nil {
		s.logger.Warn("leaderboard refresh failed", "err", err)
		return
	}
	next := *s.GetSnapshot()
	next.Leaderboard = top
	next.UpdatedAt = time.Now()
	s.snapshot.Store(&next)
}

func (s *Server) publishPlayers() {
	n := s.Clients()
	if cur := s.GetSnapshot(); cur.Players != n {
		next := *cur
		next.Players = n
		s.snapshot.Store(&next)
	}
}
