package web

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/loop/config"
	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/session"
	"github.com/tomz197/catch/internal/store"
)

// Conn is the outbound half of a browser connection.
type Conn interface {
	Send(b []byte) error
	Close() error
}

var screen = object.Screen{Width: config.ScreenWidth, Height: config.ScreenHeight}

// Player runs one browser session: it owns the match, applies inbound
// messages and streams views back at BroadcastHz.
type Player struct {
	conn    Conn
	hub     server.GameServer
	catalog *object.Catalog
	logger  *log.Logger
	inbox   chan Envelope

	client  *server.ClientHandle
	session *session.Session
	dirty   bool
	tick    int
}

// NewPlayer registers a player with the hub. Run must be called to serve it.
func NewPlayer(conn Conn, hub server.GameServer, catalog *object.Catalog, logger *log.Logger, name string) *Player {
	if catalog == nil {
		catalog = object.DefaultCatalog()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		conn:    conn,
		hub:     hub,
		catalog: catalog,
		logger:  logger,
		inbox:   make(chan Envelope, 64),
		client:  hub.RegisterClient(name),
	}
}

// Deliver queues an inbound message. Messages are dropped while the inbox
// is full.
func (p *Player) Deliver(env Envelope) bool {
	select {
	case p.inbox <- env:
		return true
	default:
		return false
	}
}

// Run serves the player until ctx ends, the hub shuts down or a send fails.
// The session is saved and the player unregistered before it returns.
func (p *Player) Run(ctx context.Context) error {
	p.openSession("")
	defer func() {
		p.closeSession()
		p.hub.UnregisterClient(p.client.ID)
	}()

	ticker := time.NewTicker(time.Second / SimTickHz)
	defer ticker.Stop()
	broadcastEvery := SimTickHz / BroadcastHz
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case env := <-p.inbox:
			if err := p.dispatch(ctx, env); err != nil {
				return err
			}
			p.dirty = true

		case ev, ok := <-p.client.EventsCh:
			if !ok {
				return nil
			}
			switch ev.Type {
			case server.EventServerShutdown:
				return p.send(MsgShutdown, nil)
			case server.EventNewLeader:
				if err := p.send(MsgAnnounce, Announce{Leader: ev.Leader}); err != nil {
					return err
				}
			}

		case now := <-ticker.C:
			p.advance(now.Sub(last))
			last = now
			p.session.Tick()

			p.tick++
			playing := p.session.Match.State() == game.StatePlaying
			if (playing || p.dirty) && p.tick%broadcastEvery == 0 {
				if err := p.send(MsgView, p.session.Match.View()); err != nil {
					return err
				}
				p.dirty = false
			}
		}
	}
}

// advance moves the match forward and reports a finished run to the hub.
func (p *Player) advance(dt time.Duration) {
	m := p.session.Match
	if m.State() != game.StatePlaying {
		return
	}
	m.Advance(dt)
	if m.State() == game.StateResult {
		p.dirty = true
		if !p.session.Guest() {
			p.hub.ReportScore(p.client.ID, p.session.Card(), m.Result().Score)
		}
	}
}

func (p *Player) dispatch(ctx context.Context, env Envelope) error {
	m := p.session.Match
	switch env.T {
	case MsgHello:
		hello, err := DecodePayload[Hello](env)
		if err != nil {
			return p.reject(err.Error())
		}
		return p.login(hello.Card)

	case MsgLogout:
		return p.login("")

	case MsgPointer:
		ptr, err := DecodePayload[Pointer](env)
		if err != nil {
			return p.reject(err.Error())
		}
		switch ptr.Action {
		case "down":
			m.PointerDown(ptr.X)
		case "move":
			m.PointerMove(ptr.X)
		case "up":
			m.PointerUp()
		default:
			return p.reject("unknown pointer action " + ptr.Action)
		}

	case MsgStart:
		if m.State() != game.StatePlaying {
			m.Start()
		}

	case MsgShow:
		show, err := DecodePayload[Show](env)
		if err != nil {
			return p.reject(err.Error())
		}
		st, ok := game.ParseState(show.Screen)
		if !ok {
			return p.reject("unknown screen " + show.Screen)
		}
		if !m.Show(st) {
			return p.reject("screen unavailable while playing")
		}

	case MsgProfile:
		s := m.Tracker().Snapshot()
		return p.send(MsgProfile, Profile{
			Stats:        s,
			Achievements: m.Tracker().Achievements(),
			Prizes:       s.Prizes(),
			Tickets:      s.Tickets(),
		})

	case MsgLeaderboard:
		p.hub.RequestRefresh()
		return p.send(MsgLeaderboard, p.leaderboard(ctx))

	default:
		return p.reject("unknown message " + env.T)
	}
	return nil
}

func (p *Player) leaderboard(ctx context.Context) Leaderboard {
	lb := Leaderboard{Entries: p.hub.GetSnapshot().Leaderboard}
	if lb.Entries == nil {
		lb.Entries = []store.LeaderboardEntry{}
	}
	if p.session.Guest() {
		return lb
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	place, err := p.hub.Rank(ctx, p.session.Card())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Warn("rank lookup failed", "err", err)
	}
	lb.Place = place
	return lb
}

// login replaces the session. An empty card switches to a guest session.
func (p *Player) login(card string) error {
	if card != "" {
		parsed, err := store.ParseCard(card)
		if err != nil {
			return p.reject(err.Error())
		}
		card = parsed
	}
	p.closeSession()
	p.openSession(card)
	if card != "" {
		p.logger.Info("player logged in", "card", card)
	}
	return p.send(MsgWelcome, Welcome{
		Card:   p.session.Card(),
		Guest:  p.session.Guest(),
		Width:  config.ScreenWidth,
		Height: config.ScreenHeight,
		TickHz: SimTickHz,
	})
}

func (p *Player) openSession(card string) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ExitSaveTimeout)
	defer cancel()
	opts := session.Options{Screen: screen, Catalog: p.catalog, Logger: p.logger}
	s, err := session.Open(ctx, p.hub.Store(), card, opts)
	if err != nil {
		p.logger.Warn("login failed, playing as guest", "card", card, "err", err)
		s, _ = session.Open(ctx, p.hub.Store(), "", opts)
	}
	p.session = s
}

func (p *Player) closeSession() {
	if p.session == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.ExitSaveTimeout)
	defer cancel()
	if err := p.session.Close(ctx); err != nil {
		p.session.Logger().Error("final save failed", "err", err)
	}
}

// reject tells the browser a message was refused. Only a failed send ends
// the connection.
func (p *Player) reject(msg string) error {
	p.logger.Debug("message rejected", "reason", msg)
	return p.send(MsgError, Error{Message: msg})
}

func (p *Player) send(t string, payload any) error {
	b, err := Encode(t, payload)
	if err != nil {
		return err
	}
	return p.conn.Send(b)
}
