package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/store"
)

// Connection health.
const (
	maxMessageSize = 1 << 16
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	writeWait      = 10 * time.Second
)

// Handler serves the page, the websocket endpoint and the leaderboard API.
type Handler struct {
	hub      server.GameServer
	catalog  *object.Catalog
	logger   *log.Logger
	page     []byte
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewHandler builds the HTTP routes:
//
//	/                 the embedded game page
//	/ws               one match per websocket connection
//	/api/leaderboard  top table as JSON, ?card= adds the player's place
func NewHandler(hub server.GameServer, catalog *object.Catalog, logger *log.Logger, page []byte) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		hub:     hub,
		catalog: catalog,
		logger:  logger,
		page:    page,
		upgrader: websocket.Upgrader{
			// The page may be served from another host in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	h.mux.HandleFunc("/", h.servePage)
	h.mux.HandleFunc("/ws", h.serveWS)
	h.mux.HandleFunc("/api/leaderboard", h.serveLeaderboard)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.page)
}

func (h *Handler) serveLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lb := Leaderboard{Entries: h.hub.GetSnapshot().Leaderboard}
	if lb.Entries == nil {
		lb.Entries = []store.LeaderboardEntry{}
	}
	if raw := r.URL.Query().Get("card"); raw != "" {
		card, err := store.ParseCard(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		place, err := h.hub.Rank(r.Context(), card)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("rank lookup failed", "card", card, "err", err)
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		lb.Place = place
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(lb); err != nil {
		h.logger.Debug("leaderboard write failed", "err", err)
	}
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	wc := &wsConn{conn: conn}
	defer wc.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	logger := h.logger.With("remote", r.RemoteAddr)
	logger.Info("browser connected")
	player := NewPlayer(wc, h.hub, h.catalog, logger, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := wc.ping(); err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer cancel()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("read failed", "err", err)
				}
				return
			}
			env, err := DecodeEnvelope(msg)
			if err != nil {
				logger.Debug("bad envelope", "err", err)
				continue
			}
			if !player.Deliver(env) {
				logger.Debug("inbox full, message dropped", "type", env.T)
			}
		}
	}()

	if err := player.Run(ctx); err != nil {
		logger.Warn("session ended", "err", err)
		return
	}
	logger.Info("browser disconnected")
}

// wsConn serializes writes to a websocket connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
