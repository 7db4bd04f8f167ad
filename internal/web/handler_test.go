package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

func startServer(t *testing.T, st store.Store) (*httptest.Server, *server.Server) {
	t.Helper()
	logger := log.New(io.Discard)
	hub := server.NewServer(st, server.Options{Logger: logger, RefreshEvery: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	srv := httptest.NewServer(NewHandler(hub, nil, logger, []byte("<html>catch</html>")))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv, hub
}

func TestServePage(t *testing.T) {
	srv, _ := startServer(t, store.NewMemory())

	tests := []struct {
		path string
		code int
	}{
		{"/", http.StatusOK},
		{"/favicon.ico", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.code {
				t.Fatalf("status got %d, want %d", resp.StatusCode, tt.code)
			}
		})
	}
}

func TestLeaderboardAPI(t *testing.T) {
	st := store.NewMemory()
	s := stats.New()
	s.HighScore = 120
	if err := st.SaveStats(context.Background(), "5100000007", s); err != nil {
		t.Fatal(err)
	}
	srv, hub := startServer(t, st)
	waitFor(t, func() bool { return len(hub.GetSnapshot().Leaderboard) == 1 })

	tests := []struct {
		name  string
		query string
		code  int
		place int
	}{
		{"anonymous", "", http.StatusOK, 0},
		{"ranked", "?card=5100000007", http.StatusOK, 1},
		{"unranked", "?card=5100000008", http.StatusOK, 0},
		{"invalid card", "?card=42", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/leaderboard" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.code {
				t.Fatalf("status got %d, want %d", resp.StatusCode, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var lb Leaderboard
			if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
				t.Fatal(err)
			}
			if lb.Place != tt.place {
				t.Fatalf("place got %d, want %d", lb.Place, tt.place)
			}
			if len(lb.Entries) != 1 || lb.Entries[0].Score != 120 {
				t.Fatalf("got entries %+v", lb.Entries)
			}
		})
	}

	resp, err := http.Post(srv.URL+"/api/leaderboard", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status got %d", resp.StatusCode)
	}
}

func TestWebsocketSession(t *testing.T) {
	srv, hub := startServer(t, store.NewMemory())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	write := func(typ string, payload any) {
		b, err := Encode(typ, payload)
		if err != nil {
			t.Fatal(err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			t.Fatal(err)
		}
	}
	read := func(typ string) Envelope {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("waiting for %q: %v", typ, err)
			}
			env, err := DecodeEnvelope(b)
			if err != nil {
				t.Fatal(err)
			}
			if env.T == typ {
				return env
			}
		}
	}

	write(MsgHello, Hello{Card: "5100000003"})
	w, err := DecodePayload[Welcome](read(MsgWelcome))
	if err != nil {
		t.Fatal(err)
	}
	if w.Card != "5100000003" || w.Width == 0 || w.Height == 0 {
		t.Fatalf("got welcome %+v", w)
	}
	waitFor(t, func() bool { return hub.Clients() == 1 })

	write(MsgStart, nil)
	for {
		v, err := DecodePayload[viewState](read(MsgView))
		if err != nil {
			t.Fatal(err)
		}
		if v.State == "playing" {
			break
		}
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}
