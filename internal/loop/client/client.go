package client

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/draw"
	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/input"
	"github.com/tomz197/catch/internal/loop/config"
	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/session"
	"github.com/tomz197/catch/internal/store"
)

// Client handles rendering and input for a single connection. It owns the
// player's session and drives its match once per frame.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	session      *session.Session
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	reader       *bufio.Reader
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	catalog      *object.Catalog
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	// Card logs the player in at once when it is a valid card number.
	Card    string
	Catalog *object.Catalog
	Logger  *log.Logger
}

var screen = object.Screen{Width: config.ScreenWidth, Height: config.ScreenHeight}

// NewClient creates a new client connected to the given hub.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Catalog == nil {
		opts.Catalog = object.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ScreenWidth, config.ScreenHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)
	chunkWriter.SetOffset(offsetCol, offsetRow, renderWidth)

	c := &Client{
		server:       gs,
		handle:       gs.RegisterClient(opts.Username),
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		reader:       r,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		catalog:      opts.Catalog,
		logger:       opts.Logger,
	}

	card, err := store.ParseCard(opts.Card)
	if err != nil {
		card = ""
	}
	c.openSession(card)
	if card == "" {
		c.session.Match.Show(game.StateAuth)
	}
	c.state.prevGameState = c.session.Match.State()
	return c
}

// Run starts the client loop. Blocks until the client disconnects or the hub stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for hub events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		// Handle match state
		c.update()
		c.session.Tick()

		// Draw frame
		if err := c.drawFrame(); err != nil {
			c.closeSession()
			c.server.UnregisterClient(c.handle.ID)
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.closeSession()

	// Unregister from hub
	c.server.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if c.state.Input.Active() {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.inputStream.Closed() {
		c.state.Running = false
	}
	// q quits everywhere except while typing a card number.
	if c.state.Input.Quit && c.session.Match.State() != game.StateAuth {
		c.state.Running = false
	}
}

// processServerEvents handles events from the hub.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Hub closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.state.shuttingDown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			case server.EventNewLeader:
				c.announce(newLeaderText(event.Leader, c.session.Card()))
			}
		default:
			return
		}
	}
}

func (c *Client) announce(text string) {
	c.state.announcement = text
	c.state.announcementTimer = announcementSeconds
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow, renderWidth)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// update advances the current screen by one frame.
func (c *Client) update() {
	if c.state.announcementTimer > 0 {
		c.state.announcementTimer -= c.state.delta.Seconds()
	}
	if c.state.shuttingDown {
		c.updateShutdownState()
		return
	}

	m := c.session.Match
	switch m.State() {
	case game.StateMenu:
		c.updateMenuState()
	case game.StatePlaying:
		c.updatePlayingState()
	case game.StateResult:
		c.updateResultState()
	case game.StateAuth:
		c.updateAuthState()
	default:
		c.updateInfoState()
	}
}

// menuItems are the numbered entries of the main menu.
var menuItems = []struct {
	label  string
	target game.State
}{
	{"Play", game.StatePlaying},
	{"Profile", game.StateProfile},
	{"Stats", game.StateStats},
	{"Achievements", game.StateAchievements},
	{"Prizes", game.StatePrizes},
	{"How to play", game.StateHowToPlay},
	{"Leaderboard", game.StateLeaderboard},
}

func (c *Client) updateMenuState() {
	in := c.state.Input
	if in.Space || in.Enter {
		c.startGame()
		return
	}
	if in.Number >= 1 && in.Number <= len(menuItems) {
		c.open(menuItems[in.Number-1].target)
		return
	}
	if in.Number == len(menuItems)+1 {
		c.logout()
	}
}

// open switches to target from the menu or result screen.
func (c *Client) open(target game.State) {
	input.ResetKeyInput(c.inputStream)
	switch target {
	case game.StatePlaying:
		c.startGame()
		return
	case game.StateLeaderboard:
		c.server.RequestRefresh()
		c.state.rank = c.fetchRank()
	}
	c.session.Match.Show(target)
}

func (c *Client) fetchRank() int {
	if c.session.Guest() {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	place, err := c.server.Rank(ctx, c.session.Card())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("rank lookup failed", "err", err)
		}
		return 0
	}
	return place
}

// startGame starts a new run.
func (c *Client) startGame() {
	input.ResetKeyInput(c.inputStream)
	c.session.Match.Start()
}

// updatePlayingState feeds pointer and keyboard input to the match and
// advances it by the frame delta.
func (c *Client) updatePlayingState() {
	m := c.session.Match
	in := c.state.Input

	if in.Escape {
		m.Abandon()
		return
	}
	for _, p := range in.Pointers {
		x, _ := c.canvas.TerminalToLogical(p.Col, p.Row)
		switch p.Action {
		case input.PointerDown:
			m.PointerDown(x)
		case input.PointerMove:
			m.PointerMove(x)
		case input.PointerUp:
			m.PointerUp()
		}
	}
	if in.Steps != 0 {
		m.Nudge(float64(in.Steps) * config.KeyboardStep)
	}

	m.Advance(c.state.delta)

	if m.State() == game.StateResult {
		r := m.Result()
		if !c.session.Guest() {
			c.server.ReportScore(c.handle.ID, c.session.Card(), r.Score)
		}
	}
}

func (c *Client) updateResultState() {
	in := c.state.Input
	switch {
	case in.Space || in.Enter || in.Number == 1:
		c.startGame()
	case in.Escape || in.Backspace || in.Number == 2:
		input.ResetKeyInput(c.inputStream)
		c.session.Match.Show(game.StateMenu)
	}
}

// updateAuthState edits the card number. Enter logs in, Escape plays as guest.
func (c *Client) updateAuthState() {
	in := c.state.Input
	for _, b := range in.Typed {
		if b >= '0' && b <= '9' && len(c.state.cardInput) < store.CardLength {
			c.state.cardInput = append(c.state.cardInput, b)
			c.state.authError = ""
		}
	}
	if in.Backspace && len(c.state.cardInput) > 0 {
		c.state.cardInput = c.state.cardInput[:len(c.state.cardInput)-1]
		c.state.authError = ""
	}
	switch {
	case in.Enter:
		card, err := store.ParseCard(string(c.state.cardInput))
		if err != nil {
			c.state.authError = "Card numbers have 10 digits and start with " + store.CardPrefix
			return
		}
		c.login(card)
	case in.Escape:
		input.ResetKeyInput(c.inputStream)
		c.session.Match.Show(game.StateMenu)
	}
}

func (c *Client) updateInfoState() {
	in := c.state.Input
	if in.Escape || in.Backspace || in.Enter || in.Space {
		input.ResetKeyInput(c.inputStream)
		c.session.Match.Show(game.StateMenu)
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// openSession starts a session for card, or a guest session for "".
func (c *Client) openSession(card string) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ExitSaveTimeout)
	defer cancel()
	s, err := session.Open(ctx, c.server.Store(), card, session.Options{
		Screen:  screen,
		Catalog: c.catalog,
		Logger:  c.logger,
	})
	if err != nil {
		c.logger.Warn("login failed, playing as guest", "card", card, "err", err)
		s, _ = session.Open(ctx, c.server.Store(), "", session.Options{
			Screen:  screen,
			Catalog: c.catalog,
			Logger:  c.logger,
		})
	}
	c.session = s
}

func (c *Client) closeSession() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ExitSaveTimeout)
	defer cancel()
	if err := c.session.Close(ctx); err != nil {
		c.session.Logger().Error("final save failed", "err", err)
	}
}

func (c *Client) login(card string) {
	input.ResetKeyInput(c.inputStream)
	c.closeSession()
	c.openSession(card)
	c.state.resetCardInput()
	c.logger.Info("player logged in", "user", c.username, "card", card)
}

func (c *Client) logout() {
	input.ResetKeyInput(c.inputStream)
	c.closeSession()
	c.openSession("")
	c.state.resetCardInput()
	c.session.Match.Show(game.StateAuth)
}
