package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/catch/internal/draw"
	"github.com/tomz197/catch/internal/effect"
	"github.com/tomz197/catch/internal/game"
	"github.com/tomz197/catch/internal/loop/config"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/stats"
	"github.com/tomz197/catch/internal/store"
)

const announcementSeconds = 4.0

// kindColors colors items by class so they read at a glance.
var kindColors = map[object.Kind]draw.Color{
	object.Anvil:  draw.ColorGray,
	object.Puffer: draw.ColorRed,
	object.Sock:   draw.ColorRed,
	object.Drop:   draw.ColorCyan,
	object.Shield: draw.ColorOrange,
	object.Magnet: draw.ColorBlue,
	object.Boot:   draw.ColorBrown,
	object.Ticket: draw.ColorYellow,
}

func kindColor(k object.Kind) draw.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return draw.ColorGreen
}

// tintColors maps the match tint to the basket and time bar color.
var tintColors = map[string]draw.Color{
	game.TintShield: draw.ColorOrange,
	game.TintMagnet: draw.ColorBlue,
	game.TintSlow:   draw.ColorGreen,
}

var effectLabels = map[effect.Kind]string{
	effect.Rain:     "RAIN",
	effect.Magnet:   "MAGNET",
	effect.Shield:   "SHIELD",
	effect.Shrink:   "SHRUNK",
	effect.Slow:     "SLOW",
	effect.BootSwap: "BOOTS",
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	m := c.session.Match

	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	stateChanged := m.State() != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	shutdownChanged := c.state.shuttingDown != c.state.wasShutdown
	if stateChanged || inactiveChanged || shutdownChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = m.State()
		c.state.wasInactive = c.state.isInactive
		c.state.wasShutdown = c.state.shuttingDown
	}

	c.canvas.Clear()
	playing := m.State() == game.StatePlaying && !c.state.shuttingDown && !c.state.isInactive
	if playing {
		if err := c.drawField(); err != nil {
			return err
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Draw UI overlay
	c.drawUI()

	return c.chunkWriter.Flush()
}

// drawField draws the items and the basket.
func (c *Client) drawField() error {
	m := c.session.Match
	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		Screen: screen,
	}
	bootSwap := m.Effects().Active(effect.BootSwap)
	for _, it := range m.Items() {
		c.canvas.SetColor(kindColor(it.EffectiveKind(bootSwap)))
		if err := it.Draw(ctx); err != nil {
			return err
		}
	}

	basketColor := draw.ColorWhite
	if tc, ok := tintColors[m.Tint()]; ok {
		basketColor = tc
	}
	c.canvas.SetColor(basketColor)
	return m.Basket().Draw(ctx, m.Effects().Active(effect.Shield))
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI() {
	if c.state.shuttingDown {
		c.drawShutdownScreen()
		return
	}
	if c.state.isInactive {
		c.drawInactivityScreen()
		return
	}

	switch c.session.Match.State() {
	case game.StatePlaying:
		c.drawPlayingHUD()
	case game.StateMenu:
		c.drawMenuScreen()
	case game.StateResult:
		c.drawResultScreen()
	case game.StateAuth:
		c.drawAuthScreen()
	case game.StateProfile:
		c.drawProfileScreen()
	case game.StateStats:
		c.drawStatsScreen()
	case game.StateAchievements:
		c.drawAchievementsScreen()
	case game.StatePrizes:
		c.drawPrizesScreen()
	case game.StateHowToPlay:
		c.drawHowToPlayScreen()
	case game.StateLeaderboard:
		c.drawLeaderboardScreen()
	}

	if c.state.announcementTimer > 0 && c.state.announcement != "" {
		c.drawLines(c.canvas.TerminalHeight()-1, []string{c.state.announcement})
	}
}

// drawLines writes lines centered, one per row, starting at row.
func (c *Client) drawLines(row int, lines []string) {
	for i, line := range lines {
		col := c.chunkWriter.WriteCentered(row+i, line)
		c.canvas.MarkTextDirty(col, row+i, len([]rune(line)))
	}
}

func (c *Client) drawTitle(title string) int {
	c.chunkWriter.WriteString(draw.Bold)
	c.drawLines(2, []string{title})
	c.chunkWriter.WriteString(draw.ColorReset)
	return 4
}

func (c *Client) drawHint(hint string) {
	if time.Now().UnixMilli()/600%2 == 0 {
		c.drawLines(c.canvas.TerminalHeight()-2, []string{hint})
	} else {
		c.drawLines(c.canvas.TerminalHeight()-2, []string{strings.Repeat(" ", len(hint))})
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen() {
	centerY := c.canvas.TerminalHeight() / 2
	left := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	c.drawLines(centerY-2, []string{
		"INACTIVITY WARNING",
		"",
		"You have been inactive for too long.",
		fmt.Sprintf("Disconnecting in %3d seconds.", left),
		"",
		"Press any key to continue",
	})
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen() {
	centerY := c.canvas.TerminalHeight() / 2
	remaining := int(c.state.shutdownTimer) + 1
	c.drawLines(centerY-3, []string{
		"SERVER SHUTTING DOWN",
		"",
		"The server is restarting.",
		"Your progress has been saved.",
		"",
		fmt.Sprintf("Disconnecting in %2d seconds...", remaining),
		"",
		"Press Q to disconnect now",
	})
}

// drawPlayingHUD draws the score, the time bar, live effects, item glyphs
// and the catch cue. Text fields use fixed-width formatting so shrinking
// values don't leave residual characters on screen.
func (c *Client) drawPlayingHUD() {
	m := c.session.Match
	cw := c.chunkWriter
	termWidth := c.canvas.TerminalWidth()

	scoreText := fmt.Sprintf("Score: %-6d", m.Score())
	cw.WriteAt(2, 1, scoreText)
	c.canvas.MarkTextDirty(2, 1, len(scoreText))

	barWidth := termWidth - len(scoreText) - 5
	if barWidth > 0 {
		frac := float64(m.TimeLeft()) / float64(game.MaxTime)
		filled := int(frac*float64(barWidth) + 0.5)
		barColor := draw.ColorWhite
		if tc, ok := tintColors[m.Tint()]; ok {
			barColor = tc
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled)
		cw.WriteColored(len(scoreText)+4, 1, barColor, bar)
		c.canvas.MarkTextDirty(len(scoreText)+4, 1, barWidth)
	}

	var labels []string
	for _, st := range m.Effects().Snapshot(m.Clock()) {
		labels = append(labels, fmt.Sprintf("%s %.1fs", effectLabels[st.Kind], st.Remaining.Seconds()))
	}
	effects := fmt.Sprintf("%-*s", termWidth-2, strings.Join(labels, "  "))
	cw.WriteAt(2, 2, effects)
	c.canvas.MarkTextDirty(2, 2, len(effects))

	bootSwap := m.Effects().Active(effect.BootSwap)
	for _, it := range m.Items() {
		x, y := it.Center()
		col, row := c.canvas.LogicalToTerminal(x, y)
		if row < 3 || row > c.canvas.TerminalHeight() || col < 1 || col > termWidth {
			continue
		}
		k := it.EffectiveKind(bootSwap)
		cw.WriteColored(col, row, kindColor(k), string(k.Glyph()))
		c.canvas.MarkTextDirty(col, row, 1)
	}

	if cue, ok := m.ActiveCue(); ok {
		col, row := c.canvas.LogicalToTerminal(cue.X, cue.Y)
		row -= 2
		col -= len(cue.Text) / 2
		if row >= 3 && col >= 1 && col+len(cue.Text) <= termWidth {
			cw.WriteString(draw.Bold)
			cw.WriteAt(col, row, cue.Text)
			cw.WriteString(draw.ColorReset)
			c.canvas.MarkTextDirty(col, row, len(cue.Text))
		}
	}
}

// drawMenuScreen draws the main menu.
func (c *Client) drawMenuScreen() {
	row := c.drawTitle("C A T C H")
	who := "Playing as guest"
	if !c.session.Guest() {
		who = "Card " + c.session.Card()
	}
	high := c.session.Match.Tracker().Snapshot().HighScore
	c.drawLines(row, []string{who, fmt.Sprintf("Best: %d", high)})
	row += 3

	lines := make([]string, 0, len(menuItems)+1)
	for i, item := range menuItems {
		lines = append(lines, fmt.Sprintf("%d  %-14s", i+1, item.label))
	}
	account := "Log in"
	if !c.session.Guest() {
		account = "Log out"
	}
	lines = append(lines, fmt.Sprintf("%d  %-14s", len(menuItems)+1, account))
	c.drawLines(row, lines)

	c.drawLines(row+len(lines)+2, []string{
		"Drag with the mouse or use A/D",
		"Q  quit",
	})
	c.drawHint(">>  Press SPACE to Start  <<")
}

// drawResultScreen draws the end-of-run summary.
func (c *Client) drawResultScreen() {
	r := c.session.Match.Result()
	row := c.drawTitle("GAME OVER")
	lines := []string{
		r.Reason,
		"",
		fmt.Sprintf("Score: %d", r.Score),
		fmt.Sprintf("Best:  %d", r.HighScore),
	}
	if r.NewHighScore {
		lines = append(lines, "", "New personal best!")
	}
	for _, a := range r.Unlocked {
		lines = append(lines, "", "Achievement unlocked: "+a.Title)
	}
	if c.session.Guest() {
		lines = append(lines, "", "Log in with your card to keep your score")
	}
	c.drawLines(row+1, lines)
	c.drawLines(c.canvas.TerminalHeight()-4, []string{"1  Play again", "2  Menu"})
	c.drawHint(">>  Press SPACE to Play Again  <<")
}

// drawAuthScreen draws the card number entry.
func (c *Client) drawAuthScreen() {
	row := c.drawTitle("LOYALTY CARD")
	field := make([]string, store.CardLength)
	for i := range field {
		field[i] = "_"
		if i < len(c.state.cardInput) {
			field[i] = string(c.state.cardInput[i])
		}
	}
	c.drawLines(row+1, []string{
		"Enter your card number",
		"",
		strings.Join(field, " "),
		"",
		fmt.Sprintf("%-50s", c.state.authError),
	})
	c.drawLines(row+8, []string{
		"ENTER  log in",
		"ESC    play as guest",
	})
}

func (c *Client) drawProfileScreen() {
	row := c.drawTitle("PROFILE")
	s := c.session.Match.Tracker().Snapshot()
	card := "guest"
	if !c.session.Guest() {
		card = c.session.Card()
	}
	unlocked := len(stats.Unlocked(c.session.Match.Tracker().Achievements()))
	c.drawLines(row+1, []string{
		"Card:         " + card,
		fmt.Sprintf("Best score:   %d", s.HighScore),
		fmt.Sprintf("Games:        %d", s.GamesPlayed),
		fmt.Sprintf("Tickets:      %d", s.Tickets()),
		fmt.Sprintf("Achievements: %d/%d", unlocked, len(stats.Evaluate(s))),
	})
	c.drawHint("ESC  back")
}

func (c *Client) drawStatsScreen() {
	row := c.drawTitle("STATS")
	s := c.session.Match.Tracker().Snapshot()
	lines := []string{
		fmt.Sprintf("%-20s %8d", "Games played", s.GamesPlayed),
		fmt.Sprintf("%-20s %8s", "Time played", s.PlayTime().Round(time.Second)),
		fmt.Sprintf("%-20s %8d", "Anvil deaths", s.DeathsByAnvil),
		fmt.Sprintf("%-20s %8s", "Time slowed", s.SlowTime().Round(time.Second)),
		fmt.Sprintf("%-20s %8d", "Best score", s.HighScore),
		"",
		"Caught",
	}
	for _, k := range object.Kinds() {
		lines = append(lines, fmt.Sprintf("%-20s %8d", k.String(), s.Caught(k)))
	}
	c.drawLines(row, lines)
	c.drawHint("ESC  back")
}

func (c *Client) drawAchievementsScreen() {
	row := c.drawTitle("ACHIEVEMENTS")
	var lines []string
	for _, a := range c.session.Match.Tracker().Achievements() {
		mark := "[ ]"
		if a.Unlocked {
			mark = "[x]"
		}
		lines = append(lines,
			fmt.Sprintf("%s %-28s", mark, a.Title),
			fmt.Sprintf("    %-28s", a.Description),
			fmt.Sprintf("    %d / %d", a.Progress, a.Target),
			"")
	}
	c.drawLines(row, lines)
	c.drawHint("ESC  back")
}

func (c *Client) drawPrizesScreen() {
	row := c.drawTitle("PRIZES")
	s := c.session.Match.Tracker().Snapshot()
	lines := []string{fmt.Sprintf("Tickets collected: %d", s.Tickets()), ""}
	unlocked := len(s.Prizes())
	for i, p := range stats.PrizeTiers {
		state := "locked"
		if i < unlocked {
			state = "UNLOCKED"
		}
		lines = append(lines, fmt.Sprintf("%d ticket(s): %-8s %s", p.Tickets, p.Title, state))
	}
	lines = append(lines, "", "Catch the rare T items to earn tickets")
	c.drawLines(row, lines)
	c.drawHint("ESC  back")
}

func (c *Client) drawHowToPlayScreen() {
	row := c.drawTitle("HOW TO PLAY")
	lines := []string{
		"Catch food to score and gain time.",
		fmt.Sprintf("Missed food costs %s.", game.MissPenalty),
		"",
	}
	for _, e := range c.catalog.Entries() {
		lines = append(lines, fmt.Sprintf("%c %-10s %5.1f%%", e.Kind.Glyph(), e.Kind, c.catalog.Chance(e.Kind)))
		lines = append(lines, "  "+e.Description)
	}
	c.drawLines(row, lines)
	c.drawHint("ESC  back")
}

func (c *Client) drawLeaderboardScreen() {
	row := c.drawTitle("TOP 10")
	snap := c.server.GetSnapshot()
	place := "-"
	if c.state.rank > 0 {
		place = fmt.Sprint(c.state.rank)
	}
	lines := []string{fmt.Sprintf("Your place: %-6s", place), ""}
	for _, e := range snap.Leaderboard {
		marker := " "
		if e.ID == c.session.Card() {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s#%-2d %s  %6d", marker, e.Place, maskCard(e.ID), e.Score))
	}
	if len(snap.Leaderboard) == 0 {
		lines = append(lines, "No scores yet")
	}
	c.drawLines(row, lines)
	c.drawHint("ESC  back")
}

// maskCard hides the middle digits of a card number.
func maskCard(id string) string {
	if len(id) != store.CardLength {
		return id
	}
	return id[:2] + "******" + id[8:]
}

func newLeaderText(e store.LeaderboardEntry, self string) string {
	if e.ID == self {
		return fmt.Sprintf("You took first place with %d!", e.Score)
	}
	return fmt.Sprintf("New leader: %s with %d", maskCard(e.ID), e.Score)
}
