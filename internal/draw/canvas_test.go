package draw

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.SetColor(ColorRed)
	c.FillRect(0, 0, 2, 2)

	var first bytes.Buffer
	c.Render(&first)
	if !strings.Contains(first.String(), string(BlockFull)) {
		t.Fatalf("first frame has no full block: %q", first.String())
	}

	var second bytes.Buffer
	c.Render(&second)
	if second.Len() != 0 {
		t.Fatalf("unchanged frame wrote %d bytes", second.Len())
	}

	c.Clear()
	var third bytes.Buffer
	c.Render(&third)
	if !strings.Contains(third.String(), " ") {
		t.Fatalf("cleared cells were not erased: %q", third.String())
	}
}

func TestMarkTextDirtyRepaints(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	var buf bytes.Buffer
	c.Render(&buf)
	buf.Reset()
	c.Render(&buf)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	c.MarkTextDirty(2, 1, 3)
	buf.Reset()
	c.Render(&buf)
	if got := strings.Count(buf.String(), "H"); got != 3 {
		t.Fatalf("repainted %d cells, want 3", got)
	}
}

func TestHalfBlockColors(t *testing.T) {
	c := NewScaledCanvas(1, 1, 1, 2)
	c.SetColor(ColorBlue)
	c.SetFloat(0, 0)
	c.SetColor(ColorOrange)
	c.SetFloat(0, 1)
	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()
	if !strings.Contains(out, Foreground(ColorBlue)) || !strings.Contains(out, "\033[48;5;208m") {
		t.Fatalf("missing split colors in %q", out)
	}
	if !strings.ContainsRune(out, BlockUpperHalf) {
		t.Fatalf("missing upper half block in %q", out)
	}
}

func TestTerminalToLogicalRoundTrip(t *testing.T) {
	c := NewScaledCanvas(60, 40, 480, 800)
	c.SetOffset(5, 2)
	x, y := c.TerminalToLogical(5+31, 2+21)
	col, row := c.LogicalToTerminal(x, y)
	if col != 31 || row != 21 {
		t.Fatalf("round trip got (%d, %d), want (31, 21)", col, row)
	}
}

func TestRotate(t *testing.T) {
	p := Rotate(Point{X: 1, Y: 0}, math.Pi/2)
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-1) > 1e-9 {
		t.Fatalf("got %+v, want (0, 1)", p)
	}
}

func TestChunkWriterCentered(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	cw.SetOffset(0, 0, 20)
	if col := cw.WriteCentered(3, "abcd"); col != 9 {
		t.Fatalf("got col %d, want 9", col)
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "\033[3;9Habcd"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
