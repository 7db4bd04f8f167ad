// Package draw renders the play field into a terminal using half-block cells.
package draw

import (
	"math"
	"strconv"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Rotate rotates p around the origin by angle radians.
func Rotate(p Point, angle float64) Point {
	if angle == 0 {
		return p
	}
	sin, cos := math.Sincos(angle)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a palette index. The zero value is "no pixel".
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorRed
	ColorGreen
	ColorBlue
	ColorOrange
	ColorYellow
	ColorBrown
	ColorCyan
	ColorMagenta
	colorCount
)

// xterm-256 codes for each palette entry.
var ansiCodes = [colorCount]int{
	ColorWhite:   15,
	ColorGray:    244,
	ColorRed:     196,
	ColorGreen:   71,  // #4CAF50
	ColorBlue:    33,  // #2196F3
	ColorOrange:  208, // #FF9800
	ColorYellow:  226,
	ColorBrown:   130,
	ColorCyan:    51,
	ColorMagenta: 201,
}

// ANSI text attributes for overlays.
const (
	ColorReset = "\033[0m"
	Bold       = "\033[1m"
)

// Foreground returns the escape sequence selecting c as text color.
func Foreground(c Color) string {
	if c == ColorNone || c >= colorCount {
		return ColorReset
	}
	return "\033[38;5;" + strconv.Itoa(ansiCodes[c]) + "m"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
