package object

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when parsing a kind name that is not in the enum.
var ErrUnknownKind = errors.New("object: unknown item kind")

// Kind identifies what a falling item is.
type Kind uint8

const (
	Champignon Kind = iota
	Cucumber
	Eggplant
	Kebab
	Salad
	Anvil
	Puffer
	Sock
	Drop
	Shield
	Magnet
	Boot
	Ticket
	kindCount
)

type class uint8

const (
	classReward class = iota
	classHazard
	classModifier
	classCollectible
)

var kindNames = [kindCount]string{
	Champignon: "champignon",
	Cucumber:   "cucumber",
	Eggplant:   "eggplant",
	Kebab:      "kebab",
	Salad:      "salad",
	Anvil:      "anvil",
	Puffer:     "puffer",
	Sock:       "sock",
	Drop:       "drop",
	Shield:     "shield",
	Magnet:     "magnet",
	Boot:       "boot",
	Ticket:     "ticket",
}

var kindClasses = [kindCount]class{
	Champignon: classReward,
	Cucumber:   classReward,
	Eggplant:   classReward,
	Kebab:      classReward,
	Salad:      classReward,
	Anvil:      classHazard,
	Puffer:     classModifier,
	Sock:       classModifier,
	Drop:       classModifier,
	Shield:     classModifier,
	Magnet:     classModifier,
	Boot:       classModifier,
	Ticket:     classCollectible,
}

// Single-cell glyphs used by the terminal renderer.
var kindGlyphs = [kindCount]rune{
	Champignon: 'C',
	Cucumber:   'U',
	Eggplant:   'E',
	Kebab:      'K',
	Salad:      'S',
	Anvil:      'A',
	Puffer:     'P',
	Sock:       'X',
	Drop:       'D',
	Shield:     'H',
	Magnet:     'M',
	Boot:       'B',
	Ticket:     'T',
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool { return k < kindCount }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Glyph returns the terminal glyph for k.
func (k Kind) Glyph() rune {
	if !k.Valid() {
		return '?'
	}
	return kindGlyphs[k]
}

// IsReward reports whether catching k grants points and time.
func (k Kind) IsReward() bool { return k.Valid() && kindClasses[k] == classReward }

// IsHazard reports whether catching k can end the run.
func (k Kind) IsHazard() bool { return k.Valid() && kindClasses[k] == classHazard }

// IsModifier reports whether catching k starts a timed effect.
func (k Kind) IsModifier() bool { return k.Valid() && kindClasses[k] == classModifier }

// IsCollectible reports whether k only feeds the lifetime collection.
func (k Kind) IsCollectible() bool { return k.Valid() && kindClasses[k] == classCollectible }

// ParseKind resolves a kind by name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText encodes k by name so JSON payloads stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
