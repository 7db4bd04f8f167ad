package game

import "time"

// Run clock.
const (
	MaxTime       = 8 * time.Second
	CountdownTick = 100 * time.Millisecond
	MissPenalty   = 2 * time.Second
	SockPenalty   = 2 * time.Second
	CueDuration   = 700 * time.Millisecond
)

// Effect durations.
const (
	RainDuration   = 4000 * time.Millisecond
	MagnetDuration = 3200 * time.Millisecond
	ShieldDuration = 2100 * time.Millisecond
	ShrinkDuration = 3200 * time.Millisecond
	SlowDuration   = 3100 * time.Millisecond
	BootDuration   = 3000 * time.Millisecond
)

// Screen tints shown while an effect is live.
const (
	TintMagnet = "#2196F3"
	TintShield = "#FF9800"
	TintSlow   = "#4CAF50"
)
