// Package config centralizes the tunables of the session loops.
package config

import "time"

// Logical play field. Rendering scales it to the terminal or browser canvas.
const (
	ScreenWidth  = 480
	ScreenHeight = 800
)

// Terminal render limits. The portrait field is drawn into at most this many
// cells and centered when the terminal is larger.
const (
	MaxTermWidth  = 60
	MaxTermHeight = 40
)

// Keyboard drag step in logical pixels per arrow key press.
const KeyboardStep = 24.0

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Hub housekeeping
const (
	LeaderboardSize    = 10
	LeaderboardRefresh = 15 * time.Second
	CheckpointInterval = 30 * time.Second
	ExitSaveTimeout    = 5 * time.Second
)
