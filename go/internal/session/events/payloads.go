package events

import (
	"time"
)

// Event payload types that are shared between the relay and gateway packages

// GameEventPayload is the payload for lifecycle, score, piece and tick events
type GameEventPayload struct {
	Paused      bool   `json:"paused"`
	Score       int    `json:"score"`
	Time        int    `json:"time"`
	DisplayTime string `json:"display_time"`
	Piece       string `json:"piece"`
}

// SessionResetPayload is the payload for a SessionReset event
type SessionResetPayload struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// SessionPausedPayload is the payload for a SessionPaused event
type SessionPausedPayload struct {
	SessionID string    `json:"session_id"`
	PausedAt  time.Time `json:"paused_at"`
	Elapsed   int       `json:"elapsed"`
}

// SessionResumedPayload is the payload for a SessionResumed event
type SessionResumedPayload struct {
	SessionID        string `json:"session_id"`
	PausedDurationMs int64  `json:"paused_duration_ms"`
}

// GameOverPayload is the payload for a SessionOver event
type GameOverPayload struct {
	SessionID string `json:"session_id"`
	Score     int    `json:"score"`
	Duration  string `json:"duration"`
	Seconds   int    `json:"seconds"`
}
