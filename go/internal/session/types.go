package session

import (
	"encoding/json"
	"time"
)

// Phase is the lifecycle position of a session
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhasePaused  Phase = "PAUSED"
	PhaseOver    Phase = "OVER"
)

// SessionTime holds the raw clock fields of a session.
// PauseStart is only meaningful while the session is paused.
type SessionTime struct {
	Start          time.Time
	Current        int // elapsed active seconds, as of the last UpdateTime
	PauseStart     time.Time
	PausedDuration time.Duration
}

// sessionTimeJSON is the wire shape of SessionTime: instants and durations in
// milliseconds. An unset instant is omitted, so 0 always means the Unix epoch.
type sessionTimeJSON struct {
	Start          *int64 `json:"start,omitempty"`
	Current        int    `json:"current"`
	PauseStart     *int64 `json:"pause_start,omitempty"`
	PausedDuration int64  `json:"paused_duration"`
}

// MarshalJSON encodes instants as epoch milliseconds
func (t SessionTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionTimeJSON{
		Start:          epochMillis(t.Start),
		Current:        t.Current,
		PauseStart:     epochMillis(t.PauseStart),
		PausedDuration: t.PausedDuration.Milliseconds(),
	})
}

// UnmarshalJSON decodes the epoch millisecond form written by MarshalJSON
func (t *SessionTime) UnmarshalJSON(data []byte) error {
	var raw sessionTimeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = SessionTime{
		Start:          fromEpochMillis(raw.Start),
		Current:        raw.Current,
		PauseStart:     fromEpochMillis(raw.PauseStart),
		PausedDuration: time.Duration(raw.PausedDuration) * time.Millisecond,
	}
	return nil
}

func epochMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromEpochMillis(ms *int64) time.Time {
	if ms == nil {
		return time.Time{}
	}
	return time.UnixMilli(*ms)
}

// SessionState is one immutable snapshot of a game session
type SessionState struct {
	ID           string      `json:"session_id,omitempty"`
	Started      bool        `json:"started"`
	Paused       bool        `json:"paused"`
	Over         bool        `json:"over"`
	Time         SessionTime `json:"time"`
	Score        int         `json:"score"`
	CurrentPiece string      `json:"current_piece"`
}

// Phase derives the lifecycle phase from the flags
func (s SessionState) Phase() Phase {
	switch {
	case s.Over:
		return PhaseOver
	case s.Paused:
		return PhasePaused
	case s.Started:
		return PhaseRunning
	default:
		return PhaseIdle
	}
}

// Running reports whether the clock is allowed to advance
func (s SessionState) Running() bool {
	return s.Started && !s.Paused && !s.Over
}
