package events

import (
	"testing"
	"time"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/stretchr/testify/require"
)

var at = time.UnixMilli(1_700_000_000_000)

func types(evts []Event) []EventType {
	out := make([]EventType, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}

func TestDiff(t *testing.T) {
	running := session.SessionState{
		ID:      "s1",
		Started: true,
		Time:    session.SessionTime{Start: at, Current: 4},
		Score:   100,
	}

	paused := running
	paused.Paused = true
	paused.Time.PauseStart = at.Add(4 * time.Second)

	resumed := running
	resumed.Time.PausedDuration = 2 * time.Second

	over := running
	over.Over = true
	over.Started = false

	scored := running
	scored.Score = 400
	scored.CurrentPiece = "T"

	ticked := running
	ticked.Time.Current = 5

	stopped := running
	stopped.Started = false

	tests := []struct {
		name     string
		prev     session.SessionState
		next     session.SessionState
		expected []EventType
	}{
		{
			name:     "reset from idle",
			prev:     session.SessionState{},
			next:     running,
			expected: []EventType{EventTypeSessionReset},
		},
		{
			name:     "reset of a finished session",
			prev:     over,
			next:     session.SessionState{ID: "s2", Started: true, Time: session.SessionTime{Start: at}},
			expected: []EventType{EventTypeSessionReset},
		},
		{
			name:     "pause",
			prev:     running,
			next:     paused,
			expected: []EventType{EventTypeSessionPaused},
		},
		{
			name:     "resume",
			prev:     paused,
			next:     resumed,
			expected: []EventType{EventTypeSessionResumed},
		},
		{
			name:     "game over",
			prev:     paused,
			next:     over,
			expected: []EventType{EventTypeSessionOver},
		},
		{
			name:     "score and piece",
			prev:     running,
			next:     scored,
			expected: []EventType{EventTypeScoreUpdated, EventTypePieceUpdated},
		},
		{
			name:     "tick",
			prev:     running,
			next:     ticked,
			expected: []EventType{EventTypeTimeTick},
		},
		{
			name:     "started flag",
			prev:     running,
			next:     stopped,
			expected: []EventType{EventTypeStartedChanged},
		},
		{
			name:     "no change",
			prev:     running,
			next:     running,
			expected: []EventType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evts, err := Diff(tt.prev, tt.next, at)
			require.NoError(t, err)
			require.Equal(t, tt.expected, types(evts))
			for _, e := range evts {
				require.NotEmpty(t, e.ID)
				require.Equal(t, tt.next.ID, e.SessionID)
				require.Equal(t, at, e.Timestamp)
			}
		})
	}
}

func TestGameOverPayload(t *testing.T) {
	prev := session.SessionState{ID: "s1", Started: true, Score: 900, Time: session.SessionTime{Current: 125}}
	next := prev
	next.Over = true
	next.Started = false

	evts, err := Diff(prev, next, at)
	require.NoError(t, err)
	require.Len(t, evts, 1)

	payload, err := ParseEventPayload(&evts[0])
	require.NoError(t, err)
	require.Equal(t, GameOverPayload{
		SessionID: "s1",
		Score:     900,
		Duration:  "2:05",
		Seconds:   125,
	}, payload)
}

func TestTickPayload(t *testing.T) {
	prev := session.SessionState{ID: "s1", Started: true, CurrentPiece: "I", Score: 20, Time: session.SessionTime{Current: 59}}
	next := prev
	next.Time.Current = 60

	evts, err := Diff(prev, next, at)
	require.NoError(t, err)
	require.Len(t, evts, 1)

	payload, err := ParseEventPayload(&evts[0])
	require.NoError(t, err)
	require.Equal(t, GameEventPayload{
		Score:       20,
		Time:        60,
		DisplayTime: "1:00",
		Piece:       "I",
	}, payload)
}

func TestParseUnknownEvent(t *testing.T) {
	payload, err := ParseEventPayload(&Event{Type: "Bogus", Data: []byte(`{}`)})
	require.ErrorIs(t, err, ErrUnknownEventType)
	require.Nil(t, payload)
}
