package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/google/uuid"
)

// Event is the envelope for all session events
type Event struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Session UUID, minted on reset
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of session event
type EventType string

const (
	EventTypeSessionReset   EventType = "SessionReset"
	EventTypeSessionPaused  EventType = "SessionPaused"
	EventTypeSessionResumed EventType = "SessionResumed"
	EventTypeSessionOver    EventType = "SessionOver"
	EventTypeStartedChanged EventType = "StartedChanged"
	EventTypeScoreUpdated   EventType = "ScoreUpdated"
	EventTypePieceUpdated   EventType = "PieceUpdated"
	EventTypeTimeTick       EventType = "TimeTick"
)

// Diff classifies the transition between two consecutive snapshots into events.
// A reset yields a single SessionReset, whatever else differs.
func Diff(prev, next session.SessionState, at time.Time) ([]Event, error) {
	var out []Event
	add := func(t EventType, payload any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", t, err)
		}
		out = append(out, Event{
			ID:        uuid.NewString(),
			SessionID: next.ID,
			Type:      t,
			Timestamp: at,
			Data:      data,
		})
		return nil
	}

	if next.ID != prev.ID && next.ID != "" {
		err := add(EventTypeSessionReset, SessionResetPayload{
			SessionID: next.ID,
			StartedAt: next.Time.Start,
		})
		return out, err
	}

	if next.Over && !prev.Over {
		err := add(EventTypeSessionOver, GameOverPayload{
			SessionID: next.ID,
			Score:     next.Score,
			Duration:  session.DisplayTime(next),
			Seconds:   next.Time.Current,
		})
		return out, err
	}

	if next.Paused != prev.Paused {
		var err error
		if next.Paused {
			err = add(EventTypeSessionPaused, SessionPausedPayload{
				SessionID: next.ID,
				PausedAt:  next.Time.PauseStart,
				Elapsed:   next.Time.Current,
			})
		} else {
			err = add(EventTypeSessionResumed, SessionResumedPayload{
				SessionID:        next.ID,
				PausedDurationMs: next.Time.PausedDuration.Milliseconds(),
			})
		}
		if err != nil {
			return nil, err
		}
	}

	checks := []struct {
		changed bool
		t       EventType
	}{
		{next.Started != prev.Started, EventTypeStartedChanged},
		{next.Score != prev.Score, EventTypeScoreUpdated},
		{next.CurrentPiece != prev.CurrentPiece, EventTypePieceUpdated},
		{next.Time.Current != prev.Time.Current, EventTypeTimeTick},
	}
	for _, c := range checks {
		if !c.changed {
			continue
		}
		if err := add(c.t, gameEvent(next)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func gameEvent(st session.SessionState) GameEventPayload {
	return GameEventPayload{
		Paused:      st.Paused,
		Score:       st.Score,
		Time:        st.Time.Current,
		DisplayTime: session.DisplayTime(st),
		Piece:       st.CurrentPiece,
	}
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *Event) (interface{}, error) {
	switch event.Type {
	case EventTypeSessionReset:
		var payload SessionResetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionPaused:
		var payload SessionPausedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionResumed:
		var payload SessionResumedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionOver:
		var payload GameOverPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeStartedChanged, EventTypeScoreUpdated, EventTypePieceUpdated, EventTypeTimeTick:
		var payload GameEventPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
}
