package gateway

import (
	"time"

	"github.com/Zxce3/tt-console/go/internal/session"
)

// MessageTypeState is the only message type pushed to clients
const MessageTypeState = "state"

// SessionMessage is what the presentation layer receives for every snapshot
type SessionMessage struct {
	Type        string                `json:"type"`
	SessionID   string                `json:"session_id,omitempty"`
	Phase       session.Phase         `json:"phase"`
	Status      session.SessionStatus `json:"status"`
	DisplayTime string                `json:"display_time"`
	Time        session.SessionTime   `json:"time"`
	Timestamp   time.Time             `json:"timestamp"`
}

// NewSessionMessage builds the client message for a snapshot
func NewSessionMessage(st session.SessionState, at time.Time) SessionMessage {
	return SessionMessage{
		Type:        MessageTypeState,
		SessionID:   st.ID,
		Phase:       st.Phase(),
		Status:      session.StatusOf(st),
		DisplayTime: session.DisplayTime(st),
		Time:        st.Time,
		Timestamp:   at,
	}
}
