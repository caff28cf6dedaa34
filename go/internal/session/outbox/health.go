package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Healthy         bool      `json:"healthy"`
	EventsPublished uint64    `json:"events_published"`
	EventsDropped   uint64    `json:"events_dropped"`
	PendingEvents   int       `json:"pending_events"`
	LastEventTime   time.Time `json:"last_event_time"`
	NATSConnected   bool      `json:"nats_connected"`
	RelayActive     bool      `json:"relay_active"`
	Errors          []string  `json:"errors"`
}

type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// connectionReporter is implemented by publishers that hold a live connection
type connectionReporter interface {
	Connected() bool
}

type RelayHealthChecker struct {
	relay        *Relay
	maxPending   int
	pendingLimit float64
}

// NewRelayHealthChecker reports unhealthy once the buffer is fuller than
// pendingLimit (a fraction between 0 and 1).
func NewRelayHealthChecker(relay *Relay, pendingLimit float64) *RelayHealthChecker {
	if pendingLimit <= 0 || pendingLimit > 1 {
		pendingLimit = 0.9
	}
	return &RelayHealthChecker{
		relay:        relay,
		maxPending:   relay.config.BufferSize,
		pendingLimit: pendingLimit,
	}
}

func (h *RelayHealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsPublished, status.LastEventTime = h.relay.Stats()
	status.EventsDropped = h.relay.Dropped()

	h.relay.mu.Lock()
	status.RelayActive = h.relay.running
	if h.relay.queue != nil {
		status.PendingEvents = len(h.relay.queue)
	}
	h.relay.mu.Unlock()

	if !status.RelayActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not active")
	}

	status.NATSConnected = true
	if cr, ok := h.relay.publisher.(connectionReporter); ok {
		status.NATSConnected = cr.Connected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if float64(status.PendingEvents) > float64(h.maxPending)*h.pendingLimit {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d/%d", status.PendingEvents, h.maxPending))
	}

	return status
}

func (h *RelayHealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode relay health")
	}
}
