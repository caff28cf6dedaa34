package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/settings"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleSessionConnection upgrades the request and starts streaming snapshots
func (h *WebSocketHandler) HandleSessionConnection(w http.ResponseWriter, r *http.Request) {
	// Upgrade writes its own HTTP error response on failure
	if err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/session", h.HandleSessionConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

// StateHandler serves read-only session views over plain HTTP
type StateHandler struct {
	store    *session.Store
	settings settings.BoardSettings
}

// NewStateHandler creates a new state handler
func NewStateHandler(store *session.Store, board settings.BoardSettings) *StateHandler {
	return &StateHandler{
		store:    store,
		settings: board,
	}
}

// HandleGetState handles GET /api/session/state
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, NewSessionMessage(st, h.store.Clock().Now()))
}

// HandleGetSettings handles GET /api/settings
func (h *StateHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings)
}

// RegisterStateRoutes registers the state routes with an HTTP mux
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session/state", h.HandleGetState)
	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
