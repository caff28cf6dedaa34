package gateway

import (
	"context"
	"net/http"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/settings"
	"github.com/rs/zerolog/log"
)

// Service is the gateway that streams session state to the presentation layer
type Service struct {
	store             *session.Store
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	Board            settings.BoardSettings
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		Board:            settings.Default(),
	}
}

// NewService creates a new gateway service
func NewService(config Config, store *session.Store) *Service {
	connectionManager := NewConnectionManager(config.ConnectionConfig)

	return &Service{
		store:             store,
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(store, config.Board),
	}
}

// Start subscribes to the store and pushes snapshots until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting session gateway")

	detach := s.connectionManager.Attach(s.store)
	defer detach()

	s.connectionManager.Start(ctx)

	log.Info().Msg("session gateway stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("session gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
