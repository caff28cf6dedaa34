package main

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/Zxce3/tt-console/go/internal/gateway"
	"github.com/Zxce3/tt-console/go/internal/logger"
	"github.com/Zxce3/tt-console/go/internal/rpc"
	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/session/outbox"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg Config, store *session.Store, gw *gateway.Service, relay *outbox.Relay, log zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: newHandler(cfg, store, gw, relay, log),
	}
}

// newHandler builds the full route table. relay may be nil when events are disabled.
func newHandler(cfg Config, store *session.Store, gw *gateway.Service, relay *outbox.Relay, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Session RPCs
	mux.Handle(rpc.NewHandler(
		rpc.NewService(store),
		connect.WithInterceptors(logger.NewConnectRequests(log)),
	))

	// WebSocket stream and read-only state
	gw.RegisterRoutes(mux)

	setupHealthCheck(mux, log)
	if relay != nil {
		mux.Handle("GET /health/events", outbox.NewRelayHealthChecker(relay, 0))
	}

	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func setupHealthCheck(mux *http.ServeMux, log zerolog.Logger) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
