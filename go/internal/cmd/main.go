package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Zxce3/tt-console/go/internal/gateway"
	"github.com/Zxce3/tt-console/go/internal/logger"
	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/session/outbox"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Logger = logger.Setup(cfg.LogDev)

	opts := []session.Option{session.WithLogger(log.Logger)}
	if cfg.GuardedTransitions {
		opts = append(opts, session.WithGuardedTransitions())
	}
	store := session.NewStore(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	ticker := session.NewTicker(store, cfg.TickInterval, nil)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ticker.Run(ctx); err != nil {
			log.Error().Err(err).Msg("session ticker failed")
		}
	}()

	relay, publisher := setupEvents(ctx, cfg, store)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.Board = cfg.Board
	gw := gateway.NewService(gatewayConfig, store)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gw.Start(ctx); err != nil {
			log.Error().Err(err).Msg("session gateway failed")
		}
	}()

	server := setupServer(cfg, store, gw, relay, log.Logger)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Int("rows", cfg.Board.Rows).
			Int("cols", cfg.Board.Cols).
			Bool("guarded", cfg.GuardedTransitions).
			Msg("session server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down session server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	if relay != nil {
		if err := relay.Stop(); err != nil {
			log.Error().Err(err).Msg("event relay stop failed")
		}
		if _, last := relay.Stats(); !last.IsZero() {
			log.Info().Time("last_published", last).Msg("last session event published")
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("closing event publisher failed")
		}
	}

	cancel()
	wg.Wait()

	log.Info().Msg("session server stopped")
}

// setupEvents connects the outbox relay to JetStream. Events are optional:
// with no NATS_URL, or an unreachable server, the session still runs.
func setupEvents(ctx context.Context, cfg Config, store *session.Store) (*outbox.Relay, *outbox.JetStreamPublisher) {
	if cfg.NATSURL == "" {
		log.Info().Msg("NATS_URL not set, session events disabled")
		return nil, nil
	}

	jsConfig := outbox.DefaultJetStreamConfig()
	jsConfig.URL = cfg.NATSURL
	jsConfig.StreamName = cfg.EventStream
	jsConfig.SubjectPrefix = cfg.EventSubjectPrefix

	publisher, err := outbox.NewJetStreamPublisher(jsConfig)
	if err != nil {
		log.Error().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect event publisher, session events disabled")
		return nil, nil
	}

	relay := outbox.NewRelay(store, publisher, outbox.DefaultConfig()).WithLogger(log.Logger)
	if err := relay.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start event relay")
		_ = publisher.Close()
		return nil, nil
	}
	return relay, publisher
}
