package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval matches the one second resolution of the session clock
const DefaultTickInterval = time.Second

// Ticker drives UpdateTime on a fixed cadence. When a GameLogic source is set,
// score and piece are pulled from it on every tick of a running session.
type Ticker struct {
	store    *Store
	source   GameLogic
	interval time.Duration
	logger   zerolog.Logger
}

// NewTicker creates a ticker for the store. source may be nil.
func NewTicker(store *Store, interval time.Duration, source GameLogic) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{
		store:    store,
		source:   source,
		interval: interval,
		logger:   store.logger,
	}
}

// Run ticks until ctx is cancelled
func (t *Ticker) Run(ctx context.Context) error {
	ticker := t.store.Clock().NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Dur("interval", t.interval).Msg("session ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("session ticker stopped")
			return nil
		case <-ticker.Chan():
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	if t.source != nil && t.store.Snapshot().Running() {
		t.store.Sync(t.source)
	}
	t.store.UpdateTime()
}
