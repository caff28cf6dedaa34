package outbox

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/session/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BufferSize     int
	PublishTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize:     256,
		PublishTimeout: 5 * time.Second,
	}
}

// Relay turns store snapshots into events and hands them to a publisher.
// The store observer never blocks: events that do not fit the buffer are dropped.
type Relay struct {
	store     *session.Store
	publisher EventPublisher
	config    Config
	logger    zerolog.Logger

	mu          sync.Mutex
	running     bool
	queue       chan events.Event
	stopChan    chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup

	prev session.SessionState // only touched from the store observer

	published atomic.Uint64
	dropped   atomic.Uint64
	lastSent  atomic.Int64
}

func NewRelay(store *session.Store, publisher EventPublisher, cfg Config) *Relay {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultConfig().PublishTimeout
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		config:    cfg,
		logger:    log.Logger,
	}
}

// WithLogger replaces the relay logger
func (r *Relay) WithLogger(logger zerolog.Logger) *Relay {
	r.logger = logger
	return r
}

func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrRelayRunning
	}
	r.running = true
	r.queue = make(chan events.Event, r.config.BufferSize)
	r.stopChan = make(chan struct{})

	r.wg.Add(1)
	go r.run(ctx)

	first := true
	r.unsubscribe = r.store.Subscribe(func(next session.SessionState) {
		if first {
			first = false
			r.prev = next
			return
		}
		r.observe(next)
	})

	r.logger.Info().Int("buffer_size", r.config.BufferSize).Msg("event relay started")
	return nil
}

func (r *Relay) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrRelayNotRunning
	}
	r.running = false
	r.unsubscribe()
	close(r.stopChan)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info().
		Uint64("published", r.published.Load()).
		Uint64("dropped", r.dropped.Load()).
		Msg("event relay stopped")
	return nil
}

// Stats returns the number of published events and when the last one was sent
func (r *Relay) Stats() (uint64, time.Time) {
	var last time.Time
	if ms := r.lastSent.Load(); ms != 0 {
		last = time.UnixMilli(ms)
	}
	return r.published.Load(), last
}

// Dropped returns the number of events discarded because the buffer was full
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *Relay) observe(next session.SessionState) {
	evts, err := events.Diff(r.prev, next, r.store.Clock().Now())
	r.prev = next
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", next.ID).Msg("failed to build session events")
		return
	}

	for _, e := range evts {
		select {
		case r.queue <- e:
		default:
			r.dropped.Add(1)
			r.logger.Warn().
				Str("event_type", string(e.Type)).
				Str("session_id", e.SessionID).
				Msg("event buffer full, dropping event")
		}
	}
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			r.drain()
			return
		case e := <-r.queue:
			r.publish(ctx, e)
		}
	}
}

// drain publishes whatever is still buffered when the relay stops
func (r *Relay) drain() {
	for {
		select {
		case e := <-r.queue:
			r.publish(context.Background(), e)
		default:
			return
		}
	}
}

func (r *Relay) publish(ctx context.Context, e events.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, r.config.PublishTimeout)
	defer cancel()

	if err := r.publisher.Publish(pubCtx, e); err != nil {
		r.logger.Error().
			Err(err).
			Str("event_type", string(e.Type)).
			Str("event_id", e.ID).
			Msg("failed to publish session event")
		return
	}
	r.published.Add(1)
	r.lastSent.Store(r.store.Clock().Now().UnixMilli())
}
