package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/Zxce3/tt-console/go/internal/session/events"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryPublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
}

func (m *memoryPublisher) Publish(_ context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("bus unavailable")
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memoryPublisher) types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

func newStore() (*session.Store, *clockwork.FakeClock) {
	fc := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	return session.NewStore(session.WithClock(fc), session.WithLogger(zerolog.Nop())), fc
}

func TestRelayPublishesLifecycle(t *testing.T) {
	store, fc := newStore()
	pub := &memoryPublisher{}
	relay := NewRelay(store, pub, DefaultConfig()).WithLogger(zerolog.Nop())

	require.NoError(t, relay.Start(context.Background()))

	store.Reset()
	fc.Advance(2 * time.Second)
	store.UpdateTime()
	store.UpdateScore(100)
	store.TogglePause()
	store.TogglePause()
	store.SetGameOver()

	require.NoError(t, relay.Stop())

	require.Equal(t, []events.EventType{
		events.EventTypeSessionReset,
		events.EventTypeTimeTick,
		events.EventTypeScoreUpdated,
		events.EventTypeSessionPaused,
		events.EventTypeSessionResumed,
		events.EventTypeSessionOver,
	}, pub.types())

	published, last := relay.Stats()
	require.Equal(t, uint64(6), published)
	require.False(t, last.IsZero())
}

func TestRelayDoesNotPublishInitialSnapshot(t *testing.T) {
	store, _ := newStore()
	store.Reset()

	pub := &memoryPublisher{}
	relay := NewRelay(store, pub, DefaultConfig()).WithLogger(zerolog.Nop())
	require.NoError(t, relay.Start(context.Background()))
	require.NoError(t, relay.Stop())

	require.Empty(t, pub.types())
}

func TestRelayLifecycleErrors(t *testing.T) {
	store, _ := newStore()
	relay := NewRelay(store, &memoryPublisher{}, Config{}).WithLogger(zerolog.Nop())

	require.ErrorIs(t, relay.Stop(), ErrRelayNotRunning)
	require.NoError(t, relay.Start(context.Background()))
	require.ErrorIs(t, relay.Start(context.Background()), ErrRelayRunning)
	require.NoError(t, relay.Stop())
}

func TestRelayPublishFailureIsNotCounted(t *testing.T) {
	store, _ := newStore()
	pub := &memoryPublisher{fail: true}
	relay := NewRelay(store, pub, DefaultConfig()).WithLogger(zerolog.Nop())

	require.NoError(t, relay.Start(context.Background()))
	store.Reset()
	require.NoError(t, relay.Stop())

	published, _ := relay.Stats()
	require.Zero(t, published)
}

func TestRelayDropsWhenBufferFull(t *testing.T) {
	store, _ := newStore()
	block := make(chan struct{})
	pub := blockingPublisher{release: block}
	relay := NewRelay(store, pub, Config{BufferSize: 1, PublishTimeout: time.Second}).WithLogger(zerolog.Nop())

	require.NoError(t, relay.Start(context.Background()))
	for i := 1; i <= 10; i++ {
		store.UpdateScore(i * 10)
	}
	require.Positive(t, relay.Dropped())

	close(block)
	require.NoError(t, relay.Stop())
}

type blockingPublisher struct {
	release chan struct{}
}

func (b blockingPublisher) Publish(ctx context.Context, _ events.Event) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSubjectFor(t *testing.T) {
	require.Equal(t, "session.events.SessionOver", subjectFor("session.events", events.EventTypeSessionOver))
}
