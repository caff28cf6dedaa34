package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubGameLogic struct {
	mu    sync.Mutex
	score int
	piece string
}

func (g *stubGameLogic) set(score int, piece string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.score, g.piece = score, piece
}

func (g *stubGameLogic) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

func (g *stubGameLogic) CurrentPiece() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.piece
}

func TestSync(t *testing.T) {
	store, _ := newTestStore(t)
	src := &stubGameLogic{}
	src.set(300, "Z")

	published := 0
	unsubscribe := store.Subscribe(func(SessionState) { published++ })
	defer unsubscribe()

	store.Sync(src)
	require.Equal(t, 300, store.Snapshot().Score)
	require.Equal(t, "Z", store.Snapshot().CurrentPiece)
	require.Equal(t, 2, published)

	store.Sync(src)
	require.Equal(t, 2, published, "unchanged values are not republished")
}

func TestTickerAdvancesClock(t *testing.T) {
	store, fc := newTestStore(t)
	store.Reset()

	src := &stubGameLogic{}
	src.set(100, "O")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := NewTicker(store, time.Second, src)
	done := make(chan error, 1)
	go func() { done <- ticker.Run(ctx) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))

	fc.Advance(time.Second)
	require.Eventually(t, func() bool {
		st := store.Snapshot()
		return st.Time.Current == 1 && st.Score == 100 && st.CurrentPiece == "O"
	}, time.Second, 5*time.Millisecond)

	store.TogglePause()
	src.set(500, "J")
	fc.Advance(time.Second)
	require.Never(t, func() bool {
		return store.Snapshot().Score == 500
	}, 50*time.Millisecond, 5*time.Millisecond, "paused sessions are not synced")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop")
	}
}

func TestNewTickerDefaultsInterval(t *testing.T) {
	store, _ := newTestStore(t)
	require.Equal(t, DefaultTickInterval, NewTicker(store, 0, nil).interval)
}
