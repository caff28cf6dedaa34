package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	st := SessionState{
		Started:      true,
		Paused:       true,
		Score:        1200,
		CurrentPiece: "S",
	}

	require.Equal(t, SessionStatus{
		IsActive:     true,
		IsPaused:     true,
		Started:      true,
		Over:         false,
		Score:        1200,
		CurrentPiece: "S",
	}, StatusOf(st))
}

func TestSubscribeStatusSeesEveryScore(t *testing.T) {
	store, _ := newTestStore(t)

	var scores []int
	unsubscribe := store.SubscribeStatus(func(s SessionStatus) {
		scores = append(scores, s.Score)
	})
	defer unsubscribe()

	store.UpdateScore(150)
	store.UpdateScore(400)

	require.Equal(t, []int{0, 150, 400}, scores)
}

func TestSubscribeStatusTracksLifecycle(t *testing.T) {
	store, _ := newTestStore(t)

	var got []SessionStatus
	unsubscribe := store.SubscribeStatus(func(s SessionStatus) { got = append(got, s) })
	defer unsubscribe()

	store.Reset()
	store.TogglePause()
	store.SetGameOver()

	require.Len(t, got, 4)
	require.False(t, got[0].IsActive)
	require.True(t, got[1].IsActive)
	require.True(t, got[1].Started)
	require.True(t, got[2].IsPaused)
	require.True(t, got[3].Over)
	require.False(t, got[3].IsActive)
	require.False(t, got[3].IsPaused)
}

func TestSubscribeDisplayTimeSkipsRepeats(t *testing.T) {
	store, fc := newTestStore(t)
	store.Reset()

	var shown []string
	unsubscribe := store.SubscribeDisplayTime(func(s string) { shown = append(shown, s) })
	defer unsubscribe()

	store.UpdateScore(10)
	store.UpdatePiece("I")

	fc.Advance(65 * time.Second)
	store.UpdateTime()
	store.UpdateScore(20)

	require.Equal(t, []string{"0:00", "1:05"}, shown)
}
