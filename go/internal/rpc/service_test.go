package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/Zxce3/tt-console/go/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Client, *session.Store, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	store := session.NewStore(session.WithClock(fc), session.WithLogger(zerolog.Nop()))

	mux := http.NewServeMux()
	mux.Handle(NewHandler(NewService(store)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(srv.Client(), srv.URL), store, fc
}

func TestSessionLifecycleOverRPC(t *testing.T) {
	client, store, fc := newTestServer(t)
	ctx := context.Background()

	status, err := client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, string(session.PhaseIdle), status.Fields["phase"].GetStringValue())

	status, err = client.Reset(ctx)
	require.NoError(t, err)
	require.True(t, status.Fields["is_active"].GetBoolValue())
	require.NotEmpty(t, status.Fields["session_id"].GetStringValue())

	status, err = client.UpdateScore(ctx, 400)
	require.NoError(t, err)
	require.Equal(t, float64(400), status.Fields["score"].GetNumberValue())

	status, err = client.UpdatePiece(ctx, "T")
	require.NoError(t, err)
	require.Equal(t, "T", status.Fields["current_piece"].GetStringValue())

	fc.Advance(5 * time.Second)
	status, err = client.TogglePause(ctx)
	require.NoError(t, err)
	require.True(t, status.Fields["is_paused"].GetBoolValue())

	fc.Advance(3 * time.Second)
	_, err = client.TogglePause(ctx)
	require.NoError(t, err)

	fc.Advance(2 * time.Second)
	store.UpdateTime()

	status, err = client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, "0:07", status.Fields["display_time"].GetStringValue())
	require.Equal(t, "RUNNING 0:07 score=400 piece=\"T\"", FormatStatus(status))

	status, err = client.SetStarted(ctx, false)
	require.NoError(t, err)
	require.False(t, status.Fields["started"].GetBoolValue())

	status, err = client.SetGameOver(ctx)
	require.NoError(t, err)
	require.True(t, status.Fields["over"].GetBoolValue())
	require.Equal(t, string(session.PhaseOver), status.Fields["phase"].GetStringValue())
}

func TestUpdateScoreRejectsNegative(t *testing.T) {
	client, store, _ := newTestServer(t)

	_, err := client.UpdateScore(context.Background(), -5)
	require.Error(t, err)
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	require.Zero(t, store.Snapshot().Score)
}
