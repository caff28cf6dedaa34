package rpc

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote session service
type Client struct {
	reset       *connect.Client[emptypb.Empty, structpb.Struct]
	togglePause *connect.Client[emptypb.Empty, structpb.Struct]
	updateScore *connect.Client[wrapperspb.Int64Value, structpb.Struct]
	updatePiece *connect.Client[wrapperspb.StringValue, structpb.Struct]
	setStarted  *connect.Client[wrapperspb.BoolValue, structpb.Struct]
	setGameOver *connect.Client[emptypb.Empty, structpb.Struct]
	getStatus   *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewClient creates a client for the service served at baseURL
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		reset:       connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+ResetProcedure, opts...),
		togglePause: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+TogglePauseProcedure, opts...),
		updateScore: connect.NewClient[wrapperspb.Int64Value, structpb.Struct](httpClient, baseURL+UpdateScoreProcedure, opts...),
		updatePiece: connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+UpdatePieceProcedure, opts...),
		setStarted:  connect.NewClient[wrapperspb.BoolValue, structpb.Struct](httpClient, baseURL+SetStartedProcedure, opts...),
		setGameOver: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+SetGameOverProcedure, opts...),
		getStatus:   connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetStatusProcedure, opts...),
	}
}

func unwrap(resp *connect.Response[structpb.Struct], err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) Reset(ctx context.Context) (*structpb.Struct, error) {
	return unwrap(c.reset.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})))
}

func (c *Client) TogglePause(ctx context.Context) (*structpb.Struct, error) {
	return unwrap(c.togglePause.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})))
}

func (c *Client) UpdateScore(ctx context.Context, score int64) (*structpb.Struct, error) {
	return unwrap(c.updateScore.CallUnary(ctx, connect.NewRequest(wrapperspb.Int64(score))))
}

func (c *Client) UpdatePiece(ctx context.Context, piece string) (*structpb.Struct, error) {
	return unwrap(c.updatePiece.CallUnary(ctx, connect.NewRequest(wrapperspb.String(piece))))
}

func (c *Client) SetStarted(ctx context.Context, started bool) (*structpb.Struct, error) {
	return unwrap(c.setStarted.CallUnary(ctx, connect.NewRequest(wrapperspb.Bool(started))))
}

func (c *Client) SetGameOver(ctx context.Context) (*structpb.Struct, error) {
	return unwrap(c.setGameOver.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})))
}

func (c *Client) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	return unwrap(c.getStatus.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{})))
}

// FormatStatus renders a status struct as a single line
func FormatStatus(s *structpb.Struct) string {
	f := s.GetFields()
	return fmt.Sprintf("%s %s score=%d piece=%q",
		f["phase"].GetStringValue(),
		f["display_time"].GetStringValue(),
		int64(f["score"].GetNumberValue()),
		f["current_piece"].GetStringValue(),
	)
}
