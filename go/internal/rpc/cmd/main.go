package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Zxce3/tt-console/go/internal/rpc"
	"github.com/alecthomas/kong"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	version = "dev"
	cli     struct {
		Server  string        `help:"Session server URL" default:"http://localhost:8080" env:"SESSION_SERVER_URL"`
		Timeout time.Duration `help:"Request timeout" default:"10s"`
		Version kong.VersionFlag

		Status  StatusCmd  `cmd:"" default:"1" help:"Show the session status"`
		Reset   ResetCmd   `cmd:"" help:"Start a fresh session"`
		Pause   PauseCmd   `cmd:"" help:"Pause or resume the session"`
		Score   ScoreCmd   `cmd:"" help:"Set the score"`
		Piece   PieceCmd   `cmd:"" help:"Set the current piece label"`
		Started StartedCmd `cmd:"" help:"Set the started flag"`
		Over    OverCmd    `cmd:"" help:"End the session"`
	}
)

type StatusCmd struct{}

func (StatusCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.GetStatus(ctx))
}

type ResetCmd struct{}

func (ResetCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.Reset(ctx))
}

type PauseCmd struct{}

func (PauseCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.TogglePause(ctx))
}

type ScoreCmd struct {
	Value int64 `arg:"" help:"New score"`
}

func (s ScoreCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.UpdateScore(ctx, s.Value))
}

type PieceCmd struct {
	Label string `arg:"" help:"Piece label"`
}

func (p PieceCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.UpdatePiece(ctx, p.Label))
}

type StartedCmd struct {
	Value bool `arg:"" help:"true or false"`
}

func (s StartedCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.SetStarted(ctx, s.Value))
}

type OverCmd struct{}

func (OverCmd) Run(ctx context.Context, c *rpc.Client) error {
	return show(c.SetGameOver(ctx))
}

func show(status *structpb.Struct, err error) error {
	if err != nil {
		return fmt.Errorf("session call failed: %w", err)
	}
	fmt.Println(rpc.FormatStatus(status))
	return nil
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("ttctl"),
		kong.Description("Drive a tt-console session server."),
		kong.Vars{"version": version},
	)

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	client := rpc.NewClient(&http.Client{Timeout: cli.Timeout}, cli.Server)
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(client)
	kctx.FatalIfErrorf(err)
}
