package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/Zxce3/tt-console/go/internal/session"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "ttconsole.session.v1.SessionService"

const (
	ResetProcedure       = "/" + ServiceName + "/Reset"
	TogglePauseProcedure = "/" + ServiceName + "/TogglePause"
	UpdateScoreProcedure = "/" + ServiceName + "/UpdateScore"
	UpdatePieceProcedure = "/" + ServiceName + "/UpdatePiece"
	SetStartedProcedure  = "/" + ServiceName + "/SetStarted"
	SetGameOverProcedure = "/" + ServiceName + "/SetGameOver"
	GetStatusProcedure   = "/" + ServiceName + "/GetStatus"
)

// Service exposes the session store mutations as unary RPCs.
// Every call answers with the resulting status.
type Service struct {
	store *session.Store
}

// NewService creates a new session RPC service
func NewService(store *session.Store) *Service {
	return &Service{
		store: store,
	}
}

// Reset starts a fresh session
func (s *Service) Reset(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	s.store.Reset()
	return s.status()
}

// TogglePause pauses or resumes the session
func (s *Service) TogglePause(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	s.store.TogglePause()
	return s.status()
}

// UpdateScore overwrites the score
func (s *Service) UpdateScore(ctx context.Context, req *connect.Request[wrapperspb.Int64Value]) (*connect.Response[structpb.Struct], error) {
	score := req.Msg.GetValue()
	if score < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrNegativeScore)
	}
	s.store.UpdateScore(int(score))
	return s.status()
}

// UpdatePiece overwrites the current piece label
func (s *Service) UpdatePiece(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	s.store.UpdatePiece(req.Msg.GetValue())
	return s.status()
}

// SetStarted overwrites the started flag
func (s *Service) SetStarted(ctx context.Context, req *connect.Request[wrapperspb.BoolValue]) (*connect.Response[structpb.Struct], error) {
	s.store.SetStarted(req.Msg.GetValue())
	return s.status()
}

// SetGameOver ends the session
func (s *Service) SetGameOver(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	s.store.SetGameOver()
	return s.status()
}

// GetStatus returns the current status without changing anything
func (s *Service) GetStatus(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return s.status()
}

func (s *Service) status() (*connect.Response[structpb.Struct], error) {
	msg, err := StatusToProto(s.store.Snapshot())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// StatusToProto converts a snapshot into the status struct sent to clients
func StatusToProto(st session.SessionState) (*structpb.Struct, error) {
	status := session.StatusOf(st)
	return structpb.NewStruct(map[string]any{
		"session_id":    st.ID,
		"phase":         string(st.Phase()),
		"is_active":     status.IsActive,
		"is_paused":     status.IsPaused,
		"started":       status.Started,
		"over":          status.Over,
		"score":         status.Score,
		"current_piece": status.CurrentPiece,
		"display_time":  session.DisplayTime(st),
		"elapsed":       st.Time.Current,
	})
}

// NewHandler builds an HTTP handler that serves every procedure of the service.
// It returns the path prefix the handler should be mounted on.
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, svc.Reset, opts...))
	mux.Handle(TogglePauseProcedure, connect.NewUnaryHandler(TogglePauseProcedure, svc.TogglePause, opts...))
	mux.Handle(UpdateScoreProcedure, connect.NewUnaryHandler(UpdateScoreProcedure, svc.UpdateScore, opts...))
	mux.Handle(UpdatePieceProcedure, connect.NewUnaryHandler(UpdatePieceProcedure, svc.UpdatePiece, opts...))
	mux.Handle(SetStartedProcedure, connect.NewUnaryHandler(SetStartedProcedure, svc.SetStarted, opts...))
	mux.Handle(SetGameOverProcedure, connect.NewUnaryHandler(SetGameOverProcedure, svc.SetGameOver, opts...))
	mux.Handle(GetStatusProcedure, connect.NewUnaryHandler(GetStatusProcedure, svc.GetStatus, opts...))
	return "/" + ServiceName + "/", mux
}
