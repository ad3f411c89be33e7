package clock

import (
	"context"

	"connectrpc.com/connect"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
	"github.com/mcdev12/turnclock/go/internal/api/clock/v1/clockv1connect"
)

// ClockApp defines what the service layer needs from the clock application
type ClockApp interface {
	Defaults() DefaultsResponse
	CreateClock(ctx context.Context, req CreateClockRequest) (*CreateClockResponse, error)
	GetClock(ctx context.Context, code string) (Snapshot, error)
	HitClock(ctx context.Context, code string) (Snapshot, error)
	RenamePlayer(ctx context.Context, req RenamePlayerRequest) (Snapshot, error)
}

// Service implements the ClockService Connect interface
type Service struct {
	app ClockApp
}

// NewService creates a new clock Connect service
func NewService(app ClockApp) *Service {
	return &Service{app: app}
}

// Verify that Service implements the ClockServiceHandler interface
var _ clockv1connect.ClockServiceHandler = (*Service)(nil)

// CreateClock creates a new clock
func (s *Service) CreateClock(ctx context.Context, req *connect.Request[clockv1.CreateClockRequest]) (*connect.Response[clockv1.CreateClockResponse], error) {
	resp, err := s.app.CreateClock(ctx, CreateClockRequest{
		PlayerCount:    int(req.Msg.PlayerCount),
		AllowedSeconds: int(req.Msg.AllowedSeconds),
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&clockv1.CreateClockResponse{
		Code:  resp.Code,
		Clock: snapshotToProto(resp.Clock),
	}), nil
}

// GetClock returns a clock projected to the current time
func (s *Service) GetClock(ctx context.Context, req *connect.Request[clockv1.GetClockRequest]) (*connect.Response[clockv1.GetClockResponse], error) {
	snap, err := s.app.GetClock(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&clockv1.GetClockResponse{
		Clock: snapshotToProto(snap),
	}), nil
}

// HitClock ends the current player's turn
func (s *Service) HitClock(ctx context.Context, req *connect.Request[clockv1.HitClockRequest]) (*connect.Response[clockv1.HitClockResponse], error) {
	snap, err := s.app.HitClock(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&clockv1.HitClockResponse{
		Clock: snapshotToProto(snap),
	}), nil
}

// RenamePlayer renames one player of a clock
func (s *Service) RenamePlayer(ctx context.Context, req *connect.Request[clockv1.RenamePlayerRequest]) (*connect.Response[clockv1.RenamePlayerResponse], error) {
	snap, err := s.app.RenamePlayer(ctx, RenamePlayerRequest{
		Code:        req.Msg.Code,
		PlayerIndex: int(req.Msg.PlayerIndex),
		Name:        req.Msg.Name,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&clockv1.RenamePlayerResponse{
		Clock: snapshotToProto(snap),
	}), nil
}

// GetDefaults returns the suggested settings for a new clock
func (s *Service) GetDefaults(ctx context.Context, req *connect.Request[clockv1.GetDefaultsRequest]) (*connect.Response[clockv1.GetDefaultsResponse], error) {
	d := s.app.Defaults()
	return connect.NewResponse(&clockv1.GetDefaultsResponse{
		PlayerCount:       int32(d.PlayerCount),
		AllowedSeconds:    int32(d.AllowedSeconds),
		MaxPlayers:        int32(d.MaxPlayers),
		MaxAllowedSeconds: int32(d.MaxAllowedSeconds),
	}), nil
}

// Conversion helpers

func snapshotToProto(s Snapshot) *clockv1.Clock {
	return &clockv1.Clock{
		Code:          s.Code,
		State:         clockv1.ClockState(s.State),
		Started:       s.Started,
		Finished:      s.Finished,
		RemainingMs:   s.RemainingMs,
		PlayerNames:   s.PlayerNames,
		CurrentPlayer: int32(s.CurrentPlayer),
	}
}

// toConnectError maps domain errors onto Connect codes
func toConnectError(err error) error {
	switch ErrorKind(err) {
	case KindInvalidCode, KindInvalidArgument:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case KindOutOfRange:
		return connect.NewError(connect.CodeOutOfRange, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
