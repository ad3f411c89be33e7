// Package clockv1connect wires the turnclock.v1.ClockService messages to connect-go.
package clockv1connect

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
)

// ClockServiceName is the fully-qualified name of the ClockService service.
const ClockServiceName = "turnclock.v1.ClockService"

// Procedure paths for each ClockService RPC.
const (
	ClockServiceCreateClockProcedure  = "/turnclock.v1.ClockService/CreateClock"
	ClockServiceGetClockProcedure     = "/turnclock.v1.ClockService/GetClock"
	ClockServiceHitClockProcedure     = "/turnclock.v1.ClockService/HitClock"
	ClockServiceRenamePlayerProcedure = "/turnclock.v1.ClockService/RenamePlayer"
	ClockServiceGetDefaultsProcedure  = "/turnclock.v1.ClockService/GetDefaults"
)

// JSONCodec marshals plain Go structs with encoding/json. It is registered under the "json"
// name, replacing connect's protobuf JSON codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// ClockServiceClient is a client for the turnclock.v1.ClockService service.
type ClockServiceClient interface {
	CreateClock(context.Context, *connect.Request[clockv1.CreateClockRequest]) (*connect.Response[clockv1.CreateClockResponse], error)
	GetClock(context.Context, *connect.Request[clockv1.GetClockRequest]) (*connect.Response[clockv1.GetClockResponse], error)
	HitClock(context.Context, *connect.Request[clockv1.HitClockRequest]) (*connect.Response[clockv1.HitClockResponse], error)
	RenamePlayer(context.Context, *connect.Request[clockv1.RenamePlayerRequest]) (*connect.Response[clockv1.RenamePlayerResponse], error)
	GetDefaults(context.Context, *connect.Request[clockv1.GetDefaultsRequest]) (*connect.Response[clockv1.GetDefaultsResponse], error)
}

// NewClockServiceClient constructs a client for the turnclock.v1.ClockService service.
// baseURL is the server root, for example http://localhost:8080.
func NewClockServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ClockServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &clockServiceClient{
		createClock: connect.NewClient[clockv1.CreateClockRequest, clockv1.CreateClockResponse](
			httpClient, baseURL+ClockServiceCreateClockProcedure, opts...),
		getClock: connect.NewClient[clockv1.GetClockRequest, clockv1.GetClockResponse](
			httpClient, baseURL+ClockServiceGetClockProcedure, opts...),
		hitClock: connect.NewClient[clockv1.HitClockRequest, clockv1.HitClockResponse](
			httpClient, baseURL+ClockServiceHitClockProcedure, opts...),
		renamePlayer: connect.NewClient[clockv1.RenamePlayerRequest, clockv1.RenamePlayerResponse](
			httpClient, baseURL+ClockServiceRenamePlayerProcedure, opts...),
		getDefaults: connect.NewClient[clockv1.GetDefaultsRequest, clockv1.GetDefaultsResponse](
			httpClient, baseURL+ClockServiceGetDefaultsProcedure, opts...),
	}
}

type clockServiceClient struct {
	createClock  *connect.Client[clockv1.CreateClockRequest, clockv1.CreateClockResponse]
	getClock     *connect.Client[clockv1.GetClockRequest, clockv1.GetClockResponse]
	hitClock     *connect.Client[clockv1.HitClockRequest, clockv1.HitClockResponse]
	renamePlayer *connect.Client[clockv1.RenamePlayerRequest, clockv1.RenamePlayerResponse]
	getDefaults  *connect.Client[clockv1.GetDefaultsRequest, clockv1.GetDefaultsResponse]
}

func (c *clockServiceClient) CreateClock(ctx context.Context, req *connect.Request[clockv1.CreateClockRequest]) (*connect.Response[clockv1.CreateClockResponse], error) {
	return c.createClock.CallUnary(ctx, req)
}

func (c *clockServiceClient) GetClock(ctx context.Context, req *connect.Request[clockv1.GetClockRequest]) (*connect.Response[clockv1.GetClockResponse], error) {
	return c.getClock.CallUnary(ctx, req)
}

func (c *clockServiceClient) HitClock(ctx context.Context, req *connect.Request[clockv1.HitClockRequest]) (*connect.Response[clockv1.HitClockResponse], error) {
	return c.hitClock.CallUnary(ctx, req)
}

func (c *clockServiceClient) RenamePlayer(ctx context.Context, req *connect.Request[clockv1.RenamePlayerRequest]) (*connect.Response[clockv1.RenamePlayerResponse], error) {
	return c.renamePlayer.CallUnary(ctx, req)
}

func (c *clockServiceClient) GetDefaults(ctx context.Context, req *connect.Request[clockv1.GetDefaultsRequest]) (*connect.Response[clockv1.GetDefaultsResponse], error) {
	return c.getDefaults.CallUnary(ctx, req)
}

// ClockServiceHandler is an implementation of the turnclock.v1.ClockService service.
type ClockServiceHandler interface {
	CreateClock(context.Context, *connect.Request[clockv1.CreateClockRequest]) (*connect.Response[clockv1.CreateClockResponse], error)
	GetClock(context.Context, *connect.Request[clockv1.GetClockRequest]) (*connect.Response[clockv1.GetClockResponse], error)
	HitClock(context.Context, *connect.Request[clockv1.HitClockRequest]) (*connect.Response[clockv1.HitClockResponse], error)
	RenamePlayer(context.Context, *connect.Request[clockv1.RenamePlayerRequest]) (*connect.Response[clockv1.RenamePlayerResponse], error)
	GetDefaults(context.Context, *connect.Request[clockv1.GetDefaultsRequest]) (*connect.Response[clockv1.GetDefaultsResponse], error)
}

// NewClockServiceHandler builds an HTTP handler from the service implementation. It returns
// the path on which to mount the handler and the handler itself.
func NewClockServiceHandler(svc ClockServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	createClock := connect.NewUnaryHandler(ClockServiceCreateClockProcedure, svc.CreateClock, opts...)
	getClock := connect.NewUnaryHandler(ClockServiceGetClockProcedure, svc.GetClock, opts...)
	hitClock := connect.NewUnaryHandler(ClockServiceHitClockProcedure, svc.HitClock, opts...)
	renamePlayer := connect.NewUnaryHandler(ClockServiceRenamePlayerProcedure, svc.RenamePlayer, opts...)
	getDefaults := connect.NewUnaryHandler(ClockServiceGetDefaultsProcedure, svc.GetDefaults, opts...)

	return "/" + ClockServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ClockServiceCreateClockProcedure:
			createClock.ServeHTTP(w, r)
		case ClockServiceGetClockProcedure:
			getClock.ServeHTTP(w, r)
		case ClockServiceHitClockProcedure:
			hitClock.ServeHTTP(w, r)
		case ClockServiceRenamePlayerProcedure:
			renamePlayer.ServeHTTP(w, r)
		case ClockServiceGetDefaultsProcedure:
			getDefaults.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
