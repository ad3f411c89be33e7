package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
	"github.com/mcdev12/turnclock/go/internal/api/clock/v1/clockv1connect"
	"github.com/mcdev12/turnclock/go/internal/clock"
	"github.com/mcdev12/turnclock/go/internal/clock/codec"
	"github.com/mcdev12/turnclock/go/internal/clock/events"
	"github.com/mcdev12/turnclock/go/internal/clock/gateway"
)

type nopRecorder struct{}

func (nopRecorder) ClockCreated()                       {}
func (nopRecorder) Hit(string)                          {}
func (nopRecorder) Renamed()                            {}
func (nopRecorder) RequestError(operation, kind string) {}
func (nopRecorder) ViewerConnected()                    {}
func (nopRecorder) ViewerDisconnected()                 {}
func (nopRecorder) SnapshotPushed()                     {}

func newTestServer(t *testing.T) (string, *clockwork.FakeClock) {
	t.Helper()

	fc := clockwork.NewFakeClock()
	store := clock.NewStore(codec.DecimalCodec{}, fc)
	app := clock.NewApp(store, events.NewLogPublisher(), nopRecorder{}, fc, clock.DefaultSettings())
	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), store, nopRecorder{}, fc)

	mux := http.NewServeMux()
	mux.Handle(clockv1connect.NewClockServiceHandler(clock.NewService(app)))
	gateway.NewWebSocketHandler(manager).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return server.URL, fc
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := run(t, "http://localhost:1", "--format", "yaml", "defaults")
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestCreateCommand(t *testing.T) {
	server, _ := newTestServer(t)

	out, err := run(t, server, "create", "--players", "3", "--seconds", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "0  NOT_STARTED")
	assert.Contains(t, out, "Player 3")
	assert.Contains(t, out, "0:01:30")

	out, err = run(t, server, "--format", "json", "create")
	require.NoError(t, err)

	var resp clockv1.CreateClockResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "1", resp.Code)
	assert.Equal(t, []int64{120000, 120000}, resp.Clock.RemainingMs)
}

func TestHitGetRename(t *testing.T) {
	server, fc := newTestServer(t)

	_, err := run(t, server, "create", "--players", "2", "--seconds", "60")
	require.NoError(t, err)

	out, err := run(t, server, "hit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "> 0  Player 1")

	fc.Advance(15 * time.Second)

	out, err = run(t, server, "hit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "0:00:45")
	assert.Contains(t, out, "> 1  Player 2")

	out, err = run(t, server, "rename", "0", "1", "Grace")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace")

	out, err = run(t, server, "--format", "json", "get", "0")
	require.NoError(t, err)
	var c clockv1.Clock
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, []string{"Player 1", "Grace"}, c.PlayerNames)
	assert.Equal(t, int32(1), c.CurrentPlayer)
}

func TestCommandErrors(t *testing.T) {
	server, _ := newTestServer(t)

	_, err := run(t, server, "get", "42")
	assert.ErrorContains(t, err, "not_found")

	_, err = run(t, server, "rename", "0", "first", "Ann")
	assert.ErrorContains(t, err, "invalid player index")

	_, err = run(t, server, "hit")
	assert.Error(t, err)
}

func TestWatchCommand(t *testing.T) {
	server, _ := newTestServer(t)

	_, err := run(t, server, "create", "--players", "2", "--seconds", "5")
	require.NoError(t, err)

	out, err := run(t, server, "watch", "0", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "0 NOT_STARTED Player 1 0:00:05  Player 2 0:00:05")

	_, err = run(t, server, "watch", "9", "--count", "1")
	assert.ErrorContains(t, err, "404")
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		server  string
		want    string
		wantErr bool
	}{
		{server: "http://localhost:8080", want: "ws://localhost:8080/ws/clocks/abc"},
		{server: "https://clocks.example/", want: "wss://clocks.example/ws/clocks/abc"},
		{server: "https://clocks.example/base", want: "wss://clocks.example/base/ws/clocks/abc"},
		{server: "ftp://clocks.example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			got, err := streamURL(tt.server, "abc")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
