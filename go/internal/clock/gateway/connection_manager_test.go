package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/turnclock/go/internal/clock"
	"github.com/mcdev12/turnclock/go/internal/clock/codec"
	"github.com/mcdev12/turnclock/go/internal/models"
)

type countingRecorder struct {
	viewers   atomic.Int64
	connected atomic.Int64
	pushes    atomic.Int64
}

func (r *countingRecorder) ViewerConnected()    { r.viewers.Add(1); r.connected.Add(1) }
func (r *countingRecorder) ViewerDisconnected() { r.viewers.Add(-1) }
func (r *countingRecorder) SnapshotPushed()     { r.pushes.Add(1) }

// vanishingSource reports every clock as missing once gone is set.
type vanishingSource struct {
	SnapshotSource
	gone atomic.Bool
}

func (s *vanishingSource) Get(code string) (clock.Snapshot, error) {
	if s.gone.Load() {
		return clock.Snapshot{}, fmt.Errorf("code %q: %w", code, clock.ErrNotFound)
	}
	return s.SnapshotSource.Get(code)
}

type gatewayFixture struct {
	store    *clock.Store
	manager  *ConnectionManager
	recorder *countingRecorder
	server   *httptest.Server
	cancel   context.CancelFunc
}

func newGatewayFixture(t *testing.T, wrap func(SnapshotSource) SnapshotSource, opts ...func(*ConnectionConfig)) *gatewayFixture {
	t.Helper()

	store := clock.NewStore(codec.DecimalCodec{}, clockwork.NewRealClock())
	var source SnapshotSource = store
	if wrap != nil {
		source = wrap(store)
	}

	config := DefaultConnectionConfig()
	config.PushInterval = 20 * time.Millisecond
	config.WriteTimeout = time.Second
	config.ReadTimeout = 5 * time.Second
	for _, opt := range opts {
		opt(&config)
	}

	recorder := &countingRecorder{}
	manager := NewConnectionManager(config, source, recorder, clockwork.NewRealClock())

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(manager).RegisterRoutes(mux)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return &gatewayFixture{store: store, manager: manager, recorder: recorder, server: server, cancel: cancel}
}

func (f *gatewayFixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + path
}

func (f *gatewayFixture) dial(t *testing.T, code string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/clocks/"+code), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) SnapshotMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg SnapshotMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// readUntilClose drains snapshot frames and returns the close error.
func readUntilClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		return closeErr
	}
}

func TestConnectionManager_PushesSnapshots(t *testing.T) {
	f := newGatewayFixture(t, nil)
	code, err := f.store.Create(2, 60)
	require.NoError(t, err)

	conn := f.dial(t, code)

	first := readSnapshot(t, conn)
	assert.Equal(t, MessageTypeSnapshot, first.Type)
	assert.Equal(t, code, first.Data.Code)
	assert.Equal(t, models.ClockStateNotStarted, first.Data.State)
	assert.False(t, first.ServerTime.IsZero())

	_, err = f.store.Hit(code)
	require.NoError(t, err)

	msg := readSnapshot(t, conn)
	for deadline := time.Now().Add(2 * time.Second); !msg.Data.Started && time.Now().Before(deadline); {
		msg = readSnapshot(t, conn)
	}
	assert.True(t, msg.Data.Started)
	assert.GreaterOrEqual(t, f.recorder.pushes.Load(), int64(2))
}

func TestConnectionManager_RunningClockDecays(t *testing.T) {
	f := newGatewayFixture(t, nil)
	code, err := f.store.Create(1, 60)
	require.NoError(t, err)
	_, err = f.store.Hit(code)
	require.NoError(t, err)

	conn := f.dial(t, code)
	first := readSnapshot(t, conn)

	later := readSnapshot(t, conn)
	for deadline := time.Now().Add(2 * time.Second); later.Data.RemainingMs[0] >= first.Data.RemainingMs[0] && time.Now().Before(deadline); {
		later = readSnapshot(t, conn)
	}
	assert.Less(t, later.Data.RemainingMs[0], first.Data.RemainingMs[0])
	assert.True(t, later.ServerTime.After(first.ServerTime))
}

func TestConnectionManager_RejectsBeforeUpgrade(t *testing.T) {
	f := newGatewayFixture(t, nil)

	tests := []struct {
		name   string
		code   string
		status int
	}{
		{name: "missing clock", code: "7", status: http.StatusNotFound},
		{name: "invalid code", code: "007", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/clocks/"+tt.code), nil)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestConnectionManager_ClosesWhenClockDisappears(t *testing.T) {
	var source *vanishingSource
	f := newGatewayFixture(t, func(s SnapshotSource) SnapshotSource {
		source = &vanishingSource{SnapshotSource: s}
		return source
	})
	code, err := f.store.Create(2, 60)
	require.NoError(t, err)

	conn := f.dial(t, code)
	readSnapshot(t, conn)
	source.gone.Store(true)

	closeErr := readUntilClose(t, conn)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "clock not found", closeErr.Text)
}

func TestConnectionManager_ShutdownClosesViewers(t *testing.T) {
	f := newGatewayFixture(t, nil)
	code, err := f.store.Create(2, 60)
	require.NoError(t, err)

	conn := f.dial(t, code)
	readSnapshot(t, conn)

	f.cancel()

	closeErr := readUntilClose(t, conn)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
}

func TestConnectionManager_DropsStalledViewer(t *testing.T) {
	f := newGatewayFixture(t, nil, func(c *ConnectionConfig) {
		c.PushInterval = time.Millisecond
		c.WriteTimeout = 50 * time.Millisecond
		c.WriteBufferSize = 256
	})
	// Large frames fill the socket buffers within a few pushes.
	code, err := f.store.Create(5000, 60)
	require.NoError(t, err)

	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := (&net.Dialer{}).DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if tcp, ok := conn.(*net.TCPConn); ok {
				tcp.SetReadBuffer(4096)
			}
			return conn, nil
		},
	}
	conn, _, err := dialer.Dial(f.wsURL("/ws/clocks/"+code), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// The client never reads, so a write eventually misses its deadline.
	require.Eventually(t, func() bool {
		return f.recorder.connected.Load() == 1 &&
			f.recorder.viewers.Load() == 0 &&
			f.manager.GetStats().TotalViewers == 0
	}, 10*time.Second, 10*time.Millisecond)
	assert.Positive(t, f.recorder.pushes.Load())
}

func TestConnectionManager_Stats(t *testing.T) {
	f := newGatewayFixture(t, nil)
	a, err := f.store.Create(2, 60)
	require.NoError(t, err)
	b, err := f.store.Create(3, 60)
	require.NoError(t, err)

	c1 := f.dial(t, a)
	f.dial(t, a)
	f.dial(t, b)

	require.Eventually(t, func() bool {
		return f.manager.GetStats() == Stats{TotalViewers: 3, WatchedClocks: 2} && f.recorder.viewers.Load() == 3
	}, 2*time.Second, 5*time.Millisecond)

	resp, err := http.Get(f.server.URL + "/ws/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, Stats{TotalViewers: 3, WatchedClocks: 2}, stats)

	c1.Close()
	require.Eventually(t, func() bool {
		return f.manager.GetStats() == Stats{TotalViewers: 2, WatchedClocks: 2} && f.recorder.viewers.Load() == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEncodeSnapshotMessage(t *testing.T) {
	snap := clock.Snapshot{
		Code:          "Uk3xq9",
		State:         models.ClockStateRunning,
		Started:       true,
		RemainingMs:   []int64{95500, 120000},
		PlayerNames:   []string{"Ann", "Player 2"},
		CurrentPlayer: 1,
	}
	serverTime := time.Date(2024, 3, 1, 12, 30, 0, 250_000_000, time.FixedZone("CET", 3600))

	data, err := EncodeSnapshotMessage(snap, serverTime)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "snapshot_message", data)
}
