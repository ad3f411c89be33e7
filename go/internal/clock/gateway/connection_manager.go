// Package gateway pushes live clock snapshots to websocket viewers.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/clock"
)

// SnapshotSource is what the gateway reads clocks from
type SnapshotSource interface {
	Get(code string) (clock.Snapshot, error)
}

// ViewerRecorder receives viewer and push metrics
type ViewerRecorder interface {
	ViewerConnected()
	ViewerDisconnected()
	SnapshotPushed()
}

// ConnectionConfig holds configuration for viewer connections
type ConnectionConfig struct {
	PushInterval    time.Duration
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default viewer configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		PushInterval:    500 * time.Millisecond,
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// MessageTypeSnapshot is the type of every pushed message
const MessageTypeSnapshot = "snapshot"

// SnapshotMessage is the JSON frame pushed to viewers
type SnapshotMessage struct {
	Type       string         `json:"type"`
	ServerTime time.Time      `json:"server_time"`
	Data       clock.Snapshot `json:"data"`
}

// Stats summarizes live viewers
type Stats struct {
	TotalViewers  int `json:"total_viewers"`
	WatchedClocks int `json:"watched_clocks"`
}

// ConnectionManager tracks viewers and runs one push loop per viewer
type ConnectionManager struct {
	// Viewers grouped by clock code
	viewers map[string]map[*Viewer]bool
	mu      sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	source   SnapshotSource
	recorder ViewerRecorder
	clock    clockwork.Clock

	// Parent of every viewer context; cancelled on shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// Viewer is one websocket connection watching one clock
type Viewer struct {
	ID          string
	Code        string
	Conn        *websocket.Conn
	ConnectedAt time.Time
}

// NewConnectionManager creates a new viewer connection manager
func NewConnectionManager(config ConnectionConfig, source SnapshotSource, recorder ViewerRecorder, clk clockwork.Clock) *ConnectionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ConnectionManager{
		viewers: make(map[string]map[*Viewer]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:   config,
		source:   source,
		recorder: recorder,
		clock:    clk,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start blocks until ctx is done, then tears down every viewer
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	<-ctx.Done()
	log.Info().Int("viewers", cm.GetStats().TotalViewers).Msg("connection manager shutting down")
	cm.cancel()
}

// Serve upgrades the request and streams code to the viewer until it disconnects, the clock
// disappears, or the manager shuts down. The code must already have been validated.
func (cm *ConnectionManager) Serve(w http.ResponseWriter, r *http.Request, code string) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	viewer := &Viewer{
		ID:          uuid.New().String(),
		Code:        code,
		Conn:        conn,
		ConnectedAt: cm.clock.Now(),
	}

	cm.registerViewer(viewer)
	defer func() {
		cm.unregisterViewer(viewer)
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(cm.ctx)
	defer cancel()

	go cm.readPump(ctx, cancel, viewer)
	cm.pushLoop(ctx, viewer)
	return nil
}

// GetStats returns statistics about live viewers
func (cm *ConnectionManager) GetStats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := Stats{WatchedClocks: len(cm.viewers)}
	for _, viewers := range cm.viewers {
		stats.TotalViewers += len(viewers)
	}
	return stats
}

// registerViewer adds a viewer to the manager
func (cm *ConnectionManager) registerViewer(v *Viewer) {
	cm.mu.Lock()
	if cm.viewers[v.Code] == nil {
		cm.viewers[v.Code] = make(map[*Viewer]bool)
	}
	cm.viewers[v.Code][v] = true
	watching := len(cm.viewers[v.Code])
	cm.mu.Unlock()

	cm.recorder.ViewerConnected()
	log.Info().
		Str("viewer_id", v.ID).
		Str("code", v.Code).
		Int("clock_viewers", watching).
		Msg("viewer connected")
}

// unregisterViewer removes a viewer from the manager
func (cm *ConnectionManager) unregisterViewer(v *Viewer) {
	cm.mu.Lock()
	viewers, exists := cm.viewers[v.Code]
	if exists {
		delete(viewers, v)
		if len(viewers) == 0 {
			delete(cm.viewers, v.Code)
		}
	}
	cm.mu.Unlock()

	if !exists {
		return
	}
	cm.recorder.ViewerDisconnected()
	log.Info().
		Str("viewer_id", v.ID).
		Str("code", v.Code).
		Dur("connected_for", cm.clock.Since(v.ConnectedAt)).
		Msg("viewer disconnected")
}

// pushLoop is the only writer on the connection. It pushes one snapshot straight away and
// then one per PushInterval, interleaved with pings.
func (cm *ConnectionManager) pushLoop(ctx context.Context, v *Viewer) {
	push := cm.clock.NewTicker(cm.config.PushInterval)
	defer push.Stop()
	ping := cm.clock.NewTicker(cm.config.PingInterval)
	defer ping.Stop()

	if !cm.pushSnapshot(v) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			if cm.ctx.Err() != nil {
				cm.writeClose(v, websocket.CloseGoingAway, "server shutting down")
			}
			return

		case <-push.Chan():
			if !cm.pushSnapshot(v) {
				return
			}

		case <-ping.Chan():
			v.Conn.SetWriteDeadline(cm.clock.Now().Add(cm.config.WriteTimeout))
			if err := v.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("viewer_id", v.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// pushSnapshot writes the current snapshot and reports whether the loop should continue.
func (cm *ConnectionManager) pushSnapshot(v *Viewer) bool {
	snap, err := cm.source.Get(v.Code)
	if err != nil {
		if errors.Is(err, clock.ErrNotFound) || errors.Is(err, clock.ErrInvalidCode) {
			cm.writeClose(v, websocket.CloseNormalClosure, "clock not found")
			return false
		}
		log.Error().Err(err).Str("code", v.Code).Msg("failed to read clock for viewer")
		cm.writeClose(v, websocket.CloseInternalServerErr, "internal error")
		return false
	}

	data, err := EncodeSnapshotMessage(snap, cm.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("code", v.Code).Msg("failed to marshal snapshot message")
		return false
	}

	v.Conn.SetWriteDeadline(cm.clock.Now().Add(cm.config.WriteTimeout))
	if err := v.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debug().Err(err).Str("viewer_id", v.ID).Msg("failed to push snapshot")
		return false
	}
	cm.recorder.SnapshotPushed()
	return true
}

func (cm *ConnectionManager) writeClose(v *Viewer, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	deadline := cm.clock.Now().Add(cm.config.WriteTimeout)
	if err := v.Conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Debug().Err(err).Str("viewer_id", v.ID).Msg("failed to write close frame")
	}
}

// readPump consumes client frames so control frames are processed, and cancels the viewer
// context when the client goes away.
func (cm *ConnectionManager) readPump(ctx context.Context, cancel context.CancelFunc, v *Viewer) {
	defer cancel()

	v.Conn.SetReadLimit(cm.config.MaxMessageSize)
	v.Conn.SetReadDeadline(cm.clock.Now().Add(cm.config.ReadTimeout))
	v.Conn.SetPongHandler(func(string) error {
		v.Conn.SetReadDeadline(cm.clock.Now().Add(cm.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := v.Conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("viewer_id", v.ID).Msg("unexpected websocket close")
			}
			return
		}

		log.Debug().
			Str("viewer_id", v.ID).
			Int("bytes", len(message)).
			Msg("ignoring client message")
		v.Conn.SetReadDeadline(cm.clock.Now().Add(cm.config.ReadTimeout))
	}
}

// EncodeSnapshotMessage builds the frame pushed to viewers.
func EncodeSnapshotMessage(snap clock.Snapshot, serverTime time.Time) ([]byte, error) {
	return json.Marshal(SnapshotMessage{
		Type:       MessageTypeSnapshot,
		ServerTime: serverTime.UTC(),
		Data:       snap,
	})
}
