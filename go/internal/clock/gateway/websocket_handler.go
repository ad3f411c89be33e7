package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/clock"
)

// WebSocketHandler handles viewer websocket requests
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	source            SnapshotSource
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		source:            cm.source,
	}
}

// HandleClockStream handles GET /ws/clocks/{code}
func (h *WebSocketHandler) HandleClockStream(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	// Reject unknown codes with a plain HTTP status before upgrading
	if _, err := h.source.Get(code); err != nil {
		status := clock.StatusFor(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if err := h.connectionManager.Serve(w, r, code); err != nil {
		// The upgrader has already replied to the client
		log.Warn().Err(err).Str("code", code).Msg("websocket upgrade failed")
	}
}

// HandleStats handles GET /ws/stats
func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode viewer stats")
	}
}

// RegisterRoutes registers websocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/clocks/{code}", h.HandleClockStream)
	mux.HandleFunc("GET /ws/stats", h.HandleStats)
}
