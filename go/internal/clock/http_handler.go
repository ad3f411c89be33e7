package clock

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds request bodies on the REST endpoints.
const maxBodyBytes = 64 << 10

// HTTPHandler serves the REST flavour of the clock API
type HTTPHandler struct {
	app ClockApp
}

// NewHTTPHandler creates a new REST handler
func NewHTTPHandler(app ClockApp) *HTTPHandler {
	return &HTTPHandler{app: app}
}

// RegisterRoutes registers the REST routes on mux
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clocks/defaults", h.HandleDefaults)
	mux.HandleFunc("POST /api/clocks", h.HandleCreate)
	mux.HandleFunc("GET /api/clocks/{code}", h.HandleGet)
	mux.HandleFunc("POST /api/clocks/{code}/hit", h.HandleHit)
	mux.HandleFunc("PUT /api/clocks/{code}/players/{index}", h.HandleRename)
}

// HandleDefaults handles GET /api/clocks/defaults
func (h *HTTPHandler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Defaults())
}

// HandleCreate handles POST /api/clocks with a JSON or form-encoded body
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := h.decodeCreateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.app.CreateClock(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Location", "/api/clocks/"+url.PathEscape(resp.Code))
	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/clocks/{code}
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.GetClock(r.Context(), r.PathValue("code"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleHit handles POST /api/clocks/{code}/hit
func (h *HTTPHandler) HandleHit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.HitClock(r.Context(), r.PathValue("code"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRename handles PUT /api/clocks/{code}/players/{index}
func (h *HTTPHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "player index must be an integer")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snap, err := h.app.RenamePlayer(r.Context(), RenamePlayerRequest{
		Code:        r.PathValue("code"),
		PlayerIndex: index,
		Name:        body.Name,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// decodeCreateRequest reads a create request from JSON or from form fields. Empty form
// fields fall back to the defaults, as the form is prefilled with them.
func (h *HTTPHandler) decodeCreateRequest(r *http.Request) (CreateClockRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return CreateClockRequest{}, errors.New("invalid form body")
		}
		defaults := h.app.Defaults()
		playerCount, err := formInt(r.PostForm, "player_count", defaults.PlayerCount)
		if err != nil {
			return CreateClockRequest{}, err
		}
		allowedSeconds, err := formInt(r.PostForm, "allowed_seconds", defaults.AllowedSeconds)
		if err != nil {
			return CreateClockRequest{}, err
		}
		return CreateClockRequest{PlayerCount: playerCount, AllowedSeconds: allowedSeconds}, nil

	default:
		var req CreateClockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return CreateClockRequest{}, errors.New("invalid JSON body")
		}
		return req, nil
	}
}

func formInt(form url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// errorResponse is the body of every REST error
type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps a domain error onto an HTTP status code
func StatusFor(err error) int {
	switch ErrorKind(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidCode, KindInvalidArgument, KindOutOfRange:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeAppError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
