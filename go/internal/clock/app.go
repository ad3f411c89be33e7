package clock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/clock/events"
	"github.com/mcdev12/turnclock/go/internal/metrics"
	"github.com/mcdev12/turnclock/go/internal/models"
)

// ClockStore defines what the app layer needs from the clock store
type ClockStore interface {
	Create(playerCount, allowedSeconds int) (string, error)
	Get(code string) (Snapshot, error)
	Hit(code string) (Turn, error)
	Rename(code string, index int, name string) (Snapshot, error)
}

// Recorder defines what the app layer records into metrics
type Recorder interface {
	ClockCreated()
	Hit(outcome string)
	Renamed()
	RequestError(operation, kind string)
}

// Settings holds the creation defaults and limits
type Settings struct {
	DefaultPlayerCount    int
	DefaultAllowedSeconds int
	MaxPlayers            int
	MaxAllowedSeconds     int
	MaxNameLength         int
}

// DefaultSettings mirrors the new-clock form defaults: two players, two minutes each.
func DefaultSettings() Settings {
	return Settings{
		DefaultPlayerCount:    2,
		DefaultAllowedSeconds: 120,
		MaxPlayers:            64,
		MaxAllowedSeconds:     24 * 60 * 60,
		MaxNameLength:         64,
	}
}

// App handles clock business logic around the store
type App struct {
	store     ClockStore
	publisher events.Publisher
	metrics   Recorder
	clock     clockwork.Clock
	settings  Settings
}

// NewApp creates a new clock App
func NewApp(store ClockStore, publisher events.Publisher, recorder Recorder, clk clockwork.Clock, settings Settings) *App {
	return &App{
		store:     store,
		publisher: publisher,
		metrics:   recorder,
		clock:     clk,
		settings:  settings,
	}
}

// Defaults returns the suggested settings for a new clock
func (a *App) Defaults() DefaultsResponse {
	return DefaultsResponse{
		PlayerCount:       a.settings.DefaultPlayerCount,
		AllowedSeconds:    a.settings.DefaultAllowedSeconds,
		MaxPlayers:        a.settings.MaxPlayers,
		MaxAllowedSeconds: a.settings.MaxAllowedSeconds,
	}
}

// CreateClock validates the request and creates a new clock
func (a *App) CreateClock(ctx context.Context, req CreateClockRequest) (*CreateClockResponse, error) {
	if err := a.validateCreateClockRequest(req); err != nil {
		return nil, a.fail("create", fmt.Errorf("validation failed: %w", err))
	}

	code, err := a.store.Create(req.PlayerCount, req.AllowedSeconds)
	if err != nil {
		return nil, a.fail("create", fmt.Errorf("failed to create clock: %w", err))
	}

	snap, err := a.store.Get(code)
	if err != nil {
		return nil, a.fail("create", fmt.Errorf("failed to read new clock: %w", err))
	}

	a.metrics.ClockCreated()
	log.Info().
		Str("code", code).
		Int("player_count", req.PlayerCount).
		Int("allowed_seconds", req.AllowedSeconds).
		Msg("clock created")

	a.publish(ctx, code, snap.Revision, events.EventTypeClockCreated, events.ClockCreatedPayload{
		PlayerCount:    req.PlayerCount,
		AllowedSeconds: req.AllowedSeconds,
		CreatedAt:      a.clock.Now().UTC(),
	})

	return &CreateClockResponse{Code: code, Clock: snap}, nil
}

// GetClock returns the clock with the running player's time projected to now
func (a *App) GetClock(ctx context.Context, code string) (Snapshot, error) {
	snap, err := a.store.Get(code)
	if err != nil {
		return Snapshot{}, a.fail("get", fmt.Errorf("failed to get clock: %w", err))
	}
	return snap, nil
}

// HitClock ends the current player's turn
func (a *App) HitClock(ctx context.Context, code string) (Snapshot, error) {
	turn, err := a.store.Hit(code)
	if err != nil {
		return Snapshot{}, a.fail("hit", fmt.Errorf("failed to hit clock: %w", err))
	}

	snap := turn.Snapshot
	now := a.clock.Now().UTC()

	switch {
	case turn.PreviousState == models.ClockStateFinished:
		a.metrics.Hit(metrics.OutcomeNoop)
		log.Debug().Str("code", code).Msg("hit on finished clock ignored")

	case turn.PreviousState == models.ClockStateNotStarted:
		a.metrics.Hit(metrics.OutcomeStarted)
		log.Info().Str("code", code).Msg("clock started")
		a.publish(ctx, code, snap.Revision, events.EventTypeClockStarted, events.ClockStartedPayload{
			StartedAt:     now,
			CurrentPlayer: snap.CurrentPlayer,
		})

	case snap.Finished:
		a.metrics.Hit(metrics.OutcomeFinished)
		log.Info().
			Str("code", code).
			Int("expired_player", turn.PreviousPlayer).
			Msg("clock finished")
		a.publish(ctx, code, snap.Revision, events.EventTypeClockFinished, events.ClockFinishedPayload{
			ExpiredPlayer: turn.PreviousPlayer,
			RemainingMs:   snap.RemainingMs,
			FinishedAt:    now,
		})

	default:
		a.metrics.Hit(metrics.OutcomeAdvanced)
		log.Debug().
			Str("code", code).
			Int("previous_player", turn.PreviousPlayer).
			Int("current_player", snap.CurrentPlayer).
			Int64("charged_ms", turn.ChargedMs).
			Msg("turn advanced")
		a.publish(ctx, code, snap.Revision, events.EventTypeTurnAdvanced, events.TurnAdvancedPayload{
			PreviousPlayer: turn.PreviousPlayer,
			CurrentPlayer:  snap.CurrentPlayer,
			ChargedMs:      turn.ChargedMs,
			RemainingMs:    snap.RemainingMs,
			AdvancedAt:     now,
		})
	}

	return snap, nil
}

// RenamePlayer validates the new name and renames one player
func (a *App) RenamePlayer(ctx context.Context, req RenamePlayerRequest) (Snapshot, error) {
	name, err := a.normalizeName(req.Name)
	if err != nil {
		return Snapshot{}, a.fail("rename", fmt.Errorf("validation failed: %w", err))
	}

	snap, err := a.store.Rename(req.Code, req.PlayerIndex, name)
	if err != nil {
		return Snapshot{}, a.fail("rename", fmt.Errorf("failed to rename player: %w", err))
	}

	a.metrics.Renamed()
	log.Info().
		Str("code", req.Code).
		Int("player_index", req.PlayerIndex).
		Str("name", name).
		Msg("player renamed")

	a.publish(ctx, req.Code, snap.Revision, events.EventTypePlayerRenamed, events.PlayerRenamedPayload{
		PlayerIndex: req.PlayerIndex,
		Name:        name,
	})

	return snap, nil
}

// Validation methods

// validateCreateClockRequest validates create clock request
func (a *App) validateCreateClockRequest(req CreateClockRequest) error {
	if req.PlayerCount < 1 || req.PlayerCount > a.settings.MaxPlayers {
		return fmt.Errorf("player_count must be between 1 and %d, got %d: %w",
			a.settings.MaxPlayers, req.PlayerCount, ErrInvalidArgument)
	}
	if req.AllowedSeconds < 1 || req.AllowedSeconds > a.settings.MaxAllowedSeconds {
		return fmt.Errorf("allowed_seconds must be between 1 and %d, got %d: %w",
			a.settings.MaxAllowedSeconds, req.AllowedSeconds, ErrInvalidArgument)
	}
	return nil
}

// normalizeName trims the name and enforces the length limit
func (a *App) normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name is required: %w", ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(name); n > a.settings.MaxNameLength {
		return "", fmt.Errorf("name must be at most %d characters, got %d: %w",
			a.settings.MaxNameLength, n, ErrInvalidArgument)
	}
	return name, nil
}

// fail records the error kind and hands the error back
func (a *App) fail(operation string, err error) error {
	kind := ErrorKind(err)
	a.metrics.RequestError(operation, kind)
	if kind == KindInternal {
		log.Error().Err(err).Str("operation", operation).Msg("clock operation failed")
	}
	return err
}

// publish emits an event; failures are logged and never fail the operation.
// Events are published after the clock lock is released, so consumers order
// one clock's events by Sequence rather than by arrival.
func (a *App) publish(ctx context.Context, code string, seq uint64, eventType events.EventType, payload interface{}) {
	event, err := events.NewEvent(code, eventType, a.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to build clock event")
		return
	}
	event.Sequence = seq
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("code", code).
			Str("event_type", string(eventType)).
			Msg("failed to publish clock event")
	}
}

// Error kinds reported in metrics and logs
const (
	KindNotFound        = "not_found"
	KindInvalidCode     = "invalid_code"
	KindOutOfRange      = "out_of_range"
	KindInvalidArgument = "invalid_argument"
	KindInternal        = "internal"
)

// ErrorKind classifies err into one of the Kind constants
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCode):
		return KindInvalidCode
	case errors.Is(err, ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}
