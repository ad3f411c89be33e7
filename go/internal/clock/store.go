package clock

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/clock/codec"
	"github.com/mcdev12/turnclock/go/internal/models"
)

// Store owns every clock and is the only place clocks are mutated.
//
// Clocks live in an append-only slice of cells addressed by slot index. The store lock only
// guards appends and index lookups; each cell carries its own lock which is held for the
// whole read or mutation of that clock, including reading the time. Cells are never removed,
// so a located cell stays valid after the store lock is released.
type Store struct {
	mu    sync.RWMutex
	cells []*cell

	codec  codec.Codec
	clock  clockwork.Clock
	clamps atomic.Uint64
}

type cell struct {
	mu    sync.Mutex
	code  string
	clock *models.Clock
}

// MaxAllowedSeconds is the largest per-player allotment whose millisecond value fits in an int64.
const MaxAllowedSeconds = math.MaxInt64 / 1000

// Turn describes the outcome of a hit.
type Turn struct {
	Snapshot       Snapshot
	PreviousState  models.ClockState
	PreviousPlayer int
	ChargedMs      int64
}

// NewStore creates an empty store. Production code passes clockwork.NewRealClock().
func NewStore(c codec.Codec, clk clockwork.Clock) *Store {
	return &Store{
		codec: c,
		clock: clk,
	}
}

// Create adds a NOT_STARTED clock and returns its public code.
func (s *Store) Create(playerCount, allowedSeconds int) (string, error) {
	if playerCount < 1 {
		return "", fmt.Errorf("player count must be at least 1, got %d: %w", playerCount, ErrInvalidArgument)
	}
	if allowedSeconds < 1 || int64(allowedSeconds) > MaxAllowedSeconds {
		return "", fmt.Errorf("allowed seconds must be between 1 and %d, got %d: %w",
			int64(MaxAllowedSeconds), allowedSeconds, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := len(s.cells)
	code, err := s.codec.Encode(index)
	if err != nil {
		return "", fmt.Errorf("failed to encode clock code: %w", err)
	}

	s.cells = append(s.cells, &cell{
		code:  code,
		clock: models.NewClock(index, playerCount, int64(allowedSeconds)*1000, s.clock.Now()),
	})
	return code, nil
}

// Get returns the clock projected to the current time. Stored state is not modified.
func (s *Store) Get(code string) (Snapshot, error) {
	c, err := s.locate(code)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return Project(c.code, c.clock, s.clock.Now()), nil
}

// Hit advances the clock's turn and returns the resulting stored state. Every hit that
// changes state bumps the clock's revision, so Turn.Snapshot.Revision orders hits on one clock.
func (s *Store) Hit(code string) (Turn, error) {
	c, err := s.locate(code)
	if err != nil {
		return Turn{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	turn := Turn{
		PreviousState:  c.clock.State,
		PreviousPlayer: c.clock.CurrentPlayer,
	}
	before := c.clock.RemainingMs[turn.PreviousPlayer]

	if AdvanceTurn(c.clock, s.clock.Now()) {
		s.clamps.Add(1)
		log.Warn().
			Err(ErrNonMonotonicClock).
			Str("code", c.code).
			Time("turn_started_at", c.clock.TurnStartedAt).
			Msg("elapsed time clamped to zero")
	}

	if turn.PreviousState != models.ClockStateFinished {
		c.clock.Revision++
	}

	turn.ChargedMs = before - c.clock.RemainingMs[turn.PreviousPlayer]
	turn.Snapshot = snapshotOf(c.code, c.clock)
	return turn, nil
}

// Rename replaces one player's name and returns the resulting stored state.
func (s *Store) Rename(code string, index int, name string) (Snapshot, error) {
	c, err := s.locate(code)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := RenamePlayer(c.clock, index, name); err != nil {
		return Snapshot{}, err
	}
	c.clock.Revision++
	return snapshotOf(c.code, c.clock), nil
}

// Len returns the number of clocks ever created.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Clamps returns how many hits observed the wall clock moving backward.
func (s *Store) Clamps() uint64 {
	return s.clamps.Load()
}

// locate decodes code and returns its cell.
func (s *Store) locate(code string) (*cell, error) {
	index, err := s.codec.Decode(code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, fmt.Errorf("code %q: %w", code, err)
		}
		return nil, fmt.Errorf("code %q: %v: %w", code, err, ErrInvalidCode)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.cells) {
		return nil, fmt.Errorf("code %q: %w", code, ErrNotFound)
	}
	return s.cells[index], nil
}
