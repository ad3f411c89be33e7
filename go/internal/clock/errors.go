package clock

import (
	"errors"

	"github.com/mcdev12/turnclock/go/internal/clock/codec"
)

var (
	// ErrNotFound is returned when a code decodes to a slot that holds no clock
	ErrNotFound = errors.New("clock not found")

	// ErrInvalidCode is returned when a code is rejected by the codec
	ErrInvalidCode = codec.ErrInvalidCode

	// ErrOutOfRange is returned when a player index is outside the clock's players
	ErrOutOfRange = errors.New("player index out of range")

	// ErrInvalidArgument is returned when a request fails validation
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNonMonotonicClock is the reason logged when the wall clock moved backward and the
	// elapsed time was clamped to zero. It is never returned to callers.
	ErrNonMonotonicClock = errors.New("system time moved backward")
)
