package clock

import (
	"fmt"
	"time"

	"github.com/mcdev12/turnclock/go/internal/models"
)

// AdvanceTurn ends the current player's turn at now.
//
// The first call starts the clock without charging anyone. While running, the time since
// the turn started is debited from the current player and the turn passes to the next
// player; if that time meets or exceeds what the player had left, their time is zeroed and
// the clock finishes instead. A finished clock is left untouched.
//
// The returned flag reports whether now was earlier than the turn start and the elapsed
// time had to be clamped to zero.
func AdvanceTurn(c *models.Clock, now time.Time) (clamped bool) {
	switch c.State {
	case models.ClockStateNotStarted:
		c.State = models.ClockStateRunning
		c.TurnStartedAt = now
		return false

	case models.ClockStateRunning:
		elapsed, clamped := elapsedMs(c.TurnStartedAt, now)
		cur := c.CurrentPlayer
		if elapsed < c.RemainingMs[cur] {
			c.RemainingMs[cur] -= elapsed
			c.CurrentPlayer = (cur + 1) % c.PlayerCount()
			c.TurnStartedAt = now
		} else {
			c.RemainingMs[cur] = 0
			c.State = models.ClockStateFinished
		}
		return clamped

	default:
		return false
	}
}

// RenamePlayer replaces the name of the player at index. Valid in every state.
func RenamePlayer(c *models.Clock, index int, name string) error {
	if index < 0 || index >= c.PlayerCount() {
		return fmt.Errorf("index %d with %d players: %w", index, c.PlayerCount(), ErrOutOfRange)
	}
	c.PlayerNames[index] = name
	return nil
}

// elapsedMs returns whole milliseconds between start and now, never negative.
func elapsedMs(start, now time.Time) (ms int64, clamped bool) {
	d := now.Sub(start)
	if d < 0 {
		return 0, true
	}
	return d.Milliseconds(), false
}
