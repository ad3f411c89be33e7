package clock

import (
	"time"

	"github.com/mcdev12/turnclock/go/internal/models"
)

// Snapshot is a read-only view of a clock.
type Snapshot struct {
	Code          string            `json:"code"`
	State         models.ClockState `json:"state"`
	Started       bool              `json:"started"`
	Finished      bool              `json:"finished"`
	RemainingMs   []int64           `json:"remaining_ms"`
	PlayerNames   []string          `json:"player_names"`
	CurrentPlayer int               `json:"current_player"`
	Revision      uint64            `json:"-"`
}

// Project returns the clock as it would look at now, with the running player's time
// decayed, without touching the stored clock. A running clock whose current player has
// run out projects as finished.
func Project(code string, c *models.Clock, now time.Time) Snapshot {
	s := snapshotOf(code, c)
	if c.State != models.ClockStateRunning {
		return s
	}

	elapsed, _ := elapsedMs(c.TurnStartedAt, now)
	cur := c.CurrentPlayer
	if elapsed < s.RemainingMs[cur] {
		s.RemainingMs[cur] -= elapsed
	} else {
		s.RemainingMs[cur] = 0
		s.State = models.ClockStateFinished
		s.Finished = true
	}
	return s
}

// snapshotOf copies the stored state without projecting.
func snapshotOf(code string, c *models.Clock) Snapshot {
	remaining := make([]int64, len(c.RemainingMs))
	copy(remaining, c.RemainingMs)
	names := make([]string, len(c.PlayerNames))
	copy(names, c.PlayerNames)

	return Snapshot{
		Code:          code,
		State:         c.State,
		Started:       c.State != models.ClockStateNotStarted,
		Finished:      c.State == models.ClockStateFinished,
		RemainingMs:   remaining,
		PlayerNames:   names,
		CurrentPlayer: c.CurrentPlayer,
		Revision:      c.Revision,
	}
}
