package models

import (
	"fmt"
	"time"
)

// ClockState defines the lifecycle state of a clock.
type ClockState string

const (
	ClockStateNotStarted ClockState = "NOT_STARTED"
	ClockStateRunning    ClockState = "RUNNING"
	ClockStateFinished   ClockState = "FINISHED"
)

// Clock represents one shared turn clock.
type Clock struct {
	ID            int        `json:"id"`
	RemainingMs   []int64    `json:"remaining_ms"`
	PlayerNames   []string   `json:"player_names"`
	CurrentPlayer int        `json:"current_player"`
	State         ClockState `json:"state"`
	TurnStartedAt time.Time  `json:"turn_started_at"` // only meaningful while RUNNING
	CreatedAt     time.Time  `json:"created_at"`
	Revision      uint64     `json:"revision"` // bumped on every committed mutation
}

// NewClock builds a NOT_STARTED clock where every player gets the same allotment.
func NewClock(id, playerCount int, allotmentMs int64, createdAt time.Time) *Clock {
	remaining := make([]int64, playerCount)
	names := make([]string, playerCount)
	for i := range remaining {
		remaining[i] = allotmentMs
		names[i] = DefaultPlayerName(i)
	}

	return &Clock{
		ID:          id,
		RemainingMs: remaining,
		PlayerNames: names,
		State:       ClockStateNotStarted,
		CreatedAt:   createdAt,
	}
}

// DefaultPlayerName returns the generated name for the player at index.
func DefaultPlayerName(index int) string {
	return fmt.Sprintf("Player %d", index+1)
}

// PlayerCount returns the number of players sharing the clock.
func (c *Clock) PlayerCount() int {
	return len(c.RemainingMs)
}
