package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/turnclock/go/internal/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClock(players int, allowed time.Duration) *models.Clock {
	return models.NewClock(0, players, allowed.Milliseconds(), t0)
}

func TestNewClock_Shape(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17} {
		c := newTestClock(n, 90*time.Second)

		assert.Equal(t, n, c.PlayerCount())
		assert.Len(t, c.PlayerNames, n)
		assert.Equal(t, models.ClockStateNotStarted, c.State)
		assert.Equal(t, 0, c.CurrentPlayer)
		for i, ms := range c.RemainingMs {
			assert.Equal(t, int64(90000), ms)
			assert.Equal(t, models.DefaultPlayerName(i), c.PlayerNames[i])
		}
	}
}

func TestAdvanceTurn_FirstHitStarts(t *testing.T) {
	c := newTestClock(3, time.Minute)

	clamped := AdvanceTurn(c, t0.Add(5*time.Second))

	assert.False(t, clamped)
	assert.Equal(t, models.ClockStateRunning, c.State)
	assert.Equal(t, t0.Add(5*time.Second), c.TurnStartedAt)
	assert.Equal(t, 0, c.CurrentPlayer)
	assert.Equal(t, []int64{60000, 60000, 60000}, c.RemainingMs)
}

func TestAdvanceTurn_DebitsAndAdvances(t *testing.T) {
	c := newTestClock(3, time.Minute)
	AdvanceTurn(c, t0)

	AdvanceTurn(c, t0.Add(12345*time.Millisecond))
	assert.Equal(t, []int64{47655, 60000, 60000}, c.RemainingMs)
	assert.Equal(t, 1, c.CurrentPlayer)

	AdvanceTurn(c, t0.Add(20*time.Second))
	assert.Equal(t, []int64{47655, 52345, 60000}, c.RemainingMs)
	assert.Equal(t, 2, c.CurrentPlayer)

	AdvanceTurn(c, t0.Add(21*time.Second))
	assert.Equal(t, []int64{47655, 52345, 59000}, c.RemainingMs)
	assert.Equal(t, 0, c.CurrentPlayer, "turn wraps back to the first player")
	assert.Equal(t, models.ClockStateRunning, c.State)
	assert.Equal(t, t0.Add(21*time.Second), c.TurnStartedAt)
}

func TestAdvanceTurn_TruncatesToMilliseconds(t *testing.T) {
	c := newTestClock(2, time.Second)
	AdvanceTurn(c, t0)

	AdvanceTurn(c, t0.Add(1500*time.Microsecond))

	assert.Equal(t, int64(999), c.RemainingMs[0])
}

func TestAdvanceTurn_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
	}{
		{name: "exactly out of time", elapsed: 10 * time.Second},
		{name: "over time", elapsed: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClock(2, 10*time.Second)
			AdvanceTurn(c, t0)

			AdvanceTurn(c, t0.Add(tt.elapsed))

			assert.Equal(t, models.ClockStateFinished, c.State)
			assert.Equal(t, []int64{0, 10000}, c.RemainingMs)
			assert.Equal(t, 0, c.CurrentPlayer, "no advance after expiry")
		})
	}
}

func TestAdvanceTurn_FinishedIsNoOp(t *testing.T) {
	c := newTestClock(2, time.Second)
	AdvanceTurn(c, t0)
	AdvanceTurn(c, t0.Add(2*time.Second))
	require.Equal(t, models.ClockStateFinished, c.State)

	before := *c
	before.RemainingMs = append([]int64(nil), c.RemainingMs...)

	clamped := AdvanceTurn(c, t0.Add(time.Hour))

	assert.False(t, clamped)
	assert.Equal(t, before.State, c.State)
	assert.Equal(t, before.RemainingMs, c.RemainingMs)
	assert.Equal(t, before.CurrentPlayer, c.CurrentPlayer)
	assert.Equal(t, before.TurnStartedAt, c.TurnStartedAt)
}

func TestAdvanceTurn_BackwardTimeIsClamped(t *testing.T) {
	c := newTestClock(2, time.Minute)
	AdvanceTurn(c, t0)

	clamped := AdvanceTurn(c, t0.Add(-3*time.Second))

	assert.True(t, clamped)
	assert.Equal(t, []int64{60000, 60000}, c.RemainingMs, "nothing charged")
	assert.Equal(t, 1, c.CurrentPlayer)
	assert.Equal(t, models.ClockStateRunning, c.State)
}

func TestAdvanceTurn_SinglePlayer(t *testing.T) {
	c := newTestClock(1, time.Minute)
	AdvanceTurn(c, t0)

	AdvanceTurn(c, t0.Add(time.Second))

	assert.Equal(t, 0, c.CurrentPlayer)
	assert.Equal(t, []int64{59000}, c.RemainingMs)
}

func TestRenamePlayer(t *testing.T) {
	c := newTestClock(3, time.Minute)

	require.NoError(t, RenamePlayer(c, 1, "Bob"))
	assert.Equal(t, []string{"Player 1", "Bob", "Player 3"}, c.PlayerNames)

	for _, index := range []int{-1, 3, 100} {
		err := RenamePlayer(c, index, "Mallory")
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
	assert.Equal(t, []string{"Player 1", "Bob", "Player 3"}, c.PlayerNames)
}

func TestRenamePlayer_AnyState(t *testing.T) {
	c := newTestClock(2, time.Second)
	AdvanceTurn(c, t0)
	AdvanceTurn(c, t0.Add(time.Minute))
	require.Equal(t, models.ClockStateFinished, c.State)

	require.NoError(t, RenamePlayer(c, 0, "Alice"))
	assert.Equal(t, "Alice", c.PlayerNames[0])
	assert.Equal(t, []int64{0, 1000}, c.RemainingMs)
}
