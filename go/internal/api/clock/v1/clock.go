// Package clockv1 holds the messages of the turnclock.v1 API.
//
// Messages travel as JSON over Connect; field names follow the snake_case JSON mapping so
// browser clients, curl and the Connect client all see the same shape.
package clockv1

// ClockState is the lifecycle state of a clock on the wire.
type ClockState string

const (
	ClockStateNotStarted ClockState = "NOT_STARTED"
	ClockStateRunning    ClockState = "RUNNING"
	ClockStateFinished   ClockState = "FINISHED"
)

// Clock is a point-in-time view of one clock.
type Clock struct {
	Code          string     `json:"code"`
	State         ClockState `json:"state"`
	Started       bool       `json:"started"`
	Finished      bool       `json:"finished"`
	RemainingMs   []int64    `json:"remaining_ms"`
	PlayerNames   []string   `json:"player_names"`
	CurrentPlayer int32      `json:"current_player"`
}

type CreateClockRequest struct {
	PlayerCount    int32 `json:"player_count"`
	AllowedSeconds int32 `json:"allowed_seconds"`
}

type CreateClockResponse struct {
	Code  string `json:"code"`
	Clock *Clock `json:"clock"`
}

type GetClockRequest struct {
	Code string `json:"code"`
}

type GetClockResponse struct {
	Clock *Clock `json:"clock"`
}

type HitClockRequest struct {
	Code string `json:"code"`
}

type HitClockResponse struct {
	Clock *Clock `json:"clock"`
}

type RenamePlayerRequest struct {
	Code        string `json:"code"`
	PlayerIndex int32  `json:"player_index"`
	Name        string `json:"name"`
}

type RenamePlayerResponse struct {
	Clock *Clock `json:"clock"`
}

type GetDefaultsRequest struct{}

type GetDefaultsResponse struct {
	PlayerCount       int32 `json:"player_count"`
	AllowedSeconds    int32 `json:"allowed_seconds"`
	MaxPlayers        int32 `json:"max_players"`
	MaxAllowedSeconds int32 `json:"max_allowed_seconds"`
}
