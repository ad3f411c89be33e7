package clock

// CreateClockRequest represents a request to create a new clock
type CreateClockRequest struct {
	PlayerCount    int `json:"player_count"`
	AllowedSeconds int `json:"allowed_seconds"`
}

// CreateClockResponse carries the new clock's code and initial state
type CreateClockResponse struct {
	Code  string   `json:"code"`
	Clock Snapshot `json:"clock"`
}

// RenamePlayerRequest renames one player of a clock
type RenamePlayerRequest struct {
	Code        string `json:"code"`
	PlayerIndex int    `json:"player_index"`
	Name        string `json:"name"`
}

// DefaultsResponse holds the suggested settings and the accepted limits
type DefaultsResponse struct {
	PlayerCount       int `json:"player_count"`
	AllowedSeconds    int `json:"allowed_seconds"`
	MaxPlayers        int `json:"max_players"`
	MaxAllowedSeconds int `json:"max_allowed_seconds"`
}
