package events

import "time"

// ClockCreatedPayload is the payload for a ClockCreated event
type ClockCreatedPayload struct {
	PlayerCount    int       `json:"player_count"`
	AllowedSeconds int       `json:"allowed_seconds"`
	CreatedAt      time.Time `json:"created_at"`
}

// ClockStartedPayload is the payload for a ClockStarted event
type ClockStartedPayload struct {
	StartedAt     time.Time `json:"started_at"`
	CurrentPlayer int       `json:"current_player"`
}

// TurnAdvancedPayload is the payload for a TurnAdvanced event
type TurnAdvancedPayload struct {
	PreviousPlayer int       `json:"previous_player"`
	CurrentPlayer  int       `json:"current_player"`
	ChargedMs      int64     `json:"charged_ms"`
	RemainingMs    []int64   `json:"remaining_ms"`
	AdvancedAt     time.Time `json:"advanced_at"`
}

// ClockFinishedPayload is the payload for a ClockFinished event
type ClockFinishedPayload struct {
	ExpiredPlayer int       `json:"expired_player"`
	RemainingMs   []int64   `json:"remaining_ms"`
	FinishedAt    time.Time `json:"finished_at"`
}

// PlayerRenamedPayload is the payload for a PlayerRenamed event
type PlayerRenamedPayload struct {
	PlayerIndex int    `json:"player_index"`
	Name        string `json:"name"`
}
