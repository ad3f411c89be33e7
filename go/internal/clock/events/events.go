package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClockEvent is the envelope for every clock event
type ClockEvent struct {
	ID        string          `json:"id"`         // Event UUID
	ClockCode string          `json:"clock_code"` // Public clock code
	Type      EventType       `json:"type"`       // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Sequence  uint64          `json:"sequence"`   // Clock revision the event was committed at
	Data      json.RawMessage `json:"data"`       // Event-specific payload
}

// EventType represents the type of clock event
type EventType string

const (
	EventTypeClockCreated  EventType = "ClockCreated"
	EventTypeClockStarted  EventType = "ClockStarted"
	EventTypeTurnAdvanced  EventType = "TurnAdvanced"
	EventTypeClockFinished EventType = "ClockFinished"
	EventTypePlayerRenamed EventType = "PlayerRenamed"
)

// NewEvent wraps payload in an envelope stamped with a fresh ID.
func NewEvent(code string, eventType EventType, at time.Time, payload interface{}) (*ClockEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &ClockEvent{
		ID:        uuid.New().String(),
		ClockCode: code,
		Type:      eventType,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// ParsePayload decodes the event data into the payload struct for its type
func ParsePayload(event *ClockEvent) (interface{}, error) {
	var target interface{}
	switch event.Type {
	case EventTypeClockCreated:
		target = &ClockCreatedPayload{}
	case EventTypeClockStarted:
		target = &ClockStartedPayload{}
	case EventTypeTurnAdvanced:
		target = &TurnAdvancedPayload{}
	case EventTypeClockFinished:
		target = &ClockFinishedPayload{}
	case EventTypePlayerRenamed:
		target = &PlayerRenamedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	if err := json.Unmarshal(event.Data, target); err != nil {
		return nil, err
	}
	return target, nil
}
