package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Publisher delivers clock events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event *ClockEvent) error
}

// LogPublisher only logs events. Used when no message bus is configured.
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Publish implements Publisher
func (p *LogPublisher) Publish(ctx context.Context, event *ClockEvent) error {
	log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("code", event.ClockCode).
		RawJSON("data", event.Data).
		Msg("clock event")
	return nil
}
