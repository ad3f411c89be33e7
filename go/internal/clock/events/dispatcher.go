package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher decouples request handlers from the message bus. Publish only enqueues;
// Run delivers queued events in order to the wrapped publisher.
type Dispatcher struct {
	publisher Publisher
	queue     chan *ClockEvent
	timeout   time.Duration
	onResult  func(ok bool)
}

// NewDispatcher creates a dispatcher with a queue of the given size. onResult may be nil.
func NewDispatcher(publisher Publisher, queueSize int, timeout time.Duration, onResult func(ok bool)) *Dispatcher {
	if onResult == nil {
		onResult = func(bool) {}
	}
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan *ClockEvent, queueSize),
		timeout:   timeout,
		onResult:  onResult,
	}
}

// Publish implements Publisher. Events are dropped when the queue is full.
func (d *Dispatcher) Publish(ctx context.Context, event *ClockEvent) error {
	select {
	case d.queue <- event:
	default:
		log.Warn().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("event queue full, dropping event")
		d.onResult(false)
	}
	return nil
}

// Run delivers events until ctx is cancelled, then flushes what is already queued.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info().Msg("event dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.drain()
			log.Info().Msg("event dispatcher stopped")
			return
		case event := <-d.queue:
			d.deliver(context.Background(), event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(parent context.Context, event *ClockEvent) {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("code", event.ClockCode).
			Msg("failed to publish event")
		d.onResult(false)
		return
	}
	d.onResult(true)
}
