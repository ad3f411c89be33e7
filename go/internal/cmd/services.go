package main

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/clock"
	"github.com/mcdev12/turnclock/go/internal/clock/codec"
	"github.com/mcdev12/turnclock/go/internal/clock/events"
	"github.com/mcdev12/turnclock/go/internal/clock/gateway"
	"github.com/mcdev12/turnclock/go/internal/config"
	"github.com/mcdev12/turnclock/go/internal/metrics"
)

const (
	eventQueueSize      = 1024
	eventPublishTimeout = 5 * time.Second
)

type Services struct {
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Store      *clock.Store
	Publisher  events.Publisher
	Dispatcher *events.Dispatcher
	Clock      *clock.Service
	HTTP       *clock.HTTPHandler
	Gateway    *gateway.ConnectionManager
	WebSocket  *gateway.WebSocketHandler
}

// Close releases the event publisher's connection, if it holds one
func (s *Services) Close() error {
	if c, ok := s.Publisher.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func setupServices(cfg *config.Config, clk clockwork.Clock) (*Services, error) {
	// Wire up dependency injection chain
	// Codec → Store → App → Service / HTTP handler / Gateway

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	c, err := codec.New(codecOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create clock codec: %w", err)
	}
	store := clock.NewStore(c, clk)
	m.RegisterStore(store)

	publisher, err := setupPublisher(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher := events.NewDispatcher(publisher, eventQueueSize, eventPublishTimeout, m.EventPublished)

	app := clock.NewApp(store, dispatcher, m, clk, clockSettings(cfg))

	manager := gateway.NewConnectionManager(connectionConfig(cfg), store, m, clk)

	return &Services{
		Registry:   registry,
		Metrics:    m,
		Store:      store,
		Publisher:  publisher,
		Dispatcher: dispatcher,
		Clock:      clock.NewService(app),
		HTTP:       clock.NewHTTPHandler(app),
		Gateway:    manager,
		WebSocket:  gateway.NewWebSocketHandler(manager),
	}, nil
}

func setupPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.NATS.URL == "" {
		log.Info().Msg("NATS_URL not set, clock events go to the log")
		return events.NewLogPublisher(), nil
	}

	publisher, err := events.NewJetStreamPublisher(jetStreamConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
	}
	log.Info().
		Str("url", cfg.NATS.URL).
		Str("stream", cfg.NATS.Stream).
		Msg("publishing clock events to JetStream")
	return publisher, nil
}
