package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/turnclock/go/internal/config"
	"github.com/mcdev12/turnclock/go/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer logFile.Close()

	services, err := setupServices(cfg, clockwork.NewRealClock())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}
	defer services.Close()

	server := setupServer(cfg, services)

	// Contexts for graceful shutdown: streams stop before the server, events drain after it
	streamCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	eventCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		services.Dispatcher.Run(eventCtx)
	}()
	go func() {
		defer wg.Done()
		services.Gateway.Start(streamCtx)
	}()

	// Start HTTP server
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("codec", cfg.Codec.Kind).
			Msg("turnclock server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Hijacked websocket connections are not tracked by Shutdown
	stopStreams()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	stopEvents()
	wg.Wait()
	log.Info().Int("clocks", services.Store.Len()).Msg("turnclock server shutdown complete")
}
