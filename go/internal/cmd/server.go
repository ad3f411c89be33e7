package main

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/turnclock/go/internal/api/clock/v1/clockv1connect"
	"github.com/mcdev12/turnclock/go/internal/config"
	"github.com/mcdev12/turnclock/go/internal/metrics"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: setupHandler(cfg, services),
	}
}

func setupHandler(cfg *config.Config, services *Services) http.Handler {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
		},
		AllowedOrigins: cfg.CORSOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location"},
	})

	// Register services
	registerServices(mux, services)

	// Add health check and metrics endpoints
	setupHealthCheck(mux)
	mux.Handle("GET /metrics", metrics.Handler(services.Registry))

	// Wrap with CORS, then serve HTTP/2 without TLS for Connect clients
	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Register clock service
	clockServicePath, clockServiceHandler := clockv1connect.NewClockServiceHandler(services.Clock)
	mux.Handle(clockServicePath, clockServiceHandler)

	// Register REST and websocket routes
	services.HTTP.RegisterRoutes(mux)
	services.WebSocket.RegisterRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
