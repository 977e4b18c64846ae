// Package app assembles the web server: configuration, logging, the
// parsing pipeline, the websocket hub, and the chi router, with graceful
// shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dshap474/tabular/internal/config"
	"github.com/dshap474/tabular/internal/infrastructure"
	"github.com/dshap474/tabular/internal/ingest"
	custommw "github.com/dshap474/tabular/internal/middleware"
	transporthttp "github.com/dshap474/tabular/internal/transport/http"
	"github.com/dshap474/tabular/internal/websocket"
)

// Application owns the long-lived server components.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	hub    *websocket.Hub
	server *http.Server
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := websocket.NewHub(logger)
	orchestrator := ingest.NewOrchestrator(cfg.Ingest, logger, ingest.NewMetrics(registry))

	router := buildRouter(cfg, logger, orchestrator, hub, registry)

	app := &Application{
		cfg:    cfg,
		logger: logger,
		hub:    hub,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
	return app, nil
}

func buildRouter(cfg *config.Config, logger *slog.Logger, orchestrator *ingest.Orchestrator, hub *websocket.Hub, registry *prometheus.Registry) chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	limiter := custommw.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Mount("/health", transporthttp.NewHealthHandler().Routes())
		r.Mount("/ingest", transporthttp.NewIngestHandler(orchestrator, hub, logger).Routes())
	})

	r.Get("/ws", hub.ServeWS)
	r.Handle("/metrics", transporthttp.MetricsHandler(registry))

	return r
}

// Run starts the hub and the HTTP server, blocking until SIGINT or
// SIGTERM, then shuts both down within the configured timeout.
func (a *Application) Run() error {
	go a.hub.Run()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.hub.Shutdown()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
