// Package app initializes and orchestrates the main components of the
// review service: configuration, storage, the review pipeline, and the
// HTTP gateway.
package app

import (
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/server"
)

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.logger.Info("starting review warden",
		"server_port", a.cfg.Server.Port,
		"llm_provider", a.cfg.AI.LLMProvider,
		"max_workers", a.cfg.Jobs.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts the application down in order: the HTTP server first so no new
// webhooks arrive, then the dispatcher so in-flight reviews can drain. The
// database pool is closed by the cleanup function returned from wiring.
func (a *App) Stop() error {
	a.logger.Info("shutting down review warden")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("review warden stopped")
	return nil
}
