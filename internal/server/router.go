package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/server/handler"
	"github.com/sevigo/review-warden/internal/storage"
)

// NewRouter creates and configures the HTTP router with middleware and API routes.
func NewRouter(
	cfg *config.Config,
	dispatcher core.JobDispatcher,
	store storage.Store,
	clients github.ClientFactory,
	extractor extract.Extractor,
	publisher github.CommentPublisher,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		webhookHandler := handler.NewWebhookHandler(cfg, dispatcher, store, clients, extractor, publisher, logger)
		r.Post("/webhook/pr-review", webhookHandler.Handle)

		adminHandler := handler.NewAdminHandler(dispatcher, logger)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/jobs/{id}", adminHandler.GetJob)
			r.Get("/queue", adminHandler.GetQueue)
			r.Get("/status", adminHandler.GetStatus)
		})
	})

	return r
}
