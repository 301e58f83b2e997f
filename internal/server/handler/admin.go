package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/storage"
)

// AdminHandler exposes read-only queue introspection endpoints.
type AdminHandler struct {
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(dispatcher core.JobDispatcher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher, logger: logger}
}

// GetJob returns the state of one job by id.
func (h *AdminHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	info, err := h.dispatcher.Lookup(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		h.logger.Error("job lookup failed", "job_id", jobID, "error", err)
		http.Error(w, "Job lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, info)
}

// GetQueue returns the current queue counters.
func (h *AdminHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dispatcher.Stats(r.Context())
	if err != nil {
		h.logger.Error("queue stats failed", "error", err)
		http.Error(w, "Queue stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

// statusResponse is the admin status document.
type statusResponse struct {
	Status string          `json:"status"`
	Time   time.Time       `json:"time"`
	Queue  core.QueueStats `json:"queue"`
}

// GetStatus returns a one-shot service health document including the queue.
func (h *AdminHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dispatcher.Stats(r.Context())
	if err != nil {
		h.logger.Error("queue stats failed", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, statusResponse{
			Status: "degraded",
			Time:   time.Now().UTC(),
		})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, statusResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
		Queue:  stats,
	})
}
