// Package handler provides the HTTP handlers of the review gateway.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gogithub "github.com/google/go-github/v73/github"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/storage"
)

// webhookResponse is the JSON body returned for every accepted webhook.
// Ineligible PRs are a success with a reason, not an error, so the sender
// never retries them.
type webhookResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// WebhookHandler processes incoming pull request webhooks from GitHub.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	store      storage.Store
	clients    github.ClientFactory
	extractor  extract.Extractor
	publisher  github.CommentPublisher
	logger     *slog.Logger
}

// NewWebhookHandler creates a webhook handler wired to the job dispatcher.
func NewWebhookHandler(
	cfg *config.Config,
	dispatcher core.JobDispatcher,
	store storage.Store,
	clients github.ClientFactory,
	extractor extract.Extractor,
	publisher github.CommentPublisher,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		store:      store,
		clients:    clients,
		extractor:  extractor,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle validates, parses, and routes a GitHub webhook request.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := gogithub.ValidatePayload(r, []byte(h.cfg.GitHub.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := gogithub.ParseWebHook(gogithub.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *gogithub.PullRequestEvent:
		h.handlePullRequest(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", gogithub.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

// handlePullRequest turns the raw event into a review job. Everything before
// Dispatch is synchronous: eligibility is checked here so the author gets an
// immediate explanation instead of a silently dropped webhook, and the
// in-progress placeholder appears before the response is written.
func (h *WebhookHandler) handlePullRequest(ctx context.Context, w http.ResponseWriter, raw *gogithub.PullRequestEvent) {
	event, err := core.EventFromPullRequest(raw)
	if err != nil {
		h.logger.Debug("ignoring pull request event", "reason", err.Error(),
			"repo", raw.GetRepo().GetFullName())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	client, _, err := h.clients.ClientFor(ctx, event.InstallationID)
	if err != nil {
		h.logger.Error("failed to create GitHub client", "error", err, "repo", event.RepoFullName)
		http.Error(w, "Failed to reach GitHub", http.StatusBadGateway)
		return
	}

	if reason := h.checkEligibility(ctx, client, event); reason != "" {
		h.logger.Info("pull request is not eligible for review",
			"repo", event.RepoFullName, "pr", event.PRNumber, "reason", reason)
		h.postIneligibleNotice(ctx, client, event, reason)
		writeJSON(w, h.logger, http.StatusOK, webhookResponse{Success: true, Reason: reason})
		return
	}

	followUp := h.isFollowUp(ctx, event)
	h.postPlaceholder(ctx, client, event, followUp)

	jobID, err := h.dispatcher.Dispatch(ctx, event, followUp)
	if err != nil {
		h.logger.Error("failed to dispatch review job", "error", err, "repo", event.RepoFullName)
		writeJSON(w, h.logger, http.StatusServiceUnavailable,
			webhookResponse{Success: false, Reason: "review queue is not accepting jobs"})
		return
	}

	h.logger.Info("review job dispatched",
		"job_id", jobID, "repo", event.RepoFullName, "pr", event.PRNumber, "follow_up", followUp)
	writeJSON(w, h.logger, http.StatusAccepted, webhookResponse{Success: true, JobID: jobID})
}

// checkEligibility returns an empty string for reviewable PRs and the
// author-facing reason otherwise.
func (h *WebhookHandler) checkEligibility(ctx context.Context, client github.Client, event *core.PREvent) string {
	if event.Draft {
		return "draft pull requests are not reviewed"
	}
	if issues := h.extractor.ExtractLinkedIssues(ctx, client, event); len(issues) == 0 {
		return "the pull request description links no issues with a closing keyword (closes/fixes/resolves)"
	}
	return ""
}

// isFollowUp reports whether this event continues an existing review cycle.
// New commits without a completed prior review still get the initial path.
func (h *WebhookHandler) isFollowUp(ctx context.Context, event *core.PREvent) bool {
	if !event.IsFollowUp() {
		return false
	}
	_, err := h.store.GetLatestCompletedReview(ctx, event.InstallationID, event.RepoFullName, event.PRNumber)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("could not look up previous review, treating as initial",
				"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		}
		return false
	}
	return true
}

// postPlaceholder leaves the in-progress comment on the PR and records its id
// on the event, so the review job replaces the placeholder with the finished
// review. Best effort; a review without a placeholder is still a review.
func (h *WebhookHandler) postPlaceholder(ctx context.Context, client github.Client, event *core.PREvent, followUp bool) {
	record := &core.ReviewRecord{
		InstallationID: event.InstallationID,
		RepoFullName:   event.RepoFullName,
		PRNumber:       event.PRNumber,
		FollowUp:       followUp,
	}

	var commentID int64
	var err error
	if followUp {
		commentID, err = h.publisher.PostFollowUpInProgress(ctx, client, record)
	} else {
		commentID, err = h.publisher.PostInProgress(ctx, client, record)
	}
	if err != nil {
		h.logger.Warn("failed to post in-progress placeholder",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		return
	}
	event.PlaceholderCommentID = commentID
}

// postIneligibleNotice tells the author why no review will happen. Best effort.
func (h *WebhookHandler) postIneligibleNotice(ctx context.Context, client github.Client, event *core.PREvent, reason string) {
	body := fmt.Sprintf("ℹ️ Pull request #%d was not reviewed: %s.", event.PRNumber, reason)
	if _, err := client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body); err != nil {
		h.logger.Warn("failed to post ineligibility notice",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}
}
