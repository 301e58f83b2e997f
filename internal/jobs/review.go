package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/storage"
)

// ReviewJob runs one full review cycle for a pull request: context assembly,
// retrieval, generation, persistence, and comment publication.
type ReviewJob struct {
	cfg       *config.Config
	clients   github.ClientFactory
	store     storage.Store
	extractor extract.Extractor
	retriever llm.ContextRetriever
	generator llm.Generator
	publisher github.CommentPublisher
	logger    *slog.Logger
}

// NewReviewJob wires a review job from its collaborators.
func NewReviewJob(
	cfg *config.Config,
	clients github.ClientFactory,
	store storage.Store,
	extractor extract.Extractor,
	retriever llm.ContextRetriever,
	generator llm.Generator,
	publisher github.CommentPublisher,
	logger *slog.Logger,
) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{
		cfg:       cfg,
		clients:   clients,
		store:     store,
		extractor: extractor,
		retriever: retriever,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes the review cycle for one pull request event. A follow-up cycle
// always creates a fresh review record seeded with the previous completed
// review's diff and verdict.
func (j *ReviewJob) Run(ctx context.Context, event *core.PREvent, followUp bool) error {
	if err := j.validateInputs(event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job",
		"repo", event.RepoFullName, "pr", event.PRNumber, "follow_up", followUp)

	client, _, err := j.clients.ClientFor(ctx, event.InstallationID)
	if err != nil {
		return core.NewUpstreamError(event.RepoFullName, event.PRNumber,
			"failed to create GitHub client", true, err)
	}

	pr, err := client.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return core.NewUpstreamError(event.RepoFullName, event.PRNumber,
			"failed to fetch pull request", true, err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	record := &core.ReviewRecord{
		InstallationID: event.InstallationID,
		RepoFullName:   event.RepoFullName,
		PRNumber:       event.PRNumber,
		PRURL:          event.PRURL,
		HeadSHA:        event.HeadSHA,
		FollowUp:       followUp,
		Status:         core.ReviewInProgress,
	}
	if err := j.store.CreateReview(ctx, record); err != nil {
		return core.NewPersistenceError(event.RepoFullName, event.PRNumber, err)
	}
	if event.PlaceholderCommentID != 0 {
		// Publish against the gateway's placeholder, replacing it in place.
		placeholderID := event.PlaceholderCommentID
		record.CommentID = &placeholderID
	}

	started := time.Now()

	// One wall-clock budget covers the whole analysis: context assembly,
	// retrieval, and generation. Publication and persistence run on the
	// parent context so a late result is still posted.
	genCtx, cancel := context.WithTimeout(ctx, j.reviewTimeout())
	defer cancel()

	prCtx, err := j.extractor.BuildContext(genCtx, client, event)
	if err != nil {
		return j.fail(ctx, client, record, j.timeoutOr(event, err))
	}

	reviewCtx := j.retriever.Retrieve(genCtx, client, prCtx)

	review, err := j.generate(genCtx, reviewCtx, event, followUp)
	if err != nil {
		return j.fail(ctx, client, record, j.timeoutOr(event, err))
	}

	record.MergeScore = review.MergeScore
	record.Summary = review.Summary
	record.Suggestions = review.Suggestions
	record.ProcessingMS = time.Since(started).Milliseconds()
	record.FollowUpContext = core.FollowUpContext{
		PreviousDiff:    prCtx.Diff,
		PreviousSummary: review.Summary,
		PreviousScore:   review.MergeScore,
	}

	if err := j.publish(ctx, client, record, review, followUp); err != nil {
		return j.fail(ctx, client, record, core.NewUpstreamError(
			event.RepoFullName, event.PRNumber, "failed to publish review comment", true, err))
	}

	if err := j.store.CompleteReview(ctx, record); err != nil {
		return core.NewPersistenceError(event.RepoFullName, event.PRNumber, err)
	}

	j.logger.Info("review job completed",
		"repo", event.RepoFullName, "pr", event.PRNumber,
		"score", review.MergeScore, "suggestions", len(review.Suggestions),
		"duration_ms", record.ProcessingMS)
	return nil
}

// generate runs the initial or follow-up generation path. A follow-up without
// any completed predecessor still runs, seeded with empty previous context.
func (j *ReviewJob) generate(ctx context.Context, reviewCtx *llm.ReviewContext, event *core.PREvent, followUp bool) (*core.StructuredReview, error) {
	if !followUp {
		return j.generator.GenerateReview(ctx, reviewCtx)
	}

	var prev core.FollowUpContext
	last, err := j.store.GetLatestCompletedReview(ctx, event.InstallationID, event.RepoFullName, event.PRNumber)
	switch {
	case err == nil:
		prev = last.FollowUpContext
		if prev.PreviousSummary == "" {
			prev.PreviousSummary = last.Summary
			prev.PreviousScore = last.MergeScore
		}
	case errors.Is(err, storage.ErrNotFound):
		j.logger.Warn("follow-up requested without a completed predecessor",
			"repo", event.RepoFullName, "pr", event.PRNumber)
	default:
		return nil, core.NewPersistenceError(event.RepoFullName, event.PRNumber, err)
	}

	return j.generator.GenerateFollowUpReview(ctx, reviewCtx, prev)
}

// reviewTimeout returns the configured wall-clock budget for one review.
func (j *ReviewJob) reviewTimeout() time.Duration {
	if j.cfg.AI.ReviewTimeout > 0 {
		return j.cfg.AI.ReviewTimeout
	}
	return 5 * time.Minute
}

// timeoutOr converts a blown review deadline into the timeout analysis error;
// any other error passes through unchanged.
func (j *ReviewJob) timeoutOr(event *core.PREvent, err error) error {
	var ae *core.AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewTimeoutError(event.RepoFullName, event.PRNumber, err)
	}
	return err
}

// publish posts the rendered review. Initial reviews reuse an existing marker
// comment when one exists; follow-ups replace this cycle's placeholder.
func (j *ReviewJob) publish(ctx context.Context, client github.Client, record *core.ReviewRecord, review *core.StructuredReview, followUp bool) error {
	if followUp {
		return j.publisher.PostFollowUp(ctx, client, record, review)
	}
	return j.publisher.PostOrUpdate(ctx, client, record, review)
}

// fail marks the record FAILED and leaves a best-effort notice on the PR so
// the author is not left staring at a stale placeholder.
func (j *ReviewJob) fail(ctx context.Context, client github.Client, record *core.ReviewRecord, cause error) error {
	if err := j.store.FailReview(ctx, record.ID); err != nil {
		j.logger.Error("failed to mark review as failed",
			"review_id", record.ID, "repo", record.RepoFullName, "error", err)
	}
	j.publisher.PostFailureNotice(ctx, client, record, failureReason(cause))
	return cause
}

// failureReason maps an analysis error to the short explanation posted on the
// PR. Internal detail stays in the logs.
func failureReason(err error) string {
	var ae *core.AnalysisError
	if !errors.As(err, &ae) {
		return "an unexpected error interrupted the review"
	}
	switch ae.Kind {
	case core.KindIneligible:
		return ae.Message
	case core.KindTimeout:
		return "the review did not finish within the time limit"
	case core.KindValidation:
		return "the model did not produce a usable review"
	case core.KindUpstream:
		if ae.Retryable {
			return "an upstream service is temporarily unavailable, the review may be retried"
		}
		return "an upstream service rejected the request"
	default:
		return "an unexpected error interrupted the review"
	}
}

// validateInputs ensures the event contains everything a review cycle needs.
func (j *ReviewJob) validateInputs(event *core.PREvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
