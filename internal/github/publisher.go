// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/storage"
)

const (
	markerPrefix  = "AI-REVIEW-MARKER"
	maxPostTries  = 3
	retryInterval = time.Second
)

// CommentPublisher finds-or-creates the single tracked review comment on a
// pull request. Create and update are idempotent: an existing comment is
// recognized by its stored id or by the invisible marker in its body.
type CommentPublisher interface {
	PostOrUpdate(ctx context.Context, client Client, record *core.ReviewRecord, review *core.StructuredReview) error
	PostFollowUp(ctx context.Context, client Client, record *core.ReviewRecord, review *core.StructuredReview) error
	PostInProgress(ctx context.Context, client Client, record *core.ReviewRecord) (int64, error)
	PostFollowUpInProgress(ctx context.Context, client Client, record *core.ReviewRecord) (int64, error)
	PostFailureNotice(ctx context.Context, client Client, record *core.ReviewRecord, reason string)
}

type commentPublisher struct {
	store  storage.Store
	logger *slog.Logger
}

// NewCommentPublisher returns a publisher that persists comment ids back onto
// review records through the given store.
func NewCommentPublisher(store storage.Store, logger *slog.Logger) CommentPublisher {
	return &commentPublisher{store: store, logger: logger}
}

// marker builds the full marker for a record, e.g.
// "<!-- AI-REVIEW-MARKER:42:17:1735689600 -->". The timestamp keeps markers
// unique across review cycles; lookup matches on the installation+PR prefix.
func marker(installationID int64, prNumber int) string {
	return fmt.Sprintf("<!-- %s:%d:%d:%d -->", markerPrefix, installationID, prNumber, time.Now().Unix())
}

// markerScanPrefix is the stable part of the marker shared by every comment
// this service has posted on the given PR.
func markerScanPrefix(installationID int64, prNumber int) string {
	return fmt.Sprintf("<!-- %s:%d:%d:", markerPrefix, installationID, prNumber)
}

// PostOrUpdate publishes the structured review as the PR's tracked comment.
// It resolves the target comment by the id stored on the record first (a 404
// means the comment was deleted and is treated as absent), then by scanning
// the PR's comments for the marker. The resulting comment id is written back
// onto the record; a write-back failure is logged but never fails the review.
func (p *commentPublisher) PostOrUpdate(ctx context.Context, client Client, record *core.ReviewRecord, review *core.StructuredReview) error {
	owner, repo, err := splitFullName(record.RepoFullName)
	if err != nil {
		return err
	}

	body := renderReview(record, review) + "\n" + marker(record.InstallationID, record.PRNumber)

	commentID, found := p.resolveComment(ctx, client, owner, repo, record)
	if found {
		if err := p.updateWithRetry(ctx, client, owner, repo, commentID, body); err != nil {
			return fmt.Errorf("failed to update review comment %d: %w", commentID, err)
		}
	} else {
		commentID, err = p.createWithRetry(ctx, client, owner, repo, record.PRNumber, body)
		if err != nil {
			return fmt.Errorf("failed to create review comment: %w", err)
		}
	}

	p.persistCommentID(ctx, record, commentID)
	return nil
}

// PostFollowUp publishes a follow-up review. Lookup is scoped to the comment
// id stored on this record only (usually the in-progress placeholder of this
// cycle); there is no marker scan, so an earlier cycle's review comment is
// never overwritten and each follow-up cycle gets its own comment.
func (p *commentPublisher) PostFollowUp(ctx context.Context, client Client, record *core.ReviewRecord, review *core.StructuredReview) error {
	owner, repo, err := splitFullName(record.RepoFullName)
	if err != nil {
		return err
	}

	body := renderReview(record, review) + "\n" + marker(record.InstallationID, record.PRNumber)

	if record.CommentID != nil {
		if _, err := client.GetComment(ctx, owner, repo, *record.CommentID); err == nil {
			if err := p.updateWithRetry(ctx, client, owner, repo, *record.CommentID, body); err != nil {
				return fmt.Errorf("failed to update follow-up comment %d: %w", *record.CommentID, err)
			}
			p.persistCommentID(ctx, record, *record.CommentID)
			return nil
		}
	}

	commentID, err := p.createWithRetry(ctx, client, owner, repo, record.PRNumber, body)
	if err != nil {
		return fmt.Errorf("failed to create follow-up comment: %w", err)
	}
	p.persistCommentID(ctx, record, commentID)
	return nil
}

// PostInProgress posts the lightweight placeholder acknowledging that a
// review is underway and returns its comment id. The finished review replaces
// the placeholder through that id or through the marker it carries.
func (p *commentPublisher) PostInProgress(ctx context.Context, client Client, record *core.ReviewRecord) (int64, error) {
	body := fmt.Sprintf("🔍 Reviewing pull request #%d, results will appear here shortly.\n%s",
		record.PRNumber, marker(record.InstallationID, record.PRNumber))
	return p.postPlaceholder(ctx, client, record, body)
}

// PostFollowUpInProgress posts the placeholder for a follow-up cycle and
// returns its comment id. Follow-up lookups never scan for markers, so the
// caller must carry this id to the review record or the placeholder goes
// stale on the PR forever.
func (p *commentPublisher) PostFollowUpInProgress(ctx context.Context, client Client, record *core.ReviewRecord) (int64, error) {
	body := fmt.Sprintf("🔄 New commits detected on pull request #%d, running a follow-up review.\n%s",
		record.PRNumber, marker(record.InstallationID, record.PRNumber))
	return p.postPlaceholder(ctx, client, record, body)
}

func (p *commentPublisher) postPlaceholder(ctx context.Context, client Client, record *core.ReviewRecord, body string) (int64, error) {
	owner, repo, err := splitFullName(record.RepoFullName)
	if err != nil {
		return 0, err
	}
	commentID, err := p.createWithRetry(ctx, client, owner, repo, record.PRNumber, body)
	if err != nil {
		return 0, err
	}
	p.persistCommentID(ctx, record, commentID)
	return commentID, nil
}

// PostFailureNotice posts a minimal plain-text error comment so the PR
// author is never left without a signal. Best effort; failures are logged
// and swallowed.
func (p *commentPublisher) PostFailureNotice(ctx context.Context, client Client, record *core.ReviewRecord, reason string) {
	owner, repo, err := splitFullName(record.RepoFullName)
	if err != nil {
		p.logger.Error("failed to post failure notice", "repo", record.RepoFullName, "error", err)
		return
	}
	body := fmt.Sprintf("⚠️ The automated review of pull request #%d could not be completed: %s", record.PRNumber, reason)
	if _, err := client.CreateComment(ctx, owner, repo, record.PRNumber, body); err != nil {
		p.logger.Error("failed to post failure notice", "repo", record.RepoFullName, "pr", record.PRNumber, "error", err)
	}
}

// resolveComment locates an existing tracked comment, first by the stored id
// and then by scanning for the marker.
func (p *commentPublisher) resolveComment(ctx context.Context, client Client, owner, repo string, record *core.ReviewRecord) (int64, bool) {
	if record.CommentID != nil {
		if _, err := client.GetComment(ctx, owner, repo, *record.CommentID); err == nil {
			return *record.CommentID, true
		}
		p.logger.Warn("stored comment id no longer resolves, falling back to marker scan",
			"repo", record.RepoFullName, "pr", record.PRNumber, "comment_id", *record.CommentID)
	}

	comments, err := client.ListComments(ctx, owner, repo, record.PRNumber)
	if err != nil {
		p.logger.Warn("marker scan failed, will create a fresh comment",
			"repo", record.RepoFullName, "pr", record.PRNumber, "error", err)
		return 0, false
	}
	prefix := markerScanPrefix(record.InstallationID, record.PRNumber)
	for _, c := range comments {
		if strings.Contains(c.Body, prefix) {
			return c.ID, true
		}
	}
	return 0, false
}

func (p *commentPublisher) persistCommentID(ctx context.Context, record *core.ReviewRecord, commentID int64) {
	record.CommentID = &commentID
	if err := p.store.SetReviewCommentID(ctx, record.ID, commentID); err != nil {
		// Losing the id costs one marker scan on the next cycle, nothing more.
		p.logger.Warn("failed to persist comment id", "review_id", record.ID, "comment_id", commentID, "error", err)
	}
}

func (p *commentPublisher) createWithRetry(ctx context.Context, client Client, owner, repo string, prNumber int, body string) (int64, error) {
	var commentID int64
	op := func() error {
		id, err := client.CreateComment(ctx, owner, repo, prNumber, body)
		if err != nil {
			return classifyPostError(err)
		}
		commentID = id
		return nil
	}
	if err := backoff.Retry(op, newPostBackOff(ctx)); err != nil {
		return 0, err
	}
	return commentID, nil
}

func (p *commentPublisher) updateWithRetry(ctx context.Context, client Client, owner, repo string, commentID int64, body string) error {
	op := func() error {
		return classifyPostError(client.UpdateComment(ctx, owner, repo, commentID, body))
	}
	return backoff.Retry(op, newPostBackOff(ctx))
}

// newPostBackOff yields 1s, 2s, 4s between attempts, three attempts total.
func newPostBackOff(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 4 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(bo, maxPostTries-1), ctx)
}

// classifyPostError marks permission-denied and not-found responses as
// permanent so the retry loop aborts immediately.
func classifyPostError(err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound:
			return backoff.Permanent(err)
		}
	}
	return err
}

func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed repository full name %q", fullName)
	}
	return parts[0], parts[1], nil
}
