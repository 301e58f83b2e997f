// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// Webhook actions that can start a review cycle.
const (
	ActionOpened      = "opened"
	ActionSynchronize = "synchronize"
	ActionReopened    = "reopened"
)

// PREvent represents a simplified, internal view of a pull request webhook event.
type PREvent struct {
	Action string

	// Repository details
	RepoOwner    string
	RepoName     string
	RepoFullName string
	RepoCloneURL string

	PRNumber int
	PRTitle  string
	PRBody   string
	PRURL    string
	HeadSHA  string
	Draft    bool
	Author   string

	InstallationID int64

	// PlaceholderCommentID is the id of the in-progress comment the gateway
	// posted for this event, zero when none was posted. The review job seeds
	// its record with it so the finished review replaces the placeholder
	// instead of stacking a new comment.
	PlaceholderCommentID int64
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal PREvent representation. It acts as an anti-corruption
// layer, ensuring the incoming webhook payload is valid and contains all data
// a review job needs before anything is enqueued.
func EventFromPullRequest(event *github.PullRequestEvent) (*PREvent, error) {
	action := event.GetAction()
	switch action {
	case ActionOpened, ActionSynchronize, ActionReopened:
	default:
		return nil, fmt.Errorf("action %q does not trigger a review", action)
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("pull request information is missing from the event")
	}

	prNumber := pr.GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &PREvent{
		Action:         action,
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		PRNumber:       prNumber,
		PRTitle:        pr.GetTitle(),
		PRBody:         pr.GetBody(),
		PRURL:          pr.GetHTMLURL(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Draft:          pr.GetDraft(),
		Author:         pr.GetUser().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

// IsFollowUp reports whether the event action indicates new commits on an
// already-open pull request. Whether the job actually runs as a follow-up also
// depends on a completed review existing; the gateway checks both.
func (e *PREvent) IsFollowUp() bool {
	return strings.EqualFold(e.Action, ActionSynchronize)
}
