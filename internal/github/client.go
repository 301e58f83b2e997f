// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// ChangedFile holds the filename and patch data for a single file
// included in a pull request.
type ChangedFile struct {
	Filename string
	Patch    string
}

// IssueDetail is the normalized view of an issue fetched for link resolution:
// title, body, labels, and non-bot comments.
type IssueDetail struct {
	Number   int
	Title    string
	Body     string
	Labels   []string
	Comments []string
	URL      string
}

// Comment is a single issue comment on a pull request.
type Comment struct {
	ID   int64
	Body string
}

// Client defines a set of operations for interacting with the GitHub API,
// focusing on pull requests, issues, comments, and repository contents.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
	GetIssue(ctx context.Context, owner, repo string, number int) (*IssueDetail, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error
	GetComment(ctx context.Context, owner, repo string, commentID int64) (*Comment, error)
	ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
// This is useful for CLI tools or local development where an App installation is not available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	return &gitHubClient{client: client, logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetPullRequestDiff retrieves the diff of a pull request as a string.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Error("failed to get pull request diff", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", err
	}
	return diff, nil
}

// GetChangedFiles retrieves the list of files modified in a pull request.
// It handles pagination automatically to ensure all files are fetched;
// the GitHub API returns a maximum of 100 files per page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	var allFiles []ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, file := range files {
			allFiles = append(allFiles, ChangedFile{
				Filename: file.GetFilename(),
				Patch:    file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// GetIssue fetches issue title, body, labels, and non-bot comments. Bot
// comments are filtered out so linked-issue context stays human-authored.
func (g *gitHubClient) GetIssue(ctx context.Context, owner, repo string, number int) (*IssueDetail, error) {
	issue, _, err := g.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Warn("failed to get issue", "owner", owner, "repo", repo, "issue", number, "error", err)
		return nil, err
	}

	detail := &IssueDetail{
		Number: number,
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		URL:    issue.GetHTMLURL(),
	}
	for _, label := range issue.Labels {
		detail.Labels = append(detail.Labels, label.GetName())
	}

	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			// Comments are supplementary; the issue itself is still usable.
			g.logger.Warn("failed to list issue comments", "owner", owner, "repo", repo, "issue", number, "error", err)
			return detail, nil
		}
		for _, comment := range comments {
			if strings.EqualFold(comment.GetUser().GetType(), "Bot") {
				continue
			}
			if body := comment.GetBody(); body != "" {
				detail.Comments = append(detail.Comments, body)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return detail, nil
}

// GetFileContent retrieves the decoded content of a single file from the
// repository's default branch.
func (g *gitHubClient) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	content, _, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", fmt.Errorf("path %s is not a file", path)
	}
	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	return decoded, nil
}

// CreateComment creates a new comment on a pull request and returns its id.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	comment := &github.IssueComment{Body: &body}
	created, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return 0, err
	}
	return created.GetID(), nil
}

// UpdateComment replaces the body of an existing comment.
func (g *gitHubClient) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.EditComment(ctx, owner, repo, commentID, comment)
	if err != nil {
		g.logger.Error("failed to update comment", "owner", owner, "repo", repo, "comment_id", commentID, "error", err)
	}
	return err
}

// GetComment fetches one comment by id.
func (g *gitHubClient) GetComment(ctx context.Context, owner, repo string, commentID int64) (*Comment, error) {
	comment, _, err := g.client.Issues.GetComment(ctx, owner, repo, commentID)
	if err != nil {
		return nil, err
	}
	return &Comment{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// ListComments lists all issue comments on a pull request, oldest first.
func (g *gitHubClient) ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	var all []Comment
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list comments", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}
		for _, comment := range comments {
			all = append(all, Comment{ID: comment.GetID(), Body: comment.GetBody()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}
