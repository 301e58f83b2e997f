// Package extract turns a webhook event into the review context for one PR:
// linked-issue resolution, changed-file diffs, and the eligibility decision.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
)

var (
	// Bare references like "fixes #12". The verb group also accepts present
	// tense ("fix", "close", "resolve").
	issueRefPattern = regexp.MustCompile(`(?i)\b(closes?|fix(?:es)?|resolves?)\s*:?\s+#(\d+)`)

	// Fully-qualified references like
	// "closes https://github.com/acme/widgets/issues/7", including
	// cross-repository links.
	issueURLPattern = regexp.MustCompile(`(?i)\b(closes?|fix(?:es)?|resolves?)\s*:?\s+(https?://[^/\s]+/([\w.-]+)/([\w.-]+)/issues/(\d+))`)
)

// PRContext is everything the review pipeline knows about one pull request
// before any retrieval or generation happens.
type PRContext struct {
	Event        *core.PREvent
	LinkedIssues []core.LinkedIssue
	Diff         string
	ChangedFiles []github.ChangedFile
}

// Extractor builds PR contexts and decides review eligibility.
type Extractor interface {
	ExtractLinkedIssues(ctx context.Context, client github.Client, event *core.PREvent) []core.LinkedIssue
	BuildContext(ctx context.Context, client github.Client, event *core.PREvent) (*PRContext, error)
}

type extractor struct {
	logger *slog.Logger
}

// NewExtractor returns the default extractor.
func NewExtractor(logger *slog.Logger) Extractor {
	return &extractor{logger: logger}
}

// normalizeLinkVerb folds present-tense closing keywords onto their canonical
// forms, e.g. "fix" and "Fixes" both become "fixes".
func normalizeLinkVerb(verb string) core.LinkType {
	switch strings.ToLower(verb) {
	case "close", "closes":
		return core.LinkCloses
	case "fix", "fixes":
		return core.LinkFixes
	default:
		return core.LinkResolves
	}
}

type issueRef struct {
	number   int
	linkType core.LinkType
	url      string
	owner    string
	repo     string
}

// scanIssueRefs finds every closing-keyword issue reference in the body,
// deduplicated by (number, url). URL references may point at a different
// repository than the PR's own.
func scanIssueRefs(body, defaultOwner, defaultRepo string) []issueRef {
	var refs []issueRef
	seen := make(map[string]bool)

	add := func(ref issueRef) {
		key := fmt.Sprintf("%d|%s", ref.number, ref.url)
		if seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, ref)
	}

	for _, m := range issueRefPattern.FindAllStringSubmatch(body, -1) {
		number, err := strconv.Atoi(m[2])
		if err != nil || number <= 0 {
			continue
		}
		add(issueRef{
			number:   number,
			linkType: normalizeLinkVerb(m[1]),
			owner:    defaultOwner,
			repo:     defaultRepo,
		})
	}

	for _, m := range issueURLPattern.FindAllStringSubmatch(body, -1) {
		number, err := strconv.Atoi(m[5])
		if err != nil || number <= 0 {
			continue
		}
		add(issueRef{
			number:   number,
			linkType: normalizeLinkVerb(m[1]),
			url:      m[2],
			owner:    m[3],
			repo:     m[4],
		})
	}

	return refs
}

// ExtractLinkedIssues scans the PR body for closing-keyword references and
// fetches each referenced issue. A fetch failure degrades to a stub entry
// carrying just the number and link type; extraction itself never fails.
func (e *extractor) ExtractLinkedIssues(ctx context.Context, client github.Client, event *core.PREvent) []core.LinkedIssue {
	refs := scanIssueRefs(event.PRBody, event.RepoOwner, event.RepoName)

	var issues []core.LinkedIssue
	for _, ref := range refs {
		issue := core.LinkedIssue{
			Number:   ref.number,
			URL:      ref.url,
			LinkType: ref.linkType,
		}
		detail, err := client.GetIssue(ctx, ref.owner, ref.repo, ref.number)
		if err != nil {
			e.logger.Warn("linked issue fetch failed, keeping stub reference",
				"repo", event.RepoFullName, "pr", event.PRNumber, "issue", ref.number, "error", err)
		} else {
			issue.Title = detail.Title
			issue.Body = detail.Body
			issue.Labels = detail.Labels
			issue.Comments = detail.Comments
			if issue.URL == "" {
				issue.URL = detail.URL
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

// BuildContext assembles the full PR context. It fails with an ineligible
// analysis error when the PR does not qualify: the caller posts an explanatory
// comment and stops instead of retrying.
func (e *extractor) BuildContext(ctx context.Context, client github.Client, event *core.PREvent) (*PRContext, error) {
	if event.Draft {
		return nil, core.NewIneligibleError(event.RepoFullName, event.PRNumber,
			"draft pull requests are not reviewed; mark the PR ready for review to trigger one")
	}

	issues := e.ExtractLinkedIssues(ctx, client, event)
	if len(issues) == 0 {
		return nil, core.NewIneligibleError(event.RepoFullName, event.PRNumber,
			"no linked issues found; reference at least one issue with a closing keyword, e.g. \"closes #123\"")
	}

	diff, err := client.GetPullRequestDiff(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, core.NewUpstreamError(event.RepoFullName, event.PRNumber, "failed to fetch PR diff", true, err)
	}

	files, err := client.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, core.NewUpstreamError(event.RepoFullName, event.PRNumber, "failed to list changed files", true, err)
	}

	return &PRContext{
		Event:        event,
		LinkedIssues: issues,
		Diff:         diff,
		ChangedFiles: files,
	}, nil
}

// QueryText is the retrieval query for semantic context: PR title, body, and
// linked-issue text combined.
func (c *PRContext) QueryText() string {
	var sb strings.Builder
	sb.WriteString(c.Event.PRTitle)
	sb.WriteString("\n")
	sb.WriteString(c.Event.PRBody)
	for _, issue := range c.LinkedIssues {
		if issue.Title != "" {
			sb.WriteString("\n")
			sb.WriteString(issue.Title)
		}
		if issue.Body != "" {
			sb.WriteString("\n")
			sb.WriteString(issue.Body)
		}
	}
	return sb.String()
}

// PromptBlock renders the PR metadata, linked issues, and diff into the text
// block that anchors the review prompt.
func (c *PRContext) PromptBlock() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Pull Request #%d: %s\n", c.Event.PRNumber, c.Event.PRTitle)
	fmt.Fprintf(&sb, "Repository: %s\n", c.Event.RepoFullName)
	fmt.Fprintf(&sb, "Author: %s\n", c.Event.Author)
	if c.Event.PRBody != "" {
		fmt.Fprintf(&sb, "\nDescription:\n%s\n", c.Event.PRBody)
	}

	sb.WriteString("\nLinked Issues:\n")
	for _, issue := range c.LinkedIssues {
		fmt.Fprintf(&sb, "- #%d (%s)", issue.Number, issue.LinkType)
		if issue.Title != "" {
			fmt.Fprintf(&sb, ": %s", issue.Title)
		}
		sb.WriteString("\n")
		if issue.Body != "" {
			fmt.Fprintf(&sb, "  %s\n", strings.ReplaceAll(issue.Body, "\n", "\n  "))
		}
		if len(issue.Labels) > 0 {
			fmt.Fprintf(&sb, "  Labels: %s\n", strings.Join(issue.Labels, ", "))
		}
		for _, comment := range issue.Comments {
			fmt.Fprintf(&sb, "  Comment: %s\n", strings.ReplaceAll(comment, "\n", " "))
		}
	}

	fmt.Fprintf(&sb, "\nChanged files (%d):\n", len(c.ChangedFiles))
	for _, file := range c.ChangedFiles {
		fmt.Fprintf(&sb, "- %s\n", file.Filename)
	}

	if c.Diff != "" {
		fmt.Fprintf(&sb, "\nDiff:\n```diff\n%s\n```\n", c.Diff)
	}

	return sb.String()
}
