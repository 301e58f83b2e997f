package core

import (
	"encoding/json"
	"time"
)

// ReviewStatus is the lifecycle state of a single review attempt.
type ReviewStatus string

const (
	ReviewInProgress ReviewStatus = "IN_PROGRESS"
	ReviewCompleted  ReviewStatus = "COMPLETED"
	ReviewFailed     ReviewStatus = "FAILED"
)

// FollowUpContext carries the parts of a completed review that the next
// follow-up cycle needs. It is stored on the record that produced it and read
// by the cycle that comes after.
type FollowUpContext struct {
	PreviousDiff    string `json:"previous_diff"`
	PreviousSummary string `json:"previous_summary"`
	PreviousScore   int    `json:"previous_score"`
}

// ReviewRecord is one row per review attempt. A follow-up cycle always creates
// a new record; an existing record is never turned into a different attempt.
type ReviewRecord struct {
	ID             int64        `db:"id"`
	InstallationID int64        `db:"installation_id"`
	RepoFullName   string       `db:"repo_full_name"`
	PRNumber       int          `db:"pr_number"`
	PRURL          string       `db:"pr_url"`
	HeadSHA        string       `db:"head_sha"`
	CommentID      *int64       `db:"comment_id"`
	MergeScore     int          `db:"merge_score"`
	Summary        string       `db:"summary"`
	Suggestions    []Suggestion `db:"-"`
	Status         ReviewStatus `db:"status"`
	FollowUp       bool         `db:"follow_up"`
	ProcessingMS   int64        `db:"processing_ms"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`

	FollowUpContext FollowUpContext `db:"-"`

	// Raw jsonb columns, decoded into Suggestions/FollowUpContext by storage.
	SuggestionsJSON json.RawMessage `db:"suggestions"`
	FollowUpJSON    json.RawMessage `db:"follow_up_context"`
}

// Suggestion severities, from most to least urgent.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Suggestion types understood by the comment renderer.
const (
	SuggestionFix          = "fix"
	SuggestionImprovement  = "improvement"
	SuggestionOptimization = "optimization"
	SuggestionStyle        = "style"
)

// Suggestion is a single piece of feedback produced by the model.
// File and Line are optional; a suggestion without them renders as a
// general remark instead of a file-anchored one.
type Suggestion struct {
	File          string `json:"file,omitempty"`
	Line          int    `json:"line,omitempty"`
	Severity      string `json:"severity"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	Reasoning     string `json:"reasoning,omitempty"`
	SuggestedCode string `json:"suggestedCode,omitempty"`
}

// StructuredReview is the full review output from the LLM in a parsable format.
type StructuredReview struct {
	MergeScore     int            `json:"mergeScore"`
	Confidence     float64        `json:"confidence"`
	Summary        string         `json:"summary"`
	QualityMetrics map[string]int `json:"qualityMetrics,omitempty"`
	Suggestions    []Suggestion   `json:"suggestions"`
}

// LinkType is the normalized closing keyword that linked a PR to an issue.
type LinkType string

const (
	LinkCloses   LinkType = "closes"
	LinkFixes    LinkType = "fixes"
	LinkResolves LinkType = "resolves"
)

// LinkedIssue is an issue referenced by a PR body via a closing keyword.
// It is transient: assembled during extraction, never persisted.
type LinkedIssue struct {
	Number   int
	URL      string
	LinkType LinkType
	Title    string
	Body     string
	Labels   []string
	Comments []string // non-bot comments only
}
