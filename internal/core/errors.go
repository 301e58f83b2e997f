package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an analysis failure. Transport-layer codes are derived
// from the kind at the HTTP boundary only.
type ErrorKind string

const (
	KindIneligible  ErrorKind = "ineligible"
	KindUpstream    ErrorKind = "upstream"
	KindTimeout     ErrorKind = "timeout"
	KindValidation  ErrorKind = "validation"
	KindPersistence ErrorKind = "persistence"
)

// AnalysisError is the single error variant used across the review pipeline.
// It carries the failure kind, the PR it belongs to, and a caller-facing
// message suitable for posting on the PR.
type AnalysisError struct {
	Kind      ErrorKind
	RepoName  string
	PRNumber  int
	Message   string
	Retryable bool
	Err       error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s#%d: %s: %v", e.Kind, e.RepoName, e.PRNumber, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s#%d: %s", e.Kind, e.RepoName, e.PRNumber, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// IsKind reports whether err is an AnalysisError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// NewIneligibleError marks a PR as not qualifying for review. Ineligibility is
// an expected outcome, not a fault; callers short-circuit instead of retrying.
func NewIneligibleError(repo string, pr int, message string) *AnalysisError {
	return &AnalysisError{Kind: KindIneligible, RepoName: repo, PRNumber: pr, Message: message}
}

// NewUpstreamError wraps a hosting-platform or model-provider failure.
func NewUpstreamError(repo string, pr int, message string, retryable bool, err error) *AnalysisError {
	return &AnalysisError{Kind: KindUpstream, RepoName: repo, PRNumber: pr, Message: message, Retryable: retryable, Err: err}
}

// NewTimeoutError marks the hard review deadline as exceeded.
func NewTimeoutError(repo string, pr int, err error) *AnalysisError {
	return &AnalysisError{Kind: KindTimeout, RepoName: repo, PRNumber: pr, Message: "review timed out", Err: err}
}

// NewValidationError marks a model response that survived sanitization but is
// still unusable.
func NewValidationError(repo string, pr int, message string, err error) *AnalysisError {
	return &AnalysisError{Kind: KindValidation, RepoName: repo, PRNumber: pr, Message: message, Err: err}
}

// NewPersistenceError wraps a database failure. Persistence failures on
// secondary writes are logged and swallowed; this kind exists so callers can
// tell them apart.
func NewPersistenceError(repo string, pr int, err error) *AnalysisError {
	return &AnalysisError{Kind: KindPersistence, RepoName: repo, PRNumber: pr, Message: "persistence failure", Err: err}
}
