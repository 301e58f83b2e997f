package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
)

const (
	maxGenerateAttempts = 3
	generateBaseDelay   = 2 * time.Second
)

// Generator produces structured reviews from assembled context.
type Generator interface {
	GenerateReview(ctx context.Context, rc *ReviewContext) (*core.StructuredReview, error)
	GenerateFollowUpReview(ctx context.Context, rc *ReviewContext, prev core.FollowUpContext) (*core.StructuredReview, error)
}

type generator struct {
	cfg     *config.AIConfig
	model   llms.Model
	prompts *PromptManager
	logger  *slog.Logger
}

// NewGenerator creates a generator bound to one model.
func NewGenerator(cfg *config.AIConfig, model llms.Model, prompts *PromptManager, logger *slog.Logger) Generator {
	return &generator{cfg: cfg, model: model, prompts: prompts, logger: logger}
}

// GenerateReview renders the initial-review prompt and runs it through the
// model under the hard review deadline.
func (g *generator) GenerateReview(ctx context.Context, rc *ReviewContext) (*core.StructuredReview, error) {
	prompt, err := g.prompts.Render(CodeReviewPrompt, ModelProvider(g.cfg.LLMProvider), map[string]any{
		"StyleGuide":         rc.StyleGuide,
		"Readme":             rc.Readme,
		"SimilarCode":        rc.SimilarCode(),
		"CustomInstructions": rc.CustomInstructions,
		"PRBlock":            rc.PR.PromptBlock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render review prompt: %w", err)
	}
	return g.generate(ctx, rc, prompt)
}

// GenerateFollowUpReview renders the re-review prompt seeded with the
// previous cycle's diff, summary, and score.
func (g *generator) GenerateFollowUpReview(ctx context.Context, rc *ReviewContext, prev core.FollowUpContext) (*core.StructuredReview, error) {
	prompt, err := g.prompts.Render(FollowUpReviewPrompt, ModelProvider(g.cfg.LLMProvider), map[string]any{
		"PreviousScore":      prev.PreviousScore,
		"PreviousSummary":    prev.PreviousSummary,
		"PreviousDiff":       prev.PreviousDiff,
		"SimilarCode":        rc.SimilarCode(),
		"CustomInstructions": rc.CustomInstructions,
		"PRBlock":            rc.PR.PromptBlock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render follow-up prompt: %w", err)
	}
	return g.generate(ctx, rc, prompt)
}

func (g *generator) generate(ctx context.Context, rc *ReviewContext, prompt string) (*core.StructuredReview, error) {
	event := rc.PR.Event

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.NewTimeoutError(event.RepoFullName, event.PRNumber, err)
		}
		return nil, core.NewUpstreamError(event.RepoFullName, event.PRNumber,
			"model generation failed", isRateLimited(err), err)
	}

	review, err := parseStructuredReview(response)
	if err != nil {
		return nil, core.NewValidationError(event.RepoFullName, event.PRNumber,
			"model returned an unusable review", err)
	}
	return review, nil
}

// callWithRetry invokes the model under the caller's wall-clock deadline,
// which the review job derives for the whole analysis. A caller without a
// deadline still gets the configured timeout so the model can never be called
// unbounded. Only rate-limit-class failures are retried, with exponential
// backoff; every other error propagates immediately.
func (g *generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		timeout := g.cfg.ReviewTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		if attempt > 0 {
			delay := generateBaseDelay * time.Duration(1<<(attempt-1))
			g.logger.Warn("model call rate-limited, retrying",
				"attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := g.generateWithDeadline(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		if !isRateLimited(err) {
			return "", err
		}
	}
	return "", lastErr
}

// generateWithDeadline runs the model call in its own goroutine so a hung
// client cannot outlive the deadline; the in-flight call is abandoned, not
// forcibly killed.
func (g *generator) generateWithDeadline(ctx context.Context, prompt string) (string, error) {
	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
		select {
		case resultCh <- result{resp, err}:
		case <-ctx.Done():
		}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// isRateLimited classifies provider errors that are worth retrying. Providers
// disagree on wire formats, so this falls back to message inspection.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "too many requests")
}
