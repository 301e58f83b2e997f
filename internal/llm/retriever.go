package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/goframe/embeddings"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/storage"
)

// Conventional locations tried in order; the first hit wins.
var (
	styleGuidePaths = []string{
		"STYLEGUIDE.md",
		"STYLE_GUIDE.md",
		"docs/STYLEGUIDE.md",
		"CONTRIBUTING.md",
	}
	readmePaths = []string{
		"README.md",
		"README.rst",
		"README",
		"docs/README.md",
	}
)

const (
	maxGuideChars  = 8000
	repoConfigPath = ".review-warden.yml"
)

// ReviewContext is the assembled input for one generation call.
type ReviewContext struct {
	PR         *extract.PRContext
	StyleGuide string
	Readme     string
	Similar    []storage.ChunkMatch

	// CustomInstructions come from the repository's own config file and are
	// appended to the review prompt.
	CustomInstructions []string
}

// SimilarCode renders the retrieved chunks as one annotated text block for
// the prompt, empty when retrieval found nothing.
func (rc *ReviewContext) SimilarCode() string {
	if len(rc.Similar) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, match := range rc.Similar {
		fmt.Fprintf(&sb, "// %s (similarity %.2f)\n%s\n\n", match.FilePath, match.Similarity, match.Content)
	}
	return sb.String()
}

// ContextRetriever gathers repository documentation and semantically similar
// code for a pull request.
type ContextRetriever interface {
	Retrieve(ctx context.Context, client github.Client, prCtx *extract.PRContext) *ReviewContext
}

type contextRetriever struct {
	cfg      *config.RetrievalConfig
	store    storage.Store
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewContextRetriever creates the default retriever.
func NewContextRetriever(cfg *config.RetrievalConfig, store storage.Store, embedder embeddings.Embedder, logger *slog.Logger) ContextRetriever {
	return &contextRetriever{cfg: cfg, store: store, embedder: embedder, logger: logger}
}

// Retrieve never fails: every lookup degrades to an absent section. A review
// with less context is better than no review.
func (r *contextRetriever) Retrieve(ctx context.Context, client github.Client, prCtx *extract.PRContext) *ReviewContext {
	event := prCtx.Event
	rc := &ReviewContext{
		PR:                 prCtx,
		StyleGuide:         r.fetchFirst(ctx, client, event.RepoOwner, event.RepoName, styleGuidePaths),
		Readme:             r.fetchFirst(ctx, client, event.RepoOwner, event.RepoName, readmePaths),
		CustomInstructions: r.fetchInstructions(ctx, client, event.RepoOwner, event.RepoName),
	}

	if r.cfg.Disabled {
		r.logger.Debug("semantic retrieval disabled by configuration", "repo", event.RepoFullName)
		return rc
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, prCtx.QueryText())
	if err != nil {
		r.logger.Warn("failed to embed retrieval query, continuing without similar code",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		return rc
	}

	rc.Similar = r.store.SimilaritySearch(ctx, queryVec,
		event.InstallationID, event.RepoFullName, r.cfg.TopK, r.cfg.MinSimilarity)
	r.logger.Info("retrieved similar code chunks",
		"repo", event.RepoFullName, "pr", event.PRNumber, "chunks", len(rc.Similar))
	return rc
}

// fetchInstructions reads the repository's review-warden config and returns
// its custom review instructions. A missing or malformed file yields none.
func (r *contextRetriever) fetchInstructions(ctx context.Context, client github.Client, owner, repo string) []string {
	content, err := client.GetFileContent(ctx, owner, repo, repoConfigPath)
	if err != nil || strings.TrimSpace(content) == "" {
		return nil
	}
	repoCfg, err := config.ParseRepoConfig([]byte(content))
	if err != nil {
		r.logger.Warn("repository config is malformed, ignoring custom instructions",
			"repo", owner+"/"+repo, "error", err)
		return nil
	}
	return repoCfg.CustomInstructions
}

// fetchFirst tries the paths in order and returns the first file found,
// truncated to a bounded size. Absence of all of them is not an error.
func (r *contextRetriever) fetchFirst(ctx context.Context, client github.Client, owner, repo string, paths []string) string {
	for _, path := range paths {
		content, err := client.GetFileContent(ctx, owner, repo, path)
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}
		if len(content) > maxGuideChars {
			content = content[:maxGuideChars]
		}
		return content
	}
	return ""
}
