// Package indexer walks repository trees, chunks and embeds their files, and
// fills the embedding store the context retriever reads from. Indexing runs
// are resumable: progress is checkpointed after every batch.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/parsers"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/storage"
)

const embedConcurrency = 4

// Indexer populates the embedding store for one repository at a time.
type Indexer struct {
	cfg      *config.IndexerConfig
	store    storage.Store
	embedder embeddings.Embedder
	registry parsers.ParserRegistry
	git      *gitutil.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewIndexer creates an indexer. The token limiter is a coarse self-throttle
// against embedding-provider rate limits, sized from the configured
// tokens-per-minute budget.
func NewIndexer(cfg *config.IndexerConfig, store storage.Store, embedder embeddings.Embedder, registry parsers.ParserRegistry, git *gitutil.Client, logger *slog.Logger) *Indexer {
	tokensPerSecond := float64(cfg.TokensPerMinute) / 60.0
	if tokensPerSecond <= 0 {
		tokensPerSecond = float64(rate.Inf)
	}
	burst := cfg.TokensPerMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &Indexer{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		registry: registry,
		git:      git,
		limiter:  rate.NewLimiter(rate.Limit(tokensPerSecond), burst),
		logger:   logger,
	}
}

// IndexRepository clones the repository at the given commit and indexes its
// tree. A run interrupted mid-way resumes from the last checkpoint; a
// completed run re-indexes from scratch, re-embedding only changed files.
func (ix *Indexer) IndexRepository(ctx context.Context, installationID int64, repoFullName, cloneURL, sha, token string) error {
	resumeFrom := ""
	state, err := ix.store.GetIndexingState(ctx, installationID, repoFullName)
	if err != nil {
		return err
	}
	if state != nil && state.Status == storage.IndexInProgress {
		resumeFrom = state.LastIndexedFilePath
		ix.logger.Info("resuming interrupted indexing run",
			"repo", repoFullName, "after", resumeFrom)
	}

	if err := ix.setState(ctx, installationID, repoFullName, storage.IndexInProgress, resumeFrom); err != nil {
		return err
	}

	repoPath, cleanup, err := ix.git.CloneAndCheckoutTemp(ctx, cloneURL, sha, token)
	if err != nil {
		ix.failState(ctx, installationID, repoFullName, resumeFrom)
		return fmt.Errorf("failed to clone %s for indexing: %w", repoFullName, err)
	}
	defer cleanup()

	repoCfg, err := config.LoadRepoConfig(repoPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		ix.logger.Warn("repository config unreadable, using defaults", "repo", repoFullName, "error", err)
		repoCfg = config.DefaultRepoConfig()
	}

	files, err := listRepoFiles(repoPath, newPathFilter(repoCfg))
	if err != nil {
		ix.failState(ctx, installationID, repoFullName, resumeFrom)
		return err
	}

	start := resumeIndex(files, resumeFrom)
	if start >= len(files) {
		return ix.setState(ctx, installationID, repoFullName, storage.IndexCompleted, "")
	}

	knownHashes, err := ix.store.GetFileHashes(ctx, installationID, repoFullName)
	if err != nil {
		ix.logger.Warn("failed to load known file hashes, re-embedding everything",
			"repo", repoFullName, "error", err)
		knownHashes = nil
	}

	batchSize := ix.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	for batchStart := start; batchStart < len(files); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(files) {
			batchEnd = len(files)
		}
		batch := files[batchStart:batchEnd]

		if err := ix.processBatch(ctx, installationID, repoFullName, repoPath, batch, knownHashes); err != nil {
			ix.failState(ctx, installationID, repoFullName, resumeFrom)
			return err
		}

		// A crash from here on loses at most this one batch of progress.
		resumeFrom = batch[len(batch)-1]
		if err := ix.setState(ctx, installationID, repoFullName, storage.IndexInProgress, resumeFrom); err != nil {
			return err
		}
	}

	ix.logger.Info("indexing complete", "repo", repoFullName, "files", len(files)-start)
	return ix.setState(ctx, installationID, repoFullName, storage.IndexCompleted, "")
}

func (ix *Indexer) setState(ctx context.Context, installationID int64, repoFullName string, status storage.IndexStatus, lastPath string) error {
	return ix.store.UpsertIndexingState(ctx, &storage.IndexingState{
		InstallationID:      installationID,
		RepoFullName:        repoFullName,
		Status:              status,
		LastIndexedFilePath: lastPath,
	})
}

func (ix *Indexer) failState(ctx context.Context, installationID int64, repoFullName, lastPath string) {
	if err := ix.setState(ctx, installationID, repoFullName, storage.IndexFailed, lastPath); err != nil {
		ix.logger.Error("failed to record indexing failure", "repo", repoFullName, "error", err)
	}
}

// pendingChunk is one chunk awaiting an embedding.
type pendingChunk struct {
	file      string
	index     int
	content   string
	embedding []float32
	failed    bool
}

// processBatch reads, chunks, and embeds one batch of files, then persists
// them. Chunks whose embedding fails are retried once after the batch; a
// chunk that still fails is dropped and its file keeps partial coverage.
func (ix *Indexer) processBatch(ctx context.Context, installationID int64, repoFullName, repoPath string, batch []string, knownHashes map[string]string) error {
	type fileWork struct {
		path   string
		hash   string
		chunks []*pendingChunk
	}

	var work []fileWork
	var allChunks []*pendingChunk

	for _, relPath := range batch {
		content, err := readFileForIndexing(repoPath, relPath)
		if err != nil {
			ix.logger.Warn("failed to read file, skipping", "file", relPath, "error", err)
			continue
		}
		if content == "" {
			continue
		}

		sum := sha256.Sum256([]byte(content))
		hash := hex.EncodeToString(sum[:])
		if knownHashes[relPath] == hash {
			continue
		}

		fw := fileWork{path: relPath, hash: hash}
		for i, text := range ix.chunkFile(repoPath, relPath, content) {
			chunk := &pendingChunk{file: relPath, index: i, content: text}
			fw.chunks = append(fw.chunks, chunk)
			allChunks = append(allChunks, chunk)
		}
		work = append(work, fw)
	}

	if err := ix.embedChunks(ctx, allChunks); err != nil {
		return err
	}

	// One retry pass for the stragglers.
	var retries []*pendingChunk
	for _, chunk := range allChunks {
		if chunk.failed {
			chunk.failed = false
			retries = append(retries, chunk)
		}
	}
	if len(retries) > 0 {
		ix.logger.Info("retrying failed embeddings", "count", len(retries))
		if err := ix.embedChunks(ctx, retries); err != nil {
			return err
		}
	}

	for _, fw := range work {
		var rows []storage.CodeChunk
		for _, chunk := range fw.chunks {
			if chunk.failed {
				ix.logger.Warn("dropping chunk after failed retry",
					"file", fw.path, "chunk", chunk.index)
				continue
			}
			rows = append(rows, storage.CodeChunk{
				ChunkIndex: chunk.index,
				Content:    chunk.content,
				Embedding:  chunk.embedding,
			})
		}

		fileID, err := ix.store.UpsertFile(ctx, &storage.CodeFile{
			InstallationID: installationID,
			RepoFullName:   repoFullName,
			FilePath:       fw.path,
			ContentHash:    fw.hash,
		})
		if err != nil {
			return err
		}
		if err := ix.store.ReplaceChunks(ctx, fileID, rows); err != nil {
			return err
		}
	}
	return nil
}

// embedChunks embeds chunks concurrently, marking failures instead of
// aborting. Only a context cancellation stops the whole pass.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []*pendingChunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	var mu sync.Mutex
	for _, chunk := range chunks {
		g.Go(func() error {
			if err := ix.throttle(gctx, chunk.content); err != nil {
				return err
			}
			vec, err := ix.embedder.EmbedQuery(gctx, chunk.content)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				ix.logger.Warn("embedding failed", "file", chunk.file, "chunk", chunk.index, "error", err)
				chunk.failed = true
				return nil
			}
			chunk.embedding = vec
			return nil
		})
	}
	return g.Wait()
}

// throttle charges the rolling token budget for one chunk before calling the
// embedding provider. The estimate mirrors the common chars-per-token ratio.
func (ix *Indexer) throttle(ctx context.Context, text string) error {
	tokens := len(text)/3 + 1
	if tokens > ix.limiter.Burst() {
		tokens = ix.limiter.Burst()
	}
	return ix.limiter.WaitN(ctx, tokens)
}

// chunkFile splits file content with the language-aware parser for its
// extension, falling back to fixed-size overlapping chunks for unknown types.
func (ix *Indexer) chunkFile(repoPath, relPath, content string) []string {
	if ix.registry != nil {
		fullPath := filepath.Join(repoPath, filepath.FromSlash(relPath))
		if parser, err := ix.registry.GetParserForFile(fullPath, nil); err == nil {
			chunks, err := parser.Chunk(content, relPath, nil)
			if err == nil && len(chunks) > 0 {
				out := make([]string, 0, len(chunks))
				for _, c := range chunks {
					out = append(out, c.Content)
				}
				return out
			}
			if err != nil {
				ix.logger.Warn("language-aware chunking failed, using generic splitter",
					"file", relPath, "error", err)
			}
		}
	}
	return splitOverlapping(content, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap)
}

// splitOverlapping cuts text into fixed-size chunks with the configured
// overlap between neighbors.
func splitOverlapping(text string, size, overlap int) []string {
	if size <= 0 {
		size = 2000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	step := size - overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
