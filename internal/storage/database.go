package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-warden/internal/core"
)

// Store defines the interface for all database operations.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store
type Store interface {
	// Review records
	CreateReview(ctx context.Context, rec *core.ReviewRecord) error
	CompleteReview(ctx context.Context, rec *core.ReviewRecord) error
	FailReview(ctx context.Context, reviewID int64) error
	SetReviewCommentID(ctx context.Context, reviewID, commentID int64) error
	GetReview(ctx context.Context, reviewID int64) (*core.ReviewRecord, error)
	GetLatestCompletedReview(ctx context.Context, installationID int64, repoFullName string, prNumber int) (*core.ReviewRecord, error)

	// Embedding store
	UpsertFile(ctx context.Context, file *CodeFile) (int64, error)
	ReplaceChunks(ctx context.Context, fileID int64, chunks []CodeChunk) error
	GetFileHashes(ctx context.Context, installationID int64, repoFullName string) (map[string]string, error)
	SimilaritySearch(ctx context.Context, embedding []float32, installationID int64, repoFullName string, limit int, minSimilarity float64) []ChunkMatch

	// Indexing state
	GetIndexingState(ctx context.Context, installationID int64, repoFullName string) (*IndexingState, error)
	UpsertIndexingState(ctx context.Context, state *IndexingState) error

	// Durable job queue
	EnqueueJob(ctx context.Context, job *JobRecord) error
	SetJobState(ctx context.Context, jobID, state, lastError string) error
	GetJob(ctx context.Context, jobID string) (*JobRecord, error)
	PendingJobs(ctx context.Context) ([]JobRecord, error)
	CountJobsByState(ctx context.Context) (map[string]int, error)
}

type postgresStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Postgres-backed Store.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	return &postgresStore{db: db, logger: logger}
}

// CreateReview inserts a new IN_PROGRESS review record and fills in its id.
func (s *postgresStore) CreateReview(ctx context.Context, rec *core.ReviewRecord) error {
	query := `
		INSERT INTO reviews (installation_id, repo_full_name, pr_number, pr_url, head_sha, status, follow_up, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, created_at`
	row := s.db.QueryRowContext(ctx, query,
		rec.InstallationID, rec.RepoFullName, rec.PRNumber, rec.PRURL, rec.HeadSHA, core.ReviewInProgress, rec.FollowUp)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to create review record: %w", err)
	}
	rec.Status = core.ReviewInProgress
	return nil
}

// CompleteReview stores the review outcome and marks the record COMPLETED.
func (s *postgresStore) CompleteReview(ctx context.Context, rec *core.ReviewRecord) error {
	suggestions, err := json.Marshal(rec.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	followUp, err := json.Marshal(rec.FollowUpContext)
	if err != nil {
		return fmt.Errorf("failed to marshal follow-up context: %w", err)
	}

	query := `
		UPDATE reviews
		SET merge_score = $2, summary = $3, suggestions = $4, follow_up_context = $5,
		    processing_ms = $6, status = $7, updated_at = now()
		WHERE id = $1`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.MergeScore, rec.Summary, suggestions, followUp, rec.ProcessingMS, core.ReviewCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete review %d: %w", rec.ID, err)
	}
	rec.Status = core.ReviewCompleted
	return nil
}

// FailReview transitions a record to its terminal FAILED state.
func (s *postgresStore) FailReview(ctx context.Context, reviewID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET status = $2, updated_at = now() WHERE id = $1`,
		reviewID, core.ReviewFailed)
	if err != nil {
		return fmt.Errorf("failed to mark review %d failed: %w", reviewID, err)
	}
	return nil
}

// SetReviewCommentID stores the published comment id on the record. The
// publisher is the only caller; it never touches review content.
func (s *postgresStore) SetReviewCommentID(ctx context.Context, reviewID, commentID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET comment_id = $2, updated_at = now() WHERE id = $1`,
		reviewID, commentID)
	if err != nil {
		return fmt.Errorf("failed to store comment id for review %d: %w", reviewID, err)
	}
	return nil
}

const reviewColumns = `id, installation_id, repo_full_name, pr_number, pr_url, head_sha, comment_id,
	merge_score, summary, suggestions, follow_up_context, status, follow_up, processing_ms, created_at, updated_at`

func (s *postgresStore) scanReview(row *sqlx.Row) (*core.ReviewRecord, error) {
	var rec core.ReviewRecord
	if err := row.StructScan(&rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(rec.SuggestionsJSON) > 0 {
		if err := json.Unmarshal(rec.SuggestionsJSON, &rec.Suggestions); err != nil {
			return nil, fmt.Errorf("failed to decode suggestions for review %d: %w", rec.ID, err)
		}
	}
	if len(rec.FollowUpJSON) > 0 {
		if err := json.Unmarshal(rec.FollowUpJSON, &rec.FollowUpContext); err != nil {
			return nil, fmt.Errorf("failed to decode follow-up context for review %d: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// GetReview retrieves a single review record by id.
func (s *postgresStore) GetReview(ctx context.Context, reviewID int64) (*core.ReviewRecord, error) {
	row := s.db.QueryRowxContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, reviewID)
	return s.scanReview(row)
}

// GetLatestCompletedReview retrieves the most recent COMPLETED review for a
// pull request, used to seed follow-up context.
func (s *postgresStore) GetLatestCompletedReview(ctx context.Context, installationID int64, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE installation_id = $1 AND repo_full_name = $2 AND pr_number = $3 AND status = $4
		ORDER BY created_at DESC
		LIMIT 1`,
		installationID, repoFullName, prNumber, core.ReviewCompleted)
	return s.scanReview(row)
}

// UpsertFile inserts or updates a code file row by its natural key and returns
// the row id.
func (s *postgresStore) UpsertFile(ctx context.Context, file *CodeFile) (int64, error) {
	query := `
		INSERT INTO code_files (installation_id, repo_full_name, file_path, content_hash, indexed_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (installation_id, repo_full_name, file_path)
		DO UPDATE SET content_hash = EXCLUDED.content_hash, indexed_at = now()
		RETURNING id`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		file.InstallationID, file.RepoFullName, file.FilePath, file.ContentHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert code file %s: %w", file.FilePath, err)
	}
	file.ID = id
	return id, nil
}

// ReplaceChunks atomically replaces all chunks of a file: delete then insert in
// one transaction. There are no partial chunk updates.
func (s *postgresStore) ReplaceChunks(ctx context.Context, fileID int64, chunks []CodeChunk) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chunk replacement: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM code_chunks WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete old chunks for file %d: %w", fileID, err)
	}

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO code_chunks (file_id, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4::vector)`,
			fileID, chunk.ChunkIndex, chunk.Content, encodeVector(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d for file %d: %w", chunk.ChunkIndex, fileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// GetFileHashes returns path -> content hash for every indexed file of a repo.
func (s *postgresStore) GetFileHashes(ctx context.Context, installationID int64, repoFullName string) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT file_path, content_hash FROM code_files
		WHERE installation_id = $1 AND repo_full_name = $2`,
		installationID, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("failed to load file hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		hashes[path] = hash
	}
	return hashes, rows.Err()
}

// SimilaritySearch runs a cosine nearest-neighbor query scoped to one
// repository. Rows below minSimilarity are excluded in SQL; results come back
// ordered by ascending distance (descending similarity). A query failure
// degrades to an empty result set so context building never blocks a review.
// similaritySearchQuery filters below-threshold rows in SQL and orders by
// ascending cosine distance, so the best match always comes back first.
const similaritySearchQuery = `
	SELECT f.file_path, c.chunk_index, c.content,
	       1 - (c.embedding <=> $1::vector) AS similarity
	FROM code_chunks c
	JOIN code_files f ON f.id = c.file_id
	WHERE f.installation_id = $2 AND f.repo_full_name = $3
	  AND c.embedding IS NOT NULL
	  AND 1 - (c.embedding <=> $1::vector) >= $4
	ORDER BY c.embedding <=> $1::vector ASC
	LIMIT $5`

func (s *postgresStore) SimilaritySearch(ctx context.Context, embedding []float32, installationID int64, repoFullName string, limit int, minSimilarity float64) []ChunkMatch {
	var matches []ChunkMatch
	err := s.db.SelectContext(ctx, &matches, similaritySearchQuery,
		encodeVector(embedding), installationID, repoFullName, minSimilarity, limit)
	if err != nil {
		s.logger.Warn("similarity search failed, continuing without retrieved chunks",
			"repo", repoFullName, "error", err)
		return nil
	}
	return matches
}

// GetIndexingState loads the indexing state row, or nil when absent.
func (s *postgresStore) GetIndexingState(ctx context.Context, installationID int64, repoFullName string) (*IndexingState, error) {
	var state IndexingState
	err := s.db.GetContext(ctx, &state, `
		SELECT installation_id, repo_full_name, status, last_indexed_file_path, updated_at
		FROM indexing_states
		WHERE installation_id = $1 AND repo_full_name = $2`,
		installationID, repoFullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load indexing state: %w", err)
	}
	return &state, nil
}

// UpsertIndexingState persists the indexing checkpoint.
func (s *postgresStore) UpsertIndexingState(ctx context.Context, state *IndexingState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexing_states (installation_id, repo_full_name, status, last_indexed_file_path, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (installation_id, repo_full_name)
		DO UPDATE SET status = EXCLUDED.status,
		              last_indexed_file_path = EXCLUDED.last_indexed_file_path,
		              updated_at = now()`,
		state.InstallationID, state.RepoFullName, state.Status, state.LastIndexedFilePath)
	if err != nil {
		return fmt.Errorf("failed to upsert indexing state: %w", err)
	}
	return nil
}

// EnqueueJob inserts a durable queue row.
func (s *postgresStore) EnqueueJob(ctx context.Context, job *JobRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, installation_id, repo_full_name, pr_number, follow_up, payload, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		job.ID, job.InstallationID, job.RepoFullName, job.PRNumber, job.FollowUp, job.Payload, core.JobQueued)
	if err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// SetJobState updates a job's lifecycle state.
func (s *postgresStore) SetJobState(ctx context.Context, jobID, state, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET state = $2, last_error = $3, updated_at = now() WHERE id = $1`,
		jobID, state, lastError)
	if err != nil {
		return fmt.Errorf("failed to update job %s state: %w", jobID, err)
	}
	return nil
}

// GetJob loads one job row by id.
func (s *postgresStore) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	var job JobRecord
	err := s.db.GetContext(ctx, &job, `
		SELECT id, installation_id, repo_full_name, pr_number, follow_up, payload, state, last_error, created_at, updated_at
		FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	return &job, nil
}

// PendingJobs returns jobs that were queued or active when the process last
// stopped; the dispatcher re-enqueues them on startup so a crash never loses a
// review.
func (s *postgresStore) PendingJobs(ctx context.Context) ([]JobRecord, error) {
	var jobs []JobRecord
	err := s.db.SelectContext(ctx, &jobs, `
		SELECT id, installation_id, repo_full_name, pr_number, follow_up, payload, state, last_error, created_at, updated_at
		FROM jobs WHERE state IN ($1, $2)
		ORDER BY created_at ASC`,
		core.JobQueued, core.JobActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending jobs: %w", err)
	}
	return jobs, nil
}

// CountJobsByState returns state -> count for queue statistics.
func (s *postgresStore) CountJobsByState(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[state] = count
	}
	return counts, rows.Err()
}
