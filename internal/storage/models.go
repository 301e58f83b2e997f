// Package storage implements the Postgres-backed persistence layer: review
// records, the job queue, indexing state, and the pgvector embedding store.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// IndexStatus is the lifecycle state of a repository indexing run.
type IndexStatus string

const (
	IndexInProgress IndexStatus = "IN_PROGRESS"
	IndexCompleted  IndexStatus = "COMPLETED"
	IndexFailed     IndexStatus = "FAILED"
)

// CodeFile is one indexed file per (installation, repository, path). The
// content hash detects changes between indexing runs.
type CodeFile struct {
	ID             int64     `db:"id"`
	InstallationID int64     `db:"installation_id"`
	RepoFullName   string    `db:"repo_full_name"`
	FilePath       string    `db:"file_path"`
	ContentHash    string    `db:"content_hash"`
	IndexedAt      time.Time `db:"indexed_at"`
}

// CodeChunk is one embedded slice of a file's content. Chunks are replaced
// wholesale whenever their parent file is re-indexed.
type CodeChunk struct {
	ID         int64     `db:"id"`
	FileID     int64     `db:"file_id"`
	ChunkIndex int       `db:"chunk_index"`
	Content    string    `db:"content"`
	Embedding  []float32 `db:"-"`
}

// ChunkMatch is a similarity search hit.
type ChunkMatch struct {
	FilePath   string  `db:"file_path"`
	ChunkIndex int     `db:"chunk_index"`
	Content    string  `db:"content"`
	Similarity float64 `db:"similarity"`
}

// IndexingState is one row per (installation, repository), enabling resumable
// indexing after interruption.
type IndexingState struct {
	InstallationID      int64       `db:"installation_id"`
	RepoFullName        string      `db:"repo_full_name"`
	Status              IndexStatus `db:"status"`
	LastIndexedFilePath string      `db:"last_indexed_file_path"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

// JobRecord is one durable queue row. Jobs survive process restarts; pending
// rows are re-enqueued on startup.
type JobRecord struct {
	ID             string    `db:"id"`
	InstallationID int64     `db:"installation_id"`
	RepoFullName   string    `db:"repo_full_name"`
	PRNumber       int       `db:"pr_number"`
	FollowUp       bool      `db:"follow_up"`
	Payload        []byte    `db:"payload"`
	State          string    `db:"state"`
	LastError      string    `db:"last_error"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
