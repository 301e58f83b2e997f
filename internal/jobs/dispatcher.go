// Package jobs defines background tasks such as automated pull request reviews.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/storage"
)

const (
	defaultQueueSize    = 100
	defaultDrainTimeout = 30 * time.Second
)

// queuedJob is the in-memory handle for one durable queue row.
type queuedJob struct {
	id       string
	event    *core.PREvent
	followUp bool
}

// dispatcher implements core.JobDispatcher with a pool of worker goroutines
// fed from an in-memory channel. Every job is also persisted as a queue row,
// so jobs that were pending when the process died are re-queued on startup.
type dispatcher struct {
	reviewJob    core.Job
	store        storage.Store
	jobQueue     chan queuedJob
	maxWorkers   int
	drainTimeout time.Duration
	wg           sync.WaitGroup
	logger       *slog.Logger

	mu      sync.Mutex
	stopped bool

	obsMu     sync.RWMutex
	observers []core.JobObserver
}

// NewDispatcher initializes a dispatcher with a worker pool, re-queues jobs
// left over from a previous run, and starts the workers.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(reviewJob core.Job, store storage.Store, cfg *config.JobsConfig, logger *slog.Logger) core.JobDispatcher {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	drainTimeout := cfg.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}

	d := &dispatcher{
		reviewJob:    reviewJob,
		store:        store,
		maxWorkers:   maxWorkers,
		drainTimeout: drainTimeout,
		jobQueue:     make(chan queuedJob, queueSize),
		logger:       logger,
	}
	d.recoverPendingJobs()
	d.startWorkers()
	return d
}

// recoverPendingJobs re-queues rows that were queued or active when the
// previous process exited. Rows that no longer decode or fit the queue are
// marked failed rather than silently dropped.
func (d *dispatcher) recoverPendingJobs() {
	ctx := context.Background()

	pending, err := d.store.PendingJobs(ctx)
	if err != nil {
		d.logger.Error("failed to load pending jobs, skipping recovery", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	d.logger.Info("re-queuing jobs from previous run", "count", len(pending))

	for _, row := range pending {
		var event core.PREvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			d.logger.Error("failed to decode recovered job payload", "job_id", row.ID, "error", err)
			d.setState(ctx, row.ID, core.JobFailed, "unreadable payload after restart")
			continue
		}

		select {
		case d.jobQueue <- queuedJob{id: row.ID, event: &event, followUp: row.FollowUp}:
			d.setState(ctx, row.ID, core.JobQueued, "")
		default:
			d.setState(ctx, row.ID, core.JobFailed, "job queue full during recovery")
		}
	}
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes jobs from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for job := range d.jobQueue {
		d.processJob(workerID, job)
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

// processJob runs one review job and records its outcome.
func (d *dispatcher) processJob(workerID int, job queuedJob) {
	ctx := context.Background()

	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"job_id", job.id,
		"repo", job.event.RepoFullName,
		"pr", job.event.PRNumber,
	)

	d.setState(ctx, job.id, core.JobActive, "")
	d.notify(core.JobEvent{
		Type: core.JobEventStarted, JobID: job.id,
		Repo: job.event.RepoFullName, PRNumber: job.event.PRNumber, At: time.Now(),
	})

	err := d.reviewJob.Run(ctx, job.event, job.followUp)
	if err != nil {
		d.logger.Error("code review job failed",
			"job_id", job.id,
			"repo", job.event.RepoFullName,
			"pr", job.event.PRNumber,
			"error", err,
		)
		d.setState(ctx, job.id, core.JobFailed, err.Error())
		d.notify(core.JobEvent{
			Type: core.JobEventFailed, JobID: job.id,
			Repo: job.event.RepoFullName, PRNumber: job.event.PRNumber,
			Err: err, At: time.Now(),
		})
		return
	}

	d.setState(ctx, job.id, core.JobCompleted, "")
	d.notify(core.JobEvent{
		Type: core.JobEventCompleted, JobID: job.id,
		Repo: job.event.RepoFullName, PRNumber: job.event.PRNumber, At: time.Now(),
	})
}

// Dispatch persists the event as a durable queue row and hands it to a worker.
// A full queue rejects the job so the webhook caller gets backpressure instead
// of an unbounded backlog.
func (d *dispatcher) Dispatch(ctx context.Context, event *core.PREvent, followUp bool) (string, error) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return "", fmt.Errorf("dispatcher is stopped, cannot accept new review job")
	}
	d.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to encode job payload: %w", err)
	}

	jobID := uuid.NewString()
	row := &storage.JobRecord{
		ID:             jobID,
		InstallationID: event.InstallationID,
		RepoFullName:   event.RepoFullName,
		PRNumber:       event.PRNumber,
		FollowUp:       followUp,
		Payload:        payload,
		State:          string(core.JobQueued),
	}
	if err := d.store.EnqueueJob(ctx, row); err != nil {
		return "", fmt.Errorf("failed to persist review job: %w", err)
	}

	// The send happens under the same lock Stop takes before closing the
	// channel, so a concurrent Stop can never close it mid-send. The channel
	// is buffered and the send non-blocking; the lock is held only briefly.
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.setState(ctx, jobID, core.JobFailed, "dispatcher stopped before the job could be queued")
		return "", fmt.Errorf("dispatcher is stopped, cannot accept new review job")
	}
	select {
	case d.jobQueue <- queuedJob{id: jobID, event: event, followUp: followUp}:
		d.mu.Unlock()
	default:
		d.mu.Unlock()
		d.setState(ctx, jobID, core.JobFailed, "job queue is full")
		return "", fmt.Errorf("job queue is full, cannot accept new review job")
	}

	d.logger.Info("queued code review job",
		"job_id", jobID, "repo", event.RepoFullName, "pr", event.PRNumber, "follow_up", followUp)
	d.notify(core.JobEvent{
		Type: core.JobEventAdded, JobID: jobID,
		Repo: event.RepoFullName, PRNumber: event.PRNumber, At: time.Now(),
	})
	return jobID, nil
}

// Subscribe registers an observer for job lifecycle events.
func (d *dispatcher) Subscribe(observer core.JobObserver) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	d.observers = append(d.observers, observer)
}

// Stats returns queue counters derived from the durable rows.
func (d *dispatcher) Stats(ctx context.Context) (core.QueueStats, error) {
	counts, err := d.store.CountJobsByState(ctx)
	if err != nil {
		return core.QueueStats{}, fmt.Errorf("failed to count jobs: %w", err)
	}
	return core.QueueStats{
		Depth:     counts[string(core.JobQueued)],
		Active:    counts[string(core.JobActive)],
		Completed: counts[string(core.JobCompleted)],
		Failed:    counts[string(core.JobFailed)],
	}, nil
}

// Lookup returns the state of a single job by id.
func (d *dispatcher) Lookup(ctx context.Context, jobID string) (*core.JobInfo, error) {
	row, err := d.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &core.JobInfo{
		ID:        row.ID,
		Repo:      row.RepoFullName,
		PRNumber:  row.PRNumber,
		FollowUp:  row.FollowUp,
		State:     core.JobState(row.State),
		Error:     row.LastError,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Stop closes the queue and waits for active jobs to finish, up to the drain
// timeout. Jobs still running after the timeout stay active in the durable
// queue and are re-queued on the next start.
func (d *dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for jobs to finish", "timeout", d.drainTimeout)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("all review jobs have finished")
	case <-time.After(d.drainTimeout):
		d.logger.Warn("drain timeout elapsed with jobs still running")
	}
}

// setState writes a job state transition; a failed write is logged, the
// in-memory pipeline keeps going.
func (d *dispatcher) setState(ctx context.Context, jobID string, state core.JobState, lastError string) {
	if err := d.store.SetJobState(ctx, jobID, string(state), lastError); err != nil {
		d.logger.Error("failed to update job state", "job_id", jobID, "state", state, "error", err)
	}
}

// notify delivers an event to every registered observer, synchronously.
func (d *dispatcher) notify(event core.JobEvent) {
	d.obsMu.RLock()
	observers := d.observers
	d.obsMu.RUnlock()

	for _, observer := range observers {
		observer(event)
	}
}
