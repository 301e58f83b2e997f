package core

import (
	"context"
	"time"
)

// JobState is the lifecycle state of a queued review job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobActive    JobState = "active"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// JobEventType identifies a job lifecycle transition delivered to observers.
type JobEventType string

const (
	JobEventAdded     JobEventType = "jobAdded"
	JobEventStarted   JobEventType = "jobStarted"
	JobEventCompleted JobEventType = "jobCompleted"
	JobEventFailed    JobEventType = "jobFailed"
)

// JobEvent is a single job state change, delivered to registered observers.
type JobEvent struct {
	Type     JobEventType
	JobID    string
	Repo     string
	PRNumber int
	Err      error
	At       time.Time
}

// JobObserver receives job lifecycle events. Observers must not block; slow
// consumers are the observer's problem, not the dispatcher's.
type JobObserver func(JobEvent)

// QueueStats is a point-in-time view of the job queue for the admin endpoints.
type QueueStats struct {
	Depth     int `json:"depth"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// JobInfo describes one job for per-job lookup.
type JobInfo struct {
	ID        string    `json:"id"`
	Repo      string    `json:"repo"`
	PRNumber  int       `json:"prNumber"`
	FollowUp  bool      `json:"followUp"`
	State     JobState  `json:"state"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobDispatcher accepts review jobs for asynchronous processing and exposes
// queue introspection for operational visibility. It decouples the webhook
// handler from the execution mechanism.
type JobDispatcher interface {
	// Dispatch queues an event for processing and returns the job id.
	// It returns an error if the job cannot be queued, for example when the
	// queue is full, providing backpressure to the caller.
	Dispatch(ctx context.Context, event *PREvent, followUp bool) (string, error)

	// Subscribe registers an observer for job lifecycle events.
	Subscribe(observer JobObserver)

	// Stats returns the current queue depth and active job count.
	Stats(ctx context.Context) (QueueStats, error)

	// Lookup returns the state of a single job by id.
	Lookup(ctx context.Context, jobID string) (*JobInfo, error)

	// Stop drains the queue: no new jobs are accepted, and Stop returns once
	// active jobs finish or the drain timeout elapses.
	Stop()
}

// Job is a single executable unit of work processed by the dispatcher.
type Job interface {
	// Run executes the job's logic for one PR event. The followUp flag selects
	// the incremental review path.
	Run(ctx context.Context, event *PREvent, followUp bool) error
}
