package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/storage"
	"github.com/sevigo/review-warden/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEvent() *core.PREvent {
	return &core.PREvent{
		Action:         core.ActionOpened,
		RepoOwner:      "acme",
		RepoName:       "widgets",
		RepoFullName:   "acme/widgets",
		PRNumber:       17,
		InstallationID: 42,
	}
}

func testJobsConfig() *config.JobsConfig {
	return &config.JobsConfig{MaxWorkers: 1, QueueSize: 4, DrainTimeout: 2 * time.Second}
}

// waitForEvent blocks until the observer channel delivers an event of the
// wanted type, skipping others.
func waitForEvent(t *testing.T, events <-chan core.JobEvent, want core.JobEventType) core.JobEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for job event %q", want)
		}
	}
}

func TestDispatcherRunsQueuedJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobActive), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobCompleted), "").Return(nil)

	event := testEvent()
	job.EXPECT().Run(gomock.Any(), event, false).Return(nil)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	defer d.Stop()

	events := make(chan core.JobEvent, 16)
	d.Subscribe(func(ev core.JobEvent) { events <- ev })

	jobID, err := d.Dispatch(context.Background(), event, false)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	completed := waitForEvent(t, events, core.JobEventCompleted)
	assert.Equal(t, jobID, completed.JobID)
	assert.Equal(t, "acme/widgets", completed.Repo)
	assert.Equal(t, 17, completed.PRNumber)
}

func TestDispatcherRecordsJobFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	runErr := errors.New("model exploded")

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobActive), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobFailed), runErr.Error()).Return(nil)

	job.EXPECT().Run(gomock.Any(), gomock.Any(), true).Return(runErr)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	defer d.Stop()

	events := make(chan core.JobEvent, 16)
	d.Subscribe(func(ev core.JobEvent) { events <- ev })

	_, err := d.Dispatch(context.Background(), testEvent(), true)
	require.NoError(t, err)

	failed := waitForEvent(t, events, core.JobEventFailed)
	assert.ErrorContains(t, failed.Err, "model exploded")
}

func TestDispatcherRecoversPendingJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	event := testEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	store.EXPECT().PendingJobs(gomock.Any()).Return([]storage.JobRecord{{
		ID:             "job-1",
		InstallationID: event.InstallationID,
		RepoFullName:   event.RepoFullName,
		PRNumber:       event.PRNumber,
		FollowUp:       true,
		Payload:        payload,
		State:          string(core.JobActive),
	}}, nil)
	store.EXPECT().SetJobState(gomock.Any(), "job-1", string(core.JobQueued), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), "job-1", string(core.JobActive), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), "job-1", string(core.JobCompleted), "").Return(nil)

	done := make(chan struct{})
	job.EXPECT().Run(gomock.Any(), gomock.Any(), true).DoAndReturn(
		func(_ context.Context, ev *core.PREvent, _ bool) error {
			assert.Equal(t, "acme/widgets", ev.RepoFullName)
			assert.Equal(t, 17, ev.PRNumber)
			close(done)
			return nil
		})

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	defer d.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("recovered job was never executed")
	}
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	started := make(chan struct{})
	release := make(chan struct{})
	job.EXPECT().Run(gomock.Any(), gomock.Any(), false).DoAndReturn(
		func(context.Context, *core.PREvent, bool) error {
			close(started)
			<-release
			return nil
		})
	job.EXPECT().Run(gomock.Any(), gomock.Any(), false).Return(nil).AnyTimes()

	cfg := &config.JobsConfig{MaxWorkers: 1, QueueSize: 1, DrainTimeout: 2 * time.Second}
	d := jobs.NewDispatcher(job, store, cfg, testLogger())

	_, err := d.Dispatch(context.Background(), testEvent(), false)
	require.NoError(t, err)
	<-started // first job holds the only worker, the queue itself is empty

	_, err = d.Dispatch(context.Background(), testEvent(), false)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), testEvent(), false)
	assert.ErrorContains(t, err, "queue is full")

	close(release)
	d.Stop()
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	d.Stop()

	_, err := d.Dispatch(context.Background(), testEvent(), false)
	assert.ErrorContains(t, err, "stopped")
}

// Dispatch and Stop race over the job channel: the send must never hit a
// closed channel. Every Dispatch either queues the job or returns an error.
func TestDispatcherConcurrentDispatchAndStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	job.EXPECT().Run(gomock.Any(), gomock.Any(), false).Return(nil).AnyTimes()

	cfg := &config.JobsConfig{MaxWorkers: 2, QueueSize: 2, DrainTimeout: 2 * time.Second}
	d := jobs.NewDispatcher(job, store, cfg, testLogger())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Dispatch(context.Background(), testEvent(), false)
		}()
	}
	d.Stop()
	wg.Wait()

	_, err := d.Dispatch(context.Background(), testEvent(), false)
	assert.ErrorContains(t, err, "stopped")
}

func TestDispatcherStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().CountJobsByState(gomock.Any()).Return(map[string]int{
		"queued":    3,
		"active":    1,
		"completed": 10,
		"failed":    2,
	}, nil)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	defer d.Stop()

	stats, err := d.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.QueueStats{Depth: 3, Active: 1, Completed: 10, Failed: 2}, stats)
}

func TestDispatcherLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	created := time.Now().Add(-time.Minute)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().GetJob(gomock.Any(), "job-9").Return(&storage.JobRecord{
		ID:           "job-9",
		RepoFullName: "acme/widgets",
		PRNumber:     17,
		FollowUp:     true,
		State:        string(core.JobFailed),
		LastError:    "model exploded",
		CreatedAt:    created,
	}, nil)
	store.EXPECT().GetJob(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())
	defer d.Stop()

	info, err := d.Lookup(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, info.State)
	assert.Equal(t, "model exploded", info.Error)
	assert.True(t, info.FollowUp)
	assert.Equal(t, created, info.CreatedAt)

	_, err = d.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
