package jobs_test

import (
	"context"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/mocks"
)

// TestReviewPipelineEndToEnd drives an eligible PR event through the real
// dispatcher, review job, extractor, and publisher. Only the process
// boundaries (GitHub API, database, model) are mocked. The outcome to check:
// the job completes and exactly one marker-bearing comment lands on the PR.
func TestReviewPipelineEndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := testLogger()

	store := mocks.NewMockStore(ctrl)
	client := mocks.NewMockClient(ctrl)
	clients := mocks.NewMockClientFactory(ctrl)
	retriever := mocks.NewMockContextRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	event := testEvent()
	event.PRBody = "Implements the widget cache.\n\nCloses #3"

	// GitHub surface.
	clients.EXPECT().ClientFor(gomock.Any(), event.InstallationID).Return(client, "token", nil)
	client.EXPECT().GetPullRequest(gomock.Any(), "acme", "widgets", 17).
		Return(&gogithub.PullRequest{Head: &gogithub.PullRequestBranch{SHA: gogithub.Ptr("abc1234def")}}, nil)
	client.EXPECT().GetIssue(gomock.Any(), "acme", "widgets", 3).
		Return(&github.IssueDetail{Number: 3, Title: "Widgets are slow", Body: "Please add a cache."}, nil)
	client.EXPECT().GetPullRequestDiff(gomock.Any(), "acme", "widgets", 17).
		Return("diff --git a/cache.go b/cache.go\n+func Cache() {}", nil)
	client.EXPECT().GetChangedFiles(gomock.Any(), "acme", "widgets", 17).
		Return([]github.ChangedFile{{Filename: "cache.go", Patch: "+func Cache() {}"}}, nil)

	// No existing tracked comment; exactly one gets created.
	client.EXPECT().ListComments(gomock.Any(), "acme", "widgets", 17).Return(nil, nil)
	var commentBodies []string
	client.EXPECT().CreateComment(gomock.Any(), "acme", "widgets", 17, gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, _ int, body string) (int64, error) {
			commentBodies = append(commentBodies, body)
			return 555, nil
		}).Times(1)

	// Durable state.
	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobActive), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobCompleted), "").Return(nil)
	store.EXPECT().CreateReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *core.ReviewRecord) error {
			rec.ID = 7
			return nil
		})
	store.EXPECT().SetReviewCommentID(gomock.Any(), int64(7), int64(555)).Return(nil)

	var completed *core.ReviewRecord
	store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *core.ReviewRecord) error {
			completed = rec
			return nil
		})

	// Model surface.
	retriever.EXPECT().Retrieve(gomock.Any(), client, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ github.Client, prCtx *extract.PRContext) *llm.ReviewContext {
			return &llm.ReviewContext{PR: prCtx}
		})
	generator.EXPECT().GenerateReview(gomock.Any(), gomock.Any()).Return(&core.StructuredReview{
		MergeScore:  82,
		Confidence:  0.9,
		Summary:     "Cache looks correct.",
		Suggestions: []core.Suggestion{},
	}, nil)

	reviewJob := jobs.NewReviewJob(&config.Config{}, clients, store,
		extract.NewExtractor(logger), retriever, generator,
		github.NewCommentPublisher(store, logger), logger)
	dispatcher := jobs.NewDispatcher(reviewJob, store, testJobsConfig(), logger)
	defer dispatcher.Stop()

	events := make(chan core.JobEvent, 16)
	dispatcher.Subscribe(func(ev core.JobEvent) { events <- ev })

	jobID, err := dispatcher.Dispatch(context.Background(), event, false)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	done := waitForEvent(t, events, core.JobEventCompleted)
	assert.Equal(t, jobID, done.JobID)

	require.NotNil(t, completed)
	assert.Equal(t, 82, completed.MergeScore)
	assert.Equal(t, "abc1234def", completed.HeadSHA)
	assert.GreaterOrEqual(t, completed.ProcessingMS, int64(0))

	require.Len(t, commentBodies, 1)
	assert.Contains(t, commentBodies[0], "<!-- AI-REVIEW-MARKER:42:17:")
	assert.Contains(t, commentBodies[0], "Merge Score: 82/100")
	assert.Contains(t, commentBodies[0], "Cache looks correct.")
}

// TestReviewPipelineFollowUpReplacesPlaceholder runs a follow-up cycle
// through the real job and publisher. The gateway's "new commits detected"
// placeholder must end up holding the finished follow-up review; a PR that
// keeps the placeholder next to the result is the failure mode here.
func TestReviewPipelineFollowUpReplacesPlaceholder(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := testLogger()

	store := mocks.NewMockStore(ctrl)
	client := mocks.NewMockClient(ctrl)
	clients := mocks.NewMockClientFactory(ctrl)
	retriever := mocks.NewMockContextRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	event := testEvent()
	event.Action = core.ActionSynchronize
	event.PRBody = "Implements the widget cache.\n\nCloses #3"
	event.PlaceholderCommentID = 101

	clients.EXPECT().ClientFor(gomock.Any(), event.InstallationID).Return(client, "token", nil)
	client.EXPECT().GetPullRequest(gomock.Any(), "acme", "widgets", 17).
		Return(&gogithub.PullRequest{Head: &gogithub.PullRequestBranch{SHA: gogithub.Ptr("def5678abc")}}, nil)
	client.EXPECT().GetIssue(gomock.Any(), "acme", "widgets", 3).
		Return(&github.IssueDetail{Number: 3, Title: "Widgets are slow"}, nil)
	client.EXPECT().GetPullRequestDiff(gomock.Any(), "acme", "widgets", 17).
		Return("diff --git a/cache.go b/cache.go\n+func Cache() {}", nil)
	client.EXPECT().GetChangedFiles(gomock.Any(), "acme", "widgets", 17).
		Return([]github.ChangedFile{{Filename: "cache.go", Patch: "+func Cache() {}"}}, nil)

	// The placeholder exists and gets updated in place. CreateComment is not
	// expected at all: no second comment may appear.
	client.EXPECT().GetComment(gomock.Any(), "acme", "widgets", int64(101)).
		Return(&github.Comment{ID: 101, Body: "🔄 New commits detected on pull request #17"}, nil)
	var updatedBody string
	client.EXPECT().UpdateComment(gomock.Any(), "acme", "widgets", int64(101), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, _ int64, body string) error {
			updatedBody = body
			return nil
		})

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobActive), "").Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), string(core.JobCompleted), "").Return(nil)
	store.EXPECT().CreateReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *core.ReviewRecord) error {
			rec.ID = 8
			return nil
		})
	store.EXPECT().GetLatestCompletedReview(gomock.Any(), event.InstallationID, "acme/widgets", 17).
		Return(&core.ReviewRecord{ID: 7, MergeScore: 60, Summary: "needs work"}, nil)
	store.EXPECT().SetReviewCommentID(gomock.Any(), int64(8), int64(101)).Return(nil)
	store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).Return(nil)

	retriever.EXPECT().Retrieve(gomock.Any(), client, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ github.Client, prCtx *extract.PRContext) *llm.ReviewContext {
			return &llm.ReviewContext{PR: prCtx}
		})
	generator.EXPECT().GenerateFollowUpReview(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&core.StructuredReview{MergeScore: 85, Confidence: 0.9, Summary: "Cache fixed."}, nil)

	reviewJob := jobs.NewReviewJob(&config.Config{}, clients, store,
		extract.NewExtractor(logger), retriever, generator,
		github.NewCommentPublisher(store, logger), logger)
	dispatcher := jobs.NewDispatcher(reviewJob, store, testJobsConfig(), logger)
	defer dispatcher.Stop()

	events := make(chan core.JobEvent, 16)
	dispatcher.Subscribe(func(ev core.JobEvent) { events <- ev })

	_, err := dispatcher.Dispatch(context.Background(), event, true)
	require.NoError(t, err)
	waitForEvent(t, events, core.JobEventCompleted)

	assert.Contains(t, updatedBody, "Merge Score: 85/100")
	assert.Contains(t, updatedBody, "Cache fixed.")
	assert.NotContains(t, updatedBody, "New commits detected")
}

// Guards against observer delivery racing dispatcher shutdown.
func TestReviewPipelineStopAfterCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	job := mocks.NewMockJob(ctrl)

	store.EXPECT().PendingJobs(gomock.Any()).Return(nil, nil)
	store.EXPECT().EnqueueJob(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().SetJobState(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	job.EXPECT().Run(gomock.Any(), gomock.Any(), false).Return(nil)

	d := jobs.NewDispatcher(job, store, testJobsConfig(), testLogger())

	events := make(chan core.JobEvent, 16)
	d.Subscribe(func(ev core.JobEvent) { events <- ev })

	_, err := d.Dispatch(context.Background(), testEvent(), false)
	require.NoError(t, err)
	waitForEvent(t, events, core.JobEventCompleted)

	stopDone := make(chan struct{})
	go func() {
		d.Stop()
		close(stopDone)
	}()
	select {
	case <-stopDone:
	case <-time.After(3 * time.Second):
		t.Fatal("dispatcher did not stop after its queue drained")
	}
}
