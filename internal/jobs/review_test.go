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
	"github.com/sevigo/review-warden/internal/storage"
	"github.com/sevigo/review-warden/mocks"
)

type reviewJobFixture struct {
	clients   *mocks.MockClientFactory
	client    *mocks.MockClient
	store     *mocks.MockStore
	extractor *mocks.MockExtractor
	retriever *mocks.MockContextRetriever
	generator *mocks.MockGenerator
	publisher *mocks.MockCommentPublisher
	job       core.Job
}

func newReviewJobFixture(t *testing.T) *reviewJobFixture {
	return newReviewJobFixtureWithConfig(t, &config.Config{})
}

func newReviewJobFixtureWithConfig(t *testing.T, cfg *config.Config) *reviewJobFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &reviewJobFixture{
		clients:   mocks.NewMockClientFactory(ctrl),
		client:    mocks.NewMockClient(ctrl),
		store:     mocks.NewMockStore(ctrl),
		extractor: mocks.NewMockExtractor(ctrl),
		retriever: mocks.NewMockContextRetriever(ctrl),
		generator: mocks.NewMockGenerator(ctrl),
		publisher: mocks.NewMockCommentPublisher(ctrl),
	}
	f.job = jobs.NewReviewJob(cfg, f.clients, f.store, f.extractor,
		f.retriever, f.generator, f.publisher, testLogger())
	return f
}

// expectSetup wires the steps every successful run shares: client creation,
// PR fetch, and record creation.
func (f *reviewJobFixture) expectSetup(event *core.PREvent, reviewID int64) {
	f.clients.EXPECT().ClientFor(gomock.Any(), event.InstallationID).Return(f.client, "token", nil)
	f.client.EXPECT().GetPullRequest(gomock.Any(), event.RepoOwner, event.RepoName, event.PRNumber).
		Return(&gogithub.PullRequest{
			Head: &gogithub.PullRequestBranch{SHA: gogithub.Ptr("abc1234def")},
		}, nil)
	f.store.EXPECT().CreateReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *core.ReviewRecord) error {
			rec.ID = reviewID
			return nil
		})
}

func sampleReview() *core.StructuredReview {
	return &core.StructuredReview{
		MergeScore: 78,
		Confidence: 0.85,
		Summary:    "Solid change, one nil check missing.",
		Suggestions: []core.Suggestion{
			{File: "main.go", Line: 10, Severity: core.SeverityHigh, Type: core.SuggestionFix, Description: "check for nil"},
		},
	}
}

func TestReviewJobRunInitialReview(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()

	f.expectSetup(event, 7)

	prCtx := &extract.PRContext{Event: event, Diff: "diff --git a/main.go b/main.go"}
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(prCtx, nil)

	reviewCtx := &llm.ReviewContext{PR: prCtx}
	f.retriever.EXPECT().Retrieve(gomock.Any(), f.client, prCtx).Return(reviewCtx)
	f.generator.EXPECT().GenerateReview(gomock.Any(), reviewCtx).Return(sampleReview(), nil)

	f.publisher.EXPECT().PostOrUpdate(gomock.Any(), f.client, gomock.Any(), gomock.Any()).Return(nil)

	f.store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *core.ReviewRecord) error {
			assert.Equal(t, int64(7), rec.ID)
			assert.Equal(t, 78, rec.MergeScore)
			assert.Equal(t, "abc1234def", rec.HeadSHA)
			assert.False(t, rec.FollowUp)
			// The next follow-up cycle reads this context off the record.
			assert.Equal(t, prCtx.Diff, rec.FollowUpContext.PreviousDiff)
			assert.Equal(t, 78, rec.FollowUpContext.PreviousScore)
			return nil
		})

	err := f.job.Run(context.Background(), event, false)
	require.NoError(t, err)
}

func TestReviewJobRunFollowUpSeedsPreviousReview(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()

	f.expectSetup(event, 8)

	prCtx := &extract.PRContext{Event: event, Diff: "new diff"}
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(prCtx, nil)
	f.retriever.EXPECT().Retrieve(gomock.Any(), f.client, prCtx).Return(&llm.ReviewContext{PR: prCtx})

	f.store.EXPECT().GetLatestCompletedReview(gomock.Any(), event.InstallationID, event.RepoFullName, event.PRNumber).
		Return(&core.ReviewRecord{
			MergeScore: 60,
			Summary:    "needs work",
			FollowUpContext: core.FollowUpContext{
				PreviousDiff:    "old diff",
				PreviousSummary: "needs work",
				PreviousScore:   60,
			},
		}, nil)

	f.generator.EXPECT().GenerateFollowUpReview(gomock.Any(), gomock.Any(), core.FollowUpContext{
		PreviousDiff:    "old diff",
		PreviousSummary: "needs work",
		PreviousScore:   60,
	}).Return(sampleReview(), nil)

	f.publisher.EXPECT().PostFollowUp(gomock.Any(), f.client, gomock.Any(), gomock.Any()).Return(nil)
	f.store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).Return(nil)

	err := f.job.Run(context.Background(), event, true)
	require.NoError(t, err)
}

func TestReviewJobRunFollowUpWithoutPredecessor(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()

	f.expectSetup(event, 9)

	prCtx := &extract.PRContext{Event: event}
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(prCtx, nil)
	f.retriever.EXPECT().Retrieve(gomock.Any(), f.client, prCtx).Return(&llm.ReviewContext{PR: prCtx})

	f.store.EXPECT().GetLatestCompletedReview(gomock.Any(), event.InstallationID, event.RepoFullName, event.PRNumber).
		Return(nil, storage.ErrNotFound)

	// No prior review means the follow-up runs with empty previous context.
	f.generator.EXPECT().GenerateFollowUpReview(gomock.Any(), gomock.Any(), core.FollowUpContext{}).
		Return(sampleReview(), nil)

	f.publisher.EXPECT().PostFollowUp(gomock.Any(), f.client, gomock.Any(), gomock.Any()).Return(nil)
	f.store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).Return(nil)

	err := f.job.Run(context.Background(), event, true)
	require.NoError(t, err)
}

func TestReviewJobRunFollowUpPublishesOverPlaceholder(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()
	event.PlaceholderCommentID = 888

	f.expectSetup(event, 12)

	prCtx := &extract.PRContext{Event: event, Diff: "new diff"}
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(prCtx, nil)
	f.retriever.EXPECT().Retrieve(gomock.Any(), f.client, prCtx).Return(&llm.ReviewContext{PR: prCtx})

	f.store.EXPECT().GetLatestCompletedReview(gomock.Any(), event.InstallationID, event.RepoFullName, event.PRNumber).
		Return(nil, storage.ErrNotFound)
	f.generator.EXPECT().GenerateFollowUpReview(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(sampleReview(), nil)

	// The record must carry the gateway's placeholder comment id so the
	// published follow-up replaces the placeholder instead of stacking a
	// second comment.
	f.publisher.EXPECT().PostFollowUp(gomock.Any(), f.client, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ github.Client, rec *core.ReviewRecord, _ *core.StructuredReview) error {
			require.NotNil(t, rec.CommentID)
			assert.Equal(t, int64(888), *rec.CommentID)
			return nil
		})
	f.store.EXPECT().CompleteReview(gomock.Any(), gomock.Any()).Return(nil)

	err := f.job.Run(context.Background(), event, true)
	require.NoError(t, err)
}

func TestReviewJobRunIneligiblePR(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()

	f.expectSetup(event, 10)

	cause := core.NewIneligibleError(event.RepoFullName, event.PRNumber, "PR has no linked issues")
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(nil, cause)

	f.store.EXPECT().FailReview(gomock.Any(), int64(10)).Return(nil)
	f.publisher.EXPECT().PostFailureNotice(gomock.Any(), f.client, gomock.Any(), "PR has no linked issues")

	err := f.job.Run(context.Background(), event, false)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindIneligible))
}

func TestReviewJobRunGenerationTimeout(t *testing.T) {
	f := newReviewJobFixture(t)
	event := testEvent()

	f.expectSetup(event, 11)

	prCtx := &extract.PRContext{Event: event}
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).Return(prCtx, nil)
	f.retriever.EXPECT().Retrieve(gomock.Any(), f.client, prCtx).Return(&llm.ReviewContext{PR: prCtx})

	f.generator.EXPECT().GenerateReview(gomock.Any(), gomock.Any()).
		Return(nil, core.NewTimeoutError(event.RepoFullName, event.PRNumber, context.DeadlineExceeded))

	f.store.EXPECT().FailReview(gomock.Any(), int64(11)).Return(nil)
	f.publisher.EXPECT().PostFailureNotice(gomock.Any(), f.client, gomock.Any(),
		"the review did not finish within the time limit")

	err := f.job.Run(context.Background(), event, false)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindTimeout))
}

func TestReviewJobRunDeadlineCoversContextAssembly(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{ReviewTimeout: 50 * time.Millisecond}}
	f := newReviewJobFixtureWithConfig(t, cfg)
	event := testEvent()

	f.expectSetup(event, 13)

	// A context build slower than the review budget must be cut off; the
	// deadline covers the whole analysis, not just the model call.
	f.extractor.EXPECT().BuildContext(gomock.Any(), f.client, event).DoAndReturn(
		func(ctx context.Context, _ github.Client, _ *core.PREvent) (*extract.PRContext, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			require.LessOrEqual(t, time.Until(deadline), 50*time.Millisecond)
			<-ctx.Done()
			return nil, ctx.Err()
		})

	f.store.EXPECT().FailReview(gomock.Any(), int64(13)).Return(nil)
	f.publisher.EXPECT().PostFailureNotice(gomock.Any(), f.client, gomock.Any(),
		"the review did not finish within the time limit")

	err := f.job.Run(context.Background(), event, false)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindTimeout))
}

func TestReviewJobRunValidatesInputs(t *testing.T) {
	f := newReviewJobFixture(t)

	tests := []struct {
		name  string
		event *core.PREvent
	}{
		{name: "nil event", event: nil},
		{name: "missing owner", event: &core.PREvent{RepoName: "widgets", RepoFullName: "acme/widgets", PRNumber: 1, InstallationID: 42}},
		{name: "zero PR number", event: &core.PREvent{RepoOwner: "acme", RepoName: "widgets", RepoFullName: "acme/widgets", InstallationID: 42}},
		{name: "zero installation", event: &core.PREvent{RepoOwner: "acme", RepoName: "widgets", RepoFullName: "acme/widgets", PRNumber: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.job.Run(context.Background(), tt.event, false)
			assert.ErrorContains(t, err, "input validation failed")
		})
	}
}
