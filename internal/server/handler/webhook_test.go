package handler_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/server/handler"
	"github.com/sevigo/review-warden/internal/storage"
	"github.com/sevigo/review-warden/mocks"
)

const webhookSecret = "s3cret"

type webhookFixture struct {
	dispatcher *mocks.MockJobDispatcher
	store      *mocks.MockStore
	clients    *mocks.MockClientFactory
	client     *mocks.MockClient
	extractor  *mocks.MockExtractor
	publisher  *mocks.MockCommentPublisher
	handler    *handler.WebhookHandler
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &webhookFixture{
		dispatcher: mocks.NewMockJobDispatcher(ctrl),
		store:      mocks.NewMockStore(ctrl),
		clients:    mocks.NewMockClientFactory(ctrl),
		client:     mocks.NewMockClient(ctrl),
		extractor:  mocks.NewMockExtractor(ctrl),
		publisher:  mocks.NewMockCommentPublisher(ctrl),
	}
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: webhookSecret}}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	f.handler = handler.NewWebhookHandler(cfg, f.dispatcher, f.store, f.clients, f.extractor, f.publisher, logger)
	return f
}

func prWebhookEvent(action string, draft bool, body string) *gogithub.PullRequestEvent {
	return &gogithub.PullRequestEvent{
		Action: gogithub.Ptr(action),
		Repo: &gogithub.Repository{
			Name:     gogithub.Ptr("widgets"),
			FullName: gogithub.Ptr("acme/widgets"),
			CloneURL: gogithub.Ptr("https://github.com/acme/widgets.git"),
			Owner:    &gogithub.User{Login: gogithub.Ptr("acme")},
		},
		PullRequest: &gogithub.PullRequest{
			Number: gogithub.Ptr(17),
			Title:  gogithub.Ptr("Add feature"),
			Body:   gogithub.Ptr(body),
			Draft:  gogithub.Ptr(draft),
			Head:   &gogithub.PullRequestBranch{SHA: gogithub.Ptr("abc123")},
			User:   &gogithub.User{Login: gogithub.Ptr("dev")},
		},
		Installation: &gogithub.Installation{ID: gogithub.Ptr(int64(42))},
	}
}

func signedRequest(t *testing.T, secret string, event *gogithub.PullRequestEvent) *http.Request {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/pr-review", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)

	req := signedRequest(t, "wrong-secret", prWebhookEvent("opened", false, "Closes #3"))
	rec := httptest.NewRecorder()
	f.handler.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookDispatchesEligiblePR(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.extractor.EXPECT().ExtractLinkedIssues(gomock.Any(), f.client, gomock.Any()).
		Return([]core.LinkedIssue{{Number: 3, LinkType: core.LinkCloses}})
	f.publisher.EXPECT().PostInProgress(gomock.Any(), f.client, gomock.Any()).Return(int64(101), nil)
	f.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), false).DoAndReturn(
		func(_ any, event *core.PREvent, _ bool) (string, error) {
			assert.Equal(t, "acme/widgets", event.RepoFullName)
			assert.Equal(t, 17, event.PRNumber)
			assert.Equal(t, int64(101), event.PlaceholderCommentID)
			return "job-1", nil
		})

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("opened", false, "Closes #3")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "job-1", body["jobId"])
}

func TestWebhookIneligibleWithoutLinkedIssues(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.extractor.EXPECT().ExtractLinkedIssues(gomock.Any(), f.client, gomock.Any()).Return(nil)
	f.client.EXPECT().CreateComment(gomock.Any(), "acme", "widgets", 17, gomock.Any()).Return(int64(100), nil)
	// No dispatch: nothing is ever enqueued for an ineligible PR.

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("opened", false, "just a refactor")))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["reason"], "closing keyword")
	assert.NotContains(t, body, "jobId")
}

func TestWebhookIneligibleDraft(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.client.EXPECT().CreateComment(gomock.Any(), "acme", "widgets", 17, gomock.Any()).Return(int64(100), nil)

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("opened", true, "Closes #3")))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["reason"], "draft")
}

func TestWebhookSynchronizeWithPriorReviewIsFollowUp(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.extractor.EXPECT().ExtractLinkedIssues(gomock.Any(), f.client, gomock.Any()).
		Return([]core.LinkedIssue{{Number: 3}})
	f.store.EXPECT().GetLatestCompletedReview(gomock.Any(), int64(42), "acme/widgets", 17).
		Return(&core.ReviewRecord{ID: 1, Status: core.ReviewCompleted}, nil)
	f.publisher.EXPECT().PostFollowUpInProgress(gomock.Any(), f.client, gomock.Any()).Return(int64(321), nil)
	f.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), true).DoAndReturn(
		func(_ any, event *core.PREvent, _ bool) (string, error) {
			// The dispatched event must carry the placeholder id; the review
			// job publishes the follow-up over it instead of leaving it stale.
			assert.Equal(t, int64(321), event.PlaceholderCommentID)
			return "job-2", nil
		})

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("synchronize", false, "Closes #3")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWebhookSynchronizeWithoutPriorReviewIsInitial(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.extractor.EXPECT().ExtractLinkedIssues(gomock.Any(), f.client, gomock.Any()).
		Return([]core.LinkedIssue{{Number: 3}})
	f.store.EXPECT().GetLatestCompletedReview(gomock.Any(), int64(42), "acme/widgets", 17).
		Return(nil, storage.ErrNotFound)
	f.publisher.EXPECT().PostInProgress(gomock.Any(), f.client, gomock.Any()).Return(int64(102), nil)
	f.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), false).Return("job-3", nil)

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("synchronize", false, "Closes #3")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWebhookQueueFull(t *testing.T) {
	f := newWebhookFixture(t)

	f.clients.EXPECT().ClientFor(gomock.Any(), int64(42)).Return(f.client, "token", nil)
	f.extractor.EXPECT().ExtractLinkedIssues(gomock.Any(), f.client, gomock.Any()).
		Return([]core.LinkedIssue{{Number: 3}})
	f.publisher.EXPECT().PostInProgress(gomock.Any(), f.client, gomock.Any()).Return(int64(103), nil)
	f.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), false).
		Return("", assert.AnError)

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("opened", false, "Closes #3")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestWebhookIgnoresClosedAction(t *testing.T) {
	f := newWebhookFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Handle(rec, signedRequest(t, webhookSecret, prWebhookEvent("closed", false, "Closes #3")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}
