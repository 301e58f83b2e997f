package llm_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/mocks"
)

func retrieverFixture(t *testing.T) (*mocks.MockClient, llm.ContextRetriever) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := mocks.NewMockStore(ctrl)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	// Retrieval disabled: only the documentation and config lookups run.
	cfg := &config.RetrievalConfig{Disabled: true}
	return client, llm.NewContextRetriever(cfg, store, nil, logger)
}

func retrieverPRContext() *extract.PRContext {
	return &extract.PRContext{Event: &core.PREvent{
		RepoOwner:      "acme",
		RepoName:       "widgets",
		RepoFullName:   "acme/widgets",
		PRNumber:       17,
		InstallationID: 42,
	}}
}

func TestRetrieveLoadsCustomInstructions(t *testing.T) {
	client, retriever := retrieverFixture(t)

	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", ".review-warden.yml").
		Return("custom_instructions:\n  - Focus on error handling\n  - Flag missing tests\n", nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", gomock.Any()).
		Return("", assert.AnError).AnyTimes()

	rc := retriever.Retrieve(context.Background(), client, retrieverPRContext())

	assert.Equal(t, []string{"Focus on error handling", "Flag missing tests"}, rc.CustomInstructions)
}

func TestRetrieveIgnoresMalformedRepoConfig(t *testing.T) {
	client, retriever := retrieverFixture(t)

	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", ".review-warden.yml").
		Return("custom_instructions: {not: [valid", nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", gomock.Any()).
		Return("", assert.AnError).AnyTimes()

	rc := retriever.Retrieve(context.Background(), client, retrieverPRContext())

	assert.Empty(t, rc.CustomInstructions)
}

func TestRetrieveFindsStyleGuideAndReadme(t *testing.T) {
	client, retriever := retrieverFixture(t)

	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", "STYLEGUIDE.md").
		Return("wrap errors with %w", nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", "README.md").
		Return("# widgets", nil)
	client.EXPECT().GetFileContent(gomock.Any(), "acme", "widgets", gomock.Any()).
		Return("", assert.AnError).AnyTimes()

	rc := retriever.Retrieve(context.Background(), client, retrieverPRContext())

	assert.Equal(t, "wrap errors with %w", rc.StyleGuide)
	assert.Equal(t, "# widgets", rc.Readme)
}
