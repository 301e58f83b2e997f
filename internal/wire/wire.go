//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		provideRouter,
		config.LoadConfig,
		db.NewDatabase,
		jobs.NewDispatcher,
		jobs.NewReviewJob,
		llm.NewPromptManager,
		llm.NewGenerator,
		llm.CreateGeneratorModel,
		llm.CreateEmbedder,
		logger.NewLogger,
		provideStore,
		provideRetriever,
		provideExtractor,
		providePublisher,
		provideClientFactory,
		provideLoggerConfig,
		provideLogWriter,
		provideDBConfig,
		provideAIConfig,
		provideJobsConfig,
	)
	return &app.App{}, nil, nil
}
