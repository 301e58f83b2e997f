// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
)

// InitializeApp creates and wires all application dependencies. The returned
// cleanup closes the database pool and must run after App.Stop.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewLogger(provideLoggerConfig(cfg), provideLogWriter(cfg))

	dbConn, dbCleanup, err := db.NewDatabase(provideDBConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dbConn.RunMigrations(); err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := provideStore(dbConn, slogLogger)

	generatorModel, err := llm.CreateGeneratorModel(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create generator model: %w", err)
	}

	embedder, err := llm.CreateEmbedder(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	clients := provideClientFactory(cfg, slogLogger)
	extractor := provideExtractor(slogLogger)
	publisher := providePublisher(store, slogLogger)
	retriever := provideRetriever(cfg, store, embedder, slogLogger)
	generator := llm.NewGenerator(provideAIConfig(cfg), generatorModel, promptMgr, slogLogger)

	reviewJob := jobs.NewReviewJob(cfg, clients, store, extractor, retriever, generator, publisher, slogLogger)
	dispatcher := jobs.NewDispatcher(reviewJob, store, provideJobsConfig(cfg), slogLogger)

	router := provideRouter(cfg, dispatcher, store, clients, extractor, publisher, slogLogger)
	srv := server.NewServer(cfg, router, slogLogger)

	application := app.NewApp(cfg, srv, dispatcher, slogLogger)

	cleanup := func() {
		dbCleanup()
	}
	return application, cleanup, nil
}
