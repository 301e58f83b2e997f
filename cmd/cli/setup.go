package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/parsers"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/indexer"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/storage"
)

// cliServices is the subset of the application the CLI commands need:
// storage and the indexer, without the HTTP gateway or the generator model.
type cliServices struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	indexer *indexer.Indexer
}

// initServices wires the CLI services and returns a cleanup that closes the
// database pool.
func initServices(ctx context.Context) (*cliServices, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewLogger(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}, nil)

	dbConn, dbCleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbConn.RunMigrations(); err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := storage.NewStore(dbConn.DB, slogLogger)

	embedder, err := llm.CreateEmbedder(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	registry, err := parsers.RegisterLanguagePlugins(slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to register language parsers: %w", err)
	}

	gitClient := gitutil.NewClient(slogLogger)
	ix := indexer.NewIndexer(&cfg.Indexer, store, embedder, registry, gitClient, slogLogger)

	return &cliServices{
		cfg:     cfg,
		logger:  slogLogger,
		store:   store,
		indexer: ix,
	}, dbCleanup, nil
}
