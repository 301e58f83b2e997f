package wire

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/sevigo/goframe/embeddings"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/extract"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/storage"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, err := os.OpenFile("review-warden.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideAIConfig(cfg *config.Config) *config.AIConfig {
	return &cfg.AI
}

func provideJobsConfig(cfg *config.Config) *config.JobsConfig {
	return &cfg.Jobs
}

func provideRetrievalConfig(cfg *config.Config) *config.RetrievalConfig {
	return &cfg.Retrieval
}

func provideStore(conn *db.DB, slogLogger *slog.Logger) storage.Store {
	return storage.NewStore(conn.DB, slogLogger)
}

func provideRetriever(cfg *config.Config, store storage.Store, embedder embeddings.Embedder, slogLogger *slog.Logger) llm.ContextRetriever {
	return llm.NewContextRetriever(provideRetrievalConfig(cfg), store, embedder, slogLogger)
}

func provideExtractor(slogLogger *slog.Logger) extract.Extractor {
	return extract.NewExtractor(slogLogger)
}

func providePublisher(store storage.Store, slogLogger *slog.Logger) github.CommentPublisher {
	return github.NewCommentPublisher(store, slogLogger)
}

func provideClientFactory(cfg *config.Config, slogLogger *slog.Logger) github.ClientFactory {
	return github.NewClientFactory(cfg, slogLogger)
}

func provideRouter(
	cfg *config.Config,
	dispatcher core.JobDispatcher,
	store storage.Store,
	clients github.ClientFactory,
	extractor extract.Extractor,
	publisher github.CommentPublisher,
	slogLogger *slog.Logger,
) http.Handler {
	return server.NewRouter(cfg, dispatcher, store, clients, extractor, publisher, slogLogger)
}
