// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// GitHubConfig holds GitHub App credentials.
type GitHubConfig struct {
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// AIConfig holds LLM provider settings for both generation and embedding.
type AIConfig struct {
	LLMProvider      string
	GeneratorModel   string
	EmbedderProvider string
	EmbedderModel    string
	OllamaHost       string
	GeminiAPIKey     string
	ReviewTimeout    time.Duration
}

// JobsConfig holds worker pool and queue settings.
type JobsConfig struct {
	MaxWorkers   int
	QueueSize    int
	DrainTimeout time.Duration
}

// IndexerConfig holds repository indexing settings.
type IndexerConfig struct {
	BatchSize       int
	ChunkSize       int
	ChunkOverlap    int
	TokensPerMinute int
}

// RetrievalConfig holds similarity search settings for review context.
type RetrievalConfig struct {
	TopK          int
	MinSimilarity float64
	Disabled      bool
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Config holds the application's configuration values.
type Config struct {
	Server    ServerConfig
	Database  DBConfig
	GitHub    GitHubConfig
	AI        AIConfig
	Jobs      JobsConfig
	Indexer   IndexerConfig
	Retrieval RetrievalConfig
	Logging   LoggingConfig
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "warden")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "review_warden")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/review-warden-app.private-key.pem")

	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("EMBEDDER_PROVIDER", "ollama")
	viper.SetDefault("EMBEDDER_MODEL_NAME", "nomic-embed-text")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("REVIEW_TIMEOUT", "5m")

	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("JOB_QUEUE_SIZE", 100)
	viper.SetDefault("DRAIN_TIMEOUT", "30s")

	viper.SetDefault("INDEXER_BATCH_SIZE", 20)
	viper.SetDefault("INDEXER_CHUNK_SIZE", 2000)
	viper.SetDefault("INDEXER_CHUNK_OVERLAP", 200)
	viper.SetDefault("INDEXER_TOKENS_PER_MINUTE", 600000)

	viper.SetDefault("RETRIEVAL_TOP_K", 10)
	viper.SetDefault("RETRIEVAL_MIN_SIMILARITY", 0.6)
	viper.SetDefault("RETRIEVAL_DISABLED", false)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A missing .env is fine; a malformed one is not fatal either,
			// since every value can come from the environment.
			_ = err
		}
	}

	if viper.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if viper.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}

	// Special handling for the Gemini generator model name.
	generatorModel := viper.GetString("GENERATOR_MODEL_NAME")
	if viper.GetString("LLM_PROVIDER") == "gemini" {
		if geminiModel := viper.GetString("GEMINI_GENERATOR_MODEL_NAME"); geminiModel != "" {
			generatorModel = geminiModel
		} else {
			generatorModel = "gemini-2.5-flash"
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		GitHub: GitHubConfig{
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		AI: AIConfig{
			LLMProvider:      viper.GetString("LLM_PROVIDER"),
			GeneratorModel:   generatorModel,
			EmbedderProvider: viper.GetString("EMBEDDER_PROVIDER"),
			EmbedderModel:    viper.GetString("EMBEDDER_MODEL_NAME"),
			OllamaHost:       viper.GetString("OLLAMA_HOST"),
			GeminiAPIKey:     viper.GetString("GEMINI_API_KEY"),
			ReviewTimeout:    viper.GetDuration("REVIEW_TIMEOUT"),
		},
		Jobs: JobsConfig{
			MaxWorkers:   viper.GetInt("MAX_WORKERS"),
			QueueSize:    viper.GetInt("JOB_QUEUE_SIZE"),
			DrainTimeout: viper.GetDuration("DRAIN_TIMEOUT"),
		},
		Indexer: IndexerConfig{
			BatchSize:       viper.GetInt("INDEXER_BATCH_SIZE"),
			ChunkSize:       viper.GetInt("INDEXER_CHUNK_SIZE"),
			ChunkOverlap:    viper.GetInt("INDEXER_CHUNK_OVERLAP"),
			TokensPerMinute: viper.GetInt("INDEXER_TOKENS_PER_MINUTE"),
		},
		Retrieval: RetrievalConfig{
			TopK:          viper.GetInt("RETRIEVAL_TOP_K"),
			MinSimilarity: viper.GetFloat64("RETRIEVAL_MIN_SIMILARITY"),
			Disabled:      viper.GetBool("RETRIEVAL_DISABLED"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
	}

	if cfg.AI.LLMProvider == "gemini" && cfg.AI.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
	}

	return cfg, nil
}
