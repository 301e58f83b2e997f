// Package llm holds the review-generation pipeline: model construction,
// prompt rendering, context retrieval, generation, and response parsing.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-warden/internal/config"
)

// newOllamaHTTPClient creates an HTTP client with generous timeouts; local
// model servers can take minutes on large prompts.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}

// CreateGeneratorModel creates the LLM client for review generation based on
// the configured provider.
func CreateGeneratorModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.AI.LLMProvider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.AI.GeneratorModel)
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.AI.GeneratorModel),
			gemini.WithAPIKey(cfg.AI.GeminiAPIKey),
		)
	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.AI.GeneratorModel)
		return ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithModel(cfg.AI.GeneratorModel),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.AI.LLMProvider)
	}
}

// CreateEmbedder creates the embedding client used by both the indexer and
// the context retriever.
func CreateEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (embeddings.Embedder, error) {
	var embedderLLM embeddings.Embedder
	var err error

	switch cfg.AI.EmbedderProvider {
	case "gemini":
		logger.Info("using Gemini embedder", "model", cfg.AI.EmbedderModel)
		embedderLLM, err = gemini.New(ctx,
			gemini.WithAPIKey(cfg.AI.GeminiAPIKey),
			gemini.WithEmbeddingModel(cfg.AI.EmbedderModel),
		)
	case "ollama":
		logger.Info("using Ollama embedder", "model", cfg.AI.EmbedderModel, "host", cfg.AI.OllamaHost)
		embedderLLM, err = ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithModel(cfg.AI.EmbedderModel),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %q", cfg.AI.EmbedderProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder LLM: %w", err)
	}

	return embeddings.NewEmbedder(embedderLLM)
}
