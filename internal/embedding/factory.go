package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/config"
)

// Provider names accepted in embedding.provider.
const (
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
	ProviderFake   = "fake"
)

// New creates the configured embedder. With no explicit provider it prefers the fake
// embedder when requested, then OpenAI when an API key is set, then the local ONNX model.
func New(cfg *config.Config, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Embedding.Provider {
	case ProviderFake:
		return NewFakeEmbedder(FakeDimensions), nil
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: openai provider needs OPENAI_API_KEY", ErrNoProvider)
		}
		return newOpenAI(cfg), nil
	case ProviderONNX:
		return newONNX(cfg)
	case "":
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, onnx, fake)", cfg.Embedding.Provider)
	}

	if cfg.Embedding.Fake {
		logger.Info("using fake embeddings", zap.Int("dimensions", FakeDimensions))
		return NewFakeEmbedder(FakeDimensions), nil
	}
	if cfg.OpenAI.APIKey != "" {
		logger.Info("using openai embeddings", zap.String("model", cfg.Embedding.Model))
		return newOpenAI(cfg), nil
	}
	e, err := newONNX(cfg)
	if err != nil {
		logger.Warn("local embedding model unavailable", zap.String("model_path", cfg.Embedding.ModelPath), zap.Error(err))
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY, provide %s, or set RAG_FAKE_EMBEDDINGS=1: %v",
			ErrNoProvider, cfg.Embedding.ModelPath, err)
	}
	logger.Info("using local onnx embeddings", zap.String("model_path", cfg.Embedding.ModelPath))
	return e, nil
}

func newOpenAI(cfg *config.Config) *OpenAIEmbedder {
	return NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Embedding.Model,
		WithBatchSize(cfg.Embedding.BatchSize),
		WithCacheSize(cfg.Embedding.CacheSize),
	)
}

func newONNX(cfg *config.Config) (Embedder, error) {
	e, err := NewONNXEmbedder(cfg.Embedding.ModelPath, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens, cfg.Embedding.CacheSize)
	if err != nil {
		return nil, err
	}
	return e, nil
}
