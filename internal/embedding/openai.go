package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/4everinbeta/ragchat/internal/models"
)

const defaultBatchSize = 20

// OpenAIEmbedder calls the OpenAI embeddings endpoint. Single-text lookups (queries)
// go through an LRU cache; batches (knowledge-base builds) do not.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	batchSize  int
	dimensions int
	cache      *Cache
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithBatchSize sets how many texts are sent per embeddings request.
func WithBatchSize(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithCacheSize sets the query cache capacity.
func WithCacheSize(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.cache = NewCache(n) }
}

// NewOpenAIEmbedder creates an embedder for model. baseURL may be empty to use the public API.
func NewOpenAIEmbedder(apiKey, baseURL, model string, opts ...OpenAIOption) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	e := &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		batchSize: defaultBatchSize,
		cache:     NewCache(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the embedding for text, using the cache when available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vecs, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vecs[0])
	return vecs[0], nil
}

// EmbedBatch embeds texts in batches, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error) {
	out := make([]models.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.request(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([]models.Vector, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([]models.Vector, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		vecs[d.Index] = models.Vector(d.Embedding)
	}
	if e.dimensions == 0 && len(vecs[0]) > 0 {
		e.dimensions = len(vecs[0])
	}
	return vecs, nil
}

// Dimensions returns the embedding size observed in the last response, or 0 before the first call.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Close is a no-op; the HTTP client has nothing to release.
func (e *OpenAIEmbedder) Close() error { return nil }
