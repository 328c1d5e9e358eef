// Package embedding turns text into vectors via OpenAI, a local ONNX model, or a
// deterministic fake, with an LRU cache for repeated queries.
package embedding

import (
	"context"
	"errors"

	"github.com/4everinbeta/ragchat/internal/models"
)

// ErrNoProvider is returned by New when no embedding provider can be configured.
var ErrNoProvider = errors.New("no embedding provider available")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) (models.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error)
	Dimensions() int
	// Model names the embedding model; it is recorded next to stored vectors.
	Model() string
	Close() error
}
