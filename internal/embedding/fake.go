package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/4everinbeta/ragchat/internal/models"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

const (
	// FakeDimensions is the vector size produced by FakeEmbedder.
	FakeDimensions = 64
	// FakeModelName is recorded as the model of vectors built with FakeEmbedder.
	FakeModelName = "debug-fake-embeddings"
)

// FakeEmbedder is a deterministic embedder for tests and offline builds. Each text seeds
// a PRNG with the first eight bytes of its SHA-256 digest, so identical text always maps
// to the same unit vector.
type FakeEmbedder struct {
	dimensions int
}

// NewFakeEmbedder returns a fake embedder of the given dimensions (FakeDimensions when <= 0).
func NewFakeEmbedder(dimensions int) *FakeEmbedder {
	if dimensions <= 0 {
		dimensions = FakeDimensions
	}
	return &FakeEmbedder{dimensions: dimensions}
}

// Embed returns the deterministic vector for text.
func (e *FakeEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(text))
	rng := rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8]))))
	vec := make(models.Vector, e.dimensions)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *FakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error) {
	out := make([]models.Vector, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *FakeEmbedder) Dimensions() int { return e.dimensions }

// Model returns FakeModelName.
func (e *FakeEmbedder) Model() string { return FakeModelName }

// Close is a no-op.
func (e *FakeEmbedder) Close() error { return nil }
