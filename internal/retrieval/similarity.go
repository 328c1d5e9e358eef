// Package retrieval scores knowledge-base entries against a query vector, keeps the
// best matches, and renders them as prompt context.
package retrieval

import (
	"math"

	"github.com/4everinbeta/ragchat/internal/models"
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|), in [-1, 1].
// Missing vectors, vectors of different lengths, and zero vectors score 0.
func CosineSimilarity(a, b models.Vector) float64 {
	if a == nil || b == nil || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
