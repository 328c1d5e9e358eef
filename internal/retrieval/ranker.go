package retrieval

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/4everinbeta/ragchat/internal/models"
)

// DefaultTopK is used when Rank is called with topK < 1.
const DefaultTopK = 3

// ErrLengthMismatch is returned by RankStrict when the embedding and document
// sequences are not index-aligned.
var ErrLengthMismatch = errors.New("embeddings and documents length mismatch")

// Rank scores every document against query and returns at most topK of them with
// a positive score, best first.
//
// Only the first min(len(embeddings), len(documents)) entries are considered.
// Candidates are sorted, cut to topK, and only then filtered, so a non-positive
// score inside the top K shortens the result rather than letting a lower entry in.
func Rank(query models.Vector, embeddings []models.Vector, documents []models.Document, topK int) []models.ScoredDocument {
	if len(embeddings) == 0 {
		return nil
	}
	if topK < 1 {
		topK = DefaultTopK
	}
	n := min(len(embeddings), len(documents))
	scored := make([]models.ScoredDocument, n)
	for i := 0; i < n; i++ {
		scored[i] = models.ScoredDocument{
			Score:    CosineSimilarity(query, embeddings[i]),
			Document: documents[i],
			Index:    i,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return sortKey(scored[i].Score) > sortKey(scored[j].Score) })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	results := scored[:0]
	for _, s := range scored {
		if s.Score > 0 {
			results = append(results, s)
		}
	}
	return results
}

// sortKey orders NaN scores below every real score.
func sortKey(score float64) float64 {
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}

// RankStrict is Rank for callers that treat a misaligned knowledge base as an error.
// Any length difference fails, including embeddings missing for every document.
func RankStrict(query models.Vector, embeddings []models.Vector, documents []models.Document, topK int) ([]models.ScoredDocument, error) {
	if len(embeddings) != len(documents) {
		return nil, fmt.Errorf("%w: %d embeddings, %d documents", ErrLengthMismatch, len(embeddings), len(documents))
	}
	return Rank(query, embeddings, documents, topK), nil
}
