package models

// ScoredDocument is a ranking candidate: the document, its similarity to the query,
// and its position in the knowledge base.
type ScoredDocument struct {
	Score    float64  `json:"score"`
	Document Document `json:"document"`
	Index    int      `json:"index"`
}
