// Package models defines the shapes shared between the retrieval core and its collaborators.
package models

// Vector is a point in embedding space.
type Vector []float32

// Document is one knowledge-base entry, usually a chunk of a content file.
type Document struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}
