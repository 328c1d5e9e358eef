// Package knowledge loads and stores the knowledge base: the document chunks and their
// embeddings, kept in lockstep by position.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/4everinbeta/ragchat/internal/config"
	"github.com/4everinbeta/ragchat/internal/models"
)

// ErrNotFound is returned when a knowledge source has nothing to load.
var ErrNotFound = errors.New("knowledge base not found")

// Source names accepted in knowledge.source.
const (
	SourceHTTP   = "http"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

// KnowledgeBase pairs each document with the embedding at the same position.
type KnowledgeBase struct {
	Model      string
	Dimension  int
	Documents  []models.Document
	Embeddings []models.Vector
}

// Aligned reports whether every document has exactly one embedding.
func (kb *KnowledgeBase) Aligned() bool {
	return len(kb.Documents) == len(kb.Embeddings)
}

// Len returns the number of documents.
func (kb *KnowledgeBase) Len() int {
	return len(kb.Documents)
}

// Provider loads a knowledge base.
type Provider interface {
	Load(ctx context.Context) (*KnowledgeBase, error)
}

// NewProvider returns the provider selected by cfg.Knowledge.Source.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Knowledge.Source {
	case SourceHTTP, "":
		return NewHTTPProvider(cfg.Knowledge.DocumentURL, cfg.Knowledge.VectorURL,
			WithCacheTTL(cfg.Knowledge.CacheTTL)), nil
	case SourceFile:
		return NewFileProvider(cfg.Knowledge.DocumentPath, cfg.Knowledge.VectorPath), nil
	case SourceSQLite:
		return NewSQLiteStore(cfg.Storage.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown knowledge source: %s (supported: http, file, sqlite)", cfg.Knowledge.Source)
	}
}

// vectorFile is the vectors.json layout.
type vectorFile struct {
	Model      string          `json:"model"`
	Dimension  int             `json:"dimension"`
	Embeddings []models.Vector `json:"embeddings"`
}

// UnmarshalJSON also accepts a bare array of embeddings.
func (v *vectorFile) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &v.Embeddings)
	}
	type plain vectorFile
	return json.Unmarshal(data, (*plain)(v))
}

func decodeDocuments(data []byte) ([]models.Document, error) {
	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

func decodeVectors(data []byte) (*vectorFile, error) {
	var vf vectorFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("failed to decode vectors: %w", err)
	}
	if vf.Dimension == 0 && len(vf.Embeddings) > 0 {
		vf.Dimension = len(vf.Embeddings[0])
	}
	return &vf, nil
}

func assemble(docs []models.Document, vf *vectorFile) *KnowledgeBase {
	return &KnowledgeBase{
		Model:      vf.Model,
		Dimension:  vf.Dimension,
		Documents:  docs,
		Embeddings: vf.Embeddings,
	}
}
