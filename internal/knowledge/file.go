package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// FileProvider reads documents.json and vectors.json from disk on every Load.
type FileProvider struct {
	documentPath string
	vectorPath   string
}

// NewFileProvider creates a provider for the two knowledge files.
func NewFileProvider(documentPath, vectorPath string) *FileProvider {
	return &FileProvider{documentPath: documentPath, vectorPath: vectorPath}
}

// Load implements Provider.
func (p *FileProvider) Load(ctx context.Context) (*KnowledgeBase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docData, err := readFile(p.documentPath)
	if err != nil {
		return nil, err
	}
	vecData, err := readFile(p.vectorPath)
	if err != nil {
		return nil, err
	}
	docs, err := decodeDocuments(docData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.documentPath, err)
	}
	vf, err := decodeVectors(vecData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.vectorPath, err)
	}
	return assemble(docs, vf), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
