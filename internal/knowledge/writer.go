package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/4everinbeta/ragchat/internal/models"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

// File names written by WriteFiles.
const (
	DocumentsFile = "documents.json"
	VectorsFile   = "vectors.json"
)

// WriteFiles writes kb to dir as documents.json and vectors.json. Embedding values are
// rounded to six decimals. Each file is written to a temp file and renamed into place.
func WriteFiles(dir string, kb *KnowledgeBase) error {
	if !kb.Aligned() {
		return fmt.Errorf("cannot write knowledge base: %d documents but %d embeddings",
			len(kb.Documents), len(kb.Embeddings))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	docs := kb.Documents
	if docs == nil {
		docs = []models.Document{}
	}
	if err := writeJSON(filepath.Join(dir, DocumentsFile), docs); err != nil {
		return err
	}

	rounded := make([]models.Vector, len(kb.Embeddings))
	for i, vec := range kb.Embeddings {
		r := make(models.Vector, len(vec))
		for j, x := range vec {
			r[j] = utils.Round6(x)
		}
		rounded[i] = r
	}
	return writeJSON(filepath.Join(dir, VectorsFile), vectorFile{
		Model:      kb.Model,
		Dimension:  kb.Dimension,
		Embeddings: rounded,
	})
}

func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
