package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "documents.json")
	vecs := filepath.Join(dir, "vectors.json")
	if err := os.WriteFile(docs, []byte(docsPayload), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(vecs, []byte(vectorsPayload), 0644); err != nil {
		t.Fatal(err)
	}

	kb, err := NewFileProvider(docs, vecs).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if kb.Len() != 2 || kb.Documents[0].ID != "a-0" || kb.Embeddings[1][1] != 1 {
		t.Errorf("unexpected knowledge base: %+v", kb)
	}
}

func TestFileProvider_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileProvider(filepath.Join(dir, "nope.json"), filepath.Join(dir, "v.json")).Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileProvider_Malformed(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "documents.json")
	vecs := filepath.Join(dir, "vectors.json")
	_ = os.WriteFile(docs, []byte(`{"not": "an array"}`), 0644)
	_ = os.WriteFile(vecs, []byte(vectorsPayload), 0644)
	if _, err := NewFileProvider(docs, vecs).Load(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}
