package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/4everinbeta/ragchat/internal/embedding"
	"github.com/4everinbeta/ragchat/internal/extract"
	"github.com/4everinbeta/ragchat/internal/knowledge"
)

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "content")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestBuilder(opts ...Option) *Builder {
	return New(embedding.NewFakeEmbedder(embedding.FakeDimensions), extract.NewExtractor(".txt", ".md"),
		NewChunker(600, 120, 0.4), opts...)
}

func TestBuild(t *testing.T) {
	content := writeContent(t, map[string]string{
		"about.md":   "# About\nRyan leads platform and AI teams.",
		"talks.txt":  words(1000),
		"empty.md":   "   \n",
		"image.png":  "binary",
		"notes.json": `{"ignored": true}`,
	})
	if err := os.Mkdir(filepath.Join(content, "drafts.md"), 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "rag")

	report, err := newTestBuilder().Build(context.Background(), content, out)
	if err != nil {
		t.Fatal(err)
	}
	if report.Documents != 2 || report.Chunks != 3 {
		t.Errorf("report: %+v", report)
	}
	if report.Model != embedding.FakeModelName || report.Dimension != embedding.FakeDimensions {
		t.Errorf("report model: %s/%d", report.Model, report.Dimension)
	}

	kb, err := knowledge.NewFileProvider(filepath.Join(out, knowledge.DocumentsFile),
		filepath.Join(out, knowledge.VectorsFile)).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !kb.Aligned() || kb.Len() != 3 {
		t.Fatalf("knowledge base has %d documents and %d embeddings", len(kb.Documents), len(kb.Embeddings))
	}
	first := kb.Documents[0]
	if first.ID != "about-0" || first.Source != "content/about.md" || first.ChunkIndex != 0 {
		t.Errorf("first entry: %+v", first)
	}
	if first.Text != "# About Ryan leads platform and AI teams." {
		t.Errorf("text should be whitespace-joined, got %q", first.Text)
	}
	if kb.Documents[2].ID != "talks-1" || kb.Documents[2].ChunkIndex != 1 {
		t.Errorf("last entry: %+v", kb.Documents[2])
	}
	if len(kb.Embeddings[0]) != embedding.FakeDimensions {
		t.Errorf("embedding length %d", len(kb.Embeddings[0]))
	}
}

func TestBuild_Deterministic(t *testing.T) {
	content := writeContent(t, map[string]string{"a.txt": "alpha bravo", "b.txt": "charlie delta"})
	outA := filepath.Join(t.TempDir(), "a")
	outB := filepath.Join(t.TempDir(), "b")
	b := newTestBuilder()
	if _, err := b.Build(context.Background(), content, outA); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(context.Background(), content, outB); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{knowledge.DocumentsFile, knowledge.VectorsFile} {
		a, _ := os.ReadFile(filepath.Join(outA, name))
		bb, _ := os.ReadFile(filepath.Join(outB, name))
		if string(a) != string(bb) {
			t.Errorf("%s differs between builds", name)
		}
	}
}

func TestBuild_NoDocuments(t *testing.T) {
	b := newTestBuilder()
	content := writeContent(t, map[string]string{"blank.txt": "\n\n", "x.pdf": "%PDF"})
	if _, err := b.Build(context.Background(), content, t.TempDir()); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := b.Build(context.Background(), missing, t.TempDir()); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("missing dir: expected ErrNoDocuments, got %v", err)
	}
}

func TestBuild_WithStore(t *testing.T) {
	store, err := knowledge.NewSQLiteStore(filepath.Join(t.TempDir(), "kb.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	content := writeContent(t, map[string]string{"about.md": "Ryan writes about cloud cost."})
	if _, err := newTestBuilder(WithStore(store)).Build(context.Background(), content, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	kb, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if kb.Len() != 1 || kb.Model != embedding.FakeModelName {
		t.Errorf("stored knowledge base: %d docs, model %s", kb.Len(), kb.Model)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	content := writeContent(t, map[string]string{"about.md": "text"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestBuilder().Build(ctx, content, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "embeddings") {
		t.Errorf("expected embedding error on cancelled context, got %v", err)
	}
}

func TestEntries(t *testing.T) {
	b := New(embedding.NewFakeEmbedder(4), extract.NewExtractor(), NewChunker(3, 1, 0))
	got := b.Entries([]SourceDocument{
		{ID: "bio", Source: "content/bio.md", Text: "one two three four five"},
		{ID: "cv", Source: "content/cv.txt", Text: "six"},
	})
	wantIDs := []string{"bio-0", "bio-1", "cv-0"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d entries", len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("entry %d id = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[1].Text != "three four five" || got[1].ChunkIndex != 1 || got[1].Source != "content/bio.md" {
		t.Errorf("entry 1: %+v", got[1])
	}
}
