// Package builder turns a directory of content files into a knowledge base: it reads and
// chunks each file, embeds every chunk, and writes documents.json and vectors.json.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/embedding"
	"github.com/4everinbeta/ragchat/internal/extract"
	"github.com/4everinbeta/ragchat/internal/knowledge"
	"github.com/4everinbeta/ragchat/internal/models"
)

// ErrNoDocuments is returned when the content directory holds no usable files.
var ErrNoDocuments = errors.New("no source documents found")

// Report summarises a build.
type Report struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Model     string        `json:"model"`
	Dimension int           `json:"dimension"`
	Skipped   []string      `json:"skipped,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// SourceDocument is one content file before chunking.
type SourceDocument struct {
	ID     string
	Source string
	Text   string
}

// Builder builds knowledge bases.
type Builder struct {
	embedder  embedding.Embedder
	extractor *extract.Extractor
	chunker   *Chunker
	store     *knowledge.SQLiteStore
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithStore also saves every build to store.
func WithStore(s *knowledge.SQLiteStore) Option {
	return func(b *Builder) { b.store = s }
}

// New creates a builder.
func New(embedder embedding.Embedder, extractor *extract.Extractor, chunker *Chunker, opts ...Option) *Builder {
	b := &Builder{
		embedder:  embedder,
		extractor: extractor,
		chunker:   chunker,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads contentDir, embeds its chunks, and writes the knowledge base to outputDir.
func (b *Builder) Build(ctx context.Context, contentDir, outputDir string) (*Report, error) {
	started := time.Now()
	docs, skipped, err := b.ReadDocuments(contentDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, contentDir)
	}

	entries := b.Entries(docs)
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	b.logger.Info("embedding chunks",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(entries)),
		zap.String("model", b.embedder.Model()))

	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(entries) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(entries))
	}

	kb := &knowledge.KnowledgeBase{
		Model:      b.embedder.Model(),
		Dimension:  b.embedder.Dimensions(),
		Documents:  entries,
		Embeddings: vectors,
	}
	if len(vectors) > 0 {
		kb.Dimension = len(vectors[0])
	}

	if err := knowledge.WriteFiles(outputDir, kb); err != nil {
		return nil, err
	}
	if b.store != nil {
		if err := b.store.Save(ctx, kb); err != nil {
			return nil, fmt.Errorf("failed to save knowledge base: %w", err)
		}
	}

	report := &Report{
		Documents: len(docs),
		Chunks:    len(entries),
		Model:     kb.Model,
		Dimension: kb.Dimension,
		Skipped:   skipped,
		Duration:  time.Since(started),
	}
	b.logger.Info("knowledge base written",
		zap.String("output", outputDir),
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// ReadDocuments returns the non-empty supported files directly inside contentDir, sorted by
// name. Files that fail to extract are logged and returned in skipped.
func (b *Builder) ReadDocuments(contentDir string) (docs []SourceDocument, skipped []string, err error) {
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s does not exist", ErrNoDocuments, contentDir)
		}
		return nil, nil, fmt.Errorf("read content directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	base := filepath.Base(filepath.Clean(contentDir))
	for _, entry := range entries {
		name := entry.Name()
		if !b.extractor.Supports(name) {
			continue
		}
		full := filepath.Join(contentDir, name)
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		text, err := b.extractor.Extract(full)
		if err != nil {
			b.logger.Warn("skipping file", zap.String("path", full), zap.Error(err))
			skipped = append(skipped, name)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			b.logger.Debug("skipping empty file", zap.String("path", full))
			continue
		}
		docs = append(docs, SourceDocument{
			ID:     strings.TrimSuffix(name, filepath.Ext(name)),
			Source: path.Join(base, name),
			Text:   text,
		})
	}
	return docs, skipped, nil
}

// Entries chunks each document. Entry ids are "<document id>-<chunk index>".
func (b *Builder) Entries(docs []SourceDocument) []models.Document {
	var out []models.Document
	for _, doc := range docs {
		for i, chunk := range b.chunker.Chunk(doc.Text) {
			out = append(out, models.Document{
				ID:         fmt.Sprintf("%s-%d", doc.ID, i),
				Source:     doc.Source,
				ChunkIndex: i,
				Text:       chunk,
			})
		}
	}
	return out
}
