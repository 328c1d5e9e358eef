// Package chat answers questions from the knowledge base: it embeds the question, ranks the
// knowledge base against it, and asks a language model to answer from the top passages.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/embedding"
	"github.com/4everinbeta/ragchat/internal/knowledge"
	"github.com/4everinbeta/ragchat/internal/models"
	"github.com/4everinbeta/ragchat/internal/retrieval"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

// ErrEmptyAnswer is returned when the language model produces no text.
var ErrEmptyAnswer = errors.New("empty answer from language model")

const (
	defaultPreviewChars   = 160
	defaultFallbackAnswer = "I couldn't find anything about that yet."
)

// Service answers chat messages. A nil embedder or completer is allowed: every answer is
// then the fallback answer.
type Service struct {
	embedder       embedding.Embedder
	provider       knowledge.Provider
	completer      Completer
	topK           int
	strict         bool
	previewChars   int
	systemPrompt   string
	fallbackAnswer string
	logger         *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCompleter sets the language model used to write answers.
func WithCompleter(c Completer) Option {
	return func(s *Service) { s.completer = c }
}

// WithTopK sets how many passages are retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) { s.topK = k }
}

// WithStrict makes a misaligned knowledge base an error instead of a warning.
func WithStrict(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithPreviewChars sets the length of source previews.
func WithPreviewChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.previewChars = n
		}
	}
}

// WithSystemPrompt sets the system prompt sent with every completion.
func WithSystemPrompt(p string) Option {
	return func(s *Service) { s.systemPrompt = p }
}

// WithFallbackAnswer sets the answer returned when no model answer is available.
func WithFallbackAnswer(a string) Option {
	return func(s *Service) {
		if a != "" {
			s.fallbackAnswer = a
		}
	}
}

// NewService creates a chat service over provider.
func NewService(embedder embedding.Embedder, provider knowledge.Provider, opts ...Option) *Service {
	s := &Service{
		embedder:       embedder,
		provider:       provider,
		topK:           retrieval.DefaultTopK,
		previewChars:   defaultPreviewChars,
		fallbackAnswer: defaultFallbackAnswer,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer answers message. It never fails: problems are logged and produce the fallback
// answer along with whatever sources were found.
func (s *Service) Answer(ctx context.Context, message string) *models.ChatResponse {
	requestID := uuid.New().String()
	log := s.logger.With(zap.String("request_id", requestID))
	started := time.Now()

	resp := &models.ChatResponse{
		Sources:   []models.SourcePreview{},
		RequestID: requestID,
	}
	fallback := func(reason string, err error) *models.ChatResponse {
		log.Warn("answering with fallback", zap.String("reason", reason), zap.Error(err))
		resp.Answer = s.fallbackAnswer
		resp.Fallback = true
		return resp
	}

	results, err := s.Retrieve(ctx, message)
	resp.Sources = s.previews(results)
	if err != nil {
		return fallback("retrieval failed", err)
	}
	if len(results) == 0 {
		return fallback("no relevant passages", nil)
	}
	if s.completer == nil {
		return fallback("no language model configured", nil)
	}

	prompt := BuildPrompt(retrieval.FormatContext(results), message)
	answer, err := s.completer.Complete(ctx, s.systemPrompt, prompt)
	if err != nil {
		return fallback("completion failed", err)
	}
	resp.Answer = answer
	log.Info("answered",
		zap.Int("sources", len(results)),
		zap.Float64("top_score", results[0].Score),
		zap.Duration("duration", time.Since(started)))
	return resp
}

// Retrieve returns the passages most similar to message, best first.
func (s *Service) Retrieve(ctx context.Context, message string) ([]models.ScoredDocument, error) {
	if s.embedder == nil {
		return nil, embedding.ErrNoProvider
	}
	query, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("embed message: %w", err)
	}
	kb, err := s.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}
	if kb.Dimension > 0 && kb.Dimension != len(query) {
		s.logger.Warn("query and knowledge base dimensions differ",
			zap.Int("query", len(query)),
			zap.Int("knowledge", kb.Dimension),
			zap.String("model", kb.Model))
	}

	if s.strict {
		return retrieval.RankStrict(query, kb.Embeddings, kb.Documents, s.topK)
	}
	if !kb.Aligned() {
		s.logger.Warn("knowledge base is misaligned, ranking the common prefix",
			zap.Int("documents", len(kb.Documents)),
			zap.Int("embeddings", len(kb.Embeddings)))
	}
	return retrieval.Rank(query, kb.Embeddings, kb.Documents, s.topK), nil
}

// Status describes the knowledge base currently served.
type Status struct {
	Documents  int    `json:"documents"`
	Embeddings int    `json:"embeddings"`
	Model      string `json:"model"`
	Dimension  int    `json:"dimension"`
	Aligned    bool   `json:"aligned"`
	Embedder   string `json:"embedder,omitempty"`
	Completion bool   `json:"completion"`
}

// Status loads the knowledge base and reports its shape.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	kb, err := s.provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{
		Documents:  len(kb.Documents),
		Embeddings: len(kb.Embeddings),
		Model:      kb.Model,
		Dimension:  kb.Dimension,
		Aligned:    kb.Aligned(),
		Completion: s.completer != nil,
	}
	if s.embedder != nil {
		st.Embedder = s.embedder.Model()
	}
	return st, nil
}

func (s *Service) previews(results []models.ScoredDocument) []models.SourcePreview {
	out := make([]models.SourcePreview, len(results))
	for i, r := range results {
		out[i] = models.SourcePreview{
			ID:      r.Document.ID,
			Source:  r.Document.Source,
			Score:   retrieval.RoundScore(r.Score),
			Preview: utils.Truncate(r.Document.Text, s.previewChars),
		}
	}
	return out
}
