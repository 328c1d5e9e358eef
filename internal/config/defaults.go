package config

const (
	DefaultDocumentURL = "https://4everinbeta.me/rag/documents.json"
	DefaultVectorURL   = "https://4everinbeta.me/rag/vectors.json"

	DefaultFallbackAnswer = "I couldn't find anything in my notes about that yet. " +
		"Try rephrasing the question, or reach out through the contact form."

	DefaultSystemPrompt = "You answer questions about Ryan Brown's career, projects, and writing. " +
		"Use only the numbered sources provided. If the sources do not cover the question, say so briefly."
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"https://4everinbeta.me", "http://localhost:*"}
	}
	if cfg.Knowledge.Source == "" {
		cfg.Knowledge.Source = "http"
	}
	if cfg.Knowledge.DocumentURL == "" {
		cfg.Knowledge.DocumentURL = DefaultDocumentURL
	}
	if cfg.Knowledge.VectorURL == "" {
		cfg.Knowledge.VectorURL = DefaultVectorURL
	}
	if cfg.Knowledge.DocumentPath == "" {
		cfg.Knowledge.DocumentPath = "rag/documents.json"
	}
	if cfg.Knowledge.VectorPath == "" {
		cfg.Knowledge.VectorPath = "rag/vectors.json"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "rag/knowledge.db"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 20
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 400
	}
	if cfg.LLM.SystemPrompt == "" {
		cfg.LLM.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.LLM.FallbackAnswer == "" {
		cfg.LLM.FallbackAnswer = DefaultFallbackAnswer
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.PreviewChars == 0 {
		cfg.Retrieval.PreviewChars = 160
	}
	if cfg.Build.ContentDir == "" {
		cfg.Build.ContentDir = "content"
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "rag"
	}
	if cfg.Build.Extensions == nil {
		cfg.Build.Extensions = []string{".txt", ".md"}
	}
	if cfg.Build.ChunkSize == 0 {
		cfg.Build.ChunkSize = 600
	}
	if cfg.Build.ChunkOverlap == 0 {
		cfg.Build.ChunkOverlap = 120
	}
	if cfg.Build.MinChunkRatio == 0 {
		cfg.Build.MinChunkRatio = 0.4
	}
}
