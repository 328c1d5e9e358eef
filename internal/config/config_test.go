package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv isolates a test from overrides present in the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DOCUMENT_URL", "VECTOR_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_EMBEDDING_MODEL", "OPENAI_CHAT_MODEL", "RAG_FAKE_EMBEDDINGS", "RAGCHAT_DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
knowledge:
  source: file
  cache_ttl: 5m
retrieval:
  top_k: 5
  strict: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Knowledge.Source != "file" {
		t.Errorf("source = %s, want file", cfg.Knowledge.Source)
	}
	if cfg.Knowledge.CacheTTL != 5*time.Minute {
		t.Errorf("cache_ttl = %v, want 5m", cfg.Knowledge.CacheTTL)
	}
	if cfg.Retrieval.TopK != 5 || !cfg.Retrieval.Strict {
		t.Errorf("unexpected retrieval config: %+v", cfg.Retrieval)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not, a, map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_relativePathsResolveAgainstConfigDir(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  database_path: "./data/knowledge.db"
build:
  content_dir: "content"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "data", "knowledge.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "content"); cfg.Build.ContentDir != want {
		t.Errorf("content_dir = %s, want %s", cfg.Build.ContentDir, want)
	}
	if want := filepath.Join(dir, "rag", "vectors.json"); cfg.Knowledge.VectorPath != want {
		t.Errorf("default vector_path = %s, want %s", cfg.Knowledge.VectorPath, want)
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCUMENT_URL", "https://example.com/docs.json")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RAG_FAKE_EMBEDDINGS", "1")
	t.Setenv("RAGCHAT_DEBUG", "true")
	path := writeConfig(t, `
knowledge:
  document_url: "https://file.example.com/docs.json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Knowledge.DocumentURL != "https://example.com/docs.json" {
		t.Errorf("document_url = %s", cfg.Knowledge.DocumentURL)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.OpenAI.APIKey)
	}
	if !cfg.Embedding.Fake {
		t.Error("RAG_FAKE_EMBEDDINGS=1 should enable fake embeddings")
	}
	if !cfg.Debug {
		t.Error("RAGCHAT_DEBUG=true should enable debug")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 8787 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Knowledge.Source != "http" {
		t.Errorf("default source: got %s", cfg.Knowledge.Source)
	}
	if cfg.Knowledge.DocumentURL != DefaultDocumentURL || cfg.Knowledge.VectorURL != DefaultVectorURL {
		t.Errorf("default urls: %s %s", cfg.Knowledge.DocumentURL, cfg.Knowledge.VectorURL)
	}
	if cfg.Retrieval.TopK != 3 || cfg.Retrieval.PreviewChars != 160 {
		t.Errorf("retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Build.ChunkSize != 600 || cfg.Build.ChunkOverlap != 120 || cfg.Build.MinChunkRatio != 0.4 {
		t.Errorf("build defaults: %+v", cfg.Build)
	}
	if len(cfg.Build.Extensions) != 2 || cfg.Build.Extensions[0] != ".txt" || cfg.Build.Extensions[1] != ".md" {
		t.Errorf("extensions: %v", cfg.Build.Extensions)
	}
	if cfg.Embedding.BatchSize != 20 {
		t.Errorf("batch size: %d", cfg.Embedding.BatchSize)
	}
	if cfg.LLM.FallbackAnswer == "" || cfg.LLM.SystemPrompt == "" {
		t.Error("llm prompts should have defaults")
	}
}

func TestApplyDefaults_keepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 9999, AllowedOrigins: []string{}},
		Retrieval: RetrievalConfig{TopK: 7},
	}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 9999 || cfg.Retrieval.TopK != 7 {
		t.Errorf("explicit values overwritten: %+v %+v", cfg.Server, cfg.Retrieval)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("explicit empty origins overwritten: %v", cfg.Server.AllowedOrigins)
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("VECTOR_URL", "https://example.com/v.json")
	cfg := Default()
	if cfg.Knowledge.VectorURL != "https://example.com/v.json" {
		t.Errorf("vector_url = %s", cfg.Knowledge.VectorURL)
	}
	if !filepath.IsAbs(cfg.Build.ContentDir) {
		t.Errorf("content_dir should be absolute, got %s", cfg.Build.ContentDir)
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:    ServerConfig{Host: "localhost", Port: 9090},
		Retrieval: RetrievalConfig{TopK: 4},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Retrieval.TopK != 4 {
		t.Errorf("loaded: %+v %+v", loaded.Server, loaded.Retrieval)
	}
}
