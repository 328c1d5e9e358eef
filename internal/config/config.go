// Package config provides configuration loading and structs for the ragchat service and builder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Storage   StorageConfig   `yaml:"storage"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Build     BuildConfig     `yaml:"build"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// KnowledgeConfig selects where the serving side loads the knowledge base from.
// Source is one of "http", "file", or "sqlite".
type KnowledgeConfig struct {
	Source       string        `yaml:"source"`
	DocumentURL  string        `yaml:"document_url"`
	VectorURL    string        `yaml:"vector_url"`
	DocumentPath string        `yaml:"document_path"`
	VectorPath   string        `yaml:"vector_path"`
	CacheTTL     time.Duration `yaml:"cache_ttl"` // 0 keeps fetched payloads for the life of the process
}

// StorageConfig holds the SQLite knowledge store path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OpenAIConfig holds credentials shared by the embedding and chat clients.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// EmbeddingConfig selects and tunes the embedding provider.
// Provider is one of "openai", "onnx", "fake", or empty for automatic selection.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Fake       bool   `yaml:"fake"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BatchSize  int    `yaml:"batch_size"`
}

// LLMConfig holds chat completion settings and the canned fallback answer.
type LLMConfig struct {
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	SystemPrompt   string  `yaml:"system_prompt"`
	FallbackAnswer string  `yaml:"fallback_answer"`
}

// RetrievalConfig holds ranking settings.
type RetrievalConfig struct {
	TopK         int  `yaml:"top_k"`
	Strict       bool `yaml:"strict"`
	PreviewChars int  `yaml:"preview_chars"`
}

// BuildConfig holds knowledge-base build settings. Chunk sizes are in words.
type BuildConfig struct {
	ContentDir    string   `yaml:"content_dir"`
	OutputDir     string   `yaml:"output_dir"`
	Extensions    []string `yaml:"extensions"`
	ChunkSize     int      `yaml:"chunk_size"`
	ChunkOverlap  int      `yaml:"chunk_overlap"`
	MinChunkRatio float64  `yaml:"min_chunk_ratio"`
	WriteSQLite   bool     `yaml:"write_sqlite"`
}

// Load reads and parses the config file at path, applies environment overrides and
// defaults, and resolves relative paths against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))
	return &cfg, nil
}

// Default returns a config built from the environment and defaults only.
// Relative paths resolve against the working directory.
func Default() *Config {
	var cfg Config
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	if cwd, err := os.Getwd(); err == nil {
		cfg.expandPaths(cwd)
	}
	return &cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) expandPaths(baseDir string) {
	c.Storage.DatabasePath = expandPath(c.Storage.DatabasePath, baseDir)
	c.Knowledge.DocumentPath = expandPath(c.Knowledge.DocumentPath, baseDir)
	c.Knowledge.VectorPath = expandPath(c.Knowledge.VectorPath, baseDir)
	c.Embedding.ModelPath = expandPath(c.Embedding.ModelPath, baseDir)
	c.Build.ContentDir = expandPath(c.Build.ContentDir, baseDir)
	c.Build.OutputDir = expandPath(c.Build.OutputDir, baseDir)
}

// expandPath converts a path to absolute. "~/" is relative to the home directory;
// any other relative path is relative to baseDir.
func expandPath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(baseDir, path)
}
