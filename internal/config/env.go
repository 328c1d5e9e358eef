package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// ApplyEnv overrides cfg with values from the process environment. A .env file in the
// working directory, when present, is loaded first without replacing variables that are
// already set.
func ApplyEnv(cfg *Config) {
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	if v := os.Getenv("DOCUMENT_URL"); v != "" {
		cfg.Knowledge.DocumentURL = v
	}
	if v := os.Getenv("VECTOR_URL"); v != "" {
		cfg.Knowledge.VectorURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("OPENAI_CHAT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if os.Getenv("RAG_FAKE_EMBEDDINGS") == "1" {
		cfg.Embedding.Fake = true
	}
	if v, err := strconv.ParseBool(os.Getenv("RAGCHAT_DEBUG")); err == nil {
		cfg.Debug = v
	}
}
