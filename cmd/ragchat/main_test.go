package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/builder"
	"github.com/4everinbeta/ragchat/internal/config"
	"github.com/4everinbeta/ragchat/internal/embedding"
	"github.com/4everinbeta/ragchat/internal/extract"
	"github.com/4everinbeta/ragchat/internal/knowledge"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"what does Ryan do", "-output", "json"},
			expected: []string{"-output", "json", "what does Ryan do"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "what does Ryan do"},
			expected: []string{"-output", "json", "what does Ryan do"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"what does Ryan do"},
			expected: []string{"what does Ryan do"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"cloud", "costs", "--server", "http://localhost:8787"},
			expected: []string{"--server", "http://localhost:8787", "cloud", "costs"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuestion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"experience"}, "experience"},
		{"multiple words", []string{"cloud", "migration"}, "cloud migration"},
		{"single quoted phrase", []string{"how do I reach him?"}, "how do I reach him?"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuestion(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuestion(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
knowledge:
  source: file
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolvedCanon, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if cfg.Knowledge.Source != knowledge.SourceFile {
		t.Errorf("source = %q, want file", cfg.Knowledge.Source)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_defaultsWhenNoFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("system config present")
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Knowledge.DocumentURL != config.DefaultDocumentURL {
		t.Errorf("document url = %q", cfg.Knowledge.DocumentURL)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

// buildFixture builds a fake-embedding knowledge base into dir/rag and returns a
// config that reads it back from disk.
func buildFixture(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	if err := os.MkdirAll(content, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"about.md":    "Ryan leads platform engineering teams and builds cloud infrastructure.",
		"contact.txt": "Reach out by email for consulting and speaking engagements.",
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(content, name), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Embedding.Provider = embedding.ProviderFake
	cfg.Knowledge.Source = knowledge.SourceFile
	cfg.Knowledge.DocumentPath = filepath.Join(dir, "rag", knowledge.DocumentsFile)
	cfg.Knowledge.VectorPath = filepath.Join(dir, "rag", knowledge.VectorsFile)
	cfg.OpenAI.APIKey = ""

	b := builder.New(embedding.NewFakeEmbedder(embedding.FakeDimensions),
		extract.NewExtractor(cfg.Build.Extensions...),
		builder.NewChunker(cfg.Build.ChunkSize, cfg.Build.ChunkOverlap, cfg.Build.MinChunkRatio))
	if _, err := b.Build(context.Background(), content, filepath.Join(dir, "rag")); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestInitializeComponents_fallbackWithoutCompleter(t *testing.T) {
	cfg := buildFixture(t)

	c, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resp := c.Service.Answer(context.Background(), "cloud infrastructure")
	if resp.Answer != cfg.LLM.FallbackAnswer {
		t.Errorf("answer = %q, want fallback", resp.Answer)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("sources = %d, want 2", len(resp.Sources))
	}
}

func TestLocalStatus_fileSource(t *testing.T) {
	cfg := buildFixture(t)

	report, err := localStatus(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if report.Documents != 2 || report.Embeddings != 2 || !report.Aligned {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Model != embedding.FakeModelName || report.Dimension != embedding.FakeDimensions {
		t.Errorf("model = %s dim = %d", report.Model, report.Dimension)
	}
	if report.DiskUsageBytes == nil || *report.DiskUsageBytes == 0 {
		t.Error("expected disk usage for file source")
	}
	if report.Completion {
		t.Error("completion should be off without an API key")
	}
}

func TestLocalStatus_missingFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Knowledge.Source = knowledge.SourceFile
	dir := t.TempDir()
	cfg.Knowledge.DocumentPath = filepath.Join(dir, knowledge.DocumentsFile)
	cfg.Knowledge.VectorPath = filepath.Join(dir, knowledge.VectorsFile)

	if _, err := localStatus(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error for missing knowledge files")
	}
}
