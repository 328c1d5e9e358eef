// Package main is the ragchat CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/builder"
	"github.com/4everinbeta/ragchat/internal/chat"
	"github.com/4everinbeta/ragchat/internal/cli"
	"github.com/4everinbeta/ragchat/internal/config"
	"github.com/4everinbeta/ragchat/internal/embedding"
	"github.com/4everinbeta/ragchat/internal/extract"
	"github.com/4everinbeta/ragchat/internal/knowledge"
	"github.com/4everinbeta/ragchat/internal/server"
	"github.com/4everinbeta/ragchat/internal/watcher"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ragchat/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if it exists; when neither exists the environment and defaults are used.
// Returns the config and the path that was loaded ("" for defaults only).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				if err != nil {
					return nil, "", err
				}
				return cfg, local, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "build":
		runBuild()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("ragchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and creates the logger. debug forces debug logging on.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || debug
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", cfg.Debug))
	return cfg, logger
}

// Components holds the long-lived pieces shared by server, ask, and status.
type Components struct {
	Service  *chat.Service
	Provider knowledge.Provider
	Embedder embedding.Embedder
}

// Close releases the embedder and any database handle.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if s, ok := c.Provider.(*knowledge.SQLiteStore); ok {
		_ = s.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	provider, err := knowledge.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize knowledge provider: %w", err)
	}

	embedder, err := embedding.New(cfg, logger)
	if err != nil {
		// Serving continues without retrieval; every answer is the fallback.
		logger.Warn("no embedding provider, answers will use the fallback", zap.Error(err))
	}

	opts := []chat.Option{
		chat.WithLogger(logger),
		chat.WithTopK(cfg.Retrieval.TopK),
		chat.WithStrict(cfg.Retrieval.Strict),
		chat.WithPreviewChars(cfg.Retrieval.PreviewChars),
		chat.WithSystemPrompt(cfg.LLM.SystemPrompt),
		chat.WithFallbackAnswer(cfg.LLM.FallbackAnswer),
	}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, chat.WithCompleter(chat.NewOpenAICompleter(
			cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)))
	} else {
		logger.Info("OPENAI_API_KEY not set, answers will use the fallback")
	}

	return &Components{
		Service:  chat.NewService(embedder, provider, opts...),
		Provider: provider,
		Embedder: embedder,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Service, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	contentDir := fs.String("content", "", "content directory (default from config)")
	outDir := fs.String("out", "", "output directory for documents.json and vectors.json (default from config)")
	withSQLite := fs.Bool("sqlite", false, "also save the knowledge base to the SQLite store")
	watch := fs.Bool("watch", false, "rebuild whenever content files change")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	if *contentDir != "" {
		cfg.Build.ContentDir = *contentDir
	}
	if *outDir != "" {
		cfg.Build.OutputDir = *outDir
	}

	embedder, err := embedding.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		os.Exit(1)
	}
	defer embedder.Close()

	opts := []builder.Option{builder.WithLogger(logger)}
	if *withSQLite || cfg.Build.WriteSQLite {
		store, err := knowledge.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open knowledge store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, builder.WithStore(store))
	}
	b := builder.New(embedder,
		extract.NewExtractor(cfg.Build.Extensions...),
		builder.NewChunker(cfg.Build.ChunkSize, cfg.Build.ChunkOverlap, cfg.Build.MinChunkRatio),
		opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := b.Build(ctx, cfg.Build.ContentDir, cfg.Build.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	} else if err := cli.WriteBuildReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if !*watch {
		return
	}

	w := watcher.New(cfg.Build.ContentDir, cfg.Build.Extensions,
		func(ctx context.Context, changed []string) {
			logger.Info("content changed, rebuilding", zap.Strings("paths", changed))
			report, err := b.Build(ctx, cfg.Build.ContentDir, cfg.Build.OutputDir)
			if err != nil {
				logger.Error("rebuild failed", zap.Error(err))
				return
			}
			_ = cli.WriteBuildReport(os.Stdout, report, format)
		},
		watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch %s: %v\n", cfg.Build.ContentDir, err)
		os.Exit(1)
	}
	<-w.Done()
	logger.Info("watch stopped")
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ragchat ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  ragchat ask what did Ryan build at Arrow
  ragchat ask --server http://localhost:8787 "how do I get in touch?"
  ragchat ask --output json cloud cost savings
`)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the question
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = answer in-process)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serverURL != "" {
		answer, err := cli.NewClient(*serverURL).Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if err := cli.WriteAnswer(os.Stdout, components.Service.Answer(ctx, question), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read the configured knowledge source directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()

	var report *cli.StatusReport
	if *serverURL != "" {
		report, err = cli.NewClient(*serverURL).Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()
		report, err = localStatus(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteStatus(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// localStatus loads the configured knowledge source without starting the server.
func localStatus(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cli.StatusReport, error) {
	provider, err := knowledge.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	kb, err := provider.Load(ctx)
	if store, ok := provider.(*knowledge.SQLiteStore); ok {
		defer store.Close()
	}
	if err != nil {
		return nil, err
	}
	report := &cli.StatusReport{
		Source:     cfg.Knowledge.Source,
		Documents:  len(kb.Documents),
		Embeddings: len(kb.Embeddings),
		Model:      kb.Model,
		Dimension:  kb.Dimension,
		Aligned:    kb.Aligned(),
		Completion: cfg.OpenAI.APIKey != "",
	}
	if cfg.Knowledge.Source != knowledge.SourceHTTP {
		if n, err := knowledge.DiskUsageBytes(cfg.Knowledge.DocumentPath, cfg.Knowledge.VectorPath, cfg.Storage.DatabasePath); err == nil {
			report.DiskUsageBytes = &n
		}
	}
	if store, ok := provider.(*knowledge.SQLiteStore); ok {
		if st, err := store.Stats(ctx); err == nil {
			report.SQLite = st
		} else {
			logger.Debug("sqlite stats unavailable", zap.Error(err))
		}
	}
	return report, nil
}

func printUsage() {
	fmt.Println(`ragchat - Retrieval-augmented chat over a small knowledge base

Usage:
  ragchat server [flags]          Start the HTTP chat API
  ragchat build [flags]           Build documents.json and vectors.json from the content directory
  ragchat ask [flags] <question>  Ask a question
  ragchat status [flags]          Show knowledge base status
  ragchat version                 Show version
  ragchat help                    Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ragchat/config.yaml, or ./config.yaml)
  --debug            Enable debug logging

Build Flags:
  --config string    Config file path
  --content string   Content directory (default from config: content)
  --out string       Output directory (default from config: rag)
  --sqlite           Also save the knowledge base to the SQLite store
  --watch            Keep running and rebuild when content files change
  --output string    Output format: text or json (default: text)

Ask Flags:
  --config string    Config file path (for in-process answers)
  --server string    Server URL, e.g. http://localhost:8787. Empty answers in-process.
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct access)
  --server string    Server URL. Empty reads the configured knowledge source directly.
  --output string    Output format: text or json (default: text)

Environment:
  OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_EMBEDDING_MODEL, OPENAI_CHAT_MODEL,
  DOCUMENT_URL, VECTOR_URL, RAG_FAKE_EMBEDDINGS=1, RAGCHAT_DEBUG

Examples:
  RAG_FAKE_EMBEDDINGS=1 ragchat build --content content --out rag
  ragchat server --debug
  ragchat ask --server http://localhost:8787 what does Ryan do`)
}
