package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/invoice-ai/internal/export"
	"github.com/zombor/invoice-ai/internal/invoice"
	"github.com/zombor/invoice-ai/internal/records"
	"github.com/zombor/invoice-ai/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	port        *int
	dbPath      *string
	storagePath *string
	analyzer    *string
	mockDelay   *time.Duration
	geminiKey   *string
	geminiModel *string
	ollamaURL   *string
	ollamaModel *string
	remoteURL   *string
	remoteKey   *string
	authUser    *string
	authPass    *string
	locale      *string
	logLevel    *string
	logFormat   *string
}

func main() {
	fs := ff.NewFlagSet("invoice-ai")
	cfg := config{
		port:        fs.IntLong("port", 8080, "HTTP server port"),
		dbPath:      fs.StringLong("db", "invoice-ai.db", "Database file path"),
		storagePath: fs.StringLong("storage", "./uploads", "Directory for original uploads"),
		analyzer:    fs.StringLong("analyzer", "mock", "Document analyzer: mock, gemini, ollama or remote"),
		mockDelay:   fs.DurationLong("mock-delay", 2*time.Second, "Simulated processing time of the mock analyzer"),
		geminiKey:   fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)"),
		geminiModel: fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name"),
		ollamaURL:   fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL"),
		ollamaModel: fs.StringLong("ollama-model", "llava", "Ollama model name"),
		remoteURL:   fs.StringLong("remote-url", "", "Base URL of the remote analysis service"),
		remoteKey:   fs.StringLong("remote-key", "", "API key of the remote analysis service"),
		authUser:    fs.StringLong("auth-user", "", "Basic auth username (optional)"),
		authPass:    fs.StringLong("auth-pass", "", "Basic auth password (optional)"),
		locale:      fs.StringLong("locale", invoice.DefaultLocale, "Locale for amounts in PDF exports"),
		logLevel:    fs.StringLong("log-level", "info", "Log level: debug, info, warn or error"),
		logFormat:   fs.StringLong("log-format", "text", "Log format: text or json"),
	}
	_ = fs.StringLong("config", "", "Config file (plain 'flag value' lines)")
	showVersion := fs.BoolLong("version", "Show version information")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_AI"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, *cfg.logLevel, *cfg.logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the log flags
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// newAnalyzer builds the configured document analyzer
func newAnalyzer(cfg config) (scanning.Analyzer, error) {
	switch *cfg.analyzer {
	case "mock":
		slog.Info("Using mock analyzer", "delay", *cfg.mockDelay)
		return scanning.NewMock(*cfg.mockDelay), nil
	case "gemini":
		apiKey := *cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini analyzer...", "model", *cfg.geminiModel)
		return scanning.NewGemini(apiKey, *cfg.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama analyzer...", "url", *cfg.ollamaURL, "model", *cfg.ollamaModel)
		return scanning.NewOllama(*cfg.ollamaURL, *cfg.ollamaModel)
	case "remote":
		slog.Info("Initializing remote analyzer...", "url", *cfg.remoteURL)
		return scanning.NewRemote(*cfg.remoteURL, *cfg.remoteKey)
	default:
		return nil, fmt.Errorf("invalid analyzer %q: want mock, gemini, ollama or remote", *cfg.analyzer)
	}
}

func run(cfg config) error {
	slog.Info("Initializing database...", "path", *cfg.dbPath)
	db, err := records.NewBoltDB(*cfg.dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("initializing analyzer: %w", err)
	}
	defer analyzer.Close()

	slog.Info("Initializing storage...", "path", *cfg.storagePath)
	store, err := records.NewLocalStorage(*cfg.storagePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	service := records.NewService(db, analyzer, store, export.NewExporter(*cfg.locale))

	basicAuth := records.BasicAuth{
		Username: *cfg.authUser,
		Password: *cfg.authPass,
	}
	server := records.NewServer(service, basicAuth)
	if basicAuth.Enabled() {
		slog.Info("Basic auth enabled", "user", basicAuth.Username)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", *cfg.port)
	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if err := server.Start(ctx, addr); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("Shutting down...")
	return nil
}
