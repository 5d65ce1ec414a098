package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/export"
	"github.com/joseph-ayodele/uniformat-db/internal/ingest"
	"github.com/joseph-ayodele/uniformat-db/internal/llm"
	"github.com/joseph-ayodele/uniformat-db/internal/llm/gemini"
	"github.com/joseph-ayodele/uniformat-db/internal/llm/openai"
	"github.com/joseph-ayodele/uniformat-db/internal/pdf"
	"github.com/joseph-ayodele/uniformat-db/internal/pipeline"
	"github.com/joseph-ayodele/uniformat-db/internal/repository"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dsn        string
	logLevel   string
	logFormat  string
	provider   string
	model      string
}

// app is the per-invocation wiring: config, logger and the database handle.
type app struct {
	opts   globalOptions
	cfg    *common.Config
	logger *slog.Logger
	db     *repository.DB
}

// load reads config with flag overrides, validates it and installs the logger.
func (a *app) load(requireLLM bool, changed func(string) bool) error {
	overrides := map[string]any{}
	set := func(flag, key string, val any) {
		if changed(flag) {
			overrides[key] = val
		}
	}
	set("db", "database.dsn", a.opts.dsn)
	set("log-level", "log.level", a.opts.logLevel)
	set("log-format", "log.format", a.opts.logFormat)
	set("provider", "llm.provider", a.opts.provider)
	set("model", "llm.model", a.opts.model)

	cfg, err := common.LoadConfig(a.opts.configPath, overrides)
	if err != nil {
		return withCode(exitFatal, err)
	}

	a.logger = newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(a.logger)

	if err := cfg.Validate(requireLLM); err != nil {
		a.logger.Error("config.invalid", "error", err)
		return withCode(exitFatal, err)
	}
	a.cfg = cfg
	return nil
}

// newLogger builds a JSON handler by default; "text" drops the time attribute for terminal use.
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// openDB connects and ensures the schema exists.
func (a *app) openDB(ctx context.Context) error {
	db, err := repository.Open(ctx, repository.Config{
		DSN:         a.cfg.Database.DSN,
		DialTimeout: a.cfg.Database.DialTimeout,
	}, a.logger)
	if err != nil {
		a.logger.Error("failed to open database", "error", err)
		return withCode(exitFatal, err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return withCode(exitFatal, err)
	}
	a.db = db
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) generator() llm.Generator {
	c := a.cfg.LLM
	if c.Provider == "openai" {
		return openai.NewClient(openai.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Model: c.Model, Timeout: c.Timeout}, a.logger)
	}
	return gemini.NewClient(gemini.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Model: c.Model, Timeout: c.Timeout}, a.logger)
}

// processor wires the pipeline. The model client is built only when withLLM is set.
func (a *app) processor(withLLM bool) *pipeline.Processor {
	var (
		extractor llm.ElementExtractor
		describer llm.DescriptionGenerator
	)
	if withLLM {
		svc := llm.NewService(a.generator(), llm.RetryPolicy{
			MaxAttempts:  a.cfg.LLM.MaxRetries,
			InitialDelay: a.cfg.LLM.InitialDelay,
		}, a.logger)
		extractor, describer = svc, svc
		a.logger.Info("llm.client.ready", "provider", a.cfg.LLM.Provider, "model", a.cfg.LLM.Model)
	}
	return pipeline.NewProcessor(
		a.logger,
		pipeline.Config{BatchSize: a.cfg.Pipeline.BatchSize, BatchPause: a.cfg.Pipeline.BatchPause},
		ingest.NewSpreadsheetReader(a.cfg.Pipeline.Sheet, a.logger),
		pdf.NewExtractor(pdf.Config{Backend: a.cfg.PDF.Backend, Pdftotext: a.cfg.PDF.Pdftotext, Pdfinfo: a.cfg.PDF.Pdfinfo}, a.logger),
		repository.NewCodeRepository(a.db, a.logger),
		repository.NewEnrichmentRepository(a.db, a.logger),
		extractor,
		describer,
	)
}

func (a *app) exporter() *export.Service {
	return export.NewService(
		repository.NewCodeRepository(a.db, a.logger),
		repository.NewEnrichmentRepository(a.db, a.logger),
		a.logger,
	)
}
