package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("pdf document not found")
	ErrInvalidRange     = errors.New("invalid page range")
)

type Config struct {
	Backend   string // "native" (default) | "pdftotext"
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdfinfo   string // binary name or absolute path; if empty -> "pdfinfo"
}

type Result struct {
	Text      string
	PagesRead int
	Warnings  []string
	Duration  time.Duration
}

// document is the slice of a PDF handle the extractor needs. Pages are 1-indexed.
type document interface {
	NumPage() int
	PageText(ctx context.Context, page int) (string, error)
	Close() error
}

type opener func(ctx context.Context, path string) (document, error)

type Extractor struct {
	cfg    Config
	open   opener
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return newExtractor(cfg, execRunner{logger: orDefault(logger)}, logger)
}

func newExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	logger = orDefault(logger)
	if cfg.Backend == "" {
		cfg.Backend = "native"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	e := &Extractor{cfg: cfg, logger: logger}
	switch cfg.Backend {
	case "pdftotext":
		e.open = openPoppler(runner, cfg.Pdfinfo, cfg.Pdftotext)
	default:
		e.open = openNative
	}
	return e
}

// ExtractPages concatenates the plain text of pages start..end (1-indexed, inclusive).
// A page past the end of the document stops extraction with a warning; what was read so far is returned.
// Any other failure returns an error and no text.
func (e *Extractor) ExtractPages(ctx context.Context, path string, start, end int) (Result, error) {
	t0 := time.Now()
	if start < 1 || end < start {
		return Result{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.logger.Error("pdf.extract.not_found", "path", path)
			return Result{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		e.logger.Error("pdf.extract.stat_failed", "path", path, "error", err)
		return Result{}, err
	}

	e.logger.Debug("pdf.extract.start", "path", path, "backend", e.cfg.Backend, "start", start, "end", end)
	doc, err := e.open(ctx, path)
	if err != nil {
		e.logger.Error("pdf.extract.open_failed", "path", path, "error", err)
		return Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("pdf.extract.close_failed", "path", path, "error", cerr)
		}
	}()

	var (
		res   Result
		b     strings.Builder
		total = doc.NumPage()
	)
	for page := start; page <= end; page++ {
		if page > total {
			msg := fmt.Sprintf("page %d is out of bounds (document has %d pages)", page, total)
			e.logger.Warn("pdf.extract.out_of_bounds", "path", path, "page", page, "pages", total)
			res.Warnings = append(res.Warnings, msg)
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		text, err := doc.PageText(ctx, page)
		if err != nil {
			e.logger.Error("pdf.extract.page_failed", "path", path, "page", page, "error", err)
			return Result{}, err
		}
		b.WriteString(text)
		res.PagesRead++
	}

	res.Text = b.String()
	res.Duration = time.Since(t0)
	e.logger.Info("pdf.extract.ok",
		"path", path,
		"pages_read", res.PagesRead,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
