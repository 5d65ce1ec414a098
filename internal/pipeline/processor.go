package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
	"github.com/joseph-ayodele/uniformat-db/internal/llm"
	"github.com/joseph-ayodele/uniformat-db/internal/pdf"
	"github.com/joseph-ayodele/uniformat-db/internal/repository"
)

// ErrStageSkipped marks a stage that had nothing usable to work with. The run continues.
var ErrStageSkipped = errors.New("stage skipped")

// TextExtractor pulls plain text from a page range.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string, start, end int) (pdf.Result, error)
}

// CodeReader reads the code hierarchy workbook.
type CodeReader interface {
	ReadCodes(path string) ([]entity.CodeRow, error)
}

// Config holds batching behavior for the description stage.
type Config struct {
	BatchSize  int           // default 5
	BatchPause time.Duration // fixed wait between description batches; 0 disables
}

// Processor coordinates code loading, PDF extraction, AI structuring and description updates.
type Processor struct {
	Logger     *slog.Logger
	Cfg        Config
	Reader     CodeReader
	PDF        TextExtractor
	Codes      repository.CodeRepository
	Enrichment repository.EnrichmentRepository
	Extractor  llm.ElementExtractor
	Describer  llm.DescriptionGenerator

	sleep func(ctx context.Context, d time.Duration) error
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	reader CodeReader,
	pdfx TextExtractor,
	codes repository.CodeRepository,
	enrichment repository.EnrichmentRepository,
	extractor llm.ElementExtractor,
	describer llm.DescriptionGenerator,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = constants.DefaultDescribeBatchSize
	}
	return &Processor{
		Logger:     logger,
		Cfg:        cfg,
		Reader:     reader,
		PDF:        pdfx,
		Codes:      codes,
		Enrichment: enrichment,
		Extractor:  extractor,
		Describer:  describer,
		sleep:      sleepCtx,
	}
}

// RunInput selects the stages Run executes. Empty paths skip the matching stage.
type RunInput struct {
	XLSXPath  string
	PDFPath   string
	StartPage int
	EndPage   int
	Describe  bool
}

// RunReport aggregates every stage's result.
type RunReport struct {
	RunID        string
	CodesLoaded  int
	Merge        MergeReport
	Descriptions DescribeReport
	Skipped      []string
}

// Run executes load -> extract+merge -> describe in order. A skipped stage is recorded and the next
// stage still runs; any other error stops the run.
func (p *Processor) Run(ctx context.Context, in RunInput) (RunReport, error) {
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.New().String()
		ctx = common.WithRunID(ctx, runID)
	}
	log := p.Logger.With("run_id", runID)
	start := time.Now()
	rep := RunReport{RunID: runID}
	log.Info("pipeline.run.start", "xlsx", in.XLSXPath, "pdf", in.PDFPath, "start_page", in.StartPage, "end_page", in.EndPage, "describe", in.Describe)

	if in.XLSXPath != "" {
		n, err := p.LoadCodes(ctx, in.XLSXPath)
		if err != nil {
			log.Error("pipeline.run.failed", "stage", "load", "error", err)
			return rep, common.WrapError(err, "load stage")
		}
		rep.CodesLoaded = n
	}

	if in.PDFPath != "" {
		mr, err := p.ExtractAndMerge(ctx, in.PDFPath, in.StartPage, in.EndPage)
		switch {
		case errors.Is(err, ErrStageSkipped):
			rep.Skipped = append(rep.Skipped, "extract")
		case err != nil:
			log.Error("pipeline.run.failed", "stage", "extract", "error", err)
			return rep, common.WrapError(err, "extract stage")
		}
		rep.Merge = mr
	}

	if in.Describe {
		dr, err := p.Describe(ctx)
		switch {
		case errors.Is(err, ErrStageSkipped):
			rep.Skipped = append(rep.Skipped, "describe")
		case err != nil:
			log.Error("pipeline.run.failed", "stage", "describe", "error", err)
			return rep, common.WrapError(err, "describe stage")
		}
		rep.Descriptions = dr
	}

	log.Info("pipeline.run.ok",
		"codes_loaded", rep.CodesLoaded,
		"matched", rep.Merge.Matched,
		"unmatched", rep.Merge.Unmatched,
		"described", rep.Descriptions.UpdatedCodes,
		"skipped_stages", rep.Skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// LoadCodes replaces the code table with the workbook's rows.
func (p *Processor) LoadCodes(ctx context.Context, xlsxPath string) (int, error) {
	start := time.Now()
	rows, err := p.Reader.ReadCodes(xlsxPath)
	if err != nil {
		p.Logger.Error("pipeline.load.read_failed", "path", xlsxPath, "error", err)
		return 0, err
	}
	n, err := p.Codes.BulkLoadCodes(ctx, rows)
	if err != nil {
		return 0, err
	}
	p.Logger.Info("pipeline.load.ok", "rows", n, "elapsed_ms", time.Since(start).Milliseconds())
	return n, nil
}

// isFatal reports errors that must stop the process rather than skip a stage or batch.
func isFatal(err error) bool {
	return errors.Is(err, llm.ErrMalformedResponse) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
