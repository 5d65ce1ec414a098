package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/pipeline"
)

func newInitDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the codes, inclusions and exclusions tables if missing",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			defer a.close()
			a.logger.Info("init_db.ok", "dsn_dialect", a.db.Dialect())
			return nil
		},
	}
}

func newLoadCodesCmd(a *app) *cobra.Command {
	var xlsx, sheet string
	cmd := &cobra.Command{
		Use:   "load-codes",
		Short: "Replace the code table with the rows of a Uniformat spreadsheet",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return usage(common.NewValidator().Field("--xlsx", xlsx, common.Required))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			defer a.close()
			if sheet != "" {
				a.cfg.Pipeline.Sheet = sheet
			}
			n, err := a.processor(false).LoadCodes(cmd.Context(), xlsx)
			if err != nil {
				return withCode(exitFatal, err)
			}
			a.logger.Info("load_codes.ok", "rows", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Spreadsheet with Type and Level 1-4 Code/Name columns (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default: first sheet)")
	return cmd
}

type pageRange struct {
	pdf   string
	start int
	end   int
}

func (p *pageRange) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.pdf, "pdf", "", "Uniformat II reference PDF")
	cmd.Flags().IntVar(&p.start, "start", 0, "First page, 1-indexed inclusive")
	cmd.Flags().IntVar(&p.end, "end", 0, "Last page, 1-indexed inclusive")
}

func (p *pageRange) validate(v *common.Validator) {
	v.Field("--pdf", p.pdf, common.Required).
		Field("--start", p.start, common.Positive).
		Field("--end", p.end, common.Positive).
		Check(p.end >= p.start, "--end", p.end, "must not be before --start")
}

func newExtractCmd(a *app) *cobra.Command {
	var pr pageRange
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract Level 3 inclusions/exclusions from a PDF page range and merge them",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v := common.NewValidator()
			pr.validate(v)
			return usage(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, true); err != nil {
				return err
			}
			defer a.close()
			rep, err := a.processor(true).ExtractAndMerge(cmd.Context(), pr.pdf, pr.start, pr.end)
			if errors.Is(err, pipeline.ErrStageSkipped) {
				a.logger.Warn("extract.skipped", "error", err)
				return nil
			}
			if err != nil {
				return withCode(exitFatal, err)
			}
			a.logger.Info("extract.ok", "pages", rep.PagesRead, "elements", rep.Elements,
				"matched", rep.Matched, "unmatched", rep.Unmatched, "skipped", rep.Skipped)
			return nil
		},
	}
	pr.register(cmd)
	return cmd
}

type batchOptions struct {
	size  int
	pause time.Duration
}

func (b *batchOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&b.size, "batch-size", 0, "Elements per description request (default from config, 5)")
	cmd.Flags().DurationVar(&b.pause, "batch-pause", 0, "Fixed wait between description batches, e.g. 6s")
}

func (b *batchOptions) validate(cmd *cobra.Command, v *common.Validator) {
	if cmd.Flags().Changed("batch-size") {
		v.Field("--batch-size", b.size, common.Positive)
	}
	v.Check(b.pause >= 0, "--batch-pause", b.pause, "must not be negative")
}

func (b *batchOptions) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("batch-size") {
		a.cfg.Pipeline.BatchSize = b.size
	}
	if cmd.Flags().Changed("batch-pause") {
		a.cfg.Pipeline.BatchPause = b.pause
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	var bo batchOptions
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Generate descriptions for every Level 3 code in batches and store them",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v := common.NewValidator()
			bo.validate(cmd, v)
			return usage(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, true); err != nil {
				return err
			}
			defer a.close()
			bo.apply(cmd, a)
			rep, err := a.processor(true).Describe(cmd.Context())
			if errors.Is(err, pipeline.ErrStageSkipped) {
				a.logger.Warn("describe.skipped", "error", err)
				return nil
			}
			if err != nil {
				return withCode(exitFatal, err)
			}
			a.logger.Info("describe.ok", "targets", rep.Targets, "batches", rep.Batches,
				"failed_batches", rep.FailedBatches, "updated_codes", rep.UpdatedCodes, "rows_updated", rep.RowsUpdated)
			return nil
		},
	}
	bo.register(cmd)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write codes, descriptions and inclusions/exclusions to an XLSX workbook",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return usage(common.NewValidator().Field("--out", out, common.Required))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			defer a.close()
			b, err := a.exporter().ExportXLSX(cmd.Context())
			if err != nil {
				return withCode(exitFatal, err)
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return withCode(exitFatal, fmt.Errorf("write %s: %w", out, err))
			}
			a.logger.Info("export.ok", "path", out, "bytes", len(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output .xlsx path (required)")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		xlsx, sheet  string
		pr           pageRange
		bo           batchOptions
		skipDescribe bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run load-codes, extract and describe in order",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v := common.NewValidator()
			if pr.pdf != "" {
				pr.validate(v)
			}
			bo.validate(cmd, v)
			return usage(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			needLLM := pr.pdf != "" || !skipDescribe
			if err := a.setup(cmd, needLLM); err != nil {
				return err
			}
			defer a.close()
			bo.apply(cmd, a)
			if sheet != "" {
				a.cfg.Pipeline.Sheet = sheet
			}
			rep, err := a.processor(needLLM).Run(cmd.Context(), pipeline.RunInput{
				XLSXPath:  xlsx,
				PDFPath:   pr.pdf,
				StartPage: pr.start,
				EndPage:   pr.end,
				Describe:  !skipDescribe,
			})
			if err != nil {
				return withCode(exitFatal, err)
			}
			a.logger.Info("run.ok", "run_id", rep.RunID, "codes_loaded", rep.CodesLoaded,
				"matched", rep.Merge.Matched, "unmatched", rep.Merge.Unmatched,
				"updated_codes", rep.Descriptions.UpdatedCodes, "skipped_stages", rep.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Spreadsheet to load first (optional)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&skipDescribe, "skip-describe", false, "Stop after extraction")
	pr.register(cmd)
	bo.register(cmd)
	return cmd
}
