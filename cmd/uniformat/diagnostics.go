package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/pdf"
	"github.com/joseph-ayodele/uniformat-db/internal/repository"
)

func newDBHealthCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "db-health",
		Short: "Ping the database and report table counts",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			if err := a.db.HealthCheck(ctx, timeout); err != nil {
				return withCode(exitFatal, fmt.Errorf("db health: %w", err))
			}
			codes, err := repository.NewCodeRepository(a.db, a.logger).CountCodes(ctx)
			if err != nil {
				return withCode(exitFatal, err)
			}
			frags, err := repository.NewEnrichmentRepository(a.db, a.logger).ListFragments(ctx)
			if err != nil {
				return withCode(exitFatal, err)
			}
			a.logger.Info("db_health.ok", "dialect", a.db.Dialect(), "codes", codes, "fragments", len(frags))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "Ping timeout")
	return cmd
}

// newPDFTextCmd prints the text of a page range, for picking --start/--end before spending model calls.
func newPDFTextCmd(a *app) *cobra.Command {
	var pr pageRange
	cmd := &cobra.Command{
		Use:   "pdf-text",
		Short: "Print the plain text of a PDF page range",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v := common.NewValidator()
			pr.validate(v)
			return usage(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false, flagChanged(cmd)); err != nil {
				return err
			}
			x := pdf.NewExtractor(pdf.Config{Backend: a.cfg.PDF.Backend, Pdftotext: a.cfg.PDF.Pdftotext, Pdfinfo: a.cfg.PDF.Pdfinfo}, a.logger)
			res, err := x.ExtractPages(cmd.Context(), pr.pdf, pr.start, pr.end)
			if err != nil {
				return withCode(exitFatal, err)
			}
			for _, w := range res.Warnings {
				a.logger.Warn("pdf_text.warning", "warning", w)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
	pr.register(cmd)
	return cmd
}
