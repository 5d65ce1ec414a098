package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

// MergeReport summarizes one extraction pass.
type MergeReport struct {
	PagesRead int
	Warnings  []string
	Elements  int
	Matched   int
	Unmatched int
	Skipped   int
	Outcomes  []entity.MergeOutcome
}

// ExtractAndMerge reads the page range, asks the model for Level 3 inclusions/exclusions and merges
// them into the store. Missing text or a failed (non-malformed) AI call yields ErrStageSkipped.
func (p *Processor) ExtractAndMerge(ctx context.Context, pdfPath string, startPage, endPage int) (MergeReport, error) {
	start := time.Now()
	var rep MergeReport

	res, err := p.PDF.ExtractPages(ctx, pdfPath, startPage, endPage)
	if err != nil {
		if isFatal(err) {
			return rep, err
		}
		p.Logger.Error("pipeline.extract.pdf_failed", "path", pdfPath, "error", err)
		return rep, fmt.Errorf("%w: pdf text: %v", ErrStageSkipped, err)
	}
	rep.PagesRead = res.PagesRead
	rep.Warnings = res.Warnings
	if strings.TrimSpace(res.Text) == "" {
		p.Logger.Warn("pipeline.extract.no_text", "path", pdfPath, "start", startPage, "end", endPage)
		return rep, fmt.Errorf("%w: no text in pages %d-%d", ErrStageSkipped, startPage, endPage)
	}
	p.Logger.Info("pipeline.extract.text_ok", "pages", res.PagesRead, "chars", len(res.Text), "warnings", len(res.Warnings))

	elements, err := p.Extractor.ExtractElements(ctx, res.Text)
	if err != nil {
		if isFatal(err) {
			p.Logger.Error("pipeline.extract.fatal", "error", err)
			return rep, err
		}
		p.Logger.Error("pipeline.extract.ai_failed", "error", err)
		return rep, fmt.Errorf("%w: extraction: %v", ErrStageSkipped, err)
	}
	rep.Elements = len(elements)
	if len(elements) == 0 {
		p.Logger.Warn("pipeline.extract.no_elements")
		return rep, nil
	}

	outcomes, err := p.Enrichment.MergeExtraction(ctx, elements)
	if err != nil {
		return rep, err
	}
	rep.Outcomes = outcomes
	for _, o := range outcomes {
		switch o.Status {
		case constants.MergeMatched:
			rep.Matched++
		case constants.MergeUnmatched:
			rep.Unmatched++
			p.Logger.Warn("pipeline.extract.unmatched", "level3_code", o.Level3Code, "candidates", len(o.Candidates))
		case constants.MergeSkipped:
			rep.Skipped++
		}
	}

	p.Logger.Info("pipeline.extract.ok",
		"elements", rep.Elements,
		"matched", rep.Matched,
		"unmatched", rep.Unmatched,
		"skipped", rep.Skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}
