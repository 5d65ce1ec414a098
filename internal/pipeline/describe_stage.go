package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

// DescribeReport summarizes the description pass.
type DescribeReport struct {
	Targets       int
	Batches       int
	FailedBatches int
	UpdatedCodes  int
	RowsUpdated   int64
	UnknownCodes  []string // returned by the model but not part of the batch
	MissingCodes  []string // in a successful batch but never written
	UpdateErrors  int
}

// Describe generates descriptions batch by batch and writes each one back by level3_code.
// A failed batch or update is logged and skipped.
func (p *Processor) Describe(ctx context.Context) (DescribeReport, error) {
	start := time.Now()
	var rep DescribeReport

	targets, err := p.Enrichment.FetchEnrichmentTargets(ctx)
	if err != nil {
		return rep, err
	}
	rep.Targets = len(targets)
	if len(targets) == 0 {
		p.Logger.Warn("pipeline.describe.no_targets")
		return rep, fmt.Errorf("%w: no level 3 codes to describe", ErrStageSkipped)
	}

	size := p.Cfg.BatchSize
	planned := (len(targets) + size - 1) / size
	p.Logger.Info("pipeline.describe.plan",
		"targets", len(targets),
		"batch_size", size,
		"batches", planned,
		"batch_pause", p.Cfg.BatchPause.String(),
		"rpm_limit", constants.RPMLimit,
		"tpm_limit", constants.TPMLimit,
		"rpd_limit", constants.RPDLimit,
	)
	if planned > constants.RPDLimit {
		p.Logger.Warn("pipeline.describe.over_daily_quota", "batches", planned, "rpd_limit", constants.RPDLimit)
	}
	for i := 0; i < len(targets); i += size {
		if i > 0 && p.Cfg.BatchPause > 0 {
			if err := p.sleep(ctx, p.Cfg.BatchPause); err != nil {
				return rep, err
			}
		}
		batch := targets[i:min(i+size, len(targets))]
		rep.Batches++
		if err := p.describeBatch(ctx, rep.Batches, batch, &rep); err != nil {
			return rep, err
		}
	}

	p.Logger.Info("pipeline.describe.ok",
		"targets", rep.Targets,
		"batches", rep.Batches,
		"failed_batches", rep.FailedBatches,
		"updated_codes", rep.UpdatedCodes,
		"rows_updated", rep.RowsUpdated,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

func (p *Processor) describeBatch(ctx context.Context, n int, batch []entity.EnrichmentTarget, rep *DescribeReport) error {
	log := p.Logger.With("batch", n, "size", len(batch))
	log.Info("pipeline.describe.batch_start", "first", batch[0].Level3Code, "last", batch[len(batch)-1].Level3Code)

	descs, err := p.Describer.GenerateDescriptions(ctx, batch)
	if err != nil {
		if isFatal(err) {
			log.Error("pipeline.describe.fatal", "error", err)
			return err
		}
		log.Error("pipeline.describe.batch_failed", "error", err)
		rep.FailedBatches++
		return nil
	}

	pending := make(map[string]bool, len(batch))
	for _, t := range batch {
		pending[t.Level3Code] = true
	}

	for _, d := range descs {
		code := strings.TrimSpace(d.Level3Code)
		if _, ok := pending[code]; !ok {
			log.Warn("pipeline.describe.unknown_code", "level3_code", code)
			rep.UnknownCodes = append(rep.UnknownCodes, code)
			continue
		}
		text := strings.TrimSpace(d.EnhancedDescription)
		if text == "" {
			log.Warn("pipeline.describe.empty_description", "level3_code", code)
			continue
		}
		rows, err := p.Codes.UpdateDescription(ctx, code, text)
		if err != nil {
			if isFatal(err) {
				return err
			}
			log.Error("pipeline.describe.update_failed", "level3_code", code, "error", err)
			rep.UpdateErrors++
			continue
		}
		if rows == 0 {
			log.Warn("pipeline.describe.no_rows", "level3_code", code)
			continue
		}
		pending[code] = false
		rep.UpdatedCodes++
		rep.RowsUpdated += rows
	}

	for _, t := range batch {
		if pending[t.Level3Code] {
			rep.MissingCodes = append(rep.MissingCodes, t.Level3Code)
			log.Warn("pipeline.describe.missing_code", "level3_code", t.Level3Code)
		}
	}
	return nil
}
