package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/repository"
)

const (
	CodesSheet      = "Uniformat"
	EnrichmentSheet = "Enrichment"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	codes      repository.CodeRepository
	enrichment repository.EnrichmentRepository
	logger     *slog.Logger
}

func NewService(codes repository.CodeRepository, enrichment repository.EnrichmentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{codes: codes, enrichment: enrichment, logger: logger}
}

// ExportXLSX returns a workbook with every code row (plus description and notes) on one sheet and
// every inclusion/exclusion line on another.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	codes, err := s.codes.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("query codes: %w", err)
	}
	frags, err := s.enrichment.ListFragments(ctx)
	if err != nil {
		return nil, fmt.Errorf("query fragments: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", CodesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(EnrichmentSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(CodesSheet)
	f.SetActiveSheet(activeIndex)

	headers := append(append([]string{}, constants.CodeColumns...), "Description", "Notes")
	writeRow(f, CodesSheet, 1, headers)
	for i, c := range codes {
		writeRow(f, CodesSheet, i+2, []string{
			c.Type,
			c.Level1Code, c.Level1Name,
			c.Level2Code, c.Level2Name,
			c.Level3Code, c.Level3Name,
			c.Level4Code, c.Level4Name,
			deref(c.Description),
			deref(c.Notes),
		})
	}

	writeRow(f, EnrichmentSheet, 1, []string{"Level 3 Code", "Kind", "Text"})
	for i, fr := range frags {
		writeRow(f, EnrichmentSheet, i+2, []string{fr.Level3Code, string(fr.Kind), fr.Text})
	}

	// Widen a few columns
	_ = f.SetColWidth(CodesSheet, "A", "A", 12) // type
	_ = f.SetColWidth(CodesSheet, "B", "I", 22) // hierarchy
	_ = f.SetColWidth(CodesSheet, "J", "J", 80) // description
	_ = f.SetColWidth(CodesSheet, "K", "K", 30) // notes
	_ = f.SetColWidth(EnrichmentSheet, "A", "B", 14)
	_ = f.SetColWidth(EnrichmentSheet, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"codes", len(codes),
		"fragments", len(frags),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
