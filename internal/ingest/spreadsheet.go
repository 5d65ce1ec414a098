package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptySheet    = errors.New("sheet has no header row")
)

// SpreadsheetReader loads the Uniformat code hierarchy from an XLSX workbook.
type SpreadsheetReader struct {
	Sheet  string // empty selects the first sheet
	logger *slog.Logger
}

func NewSpreadsheetReader(sheet string, logger *slog.Logger) *SpreadsheetReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetReader{Sheet: sheet, logger: logger}
}

// ReadCodes returns one CodeRow per non-blank data row. Every header in constants.CodeColumns must exist.
func (r *SpreadsheetReader) ReadCodes(path string) ([]entity.CodeRow, error) {
	start := time.Now()
	src, err := Inspect(path, constants.XLSX, r.logger)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		r.logger.Error("ingest.xlsx.open_failed", "path", src.Path, "error", err)
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("ingest.xlsx.close_error", "error", err)
		}
	}()

	sheet := r.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, src.Path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, sheet)
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		r.logger.Error("ingest.xlsx.bad_header", "sheet", sheet, "error", err)
		return nil, err
	}

	out := make([]entity.CodeRow, 0, len(rows)-1)
	skipped := 0
	for _, cells := range rows[1:] {
		get := func(col string) string {
			i := idx[col]
			if i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}
		row := entity.CodeRow{
			Type:       get(constants.ColType),
			Level1Code: get(constants.ColLevel1Code),
			Level1Name: get(constants.ColLevel1Name),
			Level2Code: get(constants.ColLevel2Code),
			Level2Name: get(constants.ColLevel2Name),
			Level3Code: get(constants.ColLevel3Code),
			Level3Name: get(constants.ColLevel3Name),
			Level4Code: get(constants.ColLevel4Code),
			Level4Name: get(constants.ColLevel4Name),
		}
		if row == (entity.CodeRow{}) {
			skipped++
			continue
		}
		out = append(out, row)
	}

	r.logger.Info("ingest.xlsx.ok",
		"path", src.Path,
		"sheet", sheet,
		"rows", len(out),
		"blank_rows", skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = normalizeHeader(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range constants.CodeColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
