package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
	"github.com/joseph-ayodele/uniformat-db/internal/testutil"
)

func header() []string {
	return append([]string(nil), constants.CodeColumns...)
}

func TestReadCodes_TrimsAndSkipsBlankRows(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "Sheet1", [][]string{
		header(),
		{"Element", "A", "Substructure", "A10", "Foundations", " A1010 ", "Standard Foundations", "A1011", "Wall Foundations"},
		{},
		{"", "", "", "", "", "", "", "", ""},
		{"Group", "B", "Shell"},
	})

	rows, err := NewSpreadsheetReader("", nil).ReadCodes(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A1010", rows[0].Level3Code)
	assert.Equal(t, entity.CodeRow{Type: "Group", Level1Code: "B", Level1Name: "Shell"}, rows[1])
}

func TestReadCodes_ColumnOrderIndependent(t *testing.T) {
	h := header()
	h[0], h[8] = h[8], h[0]
	path := testutil.WriteXLSX(t, t.TempDir(), "Sheet1", [][]string{
		h,
		{"Wall Foundations", "A", "Substructure", "A10", "Foundations", "A1010", "Standard Foundations", "A1011", "Element"},
	})

	rows, err := NewSpreadsheetReader("", nil).ReadCodes(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Element", rows[0].Type)
	assert.Equal(t, "Wall Foundations", rows[0].Level4Name)
}

func TestReadCodes_MissingColumn(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "Sheet1", [][]string{
		header()[:7],
		{"Element", "A", "Substructure", "A10", "Foundations", "A1010", "Standard Foundations"},
	})

	_, err := NewSpreadsheetReader("", nil).ReadCodes(path)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Level 4 Code")
	assert.Contains(t, err.Error(), "Level 4 Name")
}

func TestReadCodes_NamedSheet(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "Uniformat", [][]string{
		header(),
		{"Element", "A", "Substructure", "A10", "Foundations", "A1010", "Standard Foundations", "", ""},
	})

	rows, err := NewSpreadsheetReader("Uniformat", nil).ReadCodes(path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = NewSpreadsheetReader("Nope", nil).ReadCodes(path)
	assert.Error(t, err)
}

func TestReadCodes_EmptySheet(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "Sheet1", nil)
	_, err := NewSpreadsheetReader("", nil).ReadCodes(path)
	require.ErrorIs(t, err, ErrEmptySheet)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "guide.PDF")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))

	src, err := Inspect(pdf, constants.PDF, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, src.Format)
	assert.EqualValues(t, 8, src.Size)
	assert.Len(t, src.HashHex, 64)

	_, err = Inspect(pdf, constants.XLSX, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Inspect(filepath.Join(dir, "notes.txt"), "", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Inspect(filepath.Join(dir, "missing.xlsx"), constants.XLSX, nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".PDF"))
	assert.True(t, AllowedExt("xlsx"))
	assert.False(t, AllowedExt(".csv"))
}
