package ingest

import (
	"strings"

	"github.com/joseph-ayodele/uniformat-db/constants"
)

// AllowedExt checks if a file extension is in the allowed set (pdf/xlsx/xlsm).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// normalizeHeader collapses runs of whitespace so "Level  1 Code" still matches.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
