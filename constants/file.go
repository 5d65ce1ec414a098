package constants

import "strings"

// Supported input formats.
const (
	PDF  = "PDF"
	XLSX = "XLSX"
)

// AllowedExtensions maps input file extensions to their format.
var AllowedExtensions = map[string]string{
	"pdf":  PDF,
	"xlsx": XLSX,
	"xlsm": XLSX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the input format for ext, or "" when unsupported.
func MapExtToFormat(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}
