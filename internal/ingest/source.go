package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/uniformat-db/constants"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported or missing extension")
	ErrSourceNotFound    = errors.New("source file not found")
)

// Source identifies an input file by absolute path and content hash.
type Source struct {
	Path    string
	Format  string
	Size    int64
	HashHex string
}

// Inspect resolves path, checks its extension against the wanted format and fingerprints it.
func Inspect(path, wantFormat string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var out Source

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	format := constants.MapExtToFormat(ext)
	if !AllowedExt(ext) || (wantFormat != "" && format != wantFormat) {
		logger.Error("ingest.source.unsupported", "path", abs, "ext", ext, "want", wantFormat)
		return out, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, fmt.Errorf("%w: %s", ErrSourceNotFound, abs)
		}
		return out, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			logger.Warn("ingest.source.close_error", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}

	out = Source{Path: abs, Format: format, Size: n, HashHex: hex.EncodeToString(h.Sum(nil))}
	logger.Info("ingest.source.ok", "path", abs, "format", format, "bytes", n, "sha256", out.HashHex)
	return out, nil
}
