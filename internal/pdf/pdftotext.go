package pdf

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// popplerDoc shells out to poppler-utils, one pdftotext call per page.
type popplerDoc struct {
	runner    Runner
	pdftotext string
	path      string
	pages     int
}

func openPoppler(runner Runner, pdfinfo, pdftotext string) opener {
	return func(ctx context.Context, path string) (document, error) {
		out, errb, err := runner.Run(ctx, pdfinfo, path)
		if err != nil {
			return nil, fmt.Errorf("pdfinfo: %w: %s", err, strings.TrimSpace(string(errb)))
		}
		pages, err := parsePageCount(out)
		if err != nil {
			return nil, err
		}
		return &popplerDoc{runner: runner, pdftotext: pdftotext, path: path, pages: pages}, nil
	}
}

// parsePageCount reads the "Pages:" line of pdfinfo output.
func parsePageCount(info []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(info))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("pdfinfo: bad page count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo: no page count in output")
}

func (d *popplerDoc) NumPage() int {
	return d.pages
}

func (d *popplerDoc) PageText(ctx context.Context, page int) (string, error) {
	n := strconv.Itoa(page)
	// pdftotext -f N -l N -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := d.runner.Run(ctx, d.pdftotext, "-f", n, "-l", n, "-layout", "-enc", "UTF-8", "-eol", "unix", d.path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext page %d: %w: %s", page, err, strings.TrimSpace(string(errb)))
	}
	// A form-feed \f terminates each page.
	return strings.TrimSuffix(string(out), "\f"), nil
}

func (d *popplerDoc) Close() error {
	return nil
}
