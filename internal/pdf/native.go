package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// nativeDoc reads text with the pure Go ledongthuc/pdf reader.
type nativeDoc struct {
	f *os.File
	r *pdf.Reader
}

func openNative(_ context.Context, path string) (doc document, err error) {
	// The reader panics on some malformed xref tables.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("open pdf: %v", p)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &nativeDoc{f: f, r: r}, nil
}

func (d *nativeDoc) NumPage() int {
	return d.r.NumPage()
}

func (d *nativeDoc) PageText(_ context.Context, page int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read page %d: %v", page, p)
		}
	}()
	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *nativeDoc) Close() error {
	return d.f.Close()
}
