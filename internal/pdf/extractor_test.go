package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/uniformat-db/internal/testutil"
)

type fakeDoc struct {
	pages   []string
	failOn  int
	closed  int
	touched []int
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }

func (d *fakeDoc) PageText(_ context.Context, page int) (string, error) {
	d.touched = append(d.touched, page)
	if page == d.failOn {
		return "", errors.New("corrupt content stream")
	}
	return d.pages[page-1], nil
}

func (d *fakeDoc) Close() error {
	d.closed++
	return nil
}

// newFakeExtractor returns an extractor whose documents come from doc, plus a real path to satisfy the stat.
func newFakeExtractor(t *testing.T, doc *fakeDoc) (*Extractor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	e := newExtractor(Config{}, nil, nil)
	e.open = func(context.Context, string) (document, error) { return doc, nil }
	return e, path
}

func TestExtractPages_ConcatenatesRange(t *testing.T) {
	doc := &fakeDoc{pages: []string{"one\n", "two\n", "three\n", "four\n"}}
	e, path := newFakeExtractor(t, doc)

	res, err := e.ExtractPages(context.Background(), path, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", res.Text)
	assert.Equal(t, 2, res.PagesRead)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, doc.closed)
}

func TestExtractPages_WideningNeverShrinks(t *testing.T) {
	doc := &fakeDoc{pages: []string{"alpha ", "beta ", "gamma ", "delta ", "epsilon "}}
	e, path := newFakeExtractor(t, doc)

	prev := -1
	for end := 1; end <= len(doc.pages); end++ {
		res, err := e.ExtractPages(context.Background(), path, 1, end)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(res.Text), prev, "range 1-%d", end)
		prev = len(res.Text)
	}
}

func TestExtractPages_OutOfBoundsTruncatesWithWarning(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a", "b", "c"}}
	e, path := newFakeExtractor(t, doc)

	res, err := e.ExtractPages(context.Background(), path, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "bc", res.Text)
	assert.Equal(t, 2, res.PagesRead)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "page 4 is out of bounds")
	assert.Equal(t, []int{2, 3}, doc.touched)
	assert.Equal(t, 1, doc.closed)
}

func TestExtractPages_EntirelyOutOfBounds(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a"}}
	e, path := newFakeExtractor(t, doc)

	res, err := e.ExtractPages(context.Background(), path, 5, 6)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Len(t, res.Warnings, 1)
}

func TestExtractPages_PageErrorClosesDocument(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a", "b", "c"}, failOn: 2}
	e, path := newFakeExtractor(t, doc)

	res, err := e.ExtractPages(context.Background(), path, 1, 3)
	require.Error(t, err)
	assert.Empty(t, res.Text)
	assert.Equal(t, 1, doc.closed)
}

func TestExtractPages_MissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), 1, 2)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestExtractPages_InvalidRange(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a"}}
	e, path := newFakeExtractor(t, doc)

	for _, r := range [][2]int{{0, 1}, {3, 2}, {-1, 4}} {
		_, err := e.ExtractPages(context.Background(), path, r[0], r[1])
		assert.ErrorIs(t, err, ErrInvalidRange, "range %v", r)
	}
	assert.Zero(t, doc.closed, "document must not be opened for invalid ranges")
}

func TestExtractPages_CancelledContext(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a", "b"}}
	e, path := newFakeExtractor(t, doc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.ExtractPages(ctx, path, 1, 2)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, doc.closed)
}

func TestExtractPages_NativeBackend(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(),
		"Standard Foundations",
		"Slab on Grade",
		"Basement Excavation",
	)
	e := NewExtractor(Config{Backend: "native"}, nil)

	res, err := e.ExtractPages(context.Background(), path, 2, 5)
	require.NoError(t, err)
	assert.NotContains(t, res.Text, "Standard Foundations")
	assert.Contains(t, res.Text, "Slab on Grade")
	assert.Contains(t, res.Text, "Basement Excavation")
	assert.Equal(t, 2, res.PagesRead)
	assert.Len(t, res.Warnings, 1)
}

func TestExtractPages_NativeBackendRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))

	e := NewExtractor(Config{}, nil)
	res, err := e.ExtractPages(context.Background(), path, 1, 1)
	require.Error(t, err)
	assert.Empty(t, res.Text)
}

type stubRunner struct {
	calls [][]string
	pages map[string]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	switch name {
	case "pdfinfo":
		return []byte(fmt.Sprintf("Title:   Uniformat\nPages:          %d\nEncrypted: no\n", len(s.pages))), nil, nil
	case "pdftotext":
		// -f N -l N ...
		return []byte(s.pages[args[1]] + "\f"), nil, nil
	}
	return nil, []byte("unknown command"), errors.New("exit status 127")
}

func TestExtractPages_PdftotextBackend(t *testing.T) {
	runner := &stubRunner{pages: map[string]string{"1": "A10 Foundations\n", "2": "A20 Basement\n"}}
	e := newExtractor(Config{Backend: "pdftotext"}, runner, nil)
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	res, err := e.ExtractPages(context.Background(), path, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "A10 Foundations\nA20 Basement\n", res.Text)
	assert.Len(t, res.Warnings, 1)

	require.Len(t, runner.calls, 3)
	assert.Equal(t, []string{"pdfinfo", path}, runner.calls[0])
	assert.Equal(t, []string{"pdftotext", "-f", "2", "-l", "2", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}, runner.calls[2])
}

func TestParsePageCount(t *testing.T) {
	n, err := parsePageCount([]byte("Producer: x\nPages:   42\n"))
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = parsePageCount([]byte("Producer: x\n"))
	assert.Error(t, err)

	_, err = parsePageCount([]byte("Pages: many\n"))
	assert.Error(t, err)
}
