package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/formbatch/internal/common"
)

type stubRunner struct {
	out  string
	err  error
	name string
	args []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return []byte(s.out), []byte("stderr"), s.err
}

func TestPageText_PassesOneBasedPageRange(t *testing.T) {
	r := &stubRunner{out: "JOHN SMITH\r\nLOS ANGELES, CA\t90210\f"}
	e := NewExtractorWithRunner(Config{}, r, nil)

	text, err := e.PageText(context.Background(), "/tmp/a.pdf", 1)

	require.NoError(t, err)
	assert.Equal(t, "pdftotext", r.name)
	assert.Equal(t, []string{"-f", "2", "-l", "2", "-enc", "UTF-8", "-eol", "unix", "/tmp/a.pdf", "-"}, r.args)
	assert.Equal(t, "JOHN SMITH\nLOS ANGELES, CA 90210", text)
}

func TestPageText_CustomBinary(t *testing.T) {
	r := &stubRunner{}
	e := NewExtractorWithRunner(Config{Pdftotext: "/opt/poppler/pdftotext"}, r, nil)

	_, err := e.PageText(context.Background(), "a.pdf", 0)

	require.NoError(t, err)
	assert.Equal(t, "/opt/poppler/pdftotext", r.name)
}

func TestPageText_RunnerFailureIsDocumentRead(t *testing.T) {
	r := &stubRunner{err: errors.New("exit status 1")}
	e := NewExtractorWithRunner(Config{}, r, nil)

	_, err := e.PageText(context.Background(), "bad.pdf", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
}

func TestPageText_NegativePage(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)

	_, err := e.PageText(context.Background(), "a.pdf", -1)

	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b\nc", Normalize("  a \t  b   \r\nc  \n\n"))
}

func TestPageText_MissingBinary(t *testing.T) {
	e := NewExtractor(Config{Pdftotext: "formbatch-no-such-pdftotext"}, nil)

	_, err := e.PageText(context.Background(), "/tmp/none.pdf", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
	assert.Contains(t, err.Error(), "not installed")
}
