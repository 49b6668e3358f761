package filename

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/formbatch/internal/common"
)

func TestParse(t *testing.T) {
	rec, ok := Parse("/state/SMITH-JONES_john_000042.pdf")

	require.True(t, ok)
	assert.Equal(t, "/state/SMITH-JONES_john_000042.pdf", rec.Path)
	assert.Equal(t, "SMITH-JONES_john_000042.pdf", rec.Name)
	assert.Equal(t, "Smith-Jones", rec.Last)
	assert.Equal(t, "John", rec.First)
	assert.Equal(t, 42, rec.Sequence)
}

func TestParse_Mismatches(t *testing.T) {
	for _, name := range []string{
		"Smith_John_12345.pdf",
		"Smith_John_1234567.pdf",
		"Smith_John_000001.txt",
		"Smith John_000001.pdf",
		"O'Neil_John_000001.pdf",
		"Smith_John_000001.pdf.bak",
		"STFCS_2023.pdf",
		"combined_20240101_120000_000001.pdf",
	} {
		_, ok := Parse(name)
		assert.False(t, ok, name)
	}
}

func TestParse_UppercaseExtension(t *testing.T) {
	_, ok := Parse("Smith_John_000001.PDF")
	assert.True(t, ok)
}

func TestParseStrict(t *testing.T) {
	_, err := ParseStrict("nope.pdf")
	assert.ErrorIs(t, err, common.ErrFilenameMismatch)
}

func TestEncodeSequential(t *testing.T) {
	s, err := Sequential(7)
	require.NoError(t, err)
	assert.Equal(t, "Doe_Jane_000007.pdf", Encode(" doe ", "JANE", s))

	_, err = Sequential(1000000)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = Sequential(-1)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestEncodeRoundTrip(t *testing.T) {
	s, err := Sequential(123456)
	require.NoError(t, err)

	rec, ok := Parse(Encode("Smith", "John", s))

	require.True(t, ok)
	assert.Equal(t, 123456, rec.Sequence)
}

func TestRandom_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, re, string(Random()))
	}
}

func TestSuffixAllocator_SkipsExistingAndAllocated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Doe_Jane_000001.pdf"), nil, 0o644))

	draws := []Suffix{"000001", "000002", "000002", "000003"}
	a := NewSuffixAllocator(dir)
	a.draw = func() Suffix {
		s := draws[0]
		draws = draws[1:]
		return s
	}

	first, err := a.Allocate("Doe", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Doe_Jane_000002.pdf", first)

	second, err := a.Allocate("Doe", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Doe_Jane_000003.pdf", second)
}

func TestSuffixAllocator_GivesUp(t *testing.T) {
	a := NewSuffixAllocator(t.TempDir())
	a.draw = func() Suffix { return "000009" }

	_, err := a.Allocate("Doe", "Jane")
	require.NoError(t, err)

	_, err = a.Allocate("Doe", "Jane")
	assert.Error(t, err)
}
