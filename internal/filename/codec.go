// Package filename parses and renders the canonical {last}_{first}_{NNNNNN}.pdf names.
package filename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

const maxSuffix = 999999

var reCanonical = regexp.MustCompile(`^([A-Za-z\-]+)_([A-Za-z\-]+)_(\d{6})\.(?i:pdf)$`)

// Parse decodes a canonical filename. ok is false when the name does not
// follow the pattern; such documents stay out of the combiner population.
func Parse(path string) (entity.DocumentRecord, bool) {
	base := filepath.Base(path)
	m := reCanonical.FindStringSubmatch(base)
	if m == nil {
		return entity.DocumentRecord{}, false
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return entity.DocumentRecord{}, false
	}
	return entity.DocumentRecord{
		Path:     path,
		Name:     base,
		Last:     entity.NormalizeName(m[1]),
		First:    entity.NormalizeName(m[2]),
		Sequence: seq,
	}, true
}

// ParseStrict is Parse with an ErrFilenameMismatch error instead of a flag.
func ParseStrict(path string) (entity.DocumentRecord, error) {
	rec, ok := Parse(path)
	if !ok {
		return rec, fmt.Errorf("%s: %w", filepath.Base(path), common.ErrFilenameMismatch)
	}
	return rec, nil
}

// Encode renders {Last}_{First}_{suffix}.pdf with title-cased names.
func Encode(last, first string, suffix Suffix) string {
	return fmt.Sprintf("%s_%s_%s.%s", entity.NormalizeName(last), entity.NormalizeName(first), suffix, constants.PDF)
}

// Suffix is the six-digit discriminator in a canonical name.
type Suffix string

// Sequential renders a caller supplied number zero-padded to six digits.
func Sequential(n int) (Suffix, error) {
	if n < 0 || n > maxSuffix {
		return "", fmt.Errorf("sequence %d outside 0..%d: %w", n, maxSuffix, common.ErrInvalidInput)
	}
	return Suffix(fmt.Sprintf("%0*d", constants.SuffixDigits, n)), nil
}
