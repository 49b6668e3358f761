package filename

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/formbatch/internal/common"
)

// MaxSuffixAttempts bounds the redraws for one name before giving up.
const MaxSuffixAttempts = 32

// Random draws a six-digit token. There is no uniqueness guarantee on its own;
// use SuffixAllocator when writing into a directory.
func Random() Suffix {
	s, _ := Sequential(rand.IntN(maxSuffix + 1))
	return s
}

// SuffixAllocator hands out random suffixes that are unused in this run and
// do not collide with a file already present in dir.
type SuffixAllocator struct {
	dir       string
	allocated map[string]struct{}
	draw      func() Suffix
}

func NewSuffixAllocator(dir string) *SuffixAllocator {
	return &SuffixAllocator{dir: dir, allocated: make(map[string]struct{}), draw: Random}
}

// Allocate returns a fresh canonical filename for the subject.
func (a *SuffixAllocator) Allocate(last, first string) (string, error) {
	for i := 0; i < MaxSuffixAttempts; i++ {
		name := Encode(last, first, a.draw())
		if _, taken := a.allocated[name]; taken {
			continue
		}
		if _, err := os.Stat(filepath.Join(a.dir, name)); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		a.allocated[name] = struct{}{}
		return name, nil
	}
	return "", common.NewAppError(common.CodeOutput,
		fmt.Sprintf("no free suffix for %s %s after %d attempts", first, last, MaxSuffixAttempts), nil)
}
