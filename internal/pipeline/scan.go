package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
	"github.com/joseph-ayodele/formbatch/internal/filename"
)

// DirStats summarizes one directory scan.
type DirStats struct {
	Scanned  int
	Matched  int
	Eligible int
}

// ScanState lists the PDFs directly inside dir in name order. Canonically
// named files form the population; the rest come back as skips.
func ScanState(dir string) ([]entity.DocumentRecord, []entity.Skip, DirStats, error) {
	var stats DirStats
	entries, err := readDir(dir)
	if err != nil {
		return nil, nil, stats, err
	}

	var population []entity.DocumentRecord
	var skips []entity.Skip
	for _, e := range entries {
		stats.Scanned++
		if e.IsDir() || isHidden(e.Name()) || !constants.IsPDFExt(filepath.Ext(e.Name())) {
			continue
		}
		stats.Matched++
		path := filepath.Join(dir, e.Name())
		rec, err := filename.ParseStrict(path)
		if err != nil {
			skips = append(skips, entity.Skip{Path: path, Reason: constants.SkipFilenameMismatch, Err: err})
			continue
		}
		rec.ScanIndex = len(population)
		population = append(population, rec)
	}
	stats.Eligible = len(population)
	return population, skips, stats, nil
}

// readDir returns the entries of an existing directory sorted by name.
func readDir(dir string) ([]os.DirEntry, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, common.NewAppError(common.CodeInput, "directory is required", common.ErrInvalidInput)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewAppError(common.CodeInput, fmt.Sprintf("directory %s does not exist", dir), common.ErrNotFound)
		}
		return nil, common.NewAppError(common.CodeInput, fmt.Sprintf("stat %s", dir), err)
	}
	if !info.IsDir() {
		return nil, common.NewAppError(common.CodeInput, fmt.Sprintf("%s is not a directory", dir), common.ErrInvalidInput)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.NewAppError(common.CodeInput, fmt.Sprintf("read %s", dir), err)
	}
	return entries, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
