package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/formbatch/internal/entity"
)

const (
	SheetArtifacts = "Artifacts"
	SheetSkipped   = "Skipped"
)

// Service renders run manifests as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ManifestXLSX returns a workbook (as bytes) listing every artifact with the
// subjects it contains, in batch order, plus a sheet of skipped documents.
func (s *Service) ManifestXLSX(runID string, artifacts []entity.CombinedArtifact, skips []entity.Skip) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the artifact listing.
	if err := f.SetSheetName(f.GetSheetName(0), SheetArtifacts); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetArtifacts)
	f.SetActiveSheet(activeIndex)

	writeRow(f, SheetArtifacts, 1, "Run", "Artifact", "Kind", "Position", "Last Name", "First Name", "Source File")
	row := 2
	for _, a := range artifacts {
		for i, n := range a.Names {
			writeRow(f, SheetArtifacts, row, runID, filepath.Base(a.Path), string(a.Kind), i+1, n.Last, n.First, n.Source)
			row++
		}
	}

	writeRow(f, SheetSkipped, 1, "Run", "File", "Reason", "First Name", "Last Name", "Zip Code", "Detail")
	for i, sk := range skips {
		file := ""
		if sk.Path != "" {
			file = filepath.Base(sk.Path)
		}
		writeRow(f, SheetSkipped, i+2, runID, file, string(sk.Reason), sk.Key.First, sk.Key.Last, sk.Key.Zip, truncate(sk.Detail(), 240))
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetArtifacts, "A", "A", 38) // run id
	_ = f.SetColWidth(SheetArtifacts, "B", "B", 40) // artifact
	_ = f.SetColWidth(SheetArtifacts, "E", "F", 20) // names
	_ = f.SetColWidth(SheetArtifacts, "G", "G", 36) // source
	_ = f.SetColWidth(SheetSkipped, "A", "A", 38)
	_ = f.SetColWidth(SheetSkipped, "B", "B", 36)
	_ = f.SetColWidth(SheetSkipped, "C", "C", 28)
	_ = f.SetColWidth(SheetSkipped, "G", "G", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.manifest.ok",
		"run_id", runID,
		"artifacts", len(artifacts),
		"rows", row-2,
		"skips", len(skips),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
